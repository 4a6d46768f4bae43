package databases

// go generate: mockery --name StolenBikeDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/models"
)

const stolenBikeName = "stolenBikes"

// StolenBikeDatabase contains the methods to use with the stolen bike database
type StolenBikeDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.StolenBike, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.StolenBike, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type stolenBikeDatabase struct {
	db DatabaseHelper
}

// NewStolenBikeDatabase initializes a new instance of stolen bike database with the provided db connection
func NewStolenBikeDatabase(db DatabaseHelper) StolenBikeDatabase {
	return &stolenBikeDatabase{
		db: db,
	}
}

func (c *stolenBikeDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.StolenBike, error) {
	stolenBike := &models.StolenBike{}
	err := c.db.Collection(stolenBikeName).FindOne(ctx, filter, opts...).Decode(&stolenBike)
	if err != nil {
		return nil, err
	}
	return stolenBike, nil
}

func (c *stolenBikeDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.StolenBike, error) {
	var stolenBikes []models.StolenBike
	curr, err := c.db.Collection(stolenBikeName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &stolenBikes)
	if err != nil {
		return nil, err
	}
	return stolenBikes, nil
}

func (c *stolenBikeDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := c.db.Collection(stolenBikeName).InsertOne(ctx, document, opts...)
	return res, err
}

func (c *stolenBikeDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := c.db.Collection(stolenBikeName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (c *stolenBikeDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return c.db.Collection(stolenBikeName).DeleteOne(ctx, filter, opts...)
}

func (c *stolenBikeDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(stolenBikeName).CountDocuments(ctx, filter, opts...)
}
