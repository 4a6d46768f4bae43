package databases

// go generate: mockery --name FoundBikeDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/models"
)

const foundBikeName = "foundBikes"

// FoundBikeDatabase contains the methods to use with the found bike database
type FoundBikeDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.FoundBike, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.FoundBike, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type foundBikeDatabase struct {
	db DatabaseHelper
}

// NewFoundBikeDatabase initializes a new instance of found bike database with the provided db connection
func NewFoundBikeDatabase(db DatabaseHelper) FoundBikeDatabase {
	return &foundBikeDatabase{
		db: db,
	}
}

func (c *foundBikeDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.FoundBike, error) {
	foundBike := &models.FoundBike{}
	err := c.db.Collection(foundBikeName).FindOne(ctx, filter, opts...).Decode(&foundBike)
	if err != nil {
		return nil, err
	}
	return foundBike, nil
}

func (c *foundBikeDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.FoundBike, error) {
	var foundBikes []models.FoundBike
	curr, err := c.db.Collection(foundBikeName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &foundBikes)
	if err != nil {
		return nil, err
	}
	return foundBikes, nil
}

func (c *foundBikeDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := c.db.Collection(foundBikeName).InsertOne(ctx, document, opts...)
	return res, err
}

func (c *foundBikeDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := c.db.Collection(foundBikeName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (c *foundBikeDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return c.db.Collection(foundBikeName).DeleteOne(ctx, filter, opts...)
}

func (c *foundBikeDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(foundBikeName).CountDocuments(ctx, filter, opts...)
}
