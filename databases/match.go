package databases

// go generate: mockery --name MatchDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/models"
)

const matchName = "matches"

// MatchDatabase contains the methods to use with the match database
type MatchDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Match, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Match, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type matchDatabase struct {
	db DatabaseHelper
}

// NewMatchDatabase initializes a new instance of match database with the provided db connection
func NewMatchDatabase(db DatabaseHelper) MatchDatabase {
	return &matchDatabase{
		db: db,
	}
}

func (c *matchDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Match, error) {
	match := &models.Match{}
	err := c.db.Collection(matchName).FindOne(ctx, filter, opts...).Decode(&match)
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (c *matchDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Match, error) {
	var matches []models.Match
	curr, err := c.db.Collection(matchName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &matches)
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (c *matchDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := c.db.Collection(matchName).InsertOne(ctx, document, opts...)
	return res, err
}

func (c *matchDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := c.db.Collection(matchName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (c *matchDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(matchName).CountDocuments(ctx, filter, opts...)
}
