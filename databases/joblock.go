package databases

// go generate: mockery --name JobLockDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const jobLockName = "jobLocks"

// jobLock is the lock document stored per job name
type jobLock struct {
	ID        string             `bson:"_id"`
	Holder    string             `bson:"holder"`
	ExpiresAt primitive.DateTime `bson:"expiresAt"`
}

// JobLockDatabase hands out expiring locks so background jobs run on a single
// instance at a time
type JobLockDatabase interface {
	TryAcquireLock(ctx context.Context, name, holder string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, holder string) error
}

type jobLockDatabase struct {
	db DatabaseHelper
}

// NewJobLockDatabase initializes a new instance of job lock database with the provided db connection
func NewJobLockDatabase(db DatabaseHelper) JobLockDatabase {
	return &jobLockDatabase{
		db: db,
	}
}

func (j *jobLockDatabase) TryAcquireLock(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
	now := time.Now()

	// single conditional upsert: the filter only matches a free, expired or
	// self-held lock, and when another instance holds it live the upsert's
	// insert loses on the _id key instead of overwriting the lock
	upsert := true
	_, err := j.db.Collection(jobLockName).UpdateOne(ctx,
		bson.M{
			"_id": name,
			"$or": []bson.M{
				{"expiresAt": bson.M{"$lt": primitive.NewDateTimeFromTime(now)}},
				{"holder": holder},
			},
		},
		bson.M{"$set": bson.M{
			"holder":    holder,
			"expiresAt": primitive.NewDateTimeFromTime(now.Add(ttl)),
		}},
		&options.UpdateOptions{Upsert: &upsert},
	)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (j *jobLockDatabase) ReleaseLock(ctx context.Context, name, holder string) error {
	return j.db.Collection(jobLockName).DeleteOne(ctx, bson.M{"_id": name, "holder": holder})
}
