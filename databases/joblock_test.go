package databases_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/databases"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/databases/mocks"
)

// The acquire must be one conditional upsert, not a read followed by a write,
// so two instances cannot both pass a check and grab the same lock.
func TestJobLockDatabase_TryAcquireLockFree(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}

	var filter bson.M
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil).
		Run(func(args mock.Arguments) {
			filter = args.Get(1).(bson.M)
		})
	db.On("Collection", "jobLocks").Return(conn)

	lockDB := databases.NewJobLockDatabase(db)

	acquired, err := lockDB.TryAcquireLock(context.Background(), "match_scan_job", "instance-1", 15*time.Minute)
	assert.NoError(t, err)
	assert.True(t, acquired)
	conn.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)

	assert.Equal(t, "match_scan_job", filter["_id"])
	arms, ok := filter["$or"].([]bson.M)
	assert.True(t, ok)
	assert.Len(t, arms, 2)
	assert.Contains(t, arms, bson.M{"holder": "instance-1"})
}

func TestJobLockDatabase_TryAcquireLockHeldByOther(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}

	// live lock held elsewhere: the filter misses and the upsert's insert
	// collides on _id
	dupErr := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, dupErr)
	db.On("Collection", "jobLocks").Return(conn)

	lockDB := databases.NewJobLockDatabase(db)

	acquired, err := lockDB.TryAcquireLock(context.Background(), "match_scan_job", "instance-1", 15*time.Minute)
	assert.NoError(t, err)
	assert.False(t, acquired)
}

func TestJobLockDatabase_ReleaseLock(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}

	conn.On("DeleteOne", mock.Anything, mock.Anything).Return(nil)
	db.On("Collection", "jobLocks").Return(conn)

	lockDB := databases.NewJobLockDatabase(db)

	err := lockDB.ReleaseLock(context.Background(), "match_scan_job", "instance-1")
	assert.NoError(t, err)
	conn.AssertCalled(t, "DeleteOne", mock.Anything, mock.Anything)
}
