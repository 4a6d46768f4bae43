package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/api/handlers"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/databases"
	mocksdb "github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/databases/mocks"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/models"
)

func TestScheduler_ScanForMatchesSkipsWhenLockHeld(t *testing.T) {
	lockDB := &mocksdb.JobLockDatabase{}
	lockDB.On("TryAcquireLock", mock.Anything, "match_scan_job", mock.Anything, mock.Anything).Return(false, nil)

	db := &mocksdb.DatabaseHelper{}

	s := NewScheduler(handlers.Matchmaker{
		SDB:       databases.NewStolenBikeDatabase(db),
		FDB:       databases.NewFoundBikeDatabase(db),
		MDB:       databases.NewMatchDatabase(db),
		Threshold: 0.6,
	}, lockDB)

	s.scanForMatches()

	// the stolen bike collection must never be touched without the lock
	db.AssertNotCalled(t, "Collection", "stolenBikes")
	lockDB.AssertNotCalled(t, "ReleaseLock", mock.Anything, mock.Anything, mock.Anything)
}

func TestScheduler_ScanForMatchesReleasesLock(t *testing.T) {
	lockDB := &mocksdb.JobLockDatabase{}
	lockDB.On("TryAcquireLock", mock.Anything, "match_scan_job", mock.Anything, mock.Anything).Return(true, nil)
	lockDB.On("ReleaseLock", mock.Anything, "match_scan_job", mock.Anything).Return(nil)

	db := &mocksdb.DatabaseHelper{}
	stolenConn := &mocksdb.CollectionHelper{}
	cursor := &mocksdb.CursorHelper{}

	cursor.On("All", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.StolenBike)
		*arg = []models.StolenBike{}
	})
	cursor.On("Close", mock.Anything).Return(nil)
	stolenConn.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)
	db.On("Collection", "stolenBikes").Return(stolenConn)

	s := NewScheduler(handlers.Matchmaker{
		SDB:       databases.NewStolenBikeDatabase(db),
		FDB:       databases.NewFoundBikeDatabase(db),
		MDB:       databases.NewMatchDatabase(db),
		Threshold: 0.6,
	}, lockDB)

	s.scanForMatches()

	assert.NotEmpty(t, s.instanceID)
	lockDB.AssertCalled(t, "ReleaseLock", mock.Anything, "match_scan_job", mock.Anything)
}
