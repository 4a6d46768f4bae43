package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/api/handlers"
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/databases"
)

// Scheduler handles periodic background jobs for the matching pipeline
type Scheduler struct {
	cron       *cron.Cron
	Matchmaker handlers.Matchmaker
	LockDB     databases.JobLockDatabase
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(mm handlers.Matchmaker, lockDB databases.JobLockDatabase) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		Matchmaker: mm,
		LockDB:     lockDB,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Re-scan active stolen bike reports against found bikes every 6 hours.
	// New found bikes trigger an inline scan on create; this job picks up
	// reports whose photos were re-embedded or that missed the inline pass.
	_, err := s.cron.AddFunc("0 */6 * * *", s.scanForMatches)
	if err != nil {
		zap.S().Errorw("failed to register match scan job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Match scan scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Match scan scheduler stopped")
}

// scanForMatches walks every active stolen bike report with image features
// and records any new matches against the found bike reports
func (s *Scheduler) scanForMatches() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Try to acquire distributed lock (15 minute TTL)
	acquired, err := s.LockDB.TryAcquireLock(ctx, "match_scan_job", s.instanceID, 15*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for match scan job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Match scan job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "match_scan_job", s.instanceID)

	zap.S().Infow("Running match scan job", "instance", s.instanceID)

	stolenBikes, err := s.Matchmaker.ActiveStolenWithFeatures(ctx)
	if err != nil {
		zap.S().Errorw("failed to find stolen bike reports for scan", "error", err)
		return
	}

	created := 0
	for i := range stolenBikes {
		n, err := s.Matchmaker.RecordMatchesForStolen(ctx, &stolenBikes[i])
		if err != nil {
			zap.S().Errorw("failed to record matches for stolen bike",
				"error", err,
				"stolenBikeId", stolenBikes[i].ID.Hex(),
			)
			continue
		}
		created += n
	}

	zap.S().Infow("Match scan complete",
		"reportsScanned", len(stolenBikes),
		"matchesCreated", created,
	)
}
