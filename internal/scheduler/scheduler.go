// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/mfontana/overlay/internal/modules/snapshots"
)

// Scheduler owns the cron runner and its jobs.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a new scheduler.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterSnapshotRetention schedules the daily snapshot pruning job.
// retentionDays is the history horizon kept in book.db.
func (s *Scheduler) RegisterSnapshotRetention(repo *snapshots.Repository, retentionDays int) error {
	// Run shortly after midnight, once a day
	_, err := s.cron.AddFunc("15 0 * * *", func() {
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		deleted, err := repo.PruneOlderThan(cutoff)
		if err != nil {
			s.log.Error().Err(err).Msg("Snapshot retention job failed")
			return
		}
		s.log.Info().Int64("deleted", deleted).Int("retention_days", retentionDays).Msg("Snapshot retention job completed")
	})
	return err
}

// Start starts the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the cron runner and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}
