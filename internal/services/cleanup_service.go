package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StaleHoldReleaser marks long-expired holds as released
type StaleHoldReleaser interface {
	ReleaseStale(olderThan time.Time) (int, error)
}

// CleanupService runs the nightly hold hygiene job. Capacity math already
// filters expired holds at read time, so this sweep exists only to keep the
// holds table compact and reporting queries honest.
type CleanupService struct {
	cron       *cron.Cron
	holds      StaleHoldReleaser
	logger     *logrus.Logger
	spec       string
	retainDead time.Duration
	now        func() time.Time
}

// NewCleanupService creates a new CleanupService. spec uses the six-field
// cron format with seconds.
func NewCleanupService(holds StaleHoldReleaser, logger *logrus.Logger, spec string, retainDead time.Duration) *CleanupService {
	return &CleanupService{
		cron:       cron.New(cron.WithSeconds()),
		holds:      holds,
		logger:     logger,
		spec:       spec,
		retainDead: retainDead,
		now:        time.Now,
	}
}

// Start schedules the sweep and starts the scheduler
func (s *CleanupService) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.sweepStaleHolds)
	if err != nil {
		return fmt.Errorf("failed to schedule hold cleanup job: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("schedule", s.spec).Info("Hold cleanup job scheduled")
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *CleanupService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Hold cleanup job stopped")
}

func (s *CleanupService) sweepStaleHolds() {
	start := s.now()
	cutoff := start.Add(-s.retainDead)

	released, err := s.holds.ReleaseStale(cutoff)
	if err != nil {
		s.logger.WithError(err).Error("Hold cleanup sweep failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"released": released,
		"cutoff":   cutoff,
		"duration": time.Since(start).String(),
	}).Info("Hold cleanup sweep finished")
}

// RunNow triggers a sweep immediately
func (s *CleanupService) RunNow() {
	s.sweepStaleHolds()
}
