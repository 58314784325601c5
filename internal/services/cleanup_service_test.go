package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReleaser struct {
	cutoffs  []time.Time
	released int
	err      error
}

func (f *fakeReleaser) ReleaseStale(olderThan time.Time) (int, error) {
	f.cutoffs = append(f.cutoffs, olderThan)
	return f.released, f.err
}

func TestCleanupSweepUsesRetentionCutoff(t *testing.T) {
	releaser := &fakeReleaser{released: 4}
	svc := NewCleanupService(releaser, quietLogger(), "0 0 3 * * *", time.Hour)

	now := time.Date(2026, 7, 15, 3, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	svc.RunNow()

	require.Len(t, releaser.cutoffs, 1)
	assert.Equal(t, now.Add(-time.Hour), releaser.cutoffs[0])
}

func TestCleanupSweepSurvivesStoreErrors(t *testing.T) {
	releaser := &fakeReleaser{err: errors.New("connection lost")}
	svc := NewCleanupService(releaser, quietLogger(), "0 0 3 * * *", time.Hour)

	// Must not panic; the next scheduled run retries
	svc.RunNow()
	assert.Len(t, releaser.cutoffs, 1)
}

func TestCleanupRejectsBadSchedule(t *testing.T) {
	svc := NewCleanupService(&fakeReleaser{}, quietLogger(), "not a cron spec", time.Hour)
	err := svc.Start()
	require.Error(t, err)
}

func TestCleanupStartStop(t *testing.T) {
	svc := NewCleanupService(&fakeReleaser{}, quietLogger(), "0 0 3 * * *", time.Hour)
	require.NoError(t, svc.Start())
	svc.Stop()
}
