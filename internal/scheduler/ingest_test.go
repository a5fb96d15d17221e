package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/docshelf/internal/logging"
)

func TestValidateCronSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		valid    bool
	}{
		{"0 * * * *", true},
		{"*/15 * * * *", true},
		{"0 0 * * 0", true},
		{"* * * * * *", false},
		{"every hour", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := ValidateCronSchedule(tt.schedule)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCronDescription(t *testing.T) {
	assert.Equal(t, "Every hour at :00", CronDescription("0 * * * *"))
	assert.Equal(t, "Custom schedule: 5 4 * * *", CronDescription("5 4 * * *"))
}

func TestNextRunTime(t *testing.T) {
	from := time.Date(2024, 5, 1, 10, 20, 0, 0, time.UTC)
	next, err := NextRunTime("0 * * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC), next)

	_, err = NextRunTime("bogus", from)
	assert.Error(t, err)
}

func TestIngestScheduler_StartStop(t *testing.T) {
	s := NewIngestScheduler("0 * * * *", func(context.Context) error { return nil }, logging.Discard())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	require.NotNil(t, s.GetNextRunTime())

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestIngestScheduler_InvalidSchedule(t *testing.T) {
	s := NewIngestScheduler("not cron", func(context.Context) error { return nil }, logging.Discard())
	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestIngestScheduler_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewIngestScheduler("0 * * * *", func(context.Context) error { return nil }, logging.Discard())
	require.NoError(t, s.Start(ctx))

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestIngestScheduler_RunNow(t *testing.T) {
	var calls atomic.Int32
	jobErr := errors.New("boom")
	s := NewIngestScheduler("0 * * * *", func(context.Context) error {
		if calls.Add(1) == 2 {
			return jobErr
		}
		return nil
	}, logging.Discard())

	assert.NoError(t, s.RunNow())
	assert.ErrorIs(t, s.RunNow(), jobErr)
	assert.Equal(t, int32(2), calls.Load())
}

func TestIngestScheduler_RunsDoNotOverlap(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := NewIngestScheduler("0 * * * *", func(context.Context) error {
		close(started)
		<-release
		return nil
	}, logging.Discard())

	done := make(chan error, 1)
	go func() { done <- s.RunNow() }()
	<-started

	assert.ErrorIs(t, s.RunNow(), ErrBusy)

	close(release)
	assert.NoError(t, <-done)
}
