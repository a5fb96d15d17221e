package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"
)

// ErrBusy is returned by RunNow while a previous run is still in progress.
var ErrBusy = errors.New("ingest run already in progress")

// Job is one ingest batch.
type Job func(ctx context.Context) error

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// IngestScheduler runs a job on a cron schedule. Runs never overlap; a tick
// that fires while the previous batch is still going is skipped.
type IngestScheduler struct {
	schedule string
	job      Job
	logger   *log.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	busy       atomic.Bool
	ctx        context.Context
	cancelFunc context.CancelFunc
}

func NewIngestScheduler(schedule string, job Job, logger *log.Logger) *IngestScheduler {
	return &IngestScheduler{
		schedule: schedule,
		job:      job,
		logger:   logger,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start registers the job and starts the cron loop. The scheduler stops when ctx is done.
func (s *IngestScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	s.ctx, s.cancelFunc = context.WithCancel(ctx)

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunNow(); errors.Is(err, ErrBusy) {
			s.logger.Warn().Msg("ingest scheduler: previous run still in progress, skipping tick")
		}
	})
	if err != nil {
		s.cancelFunc()
		return fmt.Errorf("failed to schedule ingest job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRunTime(s.schedule, time.Now())
	s.logger.Info().
		Str("schedule", s.schedule).
		Str("description", CronDescription(s.schedule)).
		Str("next_run", next.Format(time.RFC3339)).
		Msg("ingest scheduler: started")

	go func(done <-chan struct{}) {
		<-done
		s.Stop()
	}(s.ctx.Done())

	return nil
}

// Stop cancels the context of a running job and waits for it to return.
func (s *IngestScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.cancelFunc()
	stopped := s.cron.Stop()
	s.mu.Unlock()

	<-stopped.Done()
	s.logger.Info().Msg("ingest scheduler: stopped")
}

// RunNow executes the job synchronously unless another run is in progress.
func (s *IngestScheduler) RunNow() error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	err := s.job(ctx)
	if err != nil {
		s.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("ingest scheduler: run failed")
		return err
	}
	s.logger.Info().Dur("duration", time.Since(start)).Msg("ingest scheduler: run finished")
	return nil
}

func (s *IngestScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next run will occur, or nil when stopped.
func (s *IngestScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// ValidateCronSchedule accepts standard five-field cron expressions.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// CronDescription returns a human-readable description of a cron schedule
func CronDescription(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "*/15 * * * *":
		return "Every 15 minutes"
	case "*/30 * * * *":
		return "Every 30 minutes"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

func NextRunTime(schedule string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}
