package daemon

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps gocron for the periodic pipeline trigger. At most one
// periodic job exists at a time; rescheduling replaces it.
type Scheduler struct {
	scheduler gocron.Scheduler
	mu        sync.Mutex
	job       gocron.Job
	task      func()
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// SchedulePeriodicRun registers the pipeline trigger at the given interval.
// A zero interval keeps the trigger dormant; Reschedule can activate it later.
func (s *Scheduler) SchedulePeriodicRun(interval time.Duration, task func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.task = task
	return s.schedule(interval)
}

// Reschedule replaces the current periodic job with one at the new interval.
// A zero interval removes the job entirely.
func (s *Scheduler) Reschedule(interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.job != nil {
		if err := s.scheduler.RemoveJob(s.job.ID()); err != nil {
			slog.Warn("failed to remove scheduled job", "error", err)
		}
		s.job = nil
	}
	if interval <= 0 {
		slog.Info("periodic pipeline trigger disabled")
		return nil
	}
	return s.schedule(interval)
}

func (s *Scheduler) schedule(interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	if s.task == nil {
		return fmt.Errorf("no task registered")
	}

	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.task),
		gocron.WithName("pipeline-run"),
	)
	if err != nil {
		return fmt.Errorf("failed to create periodic run job: %w", err)
	}
	s.job = job
	slog.Info("periodic pipeline trigger scheduled", "interval", interval.String())
	return nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
