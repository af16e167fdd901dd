// Package scheduler manages recurring maintenance jobs such as model
// retraining and dataset refreshes.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// JobFunc is a scheduled unit of work. The context carries the job timeout.
type JobFunc func(ctx context.Context) error

// Scheduler runs named jobs on cron expressions in UTC.
type Scheduler struct {
	cron            *cron.Cron
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          map[string]cron.EntryID
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
}

// New creates an empty scheduler.
func New(logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		logger:          logger,
		jobIDs:          make(map[string]cron.EntryID),
		jobTimeout:      time.Hour,
		gracefulTimeout: 30 * time.Second,
	}
}

// Schedule registers a named job on a cron expression.
func (s *Scheduler) Schedule(name, cronExpression string, job JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if _, exists := s.jobIDs[name]; exists {
		return fmt.Errorf("job %q is already scheduled", name)
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		started := time.Now()
		s.logger.WithField("job", name).Info("Starting scheduled job")

		if err := job(ctx); err != nil {
			s.logger.WithFields(logrus.Fields{
				"job":   name,
				"error": err.Error(),
			}).Error("Scheduled job failed")
			return
		}

		s.logger.WithFields(logrus.Fields{
			"job":      name,
			"duration": time.Since(started).String(),
		}).Info("Scheduled job completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", name, err)
	}

	s.jobIDs[name] = entryID
	s.logger.WithFields(logrus.Fields{
		"job":  name,
		"cron": cronExpression,
	}).Info("Scheduled job")

	return nil
}

// ScheduleEvery registers a named job on a fixed interval.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, job JobFunc) error {
	if interval < time.Second {
		interval = time.Second
	}
	return s.Schedule(name, fmt.Sprintf("@every %s", interval), job)
}

// Start starts the scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler, waiting up to the graceful timeout for
// running jobs to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.gracefulTimeout)
	defer cancel()

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out waiting for running jobs")
	}

	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// JobNames returns the names of all scheduled jobs.
func (s *Scheduler) JobNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobIDs))
	for name := range s.jobIDs {
		names = append(names, name)
	}
	return names
}

// NextRun returns the earliest upcoming run across all scheduled jobs.
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if !entry.Valid() {
			continue
		}
		if nextRun.IsZero() || entry.Next.Before(nextRun) {
			nextRun = entry.Next
		}
	}

	return nextRun
}

// Remove removes a scheduled job by name.
func (s *Scheduler) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot remove job while scheduler is running")
	}

	jobID, exists := s.jobIDs[name]
	if !exists {
		return fmt.Errorf("job %q is not scheduled", name)
	}

	s.cron.Remove(jobID)
	delete(s.jobIDs, name)
	s.logger.WithField("job", name).Info("Removed scheduled job")

	return nil
}
