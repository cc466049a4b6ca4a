package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rodpaiva/mensageiro-fit/internal/logger"
)

// Scheduler triggers the daily report job at a fixed wall-clock time.
type Scheduler struct {
	cron *cron.Cron
}

// New creates a scheduler in the local timezone
func New() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// ScheduleDaily registers job to run every day at hour:minute
func (s *Scheduler) ScheduleDaily(hour, minute int, job func()) error {
	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	if _, err := s.cron.AddFunc(spec, job); err != nil {
		return fmt.Errorf("failed to schedule daily job: %w", err)
	}
	logger.Info("Daily job scheduled", "hour", hour, "minute", minute)
	return nil
}

// Start begins running scheduled jobs in their own goroutines
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
