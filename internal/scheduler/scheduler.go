// Package scheduler re-runs the idempotent migration on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// RunFunc executes one migration pass.
type RunFunc func(ctx context.Context) error

// Scheduler triggers RunFunc on a cron schedule, skipping a tick when the
// previous pass is still in flight.
type Scheduler struct {
	cron *cron.Cron
	run  RunFunc

	mu      sync.Mutex
	running bool
}

func New(run RunFunc) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
		run:  run,
	}
}

// Start registers the schedule and begins ticking. It returns immediately;
// call Stop (or cancel ctx via the caller's wiring) to end.
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.mu.Lock()
		if s.running {
			s.mu.Unlock()
			slog.Warn("previous migration still running, skipping this tick")
			return
		}
		s.running = true
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}()

		if err := s.run(ctx); err != nil {
			slog.Error("scheduled migration failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	slog.Info("scheduler started", "schedule", schedule)
	return nil
}

// Stop halts the ticker and waits for an in-flight pass to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}
