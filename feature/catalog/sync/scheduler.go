package sync

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Scheduler drives the runner: one full run at start, then a price-only run per tick.
type Scheduler struct {
	runner     *Runner
	interval   time.Duration
	runOnStart bool
	logger     *zap.Logger
}

// NewScheduler creates a scheduler from cfg.
func NewScheduler(runner *Runner, cfg Config, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		runner:     runner,
		interval:   cfg.Interval,
		runOnStart: cfg.RunOnStart,
		logger:     logger,
	}
}

// Run blocks until ctx is cancelled. Ticks are spaced by a fixed delay after the
// previous run ends; a tick that finds a run in progress is skipped, never queued.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Scheduler started",
		zap.Duration("interval", s.interval),
		zap.Bool("run_on_start", s.runOnStart))

	if s.runOnStart {
		s.trigger(ctx, FullRun(false))
	}

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case <-timer.C:
			s.trigger(ctx, PriceRun())
			timer.Reset(s.interval)
		}
	}
}

func (s *Scheduler) trigger(ctx context.Context, req Request) {
	report, err := s.runner.Run(ctx, req)
	switch {
	case errors.Is(err, ErrRunInProgress):
		s.logger.Info("Scheduled run skipped, another run is in progress", zap.Strings("passes", req.Passes))
	case err != nil:
		s.logger.Error("Scheduled run failed to start", zap.Error(err))
	case report.Failed():
		s.logger.Warn("Scheduled run finished with aborted passes", zap.Any("errors", report.Errors))
	}
}
