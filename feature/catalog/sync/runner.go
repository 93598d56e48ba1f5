package sync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"catalog-sync/core/lock"
	"catalog-sync/core/logger"
	"catalog-sync/core/reconcile"
	"catalog-sync/feature/catalog/passes"
	"catalog-sync/feature/catalog/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrRunInProgress is returned when another run holds the run lock.
	ErrRunInProgress = errors.New("a sync run is already in progress")
	// ErrUnknownPass is returned for a pass name that is not registered.
	ErrUnknownPass = errors.New("unknown pass")
)

// Request selects the passes of one run and which of them ignore staleness.
type Request struct {
	// Passes are run in Order; empty means all.
	Passes []string
	// Force lists the passes that rewrite every record.
	Force []string
}

// FullRun runs every pass. The price pass is always forced; forceAll forces the rest.
func FullRun(forceAll bool) Request {
	if forceAll {
		return Request{Passes: passes.Order, Force: passes.Order}
	}
	return Request{Passes: passes.Order, Force: []string{passes.Prices}}
}

// PriceRun is the scheduled tick: the price pass alone, unforced.
func PriceRun() Request {
	return Request{Passes: []string{passes.Prices}}
}

// Report is the outcome of one run.
type Report struct {
	RunID      string               `json:"run_id"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	Passes     []*reconcile.Summary `json:"passes"`
	// Errors holds the pass-level failure of each aborted pass.
	Errors map[string]string `json:"errors,omitempty"`
}

// Failed reports whether any pass aborted.
func (r *Report) Failed() bool {
	return len(r.Errors) > 0
}

// Status is the live state of the runner.
type Status struct {
	Running   bool       `json:"running"`
	RunID     string     `json:"run_id,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	Last      *Report    `json:"last,omitempty"`
}

// Runner executes passes one run at a time and records their summaries.
type Runner struct {
	passes  map[string]reconcile.Pass
	store   *store.Store
	locker  lock.Locker
	workers int
	logger  *zap.Logger

	// base bounds background runs; Shutdown cancels it.
	base     context.Context
	shutdown context.CancelFunc

	mu     sync.Mutex
	status Status
	wg     sync.WaitGroup
}

// NewRunner creates a runner over the given passes.
func NewRunner(all map[string]reconcile.Pass, st *store.Store, locker lock.Locker, cfg Config, logger *zap.Logger) *Runner {
	base, shutdown := context.WithCancel(context.Background())
	return &Runner{
		passes:   all,
		store:    st,
		locker:   locker,
		workers:  cfg.Workers,
		logger:   logger,
		base:     base,
		shutdown: shutdown,
	}
}

// RunAll runs every pass synchronously, see FullRun.
func (r *Runner) RunAll(ctx context.Context, forceAll bool) (*Report, error) {
	return r.Run(ctx, FullRun(forceAll))
}

// Run executes req synchronously. It returns ErrRunInProgress without waiting
// when another run is active.
func (r *Runner) Run(ctx context.Context, req Request) (*Report, error) {
	names, err := r.resolve(req)
	if err != nil {
		return nil, err
	}
	runID, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	return r.execute(ctx, runID, names, req.Force), nil
}

// Start executes req in the background and returns its run id. The run outlives
// the cancellation of ctx and is interrupted only by Shutdown.
func (r *Runner) Start(ctx context.Context, req Request) (string, error) {
	if r.base.Err() != nil {
		return "", fmt.Errorf("runner is shut down: %w", r.base.Err())
	}
	names, err := r.resolve(req)
	if err != nil {
		return "", err
	}
	runID, err := r.acquire(ctx)
	if err != nil {
		return "", err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.execute(r.base, runID, names, req.Force)
	}()
	return runID, nil
}

// Wait blocks until background runs started with Start have finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Shutdown cancels background runs between records and waits for them to
// release the run lock. Later calls to Start fail.
func (r *Runner) Shutdown() {
	r.shutdown()
	r.wg.Wait()
}

// Status returns a snapshot of the runner state.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Runner) resolve(req Request) ([]string, error) {
	if len(req.Passes) == 0 {
		req.Passes = passes.Order
	}
	for _, name := range req.Passes {
		if _, ok := r.passes[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPass, name)
		}
	}

	// Dependency order wins over request order.
	names := make([]string, 0, len(req.Passes))
	for _, name := range passes.Order {
		if slices.Contains(req.Passes, name) {
			names = append(names, name)
		}
	}
	for _, name := range req.Passes {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names, nil
}

func (r *Runner) acquire(ctx context.Context) (string, error) {
	ok, err := r.locker.TryLock(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return "", ErrRunInProgress
	}

	runID := uuid.NewString()
	now := time.Now()
	r.mu.Lock()
	r.status.Running = true
	r.status.RunID = runID
	r.status.StartedAt = &now
	r.mu.Unlock()
	return runID, nil
}

func (r *Runner) execute(ctx context.Context, runID string, names, force []string) *Report {
	l := logger.WithRun(r.logger, runID, "")
	report := &Report{RunID: runID, StartedAt: time.Now(), Errors: map[string]string{}}

	defer func() {
		report.FinishedAt = time.Now()

		r.mu.Lock()
		r.status = Status{Last: report}
		r.mu.Unlock()

		if err := r.locker.Unlock(context.WithoutCancel(ctx)); err != nil {
			l.Error("Failed to release run lock", zap.Error(err))
		}
	}()

	l.Info("Sync run started", zap.Strings("passes", names), zap.Strings("forced", force))

	for _, name := range names {
		if ctx.Err() != nil {
			report.Errors[name] = ctx.Err().Error()
			continue
		}

		pl := logger.WithRun(r.logger, runID, name)
		summary := r.passes[name].Run(ctx, reconcile.Options{
			Force:    slices.Contains(force, name),
			Workers:  r.workers,
			Reporter: reconcile.ZapReporter{Logger: pl},
			Logger:   pl,
		})
		report.Passes = append(report.Passes, summary)
		if summary.Err != nil {
			report.Errors[name] = summary.Err.Error()
		}

		if err := r.store.RecordRun(context.WithoutCancel(ctx), runID, summary); err != nil {
			pl.Error("Failed to record pass summary", zap.Error(err))
		}
	}

	l.Info("Sync run finished",
		zap.Int("passes", len(report.Passes)),
		zap.Int("aborted", len(report.Errors)),
		zap.Duration("duration", time.Since(report.StartedAt)),
	)
	return report
}
