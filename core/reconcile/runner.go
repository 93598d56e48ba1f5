package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pass is one fetch -> merge -> reconcile sweep over a single dataset kind.
type Pass interface {
	Name() string
	Run(ctx context.Context, opts Options) *Summary
}

// Options controls a single pass execution.
type Options struct {
	// Force marks every record stale regardless of timestamps.
	Force bool

	// Workers is the number of records reconciled in parallel. Values below 1 mean 1.
	Workers int

	// Reporter receives percent-complete events. May be nil.
	Reporter Reporter

	// Logger receives pass and record events. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Job binds a remote fetch to a reconciler and implements Pass.
type Job[R any] struct {
	Reconciler *Reconciler[R]

	// Fetch returns the records of this pass, already merged when the pass
	// combines several datasets. Failures abort the pass only.
	Fetch func(ctx context.Context) ([]R, error)
}

// Name implements Pass.
func (j *Job[R]) Name() string {
	return j.Reconciler.Name
}

// Run implements Pass. It never panics on record errors and never returns early
// because of one: failures are logged and collected into the summary.
func (j *Job[R]) Run(ctx context.Context, opts Options) *Summary {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	name := j.Name()
	summary := &Summary{Pass: name, Forced: opts.Force, StartedAt: time.Now()}
	defer func() {
		summary.FinishedAt = time.Now()
	}()

	log.Info("Pass started", zap.Bool("forced", opts.Force))

	records, err := j.Fetch(ctx)
	if err != nil {
		summary.Err = &TransientFetchError{Pass: name, Err: err}
		log.Error("Pass aborted, remote fetch failed", zap.Error(err))
		return summary
	}
	summary.Total = len(records)

	index, err := BuildIndex(ctx, j.Reconciler.Target)
	if err != nil {
		summary.Err = err
		log.Error("Pass aborted, local index failed", zap.Error(err))
		return summary
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	tracker := NewTracker(name, len(records), opts.Reporter)

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(workers)

	for _, rec := range records {
		// Whole-run cancellation is honored between records only.
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			out, err := j.Reconciler.Reconcile(ctx, index, rec, opts.Force)
			key := j.Reconciler.Key(rec)

			mu.Lock()
			summary.add(key, out, err)
			mu.Unlock()
			tracker.Step()

			if err != nil {
				logRecordFailure(log, key, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		summary.Err = err
		log.Warn("Pass interrupted",
			zap.Int("processed", summary.Processed),
			zap.Int("total", summary.Total),
			zap.Error(err))
		return summary
	}

	log.Info("Pass finished",
		zap.Int("total", summary.Total),
		zap.Int("inserted", summary.Inserted),
		zap.Int("updated", summary.Updated),
		zap.Int("unchanged", summary.Unchanged),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", time.Since(summary.StartedAt)),
	)
	return summary
}

func logRecordFailure(log *zap.Logger, key string, err error) {
	fields := []zap.Field{zap.String("external_id", key), zap.Error(err)}

	var recErr *RecordReconcileError
	if errors.As(err, &recErr) {
		if recErr.Remote != nil {
			fields = append(fields, zap.Time("remote_updated", *recErr.Remote))
		}
		if recErr.Local != nil {
			fields = append(fields, zap.Time("local_synced", *recErr.Local))
		}
	}

	log.Warn("Record skipped", fields...)
}
