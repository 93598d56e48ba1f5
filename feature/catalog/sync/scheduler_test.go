package sync

import (
	"context"
	"sync"
	"testing"
	"time"

	"catalog-sync/core/lock"
	"catalog-sync/core/reconcile"
	"catalog-sync/feature/catalog/passes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestScheduler_StartupThenTicks(t *testing.T) {
	j := &journal{}
	runner, _ := newTestRunner(t, fakePasses(j))
	sched := NewScheduler(runner, Config{Interval: 10 * time.Millisecond, RunOnStart: true}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(j.snapshot()) >= 7 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	calls := j.snapshot()
	assert.Equal(t, call{passes.Identities, false}, calls[0])
	assert.Equal(t, call{passes.Prices, true}, calls[4])
	for _, c := range calls[5:] {
		assert.Equal(t, call{passes.Prices, false}, c, "ticks run prices alone, unforced")
	}
}

func TestScheduler_SkipsWhileLocked(t *testing.T) {
	j := &journal{}
	fakes := fakePasses(j)
	all := make(map[string]reconcile.Pass, len(fakes))
	for name, p := range fakes {
		all[name] = p
	}

	locker := lock.NewMemory()
	ok, err := locker.TryLock(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)
	runner := NewRunner(all, newTestStore(t), locker, Config{Workers: 1}, log)
	sched := NewScheduler(runner, Config{Interval: time.Hour, RunOnStart: true}, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("Scheduled run skipped, another run is in progress").Len() == 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Empty(t, j.snapshot())
}

// slowPass takes longer than the scheduler interval and records when each run
// started and ended.
type slowPass struct {
	delay time.Duration

	mu     sync.Mutex
	starts []time.Time
	ends   []time.Time
}

func (p *slowPass) Name() string { return passes.Prices }

func (p *slowPass) Run(ctx context.Context, opts reconcile.Options) *reconcile.Summary {
	start := time.Now()
	time.Sleep(p.delay)
	p.mu.Lock()
	p.starts = append(p.starts, start)
	p.ends = append(p.ends, time.Now())
	p.mu.Unlock()
	return &reconcile.Summary{Pass: passes.Prices, StartedAt: start, FinishedAt: time.Now()}
}

func (p *slowPass) runs() ([]time.Time, []time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]time.Time(nil), p.starts...), append([]time.Time(nil), p.ends...)
}

func TestScheduler_FixedDelayAfterSlowRun(t *testing.T) {
	const interval = 20 * time.Millisecond
	pass := &slowPass{delay: 3 * interval}
	runner := NewRunner(map[string]reconcile.Pass{passes.Prices: pass}, newTestStore(t), lock.NewMemory(), Config{Workers: 1}, zap.NewNop())
	sched := NewScheduler(runner, Config{Interval: interval}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		starts, _ := pass.runs()
		return len(starts) >= 3
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	starts, ends := pass.runs()
	for i := 1; i < len(starts); i++ {
		gap := starts[i].Sub(ends[i-1])
		assert.GreaterOrEqual(t, gap, interval, "run %d started %s after the previous one ended", i, gap)
	}
}
