package reconcile

import (
	"sync"

	"go.uber.org/zap"
)

// Reporter receives percent-complete events of a pass.
type Reporter interface {
	Progress(pass string, percent int)
}

// ZapReporter logs progress events at info level.
type ZapReporter struct {
	Logger *zap.Logger
}

// Progress implements Reporter.
func (r ZapReporter) Progress(pass string, percent int) {
	r.Logger.Info("Pass progress", zap.String("pass", pass), zap.Int("percent", percent))
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(pass string, percent int)

// Progress implements Reporter.
func (f ReporterFunc) Progress(pass string, percent int) { f(pass, percent) }

// Tracker turns processed/total counts into integer percentages and forwards a
// value only when it changes. Values are non-decreasing and each appears once.
type Tracker struct {
	mu        sync.Mutex
	pass      string
	total     int
	processed int
	last      int
	reporter  Reporter
}

// NewTracker creates a tracker for a pass over total records. reporter may be nil.
func NewTracker(pass string, total int, reporter Reporter) *Tracker {
	return &Tracker{pass: pass, total: total, last: -1, reporter: reporter}
}

// Step records one processed record and returns the current percentage.
func (t *Tracker) Step() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.processed < t.total {
		t.processed++
	}
	if t.total == 0 {
		return 100
	}

	percent := t.processed * 100 / t.total
	if percent > t.last {
		t.last = percent
		if t.reporter != nil {
			t.reporter.Progress(t.pass, percent)
		}
	}
	return percent
}
