package reconcile

import (
	"context"
	"time"
)

// Index is the pass-scoped view of local rows. It is built once at the start of a
// pass, read concurrently by record workers and dropped when the pass ends; it is
// never mutated and never shared between passes.
type Index struct {
	rows  map[string]Row
	Built time.Time
}

// BuildIndex loads a fresh index from the target.
func BuildIndex[R any](ctx context.Context, target Target[R]) (*Index, error) {
	rows, err := target.LoadIndex(ctx)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = make(map[string]Row)
	}
	return &Index{rows: rows, Built: time.Now()}, nil
}

// NewIndex wraps an existing map; used by tests and replays.
func NewIndex(rows map[string]Row) *Index {
	if rows == nil {
		rows = make(map[string]Row)
	}
	return &Index{rows: rows, Built: time.Now()}
}

// Lookup returns the local row for key. ok is false for never-seen identities.
func (i *Index) Lookup(key string) (Row, bool) {
	row, ok := i.rows[key]
	return row, ok
}

// Len returns the number of indexed rows.
func (i *Index) Len() int {
	return len(i.rows)
}
