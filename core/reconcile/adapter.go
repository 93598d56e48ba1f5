package reconcile

import (
	"context"
	"time"
)

// Target defines the persistence side of one entity kind.
// Each pass (identities, metadata, types, keys, prices) provides its own Target,
// which knows how to index local rows and how to write one record with its cascades.
type Target[R any] interface {
	// LoadIndex loads every local row this pass has a cursor for, keyed by external id.
	// It is called once at the start of each pass; implementations should use a single
	// batch query selecting only the key, the id and the cursor.
	LoadIndex(ctx context.Context) (map[string]Row, error)

	// Apply writes one stale record: the parent columns in updates, the child
	// collections derived from rec, and the cursor stamp syncedAt.
	// row.ID is zero when the index had no row for the key; Apply then creates it.
	// All writes of one call must be atomic.
	// It returns true when a new parent row was created.
	Apply(ctx context.Context, key string, row Row, rec R, updates map[string]any, syncedAt time.Time) (inserted bool, err error)
}
