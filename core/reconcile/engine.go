package reconcile

import (
	"context"
	"time"
)

// Reconciler is the generic insert-or-update driver for one entity kind.
type Reconciler[R any] struct {
	// Name is the pass name used in logs, cursors and run history.
	Name string

	// Key extracts the external identity of a record.
	Key func(rec R) string

	// Timestamp extracts the raw remote "last updated" value of a record.
	Timestamp func(rec R) string

	// Mapping lists the parent columns written for a stale record.
	Mapping Mapping[R]

	// Target persists records.
	Target Target[R]

	// Now is the clock used for cursor stamps when the remote has no timestamp.
	Now func() time.Time
}

// Reconcile decides whether rec is stale against the indexed local row and, if so,
// writes it through the target. Errors are returned as *RecordReconcileError.
func (r *Reconciler[R]) Reconcile(ctx context.Context, index *Index, rec R, force bool) (Outcome, error) {
	key := r.Key(rec)
	if key == "" {
		return Outcome{}, &RecordReconcileError{Pass: r.Name, Err: ErrMissingKey}
	}

	row, _ := index.Lookup(key)
	remote := ParseTimestamp(r.Timestamp(rec))

	if !IsStale(remote, row.SyncedAt, force) {
		return Outcome{}, nil
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	syncedAt := SyncStamp(remote, now())

	inserted, err := r.Target.Apply(ctx, key, row, rec, r.Mapping.Updates(rec), syncedAt)
	if err != nil {
		return Outcome{}, &RecordReconcileError{
			Pass:       r.Name,
			ExternalID: key,
			Remote:     remote,
			Local:      row.SyncedAt,
			Err:        err,
		}
	}

	return Outcome{Inserted: inserted, Updated: !inserted}, nil
}
