package reconcile

import (
	"errors"
	"fmt"
	"time"
)

// TransientFetchError means a whole remote dataset could not be fetched or decoded.
// The pass is aborted, local data is kept and the next scheduled run retries.
type TransientFetchError struct {
	Pass string
	Err  error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("fetch for pass %s failed: %v", e.Pass, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

// RecordReconcileError means a single record could not be merged or persisted.
// The record is skipped and the pass continues.
type RecordReconcileError struct {
	Pass       string
	ExternalID string
	Remote     *time.Time
	Local      *time.Time
	Err        error
}

func (e *RecordReconcileError) Error() string {
	return fmt.Sprintf("%s record %q: %v", e.Pass, e.ExternalID, e.Err)
}

func (e *RecordReconcileError) Unwrap() error { return e.Err }

// LookupConflictError is a lost find-or-create race on a label name.
// Callers retry it as a lookup.
type LookupConflictError struct {
	Kind string
	Name string
	Err  error
}

func (e *LookupConflictError) Error() string {
	return fmt.Sprintf("concurrent create of %s %q: %v", e.Kind, e.Name, e.Err)
}

func (e *LookupConflictError) Unwrap() error { return e.Err }

// ConfigurationError is a missing or invalid setting. It is fatal at startup.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// ErrMissingKey is returned for a remote record without an external identity.
var ErrMissingKey = errors.New("record has no external id")

// IsFatal reports whether err must stop the process instead of being retried next run.
func IsFatal(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
