package reconcile

import "time"

// Row is the minimal local state the engine needs to judge staleness.
type Row struct {
	// ID is the local surrogate key. Zero means the row does not exist yet.
	ID uint

	// SyncedAt is the last time this pass wrote the row, nil if it never did.
	SyncedAt *time.Time
}

// Outcome is the result of reconciling a single record.
type Outcome struct {
	// Inserted is true when the local row was created by this record.
	Inserted bool

	// Updated is true when an existing row was judged stale and rewritten.
	Updated bool
}

// Changed reports whether anything was written.
func (o Outcome) Changed() bool {
	return o.Inserted || o.Updated
}

// RecordFailure describes a record that was skipped during a pass.
type RecordFailure struct {
	// ExternalID is the remote identity of the record, empty if it had none.
	ExternalID string `json:"external_id"`

	// Reason is the error message.
	Reason string `json:"reason"`
}

// Summary aggregates the outcome of one pass.
type Summary struct {
	// Pass is the pass name (e.g. "metadata", "prices").
	Pass string `json:"pass"`

	// Forced is true when staleness was ignored for every record.
	Forced bool `json:"forced"`

	// StartedAt and FinishedAt bound the pass, fetch included.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Total is the number of records the fetch produced.
	Total int `json:"total"`

	// Processed counts records that were attempted, failed ones included.
	Processed int `json:"processed"`

	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`

	// Failures lists every skipped record.
	Failures []RecordFailure `json:"failures"`

	// Err is the pass-level failure (fetch or index load), nil if the pass ran.
	Err error `json:"-"`
}

// Duration returns how long the pass took.
func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// add folds a single record result into the summary.
func (s *Summary) add(key string, out Outcome, err error) {
	s.Processed++
	switch {
	case err != nil:
		s.Failed++
		s.Failures = append(s.Failures, RecordFailure{ExternalID: key, Reason: err.Error()})
	case out.Inserted:
		s.Inserted++
	case out.Updated:
		s.Updated++
	default:
		s.Unchanged++
	}
}
