// Package reconcile provides the generic reconciliation engine used by every sync pass.
//
// A pass takes a list of remote records, looks up the local row of each record by its
// external identity and writes only what is stale. The engine is agnostic of the entity
// kind; model-specific behavior lives in a Target and a declarative Mapping.
//
// # Architecture
//
// 1. Staleness: ParseTimestamp normalizes remote timestamps, IsStale compares them with
//    the local cursor (strictly newer, never-synced and unknown are stale, force wins).
//
// 2. Reconciler: builds the column update map from the Mapping and calls Target.Apply,
//    which performs the parent write, child cascades and cursor stamp atomically.
//
// 3. Index: a pass-scoped, read-only map of local rows built once per pass.
//
// 4. Job: fetches, builds the index, runs records on a bounded worker pool, isolates
//    record failures into the Summary and emits monotonic progress through a Tracker.
//
// # Errors
//
// TransientFetchError aborts one pass; RecordReconcileError skips one record;
// LookupConflictError is retried as a lookup by label stores; ConfigurationError is the
// only fatal class (see IsFatal).
//
// # Usage Example
//
//	job := &reconcile.Job[Pair]{
//	    Reconciler: &reconcile.Reconciler[Pair]{
//	        Name:      "metadata",
//	        Key:       func(p Pair) string { return p.ID },
//	        Timestamp: func(p Pair) string { return p.Updated() },
//	        Mapping:   metadataMapping,
//	        Target:    target,
//	    },
//	    Fetch: fetchPairs,
//	}
//	summary := job.Run(ctx, reconcile.Options{Workers: 8, Force: false})
package reconcile
