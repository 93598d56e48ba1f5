package reconcile

import (
	"strconv"
	"strings"
	"time"
)

// zoneless layouts are read as UTC.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp normalizes a remote timestamp to UTC.
// It returns nil for an empty or unparseable value; callers treat that as stale.
func ParseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t = t.UTC()
		return &t
	}

	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return &t
		}
	}

	// Epoch milliseconds
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil && ms > 0 {
		t := time.UnixMilli(ms).UTC()
		return &t
	}

	return nil
}

// StampPrecision is the resolution cursors are stored and compared at. MySQL
// datetime(3) keeps milliseconds and rounds anything finer.
const StampPrecision = time.Millisecond

// IsStale decides whether the local row must be rewritten.
//
// A row that was never synced is stale. With force every row is stale. A missing
// remote timestamp is stale. Otherwise the row is stale only when the remote
// timestamp is strictly newer at StampPrecision, so repeated runs over unchanged
// data write nothing.
func IsStale(remote, local *time.Time, force bool) bool {
	if local == nil || force || remote == nil {
		return true
	}
	return remote.Truncate(StampPrecision).After(local.Truncate(StampPrecision))
}

// SyncStamp is the cursor value stored after a write: the remote timestamp,
// or now when the remote did not provide one, truncated to StampPrecision.
func SyncStamp(remote *time.Time, now time.Time) time.Time {
	if remote != nil {
		return remote.UTC().Truncate(StampPrecision)
	}
	return now.UTC().Truncate(StampPrecision)
}
