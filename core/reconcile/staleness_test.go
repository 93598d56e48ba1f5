package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(t *testing.T, raw string) *time.Time {
	t.Helper()
	parsed := ParseTimestamp(raw)
	require.NotNil(t, parsed, "timestamp %q should parse", raw)
	return parsed
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"RFC3339 with millis", "2024-05-01T10:20:30.123Z", time.Date(2024, 5, 1, 10, 20, 30, 123000000, time.UTC)},
		{"RFC3339 without fraction", "2024-05-01T10:20:30Z", time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)},
		{"offset normalized to UTC", "2024-05-01T12:20:30+02:00", time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)},
		{"zoneless ISO", "2024-05-01T10:20:30", time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)},
		{"SQL style", "2024-05-01 10:20:30", time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)},
		{"date only", "2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"epoch millis", "1714558830000", time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)},
		{"surrounding spaces", "  2024-05-01T10:20:30Z ", time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTimestamp(tt.raw)
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	for _, raw := range []string{"", "   ", "yesterday", "2024-13-45T00:00:00Z", "-5"} {
		assert.Nil(t, ParseTimestamp(raw), "%q should not parse", raw)
	}
}

func TestIsStale(t *testing.T) {
	older := ts(t, "2024-05-01T10:00:00Z")
	newer := ts(t, "2024-05-01T10:00:01Z")
	same := ts(t, "2024-05-01T12:00:00+02:00")

	t.Run("never synced is stale", func(t *testing.T) {
		assert.True(t, IsStale(older, nil, false))
		assert.True(t, IsStale(nil, nil, false))
	})

	t.Run("missing remote timestamp is stale", func(t *testing.T) {
		assert.True(t, IsStale(nil, older, false))
	})

	t.Run("strictly newer remote is stale", func(t *testing.T) {
		assert.True(t, IsStale(newer, older, false))
	})

	t.Run("equal timestamps are fresh", func(t *testing.T) {
		assert.False(t, IsStale(same, older, false))
	})

	t.Run("older remote is fresh", func(t *testing.T) {
		assert.False(t, IsStale(older, newer, false))
	})

	t.Run("force overrides equal timestamps", func(t *testing.T) {
		assert.True(t, IsStale(same, older, true))
		assert.True(t, IsStale(older, newer, true))
	})
}

func TestSyncStamp(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.FixedZone("CEST", 7200))
	remote := ts(t, "2024-05-01T10:00:00Z")

	assert.Equal(t, *remote, SyncStamp(remote, now))
	assert.True(t, now.Equal(SyncStamp(nil, now)))
	assert.Equal(t, time.UTC, SyncStamp(nil, now).Location())
}

func TestStampPrecision(t *testing.T) {
	remote := ts(t, "2024-05-01T10:20:30.123456789Z")

	stamp := SyncStamp(remote, time.Now())
	assert.Equal(t, time.Date(2024, 5, 1, 10, 20, 30, 123000000, time.UTC), stamp)

	// A datetime(3) column may hand back .123 or .124 for .123456789; neither
	// makes the unchanged record stale again.
	for _, ms := range []int{123, 124} {
		stored := time.Date(2024, 5, 1, 10, 20, 30, ms*int(time.Millisecond), time.UTC)
		assert.False(t, IsStale(remote, &stored, false), "stored .%d", ms)
	}

	stored := stamp
	later := ts(t, "2024-05-01T10:20:30.124000001Z")
	assert.True(t, IsStale(later, &stored, false), "a newer millisecond is stale")

	now := time.Date(2024, 6, 1, 0, 0, 0, 987654321, time.UTC)
	assert.Equal(t, 987000000, SyncStamp(nil, now).Nanosecond())
}
