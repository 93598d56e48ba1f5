package sync

import "time"

// Config holds the schedule and parallelism of reconciliation runs.
type Config struct {
	// Interval is the period of the scheduled price-only runs.
	Interval time.Duration `mapstructure:"interval" default:"10m"`
	// Workers is the number of records reconciled in parallel within a pass.
	Workers int `mapstructure:"workers" default:"8"`
	// RunOnStart runs every pass once when the scheduler starts.
	RunOnStart bool `mapstructure:"run_on_start" default:"true"`
	// Snapshot controls archiving and replay of raw remote payloads.
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
}

// SnapshotConfig holds the raw payload archive settings.
type SnapshotConfig struct {
	// Archive stores every fetched payload in object storage.
	Archive bool `mapstructure:"archive" default:"false"`
	// Replay feeds passes from the newest archived payload instead of the network.
	Replay bool `mapstructure:"replay" default:"false"`
	// Prefix is the object prefix of the archive inside the bucket.
	Prefix string `mapstructure:"prefix" default:"snapshots"`
}
