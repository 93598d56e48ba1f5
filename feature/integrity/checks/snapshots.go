package checks

import (
	"context"
	"errors"

	"catalog-sync/feature/catalog/remote"
)

// SnapshotReport lists the newest archived payload of each dataset.
type SnapshotReport struct {
	Latest  map[string]string `json:"latest"`
	Missing []string          `json:"missing"`
}

// CheckSnapshots finds the newest snapshot of every dataset. Datasets that were
// never archived are reported missing; replay would fail for them.
func CheckSnapshots(ctx context.Context, snaps *remote.Snapshots) (*SnapshotReport, error) {
	report := &SnapshotReport{Latest: map[string]string{}, Missing: []string{}}

	for _, ds := range remote.Datasets() {
		key, err := snaps.LatestKey(ctx, ds)
		if errors.Is(err, remote.ErrNoSnapshot) {
			report.Missing = append(report.Missing, ds)
			continue
		}
		if err != nil {
			return nil, err
		}
		report.Latest[ds] = key
	}

	return report, nil
}
