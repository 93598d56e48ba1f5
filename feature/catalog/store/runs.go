package store

import (
	"context"
	"fmt"

	"catalog-sync/core/reconcile"
	"catalog-sync/feature/catalog/models"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
)

// RecordRun persists the summary of one pass of run runID.
func (s *Store) RecordRun(ctx context.Context, runID string, summary *reconcile.Summary) error {
	failures := summary.Failures
	if failures == nil {
		failures = []reconcile.RecordFailure{}
	}
	raw, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("failed to encode failures: %w", err)
	}

	run := models.SyncRun{
		RunID:      runID,
		Pass:       summary.Pass,
		Forced:     summary.Forced,
		StartedAt:  summary.StartedAt.UTC(),
		FinishedAt: summary.FinishedAt.UTC(),
		DurationMs: summary.Duration().Milliseconds(),
		Total:      summary.Total,
		Inserted:   summary.Inserted,
		Updated:    summary.Updated,
		Unchanged:  summary.Unchanged,
		Failed:     summary.Failed,
		Failures:   datatypes.JSON(raw),
	}
	if summary.Err != nil {
		run.Error = truncate(summary.Err.Error(), 1024)
	}

	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return fmt.Errorf("failed to record %s run: %w", summary.Pass, err)
	}
	return nil
}

// RecentRuns returns the newest pass rows, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var runs []models.SyncRun
	err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
