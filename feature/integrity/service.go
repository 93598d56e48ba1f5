package integrity

import (
	"context"

	"catalog-sync/core/storage"
	"catalog-sync/feature/catalog/remote"
	"catalog-sync/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	client storage.Client
	snaps  *remote.Snapshots
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(client storage.Client, snaps *remote.Snapshots, db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		snaps:  snaps,
		db:     db,
		logger: logger,
	}
}

// CheckSchema compares the catalog tables with the models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db)
}

// CheckData counts orphaned rows and items the given pass never wrote.
func (s *Service) CheckData(ctx context.Context, pass string) (*checks.DataReport, error) {
	return checks.CheckData(ctx, s.db, pass)
}

// CheckStructure returns the snapshot folders missing from the bucket.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	return checks.CheckStructure(ctx, s.client, s.snaps.Bucket(), checks.SnapshotFolders(s.snaps))
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	return checks.FixStructure(ctx, s.client, s.snaps.Bucket(), s.logger, missing)
}

// CheckSnapshots returns the newest archived payload of each dataset.
func (s *Service) CheckSnapshots(ctx context.Context) (*checks.SnapshotReport, error) {
	return checks.CheckSnapshots(ctx, s.snaps)
}
