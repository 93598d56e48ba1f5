package catalog

import (
	"context"
	"strings"

	"catalog-sync/feature/catalog/models"
	"catalog-sync/feature/catalog/store"
	catalogsync "catalog-sync/feature/catalog/sync"

	"go.uber.org/zap"
)

// Service exposes the sync runner and the run history.
type Service struct {
	runner *catalogsync.Runner
	store  *store.Store
	logger *zap.Logger
}

// NewService creates a new catalog service.
func NewService(runner *catalogsync.Runner, st *store.Store, logger *zap.Logger) *Service {
	return &Service{runner: runner, store: st, logger: logger}
}

// BuildRequest turns the trigger parameters into a run request. An empty pass
// list is a full run; force applies to every selected pass.
func BuildRequest(passList string, force bool) catalogsync.Request {
	var names []string
	for _, name := range strings.Split(passList, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return catalogsync.FullRun(force)
	}

	req := catalogsync.Request{Passes: names}
	if force {
		req.Force = names
	}
	return req
}

// Trigger starts a run in the background and returns its id.
func (s *Service) Trigger(ctx context.Context, req catalogsync.Request) (string, error) {
	return s.runner.Start(ctx, req)
}

// Status returns the live runner state.
func (s *Service) Status() catalogsync.Status {
	return s.runner.Status()
}

// Runs returns the newest recorded pass summaries.
func (s *Service) Runs(ctx context.Context, limit int) ([]models.SyncRun, error) {
	return s.store.RecentRuns(ctx, limit)
}
