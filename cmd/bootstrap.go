package cmd

import (
	"fmt"
	"io"

	"catalog-sync/core/config"
	"catalog-sync/core/database"
	"catalog-sync/core/lock"
	"catalog-sync/core/logger"
	"catalog-sync/core/storage"
	"catalog-sync/feature/catalog/models"
	"catalog-sync/feature/catalog/passes"
	"catalog-sync/feature/catalog/remote"
	"catalog-sync/feature/catalog/store"
	catalogsync "catalog-sync/feature/catalog/sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deps is everything a command may need, built from one configuration.
type deps struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	storage storage.Client
	snaps   *remote.Snapshots
	store   *store.Store
	locker  lock.Locker
	runner  *catalogsync.Runner
}

// loadBase loads the configuration and creates the logger.
func loadBase() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logg, nil
}

// connect opens the database and applies the catalog migrations.
func connect(cfg *config.Config, logg *zap.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := models.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate catalog schema: %w", err)
	}
	logg.Info("Connected to catalog database", zap.String("driver", cfg.Database.Driver))
	return db, nil
}

// bootstrap validates the configuration and wires the full sync stack.
// A *reconcile.ConfigurationError is returned unwrapped so callers can exit on it.
func bootstrap() (*deps, error) {
	cfg, logg, err := loadBase()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := connect(cfg, logg)
	if err != nil {
		return nil, err
	}

	objects, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	snaps := remote.NewSnapshots(objects, cfg.Storage.Bucket, cfg.Sync.Snapshot.Prefix)

	locker, err := lock.New(cfg.Lock)
	if err != nil {
		return nil, fmt.Errorf("failed to create run lock: %w", err)
	}

	transport := remote.NewTransport(cfg.Remote,
		remote.WithLogger(logg),
		remote.WithSnapshots(snaps, cfg.Sync.Snapshot.Archive, cfg.Sync.Snapshot.Replay),
	)
	fetchers := passes.NewFetchers(
		remote.NewMarketClient(cfg.Remote, transport),
		remote.NewDevClient(cfg.Remote, transport),
	)

	st := store.New(db)
	runner := catalogsync.NewRunner(passes.All(fetchers, st), st, locker, cfg.Sync, logg)

	return &deps{
		cfg:     cfg,
		log:     logg,
		db:      db,
		storage: objects,
		snaps:   snaps,
		store:   st,
		locker:  locker,
		runner:  runner,
	}, nil
}

// close releases the lock backend connection.
func (d *deps) close() {
	if c, ok := d.locker.(io.Closer); ok {
		if err := c.Close(); err != nil {
			d.log.Warn("Failed to close run lock", zap.Error(err))
		}
	}
	_ = d.log.Sync()
}
