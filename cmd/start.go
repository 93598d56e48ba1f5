package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"catalog-sync/core/loader"
	"catalog-sync/core/logger"
	"catalog-sync/core/middleware/auth"
	"catalog-sync/core/middleware/rayid"
	"catalog-sync/core/reconcile"
	"catalog-sync/feature/catalog"
	catalogsync "catalog-sync/feature/catalog/sync"
	"catalog-sync/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync scheduler and the HTTP API",
	Long: `Runs every pass once (prices forced), then the price pass on every tick.
The HTTP API exposes run control, run history and integrity checks.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Configuration, logger, database, storage, lock and passes
		d, err := bootstrap()
		if err != nil {
			if reconcile.IsFatal(err) {
				log.Fatalf("Invalid configuration: %v", err)
			}
			log.Fatalf("Failed to start: %v", err)
		}
		defer d.close()
		zap.ReplaceGlobals(d.log)
		logg := d.log

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// 2. Scheduler
		scheduler := catalogsync.NewScheduler(d.runner, d.cfg.Sync, logg)
		done := make(chan struct{})
		go func() {
			defer close(done)
			scheduler.Run(ctx)
		}()

		// 3. HTTP API
		var app *fiber.App
		if d.cfg.Server.Enabled {
			app = fiber.New(fiber.Config{
				DisableStartupMessage: true, // We will log our own startup message
			})

			mgr := loader.NewManager()
			mgr.Register(catalog.NewFeature(d.runner, d.store, logg))
			mgr.Register(integrity.NewFeature(d.storage, d.snaps, d.db, logg))

			// RayID must be first to trace everything
			app.Use(rayid.New())

			app.Use(func(c *fiber.Ctx) error {
				l := logger.WithRayID(logg, c)
				l.Info("Request started",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.String("ip", c.IP()),
				)
				err := c.Next()
				if err != nil {
					l.Error("Request error", zap.Error(err))
				}
				return err
			})

			app.Use(auth.New(auth.Config{ApiKey: d.cfg.Server.ApiKey}))

			loaded, err := mgr.LoadAll(app)
			if err != nil {
				logg.Fatal("Failed to load features", zap.Error(err))
			}
			logg.Info("Features loaded", zap.Strings("features", loaded))

			go func() {
				logg.Info("Starting server", zap.String("address", d.cfg.Server.Address()))
				if err := app.Listen(d.cfg.Server.Address()); err != nil {
					logg.Fatal("Server failed to start", zap.Error(err))
				}
			}()
		}

		// 4. Graceful Shutdown
		<-ctx.Done()
		logg.Info("Shutting down...")
		if app != nil {
			_ = app.Shutdown()
		}
		<-done
		d.runner.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
