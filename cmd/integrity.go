package cmd

import (
	"context"
	"fmt"

	"catalog-sync/core/storage"
	"catalog-sync/feature/catalog/passes"
	"catalog-sync/feature/catalog/remote"
	"catalog-sync/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixFlag  bool
	dataPass string
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the catalog and the snapshot archive",
	Long:  `Checks the catalog schema and rows, the snapshot folder structure and the newest snapshots.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return cmd.Help()
		}
		return runIntegrityChecks(cmd.Context(), checkAll)
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the catalog tables against the models",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), checkSchema)
	},
}

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Check for orphaned rows and items a pass never wrote",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), checkData)
	},
}

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix the snapshot folder structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), checkStructure)
	},
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List the newest snapshot of every dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), checkSnapshots)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(schemaCmd, dataCmd, structureCmd, snapshotsCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Fix missing folders")
	dataCmd.Flags().StringVar(&dataPass, "pass", passes.Metadata, "Pass whose cursors are checked")
}

type checkSet int

const (
	checkSchema checkSet = 1 << iota
	checkData
	checkStructure
	checkSnapshots
	checkAll = checkSchema | checkData | checkStructure | checkSnapshots
)

func runIntegrityChecks(ctx context.Context, which checkSet) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, logg, err := loadBase()
	if err != nil {
		return err
	}
	defer logg.Sync()

	db, err := connect(cfg, logg)
	if err != nil {
		return err
	}

	objects, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	snaps := remote.NewSnapshots(objects, cfg.Storage.Bucket, cfg.Sync.Snapshot.Prefix)
	svc := integrity.NewService(objects, snaps, db, logg)

	if which&checkSchema != 0 {
		logg.Info("Checking catalog schema...")
		report, err := svc.CheckSchema()
		if err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}
		if report.Matched {
			logg.Info("Catalog schema matches the models.", zap.String("driver", report.Driver))
		} else {
			for table, tbl := range report.Tables {
				if tbl.Status != "ok" {
					logg.Warn("Table drift", zap.String("table", table), zap.String("status", tbl.Status), zap.Strings("missing_columns", tbl.MissingColumns))
				}
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
		}
	}

	if which&checkData != 0 {
		pass := dataPass
		if pass == "" {
			pass = passes.Metadata
		}
		logg.Info("Checking catalog rows...", zap.String("pass", pass))
		report, err := svc.CheckData(ctx, pass)
		if err != nil {
			return fmt.Errorf("data check failed: %w", err)
		}
		if report.Clean() {
			logg.Info("Catalog rows are consistent.")
		} else {
			logg.Warn("Catalog rows need attention",
				zap.Any("orphans", report.Orphans),
				zap.Int("uncursored", report.Uncursored),
				zap.Strings("sample", report.Sample))
		}
	}

	if which&checkStructure != 0 {
		logg.Info("Checking snapshot folder structure...")
		missing, err := svc.CheckStructure(ctx)
		if err != nil {
			return fmt.Errorf("structure check failed: %w", err)
		}

		if len(missing) == 0 {
			logg.Info("Structure is intact.")
		} else {
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))

			if which == checkStructure && fixFlag {
				logg.Info("Fixing missing folders...")
				if err := svc.FixStructure(ctx, missing); err != nil {
					return fmt.Errorf("failed to fix structure: %w", err)
				}
				logg.Info("Structure fixed successfully.")
			} else if which == checkStructure {
				logg.Info("Run with --fix to create missing folders.")
			}
		}
	}

	if which&checkSnapshots != 0 {
		logg.Info("Checking snapshots...")
		report, err := svc.CheckSnapshots(ctx)
		if err != nil {
			return fmt.Errorf("snapshot check failed: %w", err)
		}
		for ds, key := range report.Latest {
			logg.Info("Latest snapshot", zap.String("dataset", ds), zap.String("object", key))
		}
		if len(report.Missing) > 0 {
			logg.Warn("Datasets without snapshots", zap.Strings("missing", report.Missing))
		}
	}

	return nil
}
