package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"catalog-sync/feature/catalog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncForce bool
	syncPass  string
)

// syncCmd runs the passes once and exits.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run the reconciliation passes once",
	Long: `Runs every pass in dependency order, or only the passes named with --pass.

Examples:
  # Full run, prices forced
  sync

  # Rewrite every record of every pass
  sync --force

  # Refresh prices and keys only
  sync --pass prices,keys`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := bootstrap()
		if err != nil {
			return err
		}
		defer d.close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		report, err := d.runner.Run(ctx, catalog.BuildRequest(syncPass, syncForce))
		if err != nil {
			return err
		}

		for _, s := range report.Passes {
			fmt.Printf("%-10s total=%d inserted=%d updated=%d unchanged=%d failed=%d duration=%s\n",
				s.Pass, s.Total, s.Inserted, s.Updated, s.Unchanged, s.Failed, s.Duration())
		}
		if report.Failed() {
			d.log.Warn("Sync finished with aborted passes", zap.Any("errors", report.Errors))
			return fmt.Errorf("%d pass(es) aborted", len(report.Errors))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "Ignore timestamps and rewrite every record")
	syncCmd.Flags().StringVar(&syncPass, "pass", "", "Comma separated passes to run (identities, metadata, types, keys, prices)")
}
