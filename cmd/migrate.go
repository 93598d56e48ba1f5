package cmd

import (
	"github.com/spf13/cobra"
)

// migrateCmd creates or updates the catalog schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the catalog schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := loadBase()
		if err != nil {
			return err
		}
		defer logg.Sync()

		if _, err := connect(cfg, logg); err != nil {
			return err
		}
		logg.Info("Catalog schema is up to date")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
