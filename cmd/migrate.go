package cmd

import (
	"github.com/spf13/cobra"

	"storefront/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, gdb, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() {
			_ = db.Close(gdb)
			_ = log.Sync()
		}()

		if err := db.Migrate(gdb); err != nil {
			return err
		}
		log.Info("Schema is up to date")
		return nil
	},
}
