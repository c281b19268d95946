// Package cmd holds the storefront command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/config"
	"storefront/db"
	"storefront/logger"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront catalog API",
	Long: `Storefront serves the catalog REST API: users, categories and products
with images, options and JWT authentication.

Configuration comes from the environment, an optional .env file and the
YAML file named by CONFIG_PATH.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
}

// bootstrap loads configuration, builds the logger and opens the database.
// The caller owns closing the database and syncing the logger.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error creating logger: %w", err)
	}

	gdb, err := db.Open(cfg.DB, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, err
	}
	return cfg, log, gdb, nil
}
