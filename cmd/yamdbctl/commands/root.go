// Package commands implements the yamdbctl subcommands.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yamdb/yamdb-server/internal/config"
	"github.com/yamdb/yamdb-server/internal/logger"
	"github.com/yamdb/yamdb-server/internal/store/sqlite"
)

var (
	// Global flags
	dataDir  string
	dbPath   string
	envFile  string
	logLevel string
)

// rootCmd represents the base command
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yamdbctl",
		Short: "YaMDb maintenance tool",
		Long: `yamdbctl manages a YaMDb database outside the API server.

Commands:
  loadcsv          - Replace catalog tables from CSV exports
  createsuperuser  - Create an account with superuser rights`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for the database and auth key (default: ~/.yamdb)")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default: {data-dir}/yamdb.db)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newLoadCSVCmd(), newCreateSuperuserCmd())
	return cmd
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves configuration the same way the server does, with the
// global flags taking priority.
func loadConfig() (*config.Config, error) {
	args := []string{"--env-file", envFile, "--log-level", logLevel}
	if dataDir != "" {
		args = append(args, "--data-dir", dataDir)
	}
	if dbPath != "" {
		args = append(args, "--db", dbPath)
	}
	return config.Load(args)
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logger.New(logger.Config{
		Writer:      w,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})
}

// openStore loads configuration and opens the configured database.
func openStore(cmd *cobra.Command) (*sqlite.Store, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := newLogger(cfg, cmd.ErrOrStderr())

	if err := os.MkdirAll(filepath.Dir(cfg.Data.DatabasePath), 0o750); err != nil {
		return nil, nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sqlite.Open(cfg.Data.DatabasePath, log)
	if err != nil {
		return nil, nil, err
	}
	return db, log, nil
}
