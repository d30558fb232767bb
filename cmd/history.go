package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/huangsam/devian-archive/internal/history"
	"github.com/huangsam/devian-archive/internal/outwriter"
	"github.com/huangsam/devian-archive/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadHistoryBackend reads and validates the backend settings from viper.
func loadHistoryBackend() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend, err := contract.ParseHistoryBackend(viper.GetString("history-backend"))
	if err != nil {
		return "", "", err
	}
	connStr := viper.GetString("history-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without root detection.
func historySetup() error {
	backend, connStr, err := loadHistoryBackend()
	if err != nil {
		return err
	}

	// Get output-related config values (used by list and export)
	format := schema.OutputMode(strings.ToLower(viper.GetString("format")))
	if format == "" {
		format = schema.TextOut
	}

	if err := history.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Format = format
	cfg.Width = viper.GetInt("width")
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads the configuration needed for migrations.
// It does NOT initialize stores or create tables, so migrations can run
// on a fresh database.
func historyMigrateSetup() error {
	backend, connStr, err := loadHistoryBackend()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyMigrateSetupWrapper wraps historyMigrateSetup to provide PreRunE for migrate.
func historyMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return historyMigrateSetup()
}

// requireHistoryStore fails unless a history backend is enabled.
func requireHistoryStore() contract.HistoryStore {
	store := history.Manager.GetHistoryStore()
	if store == nil || cfg.HistoryBackend == schema.NoneBackend {
		contract.LogFatal("History is disabled", fmt.Errorf("set --history-backend to sqlite, mysql or postgresql"))
	}
	return store
}

// historyCmd focused on run history management.
//
// Note: history subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup used by archive commands. This avoids root detection
// for simple database operations.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the archive run history",
	Long: `Manage the optional record of archive runs.

When a history backend is set, every archive run stores:
- Run metadata (root, start/end time, archive path, configuration)
- Every archived file with its size and modification time

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show history statistics
  list    - List recorded runs
  export  - Export runs and files to Parquet
  clear   - Remove all history data
  migrate - Run database schema migrations

Examples:
  # Check history status
  devian-archive history status --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  devian-archive history export --history-backend sqlite --output-file history`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show the backend, the number of recorded runs, the last run, the total
number of files and bytes archived, and the size of each history table.

Examples:
  devian-archive history status --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := requireHistoryStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		history.PrintStatus(os.Stdout, status)
	},
}

// historyListCmd lists the recorded runs.
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded archive runs",
	Long: `List every recorded run, newest first.

Examples:
  devian-archive history list --history-backend sqlite
  devian-archive history list --history-backend sqlite --format json`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runs, err := requireHistoryStore().GetAllRuns()
		if err != nil {
			contract.LogFatal("Failed to list history runs", err)
		}
		if err := outwriter.NewOutWriter().WriteRuns(runs, cfg); err != nil {
			contract.LogFatal("Failed to write history runs", err)
		}
	},
}

// historyExportCmd exports history data to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for analytics",
	Long: `Export all stored history to Parquet format.

Exports two datasets into the --output-file directory:
- runs.parquet  - one row per archive run
- files.parquet - one row per archived file

Requires: --output-file parameter

Examples:
  devian-archive history export --history-backend sqlite --output-file history
  duckdb -c "SELECT * FROM read_parquet('history/runs.parquet') LIMIT 10"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := history.Export(os.Stdout, requireHistoryStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyClearCmd clears the history data.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded archive history",
	Long: `Delete all stored runs and archived file rows.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  devian-archive history export --history-backend sqlite --output-file backup
  devian-archive history clear --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		history.CloseStores()
		if err := history.Clear(cfg.HistoryBackend, contract.GetHistoryDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  devian-archive history migrate --history-backend sqlite

  # Rollback to the initial state
  devian-archive history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := history.Migrate(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println("Migrations applied successfully.")
	},
}
