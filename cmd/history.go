package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/healthtab/internal/contract"
	"github.com/huangsam/healthtab/internal/iocache"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without full shared setup.
func historySetup() error {
	backend, connStr, err := backendSetup("history-backend", "history-db-connect")
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}

	// Initialize stores with the loaded config (no caching for history commands)
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads minimal configuration needed for migrate operations.
// It does NOT initialize stores or create tables, so migrations can run on a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := backendSetup("history-backend", "history-db-connect")
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on import history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage import history tracking and exports",
	Long: `Manage the history of imports used for trend tracking and reporting.

When enabled, healthtab records every parse of an export, storing:
- Run metadata (source path, timestamps, duration, configuration)
- Record, workout and skipped counts
- Per record type count, mean, min, max and unit

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show history tracking statistics
  export  - Export history to Parquet for analytics
  clear   - Remove all history
  migrate - Run database schema migrations

Examples:
  # Record history while converting
  healthtab convert export.xml --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  healthtab history export --history-backend sqlite --output-file history`,
}

// historyClearCmd clears the import history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all import history",
	Long: `Delete all stored import runs and type summaries.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  healthtab history export --output-file backup
  healthtab history clear`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		dbFile := sqlitePath(cfg.HistoryDBConnect, contract.GetHistoryDBFilePath())
		if err := iocache.ClearHistory(cfg.HistoryBackend, dbFile, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear import history", err)
		}
		fmt.Println("Import history cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display import history statistics and connection details",
	Long: `Show detailed information about import history tracking.

Displays:
- Backend type and connection status
- Total number of import runs stored
- Last and oldest import run timestamps
- Total records seen across all runs
- Database table sizes`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			contract.LogFatal("Failed to get history status", iocache.ErrHistoryDisabled)
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyExportCmd exports the import history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export import history to Parquet for BI tools and analytics",
	Long: `Export all stored import history to Parquet format.

Writes two files next to --output-file:
- <output-file>.import_runs.parquet    - one row per import run
- <output-file>.type_summaries.parquet - one row per run and record type

Requires: --output-file parameter

Examples:
  healthtab history export --output-file history
  duckdb -c "SELECT * FROM read_parquet('history.type_summaries.parquet') LIMIT 10"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(iocache.Manager.GetHistoryStore(), cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export import history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the import history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  healthtab history migrate --history-backend sqlite

  # Rollback to the initial state
  healthtab history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion, os.Stdout); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
