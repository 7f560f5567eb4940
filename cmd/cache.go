package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/healthtab/internal/contract"
	"github.com/huangsam/healthtab/internal/iocache"
	"github.com/spf13/cobra"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	backend, connStr, err := backendSetup("cache-backend", "cache-db-connect")
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	// Initialize caching with the loaded config (no history tracking for cache commands)
	if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr

	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by the table commands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the extraction cache (improves performance)",
	Long: `Manage the cache of parsed exports that speeds up repeated runs.

Healthtab keys each parsed export by a hash of its contents, so running several
commands against the same export.xml parses the document only once.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  HEALTHTAB_CACHE_BACKEND=sqlite healthtab cache status

  # Clear cache
  HEALTHTAB_CACHE_BACKEND=sqlite healthtab cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached extractions",
	Long: `Delete all cached extractions from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Deletes every row of the cache table`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		if err := iocache.ClearCache(cfg.CacheBackend, sqlitePath(cfg.CacheDBConnect, contract.GetCacheDBFilePath()), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the extraction cache.

Displays:
- Backend type and connection status
- Total number of cached entries
- Last and oldest cache entry timestamps
- Cache database size`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetExtractStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", errors.New("caching is disabled. Set --cache-backend"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
