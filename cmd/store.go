package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/internal/iocache"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeSetup loads the configuration needed for store operations and opens the store.
// This is used by commands that need store access without a project.
func storeSetup(cmd *cobra.Command, _ []string) error {
	if err := storeConfigSetup(cmd, nil); err != nil {
		return err
	}
	if err := iocache.InitStores(cfg.StoreBackend, cfg.CachePath, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("failed to initialize index store: %w", err)
	}
	return nil
}

// storeConfigSetup validates the store configuration without opening the store,
// so migrations can run on a fresh database.
func storeConfigSetup(cmd *cobra.Command, _ []string) error {
	if err := readConfig(cmd); err != nil {
		return err
	}
	cfg.OutputFile = input.OutputFile
	return contract.ProcessStoreInputs(cfg, input)
}

// storeCmd focused on index store management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by the index commands. This avoids project
// validation for simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the index store",
	Long: `Manage the store that holds the indexes of every project.

Each project and revision source has its own index, so one store can be shared by
many projects. The default file backend keeps JSON files below the cache path.

Supported backends: file (default), SQLite, MySQL, PostgreSQL

Subcommands:
  status  - Show store statistics and connection info
  clear   - Remove every index
  export  - Export indexes to Parquet for analytics
  migrate - Run database schema migrations

Examples:
  # Check store status
  codetrend store status

  # Use a shared PostgreSQL store
  CODETREND_STORE_BACKEND=postgresql CODETREND_STORE_DB_CONNECT="host=db dbname=codetrend ..." codetrend store status`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show the backend, the number of indexed revisions per project, the date range
they cover and the storage size.`,
	PreRunE: storeSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		status, err := storeManager.GetStatus()
		if err != nil {
			return fmt.Errorf("failed to get store status: %w", err)
		}
		iocache.PrintStoreStatus(os.Stdout, status)
		return nil
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every index from the store",
	Long: `Delete every indexed revision of every project from the configured backend.

For the file backend: Deletes the index directories below the cache path
For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the index tables

WARNING: This action cannot be undone. Consider exporting data first.`,
	PreRunE: storeConfigSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := iocache.ClearStore(cfg.StoreBackend, cfg.CachePath, cfg.StoreDBConnect); err != nil {
			return fmt.Errorf("failed to clear store: %w", err)
		}
		fmt.Println("Store cleared successfully.")
		return nil
	},
}

// storeExportCmd exports the store to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export indexed revisions and metric values to Parquet",
	Long: `Export every index to Parquet for use with analytics tools.

Exports two datasets:
- <output-file>.revisions.parquet - one row per indexed revision and project
- <output-file>.metrics.parquet   - one row per revision, path and metric value

Requires: --output-file parameter

Examples:
  # Export and query with DuckDB
  codetrend store export --output-file codetrend
  duckdb -c "SELECT * FROM read_parquet('codetrend.metrics.parquet') LIMIT 10"`,
	PreRunE: storeSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return iocache.ExecuteStoreExport(os.Stdout, iocache.Manager, cfg.OutputFile)
	},
}

// storeMigrateCmd runs database migrations for a SQL store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage the schema version of a SQL index store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  codetrend store migrate --store-backend sqlite

  # Rollback every migration
  codetrend store migrate --store-backend sqlite --target-version 0`,
	PreRunE: storeConfigSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return iocache.MigrateStore(cfg.StoreBackend, cfg.CachePath, cfg.StoreDBConnect, viper.GetInt("target-version"))
	},
}
