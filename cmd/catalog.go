package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nutrily/rationer/internal/catalog"
	"github.com/nutrily/rationer/internal/contract"
	"github.com/nutrily/rationer/schema"
)

// catalogSetup loads minimal configuration needed for catalog maintenance.
// This is used by commands that need database access without full shared
// setup and target validation.
func catalogSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("catalog-backend"))
	connStr := viper.GetString("catalog-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.CatalogBackend = backend
	cfg.CatalogDBConnect = connStr

	return nil
}

// catalogSetupWrapper wraps catalogSetup to provide PreRunE for catalog commands.
func catalogSetupWrapper(_ *cobra.Command, _ []string) error {
	return catalogSetup()
}

// catalogCmd focused on catalog storage maintenance.
//
// Note: Catalog subcommands use minimal initialization (catalogSetup)
// instead of the full sharedSetup used by solve. This avoids target
// validation and output processing for simple storage operations.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage catalog storage (backend, schema versions)",
	Long: `Manage the database that stores the product catalog.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  status  - Show catalog statistics and connection info
  migrate - Apply schema migrations

Examples:
  # Check catalog status
  rationer catalog status

  # Run migrations against a MySQL catalog
  RATIONER_CATALOG_BACKEND=mysql RATIONER_CATALOG_DB_CONNECT="..." rationer catalog migrate`,
}

// catalogStatusCmd shows catalog status.
var catalogStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display catalog statistics and connection details",
	Long: `Show detailed information about the catalog database.

Displays:
- Backend type and connection status
- Total number of stored products
- Table size where the backend reports it

Examples:
  # Check catalog status
  rationer catalog status`,
	PreRunE: catalogSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		s, err := catalog.NewStore(cfg.CatalogBackend, cfg.CatalogDBConnect)
		if err != nil {
			contract.LogFatal("Cannot open catalog", err)
		}
		defer func() { _ = s.Close() }()

		status, err := s.Status(rootCtx)
		if err != nil {
			contract.LogFatal("Cannot get catalog status", err)
		}
		printCatalogStatus(status)
	},
}

// catalogMigrateCmd applies schema migrations.
var catalogMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply catalog schema migrations",
	Long: `Apply versioned schema migrations to the catalog database.

By default this migrates to the latest version. Pass --target-version
to move to a specific version, or 0 to roll back to the initial state.

Examples:
  # Migrate to the latest schema
  rationer catalog migrate

  # Roll back everything
  rationer catalog migrate --target-version 0`,
	PreRunE: catalogSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := catalog.Migrate(cfg.CatalogBackend, cfg.CatalogDBConnect, targetVersion); err != nil {
			contract.LogFatal("Cannot run migrations", err)
		}
		fmt.Println("Migrations applied successfully.")
	},
}

// printCatalogStatus renders the status block for the catalog.
func printCatalogStatus(status schema.CatalogStatus) {
	fmt.Println("Catalog status:")
	fmt.Printf("  Backend:   %s\n", status.Backend)
	fmt.Printf("  Connected: %t\n", status.Connected)
	fmt.Printf("  Products:  %d\n", status.TotalProducts)
	if status.TableSizeBytes > 0 {
		fmt.Printf("  Size:      %d bytes\n", status.TableSizeBytes)
	}
}
