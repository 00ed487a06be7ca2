// Package cmd defines the command-line interface for rationer.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nutrily/rationer/internal/contract"
	"github.com/nutrily/rationer/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the products subcommands to the parent products command
	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsAddCmd)
	productsCmd.AddCommand(productsUpdateCmd)
	productsCmd.AddCommand(productsRemoveCmd)
	productsCmd.AddCommand(productsImportCmd)
	productsCmd.AddCommand(productsExportCmd)

	// Add the catalog subcommands to the parent catalog command
	catalogCmd.AddCommand(catalogStatusCmd)
	catalogCmd.AddCommand(catalogMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent trial workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("catalog-backend", string(schema.SQLiteBackend), "Catalog backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("catalog-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of solveCmd to Viper
	solveCmd.Flags().Float64("protein", 0, "Target protein in grams")
	solveCmd.Flags().Float64("sat-fat", 0, "Target saturated fat in grams")
	solveCmd.Flags().Float64("unsat-fat", 0, "Target unsaturated fat in grams")
	solveCmd.Flags().Float64("simple-carbs", 0, "Target simple carbohydrates in grams")
	solveCmd.Flags().Float64("complex-carbs", 0, "Target complex carbohydrates in grams")
	solveCmd.Flags().Float64("soluble-fiber", 0, "Target soluble fiber in grams")
	solveCmd.Flags().Float64("insoluble-fiber", 0, "Target insoluble fiber in grams")
	solveCmd.Flags().Int("start-alpha", contract.DefaultStartAlpha, "Lowest pacing percentage to sweep (1-100)")
	solveCmd.Flags().Int("runs", contract.DefaultRunsPerAlpha, "Randomized trials per pacing value (0-100; 0 still runs one trial)")
	solveCmd.Flags().Int64("seed", 0, "Seed for trial ordering (0 = derive from clock)")
	solveCmd.Flags().Int("max-iterations", 0, "Refinement iteration cap per trial (0 = default)")
	if err := viper.BindPFlags(solveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding solve flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListenAddr, "Address for the HTTP API to listen on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of catalogMigrateCmd to Viper
	catalogMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(catalogMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding catalog migrate flags", err)
	}
}
