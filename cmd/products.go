package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nutrily/rationer/internal/catalog"
	"github.com/nutrily/rationer/internal/contract"
	"github.com/nutrily/rationer/internal/outwriter"
	"github.com/nutrily/rationer/schema"
)

// productsCmd groups catalog entry management.
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Manage the product catalog",
	Long: `Manage the products the solver can draw portions from.

Each product carries nutrient values per 100 grams, a serving step in
grams and a maximum number of portions per day. Calories are derived
from the macros on every write, so they can never drift out of sync.

Subcommands:
  list   - Show all products
  add    - Add a new product
  update - Change an existing product
  remove - Delete a product
  import - Replace the catalog from a CSV file
  export - Write the catalog to a CSV file

Examples:
  # Inspect the catalog
  rationer products list

  # Add oats: 13.5g protein per 100g, 30g serving step, up to 3 portions
  rationer products add oats --protein 13.5 --complex-carbs 55 \
    --unsat-fat 5.9 --insoluble-fiber 6.5 --step 30 --max-portions 3`,
}

// nutrientFlagSpecs pairs each product flag with the vector slot it sets.
var nutrientFlagSpecs = []struct {
	flag string
	kind schema.Nutrient
}{
	{"protein", schema.Protein},
	{"sat-fat", schema.SaturatedFat},
	{"unsat-fat", schema.UnsaturatedFat},
	{"simple-carbs", schema.SimpleCarbs},
	{"complex-carbs", schema.ComplexCarbs},
	{"soluble-fiber", schema.SolubleFiber},
	{"insoluble-fiber", schema.InsolubleFiber},
}

// registerProductFlags declares the per-product flags on add and update.
// These are read directly from the flag set, not through Viper, so they
// never collide with the solve target flags of the same names.
func registerProductFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("protein", 0, "Protein per 100g")
	cmd.Flags().Float64("sat-fat", 0, "Saturated fat per 100g")
	cmd.Flags().Float64("unsat-fat", 0, "Unsaturated fat per 100g")
	cmd.Flags().Float64("simple-carbs", 0, "Simple carbohydrates per 100g")
	cmd.Flags().Float64("complex-carbs", 0, "Complex carbohydrates per 100g")
	cmd.Flags().Float64("soluble-fiber", 0, "Soluble fiber per 100g")
	cmd.Flags().Float64("insoluble-fiber", 0, "Insoluble fiber per 100g")
	cmd.Flags().Float64("step", 0, "Serving step in grams (must be > 0)")
	cmd.Flags().Float64("max-portions", 0, "Maximum portions per day")
}

// productFromFlags builds a product from flags, starting from base and
// overriding only the flags that were set on the command line.
func productFromFlags(cmd *cobra.Command, name string, base schema.Product) (schema.Product, error) {
	p := base
	p.Name = name

	for _, spec := range nutrientFlagSpecs {
		if !cmd.Flags().Changed(spec.flag) {
			continue
		}
		v, err := cmd.Flags().GetFloat64(spec.flag)
		if err != nil {
			return schema.Product{}, err
		}
		if v < 0 {
			return schema.Product{}, fmt.Errorf("--%s must be >= 0, got %v", spec.flag, v)
		}
		p.PerHundredGrams[spec.kind] = v
	}
	p.PerHundredGrams = p.PerHundredGrams.WithDerivedCalories()

	if cmd.Flags().Changed("step") {
		v, err := cmd.Flags().GetFloat64("step")
		if err != nil {
			return schema.Product{}, err
		}
		p.StepGrams = v
	}
	if cmd.Flags().Changed("max-portions") {
		v, err := cmd.Flags().GetFloat64("max-portions")
		if err != nil {
			return schema.Product{}, err
		}
		p.MaxPortions = v
	}

	if p.StepGrams <= 0 {
		return schema.Product{}, fmt.Errorf("--step must be > 0, got %v", p.StepGrams)
	}
	if p.MaxPortions < 0 {
		return schema.Product{}, fmt.Errorf("--max-portions must be >= 0, got %v", p.MaxPortions)
	}
	return p, nil
}

// productsListCmd shows the catalog in the configured output format.
var productsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "Show all products in the catalog",
	PreRunE: sharedSetupWrapper,
	PostRun: closeStore,
	Run: func(_ *cobra.Command, _ []string) {
		products, err := store.ListProducts(rootCtx)
		if err != nil {
			contract.LogFatal("Cannot list products", err)
		}
		if err := outwriter.NewOutWriter().WriteProducts(products, cfg); err != nil {
			contract.LogFatal("Cannot write products", err)
		}
	},
}

// productsAddCmd adds a new product.
var productsAddCmd = &cobra.Command{
	Use:     "add <name>",
	Short:   "Add a new product to the catalog",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	PostRun: closeStore,
	Run: func(cmd *cobra.Command, args []string) {
		product, err := productFromFlags(cmd, args[0], schema.Product{})
		if err != nil {
			contract.LogFatal("Invalid product", err)
		}
		if err := store.AddProduct(rootCtx, product); err != nil {
			contract.LogFatal("Cannot add product", err)
		}
		fmt.Printf("Added %q to the catalog.\n", product.Name)
	},
}

// productsUpdateCmd changes an existing product. Only the flags given on
// the command line are changed; the rest keep their stored values.
var productsUpdateCmd = &cobra.Command{
	Use:     "update <name>",
	Short:   "Change an existing product",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	PostRun: closeStore,
	Run: func(cmd *cobra.Command, args []string) {
		existing, err := store.GetProduct(rootCtx, args[0])
		if err != nil {
			contract.LogFatal("Cannot load product", err)
		}
		product, err := productFromFlags(cmd, args[0], existing)
		if err != nil {
			contract.LogFatal("Invalid product", err)
		}
		if err := store.UpdateProduct(rootCtx, args[0], product); err != nil {
			contract.LogFatal("Cannot update product", err)
		}
		fmt.Printf("Updated %q.\n", product.Name)
	},
}

// productsRemoveCmd deletes a product.
var productsRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Short:   "Delete a product from the catalog",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	PostRun: closeStore,
	Run: func(_ *cobra.Command, args []string) {
		if err := store.DeleteProduct(rootCtx, args[0]); err != nil {
			contract.LogFatal("Cannot remove product", err)
		}
		fmt.Printf("Removed %q from the catalog.\n", args[0])
	},
}

// productsImportCmd replaces the catalog from a CSV file.
var productsImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Replace the catalog with products from a CSV file",
	Long: `Replace the whole catalog with the products in a CSV file.

The file must carry the same columns 'products export' writes. The kcal
column is accepted for readability but ignored on import; calories are
always recomputed from the macros.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	PostRun: closeStore,
	Run: func(_ *cobra.Command, args []string) {
		file, err := os.Open(args[0])
		if err != nil {
			contract.LogFatal("Cannot open CSV file", err)
		}
		defer func() { _ = file.Close() }()

		products, err := catalog.ReadProductsCSV(file)
		if err != nil {
			contract.LogFatal("Cannot parse CSV file", err)
		}
		if err := store.ReplaceProducts(rootCtx, products); err != nil {
			contract.LogFatal("Cannot import products", err)
		}
		fmt.Printf("Imported %d products.\n", len(products))
	},
}

// productsExportCmd writes the catalog to a CSV file or stdout.
var productsExportCmd = &cobra.Command{
	Use:     "export [file.csv]",
	Short:   "Write the catalog to a CSV file (stdout when omitted)",
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	PostRun: closeStore,
	Run: func(_ *cobra.Command, args []string) {
		products, err := store.ListProducts(rootCtx)
		if err != nil {
			contract.LogFatal("Cannot list products", err)
		}

		out := os.Stdout
		if len(args) == 1 {
			file, err := os.Create(args[0])
			if err != nil {
				contract.LogFatal("Cannot create CSV file", err)
			}
			defer func() { _ = file.Close() }()
			out = file
		}
		if err := catalog.WriteProductsCSV(out, products); err != nil {
			contract.LogFatal("Cannot export products", err)
		}
		if out != os.Stdout {
			fmt.Fprintf(os.Stderr, "Exported %d products to %s.\n", len(products), args[0])
		}
	},
}

func init() {
	registerProductFlags(productsAddCmd)
	registerProductFlags(productsUpdateCmd)
}
