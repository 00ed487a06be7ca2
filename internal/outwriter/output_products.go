package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/nutrily/rationer/internal/catalog"
	"github.com/nutrily/rationer/internal/contract"
	"github.com/nutrily/rationer/internal/parquet"
	"github.com/nutrily/rationer/schema"
)

// WriteProductList outputs the catalog, dispatching based on the output
// format configured. CSV output reuses the catalog interchange format so
// an export can be imported back unchanged.
func WriteProductList(products []schema.Product, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, products)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return catalog.WriteProductsCSV(w, products)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		return parquet.WriteProductsParquet(products, cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProductTable(w, products, cfg, fmtFloat)
		}, "Wrote table")
	}
}

// writeProductTable renders the catalog as a table with one column per
// nutrient kind plus the serving constraints.
func writeProductTable(w io.Writer, products []schema.Product, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Product"}
	for _, kind := range schema.Nutrients() {
		headers = append(headers, kind.Label())
	}
	headers = append(headers, "Step", "Max portions")
	table.Header(headers)
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg)
	var rows [][]string
	for _, p := range products {
		row := []string{contract.TruncateName(p.Name, nameWidth)}
		for _, kind := range schema.Nutrients() {
			row = append(row, fmtFloat(p.PerHundredGrams[kind]))
		}
		row = append(row, fmtFloat(p.StepGrams), fmtFloat(p.MaxPortions))
		rows = append(rows, row)
	}
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to add product rows: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render product table: %w", err)
	}

	fmt.Fprintf(w, "\n📦 %s products in catalog\n", strconv.Itoa(len(products)))
	return nil
}
