package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/nutrily/rationer/schema"
)

// csvHeader is the catalog interchange format: product name, the seven
// base nutrient values per 100 g, derived kcal, then serving constraints.
var csvHeader = []string{
	"Product",
	"Protein",
	"SaturatedFat",
	"UnsaturatedFat",
	"SimpleCarbs",
	"ComplexCarbs",
	"SolubleFiber",
	"InsolubleFiber",
	"Kcal",
	"MaxPortions",
	"Step",
}

// ReadProductsCSV parses a catalog CSV. The kcal column is ignored and
// recomputed from the base components, so a hand-edited file can never
// carry an inconsistent calorie count into the system.
func ReadProductsCSV(r io.Reader) ([]schema.Product, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog CSV is empty")
	}
	if len(records[0]) != len(csvHeader) {
		return nil, fmt.Errorf("catalog CSV header has %d columns, want %d", len(records[0]), len(csvHeader))
	}

	products := make([]schema.Product, 0, len(records)-1)
	for i, record := range records[1:] {
		line := i + 2
		if len(record) != len(csvHeader) {
			return nil, fmt.Errorf("line %d: %d columns, want %d", line, len(record), len(csvHeader))
		}

		var p schema.Product
		p.Name = record[0]
		if p.Name == "" {
			return nil, fmt.Errorf("line %d: empty product name", line)
		}

		fields := []struct {
			dst *float64
			col int
		}{
			{&p.PerHundredGrams[schema.Protein], 1},
			{&p.PerHundredGrams[schema.SaturatedFat], 2},
			{&p.PerHundredGrams[schema.UnsaturatedFat], 3},
			{&p.PerHundredGrams[schema.SimpleCarbs], 4},
			{&p.PerHundredGrams[schema.ComplexCarbs], 5},
			{&p.PerHundredGrams[schema.SolubleFiber], 6},
			{&p.PerHundredGrams[schema.InsolubleFiber], 7},
			{&p.MaxPortions, 9},
			{&p.StepGrams, 10},
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(record[f.col], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %q: %w", line, csvHeader[f.col], err)
			}
			*f.dst = v
		}

		p.PerHundredGrams = p.PerHundredGrams.WithDerivedCalories()
		products = append(products, p)
	}
	return products, nil
}

// WriteProductsCSV writes the catalog in the interchange format, with the
// kcal column derived.
func WriteProductsCSV(w io.Writer, products []schema.Product) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, p := range products {
		v := p.PerHundredGrams
		record := []string{
			p.Name,
			formatFloat(v[schema.Protein]),
			formatFloat(v[schema.SaturatedFat]),
			formatFloat(v[schema.UnsaturatedFat]),
			formatFloat(v[schema.SimpleCarbs]),
			formatFloat(v[schema.ComplexCarbs]),
			formatFloat(v[schema.SolubleFiber]),
			formatFloat(v[schema.InsolubleFiber]),
			formatFloat(schema.DeriveCalories(v)),
			formatFloat(p.MaxPortions),
			formatFloat(p.StepGrams),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write product %q: %w", p.Name, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
