// Package parquet provides data structures and functions for exporting
// rationer solutions and catalogs to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/nutrily/rationer/schema"
)

// PortionRecord represents one product's assigned weight in a winning
// ration, with the trial parameters repeated per row so a file remains
// self-describing when several solutions are appended downstream.
type PortionRecord struct {
	// Product is the catalog name of the product
	Product string `parquet:"product,snappy"`

	// Grams is the assigned weight in grams
	Grams float64 `parquet:"grams,snappy"`

	// RMSE is the weighted RMSE of the whole winning ration
	RMSE float64 `parquet:"rmse,snappy"`

	// Alpha is the winning pacing value in percent
	Alpha int32 `parquet:"alpha,snappy"`

	// Run is the winning trial index within its pacing value
	Run int32 `parquet:"run,snappy"`
}

// ProductRecord represents one catalog entry.
type ProductRecord struct {
	Name           string  `parquet:"name,snappy"`
	Protein        float64 `parquet:"protein,snappy"`
	SaturatedFat   float64 `parquet:"saturated_fat,snappy"`
	UnsaturatedFat float64 `parquet:"unsaturated_fat,snappy"`
	SimpleCarbs    float64 `parquet:"simple_carbs,snappy"`
	ComplexCarbs   float64 `parquet:"complex_carbs,snappy"`
	SolubleFiber   float64 `parquet:"soluble_fiber,snappy"`
	InsolubleFiber float64 `parquet:"insoluble_fiber,snappy"`
	Kcal           float64 `parquet:"kcal,snappy"`
	MaxPortions    float64 `parquet:"max_portions,snappy"`
	StepGrams      float64 `parquet:"step_grams,snappy"`
}

// WriteSolutionParquet writes the reported portions of a search result to
// a Parquet file.
func WriteSolutionParquet(result *schema.SearchResult, outputPath string) error {
	records := make([]PortionRecord, 0, len(result.Portions))
	for _, portion := range result.Portions {
		records = append(records, PortionRecord{
			Product: portion.Name,
			Grams:   portion.Grams,
			RMSE:    result.RMSE,
			Alpha:   int32(result.Alpha),
			Run:     int32(result.Run),
		})
	}
	return writeParquet(records, outputPath)
}

// WriteProductsParquet writes the product catalog to a Parquet file.
func WriteProductsParquet(products []schema.Product, outputPath string) error {
	records := make([]ProductRecord, 0, len(products))
	for _, p := range products {
		v := p.PerHundredGrams
		records = append(records, ProductRecord{
			Name:           p.Name,
			Protein:        v[schema.Protein],
			SaturatedFat:   v[schema.SaturatedFat],
			UnsaturatedFat: v[schema.UnsaturatedFat],
			SimpleCarbs:    v[schema.SimpleCarbs],
			ComplexCarbs:   v[schema.ComplexCarbs],
			SolubleFiber:   v[schema.SolubleFiber],
			InsolubleFiber: v[schema.InsolubleFiber],
			Kcal:           schema.DeriveCalories(v),
			MaxPortions:    p.MaxPortions,
			StepGrams:      p.StepGrams,
		})
	}
	return writeParquet(records, outputPath)
}

// writeParquet writes records to outputPath using struct schema inference.
func writeParquet[T any](records []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(records); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
