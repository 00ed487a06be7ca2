package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/nutrily/rationer/internal/contract"
	"github.com/nutrily/rationer/internal/parquet"
	"github.com/nutrily/rationer/schema"
)

// WriteSolutionResult outputs a search result, dispatching based on the
// output format configured.
func WriteSolutionResult(result *schema.SearchResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSolutionCSV(w, result, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		return parquet.WriteSolutionParquet(result, cfg.OutputFile)
	default:
		// Default to human-readable tables
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSolutionTable(w, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

// writeSolutionCSV emits one row per reported portion, with the trial
// parameters repeated so rows stay self-describing when concatenated.
func writeSolutionCSV(w io.Writer, result *schema.SearchResult, fmtFloat func(float64) string) error {
	header := []string{"product", "grams", "rmse", "alpha", "run"}
	return writeCSVWithHeader(w, header, func(writer *csv.Writer) error {
		for _, portion := range result.Portions {
			record := []string{
				portion.Name,
				fmtFloat(portion.Grams),
				strconv.FormatFloat(result.RMSE, 'f', 4, 64),
				strconv.Itoa(result.Alpha),
				strconv.Itoa(result.Run),
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// writeSolutionTable generates and writes the human-readable tables: the
// target-versus-achieved nutrient comparison followed by the portion list.
func writeSolutionTable(w io.Writer, result *schema.SearchResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	nutrients := tablewriter.NewWriter(w)
	nutrients.Header([]string{"Nutrient", "Target", "Achieved", "Diff"})
	nutrients.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var rows [][]string
	for _, kind := range schema.Nutrients() {
		rows = append(rows, []string{
			kind.Label(),
			fmtFloat(result.Target[kind]),
			fmtFloat(result.Achieved[kind]),
			fmtFloat(result.Achieved[kind] - result.Target[kind]),
		})
	}
	if err := nutrients.Bulk(rows); err != nil {
		return fmt.Errorf("failed to add nutrient rows: %w", err)
	}
	if err := nutrients.Render(); err != nil {
		return fmt.Errorf("failed to render nutrient table: %w", err)
	}

	fmt.Fprintln(w)

	portions := tablewriter.NewWriter(w)
	portions.Header([]string{"Rank", "Product", "Grams"})
	portions.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg)
	rows = rows[:0]
	for i, portion := range result.Portions {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			contract.TruncateName(portion.Name, nameWidth),
			fmtFloat(portion.Grams),
		})
	}
	if err := portions.Bulk(rows); err != nil {
		return fmt.Errorf("failed to add portion rows: %w", err)
	}
	if err := portions.Render(); err != nil {
		return fmt.Errorf("failed to render portion table: %w", err)
	}

	label := contract.GetPlainLabel(result.RMSE)
	if cfg.UseColors {
		label = contract.GetColorLabel(result.RMSE)
	}
	fmt.Fprintf(w, "\n🏁 RMSE %.4f [%s] at alpha=%d (run %d of %d trials)\n",
		result.RMSE, label, result.Alpha, result.Run, result.Trials)
	fmt.Fprintf(w, "⏱️  Completed in %v\n", duration.Round(time.Millisecond))
	return nil
}
