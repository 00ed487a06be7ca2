// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"golang.org/x/term"

	"github.com/nutrily/rationer/internal/contract"
	"github.com/nutrily/rationer/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for
// the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteSolution prints a search result using the configured output format.
func (ow *OutWriter) WriteSolution(result *schema.SearchResult, cfg *contract.Config, duration time.Duration) error {
	return WriteSolutionResult(result, cfg, duration)
}

// WriteProducts prints a product listing using the configured output format.
func (ow *OutWriter) WriteProducts(products []schema.Product, cfg *contract.Config) error {
	return WriteProductList(products, cfg)
}

// getMaxTableNameWidth calculates the maximum width for product names in
// table output based on terminal width and table configuration.
func getMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for the rank, grams and portions columns plus table
	// borders, separators and padding.
	const baseWidth = 45

	nameWidth := termWidth - baseWidth
	if nameWidth < 16 {
		nameWidth = 16
	}
	return nameWidth
}
