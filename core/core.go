// Package core has the solver, refinement driver, scoring and search logic.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/nutrily/rationer/internal/contract"
	"github.com/nutrily/rationer/internal/outwriter"
	"github.com/nutrily/rationer/schema"
)

// ExecuteSolve loads the catalog, runs the pacing sweep and prints the
// winning ration. It serves as the main entry point for the 'solve' mode.
func ExecuteSolve(ctx context.Context, cfg *contract.Config, store contract.CatalogStore) error {
	start := time.Now()

	result, err := SolveWithCatalog(ctx, cfg, store)
	if err != nil {
		return err
	}

	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteSolution(result, cfg, duration)
}

// SolveWithCatalog runs the search against the stored catalog and returns
// the raw result. The HTTP and MCP surfaces use this directly.
func SolveWithCatalog(ctx context.Context, cfg *contract.Config, store contract.CatalogStore) (*schema.SearchResult, error) {
	products, err := store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, errors.New("no products in catalog")
	}

	return Search(ctx, products, cfg.Target, SearchOptions{
		StartAlpha:    cfg.StartAlpha,
		RunsPerAlpha:  cfg.RunsPerAlpha,
		Workers:       cfg.Workers,
		Seed:          cfg.Seed,
		MaxIterations: cfg.MaxIterations,
		Weights:       cfg.Weights,
	})
}
