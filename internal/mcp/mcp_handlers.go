package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nutrily/rationer/core"
	"github.com/nutrily/rationer/internal/contract"
	"github.com/nutrily/rationer/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	store   contract.CatalogStore
}

func (h *toolHandler) handleSolveRation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()

	var target schema.Vector
	fields := []struct {
		name string
		kind schema.Nutrient
	}{
		{"protein", schema.Protein},
		{"sat_fat", schema.SaturatedFat},
		{"unsat_fat", schema.UnsaturatedFat},
		{"simple_carbs", schema.SimpleCarbs},
		{"complex_carbs", schema.ComplexCarbs},
		{"soluble_fiber", schema.SolubleFiber},
		{"insoluble_fiber", schema.InsolubleFiber},
	}
	for _, f := range fields {
		v := request.GetFloat(f.name, -1)
		if v < 0 {
			return mcp.NewToolResultError(fmt.Sprintf("parameter %q must be present and >= 0", f.name)), nil
		}
		target[f.kind] = v
	}
	cfg.Target = target.WithDerivedCalories()

	if a := request.GetInt("start_alpha", 0); a > 0 {
		cfg.StartAlpha = a
	}
	if r := request.GetInt("runs", 0); r > 0 {
		cfg.RunsPerAlpha = r
	}
	if s := request.GetInt("seed", 0); s != 0 {
		cfg.Seed = int64(s)
	}

	result, err := core.SolveWithCatalog(ctx, cfg, h.store)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("solve failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListProducts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	products, err := h.store.ListProducts(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("catalog read failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(products, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
