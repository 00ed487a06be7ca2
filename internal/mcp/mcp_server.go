// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nutrily/rationer/internal/contract"
)

// NewMCPServer initializes and configures the Rationer MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, store contract.CatalogStore) *server.MCPServer {
	s := server.NewMCPServer(
		"Rationer Solver Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		store:   store,
	}

	// --- 1. Tool: solve_ration ---
	s.AddTool(mcp.NewTool("solve_ration",
		mcp.WithDescription("Compute portion weights from the product catalog that best hit the given daily nutrient targets. Calories are derived from macros, never entered."),
		mcp.WithNumber("protein", mcp.Description("Target protein in grams."), mcp.Required()),
		mcp.WithNumber("sat_fat", mcp.Description("Target saturated fat in grams."), mcp.Required()),
		mcp.WithNumber("unsat_fat", mcp.Description("Target unsaturated fat in grams."), mcp.Required()),
		mcp.WithNumber("simple_carbs", mcp.Description("Target simple carbohydrates in grams."), mcp.Required()),
		mcp.WithNumber("complex_carbs", mcp.Description("Target complex carbohydrates in grams."), mcp.Required()),
		mcp.WithNumber("soluble_fiber", mcp.Description("Target soluble fiber in grams."), mcp.Required()),
		mcp.WithNumber("insoluble_fiber", mcp.Description("Target insoluble fiber in grams."), mcp.Required()),
		mcp.WithNumber("start_alpha", mcp.Description("Lowest pacing percentage to sweep, 1-100. Defaults to the server configuration.")),
		mcp.WithNumber("runs", mcp.Description("Randomized trials per pacing value, 1-100.")),
		mcp.WithNumber("seed", mcp.Description("Seed for deterministic trial ordering.")),
	), h.handleSolveRation)

	// --- 2. Tool: list_products ---
	s.AddTool(mcp.NewTool("list_products",
		mcp.WithDescription("List the product catalog with per-100g nutrient values and serving constraints."),
	), h.handleListProducts)

	return s
}

// StartMCPServer starts the Rationer MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, store contract.CatalogStore) error {
	s := NewMCPServer(baseCfg, store)
	return server.ServeStdio(s)
}
