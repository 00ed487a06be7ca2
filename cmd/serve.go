package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nutrily/rationer/internal/httpapi"
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for catalog management and solving",
	Long: `Serve the product catalog and the solver over HTTP.

Routes:
  GET    /api/products        - List the catalog
  POST   /api/products        - Add a product
  PUT    /api/products/{name} - Update a product
  DELETE /api/products/{name} - Remove a product
  POST   /api/solve           - Solve for the targets in the request body

The server shuts down gracefully on SIGINT or SIGTERM.

Examples:
  # Serve on the default port
  rationer serve

  # Serve on a specific address
  rationer serve --listen 127.0.0.1:9090`,
	PreRunE: sharedSetupWrapper,
	PostRun: closeStore,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Serving rationer API on %s\n", cfg.ListenAddr)
		return httpapi.NewServer(cfg, store).ListenAndServe(ctx)
	},
}
