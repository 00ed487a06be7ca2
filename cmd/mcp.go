package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nutrily/rationer/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Rationer MCP server",
	Long:  `Launch an MCP server that allows AI agents to solve rations and browse the catalog via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Keep stdout clean for the protocol; setup errors go to stderr.
		return sharedSetup(rootCtx, cmd, args)
	},
	PostRun: closeStore,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, store)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
