package cmd

import (
	"github.com/huangsam/devian-archive/internal/history"
	"github.com/huangsam/devian-archive/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the devian-archive MCP server",
	Long:  `Launch an MCP server that lets AI agents detect project roots, preview file lists and create archives via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Progress lines are suppressed per call by the handlers
		// since stdio carries the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, history.Manager)
	},
}
