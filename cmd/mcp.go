package cmd

import (
	"github.com/huangsam/healthtab/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [export.xml]",
	Short: "Start the healthtab MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents summarize, query and export
health data via standard tools. An optional export.xml becomes the default input_path.`,
	Args: cobra.MaximumNArgs(1),
	// Logs go to stderr, leaving stdout to the protocol.
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager, logger)
	},
}
