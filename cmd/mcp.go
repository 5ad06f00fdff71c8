package cmd

import (
	"github.com/huangsam/codetrend/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [project-path]",
	Short: "Start the codetrend MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents query the index of a project
through the list_revisions, get_report, rank_files and list_metrics tools.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
