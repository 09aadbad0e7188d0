package cli

import (
	"github.com/spf13/cobra"

	"github.com/bindery-dev/bindery/internal/diag"
	"github.com/bindery-dev/bindery/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server for agent access",
	Long: `Serves the bundle over the Model Context Protocol on stdin/stdout.

Agents get tools to validate the bundle, read entities and schemas, and
apply transactional batches, plus the domain-knowledge guide as a
resource. All protocol traffic is on stdout; logs go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return handleError(diag.CodeInternal, err, "")
		}
		return mcp.NewServer(sess).Run()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
