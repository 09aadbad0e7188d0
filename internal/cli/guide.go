package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bindery-dev/bindery/internal/diag"
	"github.com/bindery-dev/bindery/internal/ui"
)

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Show the bundle's domain-knowledge guide",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return handleError(diag.CodeInternal, err, "")
		}

		rel := sess.Snapshot().Bundle.Manifest.DomainKnowledge
		if rel == "" {
			return handleError(diag.CodeNotFound,
				fmt.Errorf("bundle has no domain-knowledge guide"),
				"Add a domainKnowledge entry to manifest.yaml")
		}

		data, err := os.ReadFile(filepath.Join(sess.Dir(), rel))
		if err != nil {
			return handleError(diag.CodeInternal, fmt.Errorf("failed to read guide: %w", err), "")
		}

		if jsonOutput {
			outputSuccess(map[string]interface{}{
				"path":    rel,
				"content": string(data),
			}, nil)
			return nil
		}

		if !ui.IsTTY() {
			fmt.Print(string(data))
			return nil
		}
		rendered, err := ui.RenderMarkdown(string(data), ui.TermWidth())
		if err != nil {
			fmt.Print(string(data))
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(guideCmd)
}
