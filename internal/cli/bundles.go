package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bindery-dev/bindery/internal/config"
	"github.com/bindery-dev/bindery/internal/diag"
	"github.com/bindery-dev/bindery/internal/ui"
)

var bundlesCmd = &cobra.Command{
	Use:   "bundles",
	Short: "List configured bundles",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadGlobalConfig()
		if err != nil {
			return handleError(diag.CodeInternal, err, "")
		}

		bundles := c.ListBundles()
		if jsonOutput {
			outputSuccess(map[string]interface{}{
				"bundles":       bundles,
				"defaultBundle": c.DefaultBundle,
			}, &Meta{Count: len(bundles)})
			return nil
		}

		if len(bundles) == 0 {
			fmt.Println("No bundles configured.")
			fmt.Println(ui.Hint("Add a [bundles] section to " + config.DefaultPath()))
			return nil
		}

		names := make([]string, 0, len(bundles))
		for name := range bundles {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			marker := " "
			if name == c.DefaultBundle {
				marker = "*"
			}
			fmt.Printf("%s %s  %s\n", marker, ui.Accent.Render(name), ui.Hint(bundles[name]))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bundlesCmd)
}
