package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bindery-dev/bindery/internal/diag"
	"github.com/bindery-dev/bindery/internal/ui"
)

var checkStrict bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the bundle",
	Long:  `Checks every entity for parse errors, schema violations, broken references, and lint findings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return handleError(diag.CodeInternal, err, "")
		}

		summary, diags := sess.Validate()

		if jsonOutput {
			outputSuccess(map[string]interface{}{
				"summary":     summary,
				"diagnostics": diags,
			}, &Meta{Count: len(diags)})
		} else {
			fmt.Printf("Checking bundle: %s\n\n", ui.FilePath(getBundlePath()))

			for _, d := range diags {
				switch d.Severity {
				case diag.SeverityError:
					fmt.Println(ui.Errorf("%s", d.String()))
				default:
					fmt.Println(ui.Warningf("%s", d.String()))
				}
			}

			if len(diags) > 0 {
				fmt.Println()
			}
			if summary.TotalErrors == 0 && summary.TotalWarnings == 0 {
				fmt.Println(ui.Successf("No issues found in %d entities.", sess.Snapshot().Bundle.Store.Len()))
			} else {
				fmt.Printf("Found %s\n", ui.CountSummary(summary.TotalErrors, summary.TotalWarnings))
			}
		}

		if summary.TotalErrors > 0 || (checkStrict && summary.TotalWarnings > 0) {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Treat warnings as errors")
	rootCmd.AddCommand(checkCmd)
}
