package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bindery-dev/bindery/internal/diag"
	"github.com/bindery-dev/bindery/internal/txn"
	"github.com/bindery-dev/bindery/internal/ui"
)

var (
	applyFile       string
	applyWrite      bool
	applyValidate   string
	applyRefPolicy  string
	applyDeleteMode string
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a batch of changes transactionally",
	Long: `Reads a batch request (JSON) from a file or stdin and applies it.

The batch is validated as a whole before anything is written: one
blocking error rejects every change. Without --write this is a dry run
that reports what would happen.

Request shape:
  {"changes": [
    {"operation": "create", "entityType": "Feature", "entityId": "FEAT-2",
     "data": {"id": "FEAT-2", "title": "Export"}},
    {"operation": "update", "entityType": "Feature", "entityId": "FEAT-1",
     "fieldPath": "status", "value": "approved"},
    {"operation": "delete", "entityType": "Requirement", "entityId": "REQ-9"}
  ]}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := readApplyRequest()
		if err != nil {
			return handleError(diag.CodeBadRequest, err, "")
		}

		if cmd.Flags().Changed("write") {
			dry := !applyWrite
			req.DryRun = &dry
		}
		if cmd.Flags().Changed("validate") {
			req.Validate = txn.Mode(applyValidate)
		}
		if cmd.Flags().Changed("reference-policy") {
			req.ReferencePolicy = txn.Mode(applyRefPolicy)
		}
		if cmd.Flags().Changed("delete-mode") {
			req.DeleteMode = txn.DeleteMode(applyDeleteMode)
		}

		sess, err := openSession()
		if err != nil {
			return handleError(diag.CodeInternal, err, "")
		}

		resp, err := sess.Apply(req)
		if err != nil {
			if resp == nil {
				return handleError(diag.CodeBadRequest, err, "")
			}
			// Writes landed but the reload failed; report the response
			// and the error together.
			fmt.Fprintln(os.Stderr, "warning:", err)
		}

		if jsonOutput {
			var warnings []diag.Diagnostic
			for _, res := range resp.Results {
				for _, d := range res.Diagnostics {
					if d.Severity == diag.SeverityWarning {
						warnings = append(warnings, d)
					}
				}
			}
			outputSuccessWithWarnings(resp, warnings, &Meta{Count: len(resp.Results)})
			if resp.Rejected() {
				os.Exit(1)
			}
			return nil
		}

		printApplyResponse(resp)
		if resp.Rejected() {
			os.Exit(1)
		}
		return nil
	},
}

func readApplyRequest() (*txn.Request, error) {
	var data []byte
	var err error
	if applyFile == "" || applyFile == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read request from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(applyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read request file: %w", err)
		}
	}

	var req txn.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse batch request: %w", err)
	}
	if len(req.Changes) == 0 {
		return nil, fmt.Errorf("batch request has no changes")
	}
	return &req, nil
}

func printApplyResponse(resp *txn.Response) {
	for _, res := range resp.Results {
		label := fmt.Sprintf("[%d] %s %s", res.Index, res.Operation, ui.EntityRef(res.EntityType, res.EntityID))
		switch res.Status {
		case txn.StatusApplied:
			fmt.Println(ui.Successf("%s", label))
		case txn.StatusWouldApply:
			fmt.Printf("  %s %s\n", label, ui.Hint("(would apply)"))
		default:
			fmt.Println(ui.Errorf("%s: %s", label, res.Error))
		}
		for _, d := range res.Diagnostics {
			fmt.Printf("    %s\n", d.String())
		}
	}

	fmt.Println()
	switch {
	case resp.Rejected():
		fmt.Println(ui.Errorf("Batch rejected; no files were written."))
	case resp.DryRun:
		fmt.Printf("Dry run: %d change(s) would apply.\n", resp.WouldApply)
		for _, f := range resp.ModifiedFiles {
			fmt.Printf("  would write %s\n", ui.FilePath(f))
		}
		for _, f := range resp.WouldDelete {
			fmt.Printf("  would delete %s\n", ui.FilePath(f))
		}
		fmt.Println(ui.Hint("Re-run with --write to apply."))
	default:
		fmt.Println(ui.Successf("Applied %d change(s).", resp.Applied))
		for _, f := range resp.ModifiedFiles {
			fmt.Printf("  wrote %s\n", ui.FilePath(f))
		}
		for _, f := range resp.DeletedFiles {
			fmt.Printf("  deleted %s\n", ui.FilePath(f))
		}
	}
}

func init() {
	applyCmd.Flags().StringVarP(&applyFile, "file", "f", "-", "Batch request file ('-' for stdin)")
	applyCmd.Flags().BoolVar(&applyWrite, "write", false, "Write changes instead of previewing")
	applyCmd.Flags().StringVar(&applyValidate, "validate", "", "Validation mode: strict, warn, or none")
	applyCmd.Flags().StringVar(&applyRefPolicy, "reference-policy", "", "Reference policy: strict, warn, or none")
	applyCmd.Flags().StringVar(&applyDeleteMode, "delete-mode", "", "Delete mode: restrict or orphan")
	rootCmd.AddCommand(applyCmd)
}
