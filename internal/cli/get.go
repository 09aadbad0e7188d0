package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bindery-dev/bindery/internal/diag"
	"github.com/bindery-dev/bindery/internal/session"
	"github.com/bindery-dev/bindery/internal/ui"
)

var getCmd = &cobra.Command{
	Use:   "get <entity-type> <id>",
	Short: "Show one entity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entityType, id := args[0], args[1]

		sess, err := openSession()
		if err != nil {
			return handleError(diag.CodeInternal, err, "")
		}

		entity, err := sess.GetEntity(entityType, id)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return handleError(diag.CodeNotFound, err,
					fmt.Sprintf("Run 'bindery list %s' to see available ids", entityType))
			}
			return handleError(diag.CodeInternal, err, "")
		}

		if jsonOutput {
			outputSuccess(map[string]interface{}{
				"entityType": entity.EntityType,
				"entityId":   entity.ID,
				"filePath":   entity.FilePath,
				"data":       entity.Data,
			}, nil)
			return nil
		}

		fmt.Printf("%s %s\n\n", ui.EntityRef(entity.EntityType, entity.ID), ui.Hint(entity.FilePath))
		out, err := entity.Marshal()
		if err != nil {
			return handleError(diag.CodeInternal, err, "")
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
