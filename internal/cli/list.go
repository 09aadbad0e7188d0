package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bindery-dev/bindery/internal/diag"
	"github.com/bindery-dev/bindery/internal/session"
	"github.com/bindery-dev/bindery/internal/ui"
)

var (
	listOffset int
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:   "list [entity-type]",
	Short: "List entity ids of a type",
	Long:  `Lists the ids of one entity type, sorted. Without arguments, lists the declared entity types instead.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return handleError(diag.CodeInternal, err, "")
		}

		if len(args) == 0 {
			types := sess.Snapshot().Bundle.Store.Types()
			declared := sess.Snapshot().Bundle.Def.Entities
			if jsonOutput {
				names := make([]string, 0, len(declared))
				for name := range declared {
					names = append(names, name)
				}
				outputSuccess(map[string]interface{}{"entityTypes": names}, &Meta{Count: len(names)})
				return nil
			}
			for _, entityType := range types {
				_, total, _ := sess.ListEntities(entityType, 0, 0)
				fmt.Printf("%s %s\n", ui.Accent.Render(entityType), ui.Hint(fmt.Sprintf("(%d)", total)))
			}
			return nil
		}

		entityType := args[0]
		ids, total, err := sess.ListEntities(entityType, listOffset, listLimit)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return handleError(diag.CodeNotFound, err, "Run 'bindery list' to see declared entity types")
			}
			return handleError(diag.CodeInternal, err, "")
		}

		if jsonOutput {
			outputSuccess(map[string]interface{}{
				"entityType": entityType,
				"ids":        ids,
				"offset":     listOffset,
			}, &Meta{Count: len(ids), Total: total})
			return nil
		}

		for _, id := range ids {
			fmt.Println(ui.EntityRef(entityType, id))
		}
		if len(ids) < total {
			fmt.Println(ui.Hint(fmt.Sprintf("showing %d of %d", len(ids), total)))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Skip the first N ids")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Return at most N ids (0 = no limit)")
	rootCmd.AddCommand(listCmd)
}
