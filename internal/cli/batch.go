package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"todo-me/internal/domain"
)

var batchAtomic bool

func init() {
	batchCmd.Flags().BoolVar(&batchAtomic, "atomic", false, "abort the whole batch if any operation fails")
	rootCmd.AddCommand(batchCmd)
}

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Run several task operations in one request",
	Long:  "Reads a JSON array of operations from the given file, or stdin when no file is given. Each operation names an action (create, update, delete, complete, reschedule) and its payload.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var src io.Reader = os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			src = f
		}

		var ops []domain.BatchOperation
		if err := json.NewDecoder(src).Decode(&ops); err != nil {
			return fmt.Errorf("invalid operations JSON: %w", err)
		}

		result, err := newClient().ExecuteBatch(cmd.Context(), ops, batchAtomic)
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(result)
		}
		for _, r := range result.Results {
			status := "ok"
			if !r.Success {
				status = "failed: " + r.Error
			}
			fmt.Printf("[%d] %s %s %s\n", r.Index, r.Action, r.TaskID, status)
		}
		printUndoHint(result.UndoToken)
		return nil
	},
}
