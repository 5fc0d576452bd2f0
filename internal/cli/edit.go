package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Open a task in $VISUAL or $EDITOR",
	Long: `Open the task's record file in $VISUAL, $EDITOR or vi.

After the editor exits the record is parsed again; a record that no longer
parses is reported and left for you to fix. The updated timestamp is bumped
only when the file changed.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskIDs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}
		entry, err := TaskMgr.GetTask(args[0])
		if err != nil {
			return err
		}

		before, err := os.ReadFile(entry.Path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", entry.Path, err)
		}
		if err := NewEditor().Edit(entry.Path); err != nil {
			return err
		}
		after, err := os.ReadFile(entry.Path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", entry.Path, err)
		}

		out := cmd.OutOrStdout()
		if bytes.Equal(before, after) {
			fmt.Fprintf(out, "%s No changes made to: %s\n", Colors.ID("info:"), entry.Task.ID)
			return nil
		}
		edited, err := TaskMgr.TouchTask(string(entry.Task.ID))
		if err != nil {
			return fmt.Errorf("validating edited task: %w", err)
		}
		fmt.Fprintf(out, "%s Updated: %s (%s)\n", Colors.ID("info:"), edited.Task.ID, edited.Task.Title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
