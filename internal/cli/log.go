package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log <id> <message>...",
	Short: "Append an entry to a task's log",
	Long: `Append a timestamped, attributed entry to the task's log. The words of
the message are joined with spaces. Existing entries are never changed.`,
	Example:           `  bt log k3j9 Parser handles nested lists now`,
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: completeTaskIDs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}
		e, err := TaskMgr.LogTask(args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Logged: %s (%s)\n", Colors.ID("info:"), e.Task.ID, e.Task.Title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
}
