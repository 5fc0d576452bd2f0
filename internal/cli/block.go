package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var blockCmd = &cobra.Command{
	Use:   "block <id> <blocker>",
	Short: "Record that a task waits on another",
	Long: `Add <blocker> to the task's blocked_by list. An open or in-progress task
moves to blocked while the blocker is active. A dependency that would close
a cycle is refused.`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeTaskIDs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}
		e, err := TaskMgr.BlockTask(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Blocked: %s (%s) by %s\n", Colors.ID("info:"), e.Task.ID, e.Task.Title, args[1])
		return nil
	},
}

var unblockCmd = &cobra.Command{
	Use:   "unblock <id> <blocker>",
	Short: "Remove a dependency",
	Long: `Remove <blocker> from the task's blocked_by list. A blocked task whose
remaining blockers are all resolved moves to open.`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeTaskIDs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}
		e, err := TaskMgr.UnblockTask(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Unblocked: %s (%s) from %s\n", Colors.ID("info:"), e.Task.ID, e.Task.Title, args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(blockCmd, unblockCmd)
}
