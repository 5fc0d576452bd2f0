package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/bt/pkg/models"
)

var (
	closeReason string
	closeCancel bool
)

var startCmd = &cobra.Command{
	Use:               "start <id>...",
	Short:             "Move open tasks to in-progress",
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeTaskIDs(models.StatusOpen),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}
		return runBatch(cmd, args, func(id string) error {
			e, err := TaskMgr.StartTask(id)
			if err != nil {
				return err
			}
			reportTransition(cmd.OutOrStdout(), "Started", e)
			return nil
		})
	},
}

var stopCmd = &cobra.Command{
	Use:               "stop <id>...",
	Short:             "Move in-progress tasks back to open",
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeTaskIDs(models.StatusInProgress),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}
		return runBatch(cmd, args, func(id string) error {
			e, err := TaskMgr.StopTask(id)
			if err != nil {
				return err
			}
			reportTransition(cmd.OutOrStdout(), "Stopped", e)
			return nil
		})
	},
}

var closeCmd = &cobra.Command{
	Use:   "close <id>...",
	Short: "Close tasks",
	Long: `Move active tasks to closed, or to cancelled with --cancel.

--reason is recorded as a log entry before the move. Blocked tasks whose
blockers are now all resolved are moved to open and listed.`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeTaskIDs(models.StatusOpen, models.StatusInProgress, models.StatusBlocked),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}
		finish, verb := TaskMgr.CloseTask, "Closed"
		if closeCancel {
			finish, verb = TaskMgr.CancelTask, "Cancelled"
		}
		return runBatch(cmd, args, func(id string) error {
			e, unblocked, err := finish(id, closeReason)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			reportTransition(out, verb, e)
			for _, u := range unblocked {
				reportTransition(out, "Unblocked", u)
			}
			return nil
		})
	},
}

var reopenCmd = &cobra.Command{
	Use:               "reopen <id>...",
	Short:             "Move closed or cancelled tasks back to open",
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeTaskIDs(models.StatusClosed, models.StatusCancelled),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}
		return runBatch(cmd, args, func(id string) error {
			e, err := TaskMgr.ReopenTask(id)
			if err != nil {
				return err
			}
			reportTransition(cmd.OutOrStdout(), "Reopened", e)
			return nil
		})
	},
}

func reportTransition(out io.Writer, verb string, e models.Entry) {
	fmt.Fprintf(out, "%s %s: %s (%s)\n", Colors.ID("info:"), verb, e.Task.ID, e.Task.Title)
}

func init() {
	closeCmd.Flags().StringVarP(&closeReason, "reason", "r", "", "Record a reason in the task log")
	closeCmd.Flags().BoolVar(&closeCancel, "cancel", false, "Move to cancelled instead of closed")
	rootCmd.AddCommand(startCmd, stopCmd, closeCmd, reopenCmd)
}
