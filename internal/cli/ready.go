package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/bt/internal/core"
)

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "List tasks that can be worked on now",
	Long: `List open and in-progress tasks whose blockers are all closed or
cancelled. A blocker that no longer exists counts as resolved.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}
		ready, err := Tasks.ListReady()
		if err != nil {
			return fmt.Errorf("listing ready tasks: %w", err)
		}
		resolver, err := shortIDs()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, e := range ready {
			fmt.Fprintf(out, "%s\t%s\t%s\n", Colors.ID(resolver.Shortest(e.Task.ID)), Colors.Priority(e.Task.Priority), e.Task.Title)
		}
		return nil
	},
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the ready task to work on next",
	Long: `Show the single ready task with the highest priority. Ties go to the
oldest task, then to the lowest id.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}
		e, ok, err := core.Next(Tasks)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !ok {
			fmt.Fprintln(out, Colors.Muted("No tasks ready to work on."))
			return nil
		}
		resolver, err := shortIDs()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", Colors.ID(resolver.Shortest(e.Task.ID)), Colors.Priority(e.Task.Priority), e.Task.Title)
		if preview := core.BodyPreview(e.Task.Body, 80); preview != "" {
			fmt.Fprintf(out, "    %s\n", Colors.Muted(preview))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readyCmd, nextCmd)
}
