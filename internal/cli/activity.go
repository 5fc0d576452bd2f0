package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/bt/internal/core"
	"github.com/valter-silva-au/bt/pkg/models"
)

var (
	activityLimit int
	activityAll   bool
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show recent log entries across tasks",
	Long: `Show the most recent log entries across active tasks, newest first.
Use --all to include closed and cancelled tasks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}
		if activityLimit < 0 {
			return fmt.Errorf("--limit must be non-negative")
		}

		var entries []models.Entry
		var err error
		if activityAll {
			entries, err = Tasks.ListAll()
		} else {
			entries, err = Tasks.ListActive()
		}
		if err != nil {
			return fmt.Errorf("listing tasks: %w", err)
		}
		resolver, err := shortIDs()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		recent := core.RecentActivity(entries, activityLimit)
		if len(recent) == 0 {
			fmt.Fprintln(out, Colors.Muted("No activity."))
			return nil
		}
		for _, a := range recent {
			fmt.Fprintf(out, "%s  %s  %s\n",
				Colors.Muted(a.Log.Time.Local().Format(timeLayout)),
				Colors.ID(resolver.Shortest(a.Entry.Task.ID)),
				a.Entry.Task.Title,
			)
			fmt.Fprintf(out, "    %s %s\n", a.Log.Author, a.Log.Summary())
		}
		return nil
	},
}

func init() {
	activityCmd.Flags().IntVarP(&activityLimit, "limit", "n", 10, "Number of entries to show")
	activityCmd.Flags().BoolVarP(&activityAll, "all", "a", false, "Include closed and cancelled tasks")
	rootCmd.AddCommand(activityCmd)
}
