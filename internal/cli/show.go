package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/bt/internal/core"
	"github.com/valter-silva-au/bt/pkg/models"
)

const timeLayout = "2006-01-02 15:04"

var showJSON bool

var showCmd = &cobra.Command{
	Use:               "show <id>",
	Short:             "Show a task",
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
		resolver, err := shortIDs()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		short := resolver.Shortest(entry.Task.ID)
		if showJSON {
			return writeJSON(out, core.NewTaskView(entry, short))
		}

		t := entry.Task
		fmt.Fprintln(out, Colors.Header(t.Title))
		fmt.Fprintf(out, "  ID:       %s (%s)\n", t.ID, Colors.ID(short))
		fmt.Fprintf(out, "  Status:   %s\n", statusLabel(entry.Status))
		fmt.Fprintf(out, "  Priority: %s\n", Colors.Priority(t.Priority))
		if len(t.Tags) > 0 {
			fmt.Fprintf(out, "  Tags:     %s\n", joinTags(t.Tags))
		}
		if len(t.BlockedBy) > 0 {
			ids := make([]string, len(t.BlockedBy))
			for i, b := range t.BlockedBy {
				ids[i] = resolver.Shortest(b)
			}
			fmt.Fprintf(out, "  Blocked:  %s\n", strings.Join(ids, ", "))
		}
		fmt.Fprintf(out, "  Created:  %s\n", t.Created.Format(time.RFC3339))
		fmt.Fprintf(out, "  Updated:  %s\n", t.Updated.Format(time.RFC3339))
		if t.Author != "" {
			fmt.Fprintf(out, "  Author:   %s\n", t.Author)
		}
		if t.Body != "" {
			fmt.Fprintf(out, "\n%s\n", t.Body)
		}
		if logs := core.ParseLog(t.Log); len(logs) > 0 {
			fmt.Fprintf(out, "\n%s\n", Colors.Header("Log"))
			for _, l := range logs {
				fmt.Fprintf(out, "\n%s %s\n", Colors.Muted(l.Time.Local().Format(timeLayout)), l.Author)
				fmt.Fprintln(out, l.Message)
			}
		}
		return nil
	},
}

var contextCmd = &cobra.Command{
	Use:   "context <id>",
	Short: "Show a task with its blockers, dependents and recent log",
	Long: `Show everything needed to pick up a task: its details, each blocker
with its current status, the tasks it blocks and its five most recent log
entries.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskIDs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}
		tc, err := core.BuildTaskContext(TaskMgr, Tasks, args[0], 5)
		if err != nil {
			return err
		}
		resolver, err := shortIDs()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		t := tc.Entry.Task
		fmt.Fprintf(out, "%s (%s)\n", Colors.Header(t.Title), Colors.ID(resolver.Shortest(t.ID)))
		ready := Colors.Blocked("no")
		if tc.Ready() {
			ready = Colors.Ready("yes")
		}
		fmt.Fprintf(out, "Status: %s  Priority: %s  Ready: %s\n",
			statusLabel(tc.Entry.Status), Colors.Priority(t.Priority), ready)
		if len(t.Tags) > 0 {
			fmt.Fprintf(out, "Tags: %s\n", joinTags(t.Tags))
		}

		if len(tc.Blockers) > 0 {
			fmt.Fprintf(out, "\n%s\n", Colors.Header("Blocked by"))
			for _, b := range tc.Blockers {
				if b.Missing {
					fmt.Fprintf(out, "  %s\t%s\n", b.ID, Colors.Muted("(missing, treated as resolved)"))
					continue
				}
				fmt.Fprintf(out, "  %s\t%s\t%s\n", Colors.ID(resolver.Shortest(b.ID)), statusLabel(b.Status), b.Title)
			}
		}
		if len(tc.Dependents) > 0 {
			fmt.Fprintf(out, "\n%s\n", Colors.Header("Blocks"))
			for _, d := range tc.Dependents {
				fmt.Fprintf(out, "  %s\t%s\t%s\n", Colors.ID(resolver.Shortest(d.Task.ID)), statusLabel(d.Status), d.Task.Title)
			}
		}
		if t.Body != "" {
			fmt.Fprintf(out, "\n%s\n%s\n", Colors.Header("Description"), t.Body)
		}
		if len(tc.Recent) > 0 {
			fmt.Fprintf(out, "\n%s\n", Colors.Header("Recent activity"))
			for _, l := range tc.Recent {
				fmt.Fprintf(out, "  %s  %s  %s\n", Colors.Muted(l.Time.Local().Format(timeLayout)), l.Author, l.Summary())
			}
		}
		return nil
	},
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// statusLabel renders a status name in its color.
func statusLabel(s models.Status) string {
	return Colors.Status(s, string(s))
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(contextCmd)
}
