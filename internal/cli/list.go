package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/bt/internal/core"
	"github.com/valter-silva-au/bt/pkg/models"
)

type listOptions struct {
	all      bool
	long     bool
	status   string
	priority string
	tag      string
	search   string
	limit    int
	json     bool
	body     bool
}

var listOpts listOptions

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List active tasks (open, in-progress, blocked) in creation order.

Use --all to include closed and cancelled tasks. Filtering by a closed or
cancelled --status implies --all. --tag matches case-insensitively and
accepts glob patterns such as "api-*". --limit counts rows after filtering.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}

		filter := core.TaskFilter{Tag: listOpts.tag, Search: listOpts.search, Limit: listOpts.limit}
		includeAll := listOpts.all
		if listOpts.status != "" {
			s, err := models.ParseStatus(listOpts.status)
			if err != nil {
				return fmt.Errorf("parsing --status: %w", err)
			}
			filter.Statuses = []models.Status{s}
			includeAll = includeAll || s.IsTerminal()
		}
		if listOpts.priority != "" {
			p, err := parsePriorityFlag(listOpts.priority)
			if err != nil {
				return err
			}
			filter.Priorities = []models.Priority{p}
		}

		var entries []models.Entry
		var err error
		if includeAll {
			entries, err = Tasks.ListAll()
		} else {
			entries, err = Tasks.ListActive()
		}
		if err != nil {
			return fmt.Errorf("listing tasks: %w", err)
		}
		entries, err = core.FilterEntries(entries, filter)
		if err != nil {
			return err
		}

		resolver, err := shortIDs()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if listOpts.json {
			views := make([]core.TaskView, 0, len(entries))
			for _, e := range entries {
				views = append(views, core.NewTaskView(e, resolver.Shortest(e.Task.ID)))
			}
			return writeJSON(out, views)
		}

		for _, e := range entries {
			short := resolver.Shortest(e.Task.ID)
			if listOpts.long {
				printLongRow(out, e, short, listOpts.body)
				continue
			}
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\n",
				Colors.ID(short),
				statusLabel(e.Status),
				Colors.Priority(e.Task.Priority),
				e.Task.Title,
			)
			if listOpts.body {
				if preview := core.BodyPreview(e.Task.Body, 80); preview != "" {
					fmt.Fprintf(out, "    %s\n", Colors.Muted(preview))
				}
			}
		}
		return nil
	},
}

func printLongRow(out io.Writer, e models.Entry, short string, withBody bool) {
	fmt.Fprintln(out, e.Task.Title)
	fmt.Fprintf(out, "  ID: %s\n", Colors.ID(short))
	fmt.Fprintf(out, "  Status: %s  Priority: %s\n", statusLabel(e.Status), Colors.Priority(e.Task.Priority))
	if len(e.Task.Tags) > 0 {
		fmt.Fprintf(out, "  Tags: %s\n", joinTags(e.Task.Tags))
	}
	if withBody {
		if preview := core.BodyPreview(e.Task.Body, 200); preview != "" {
			fmt.Fprintf(out, "  %s\n", Colors.Muted(preview))
		}
	}
	fmt.Fprintln(out)
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting JSON: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func init() {
	f := listCmd.Flags()
	f.BoolVarP(&listOpts.all, "all", "a", false, "Include closed and cancelled tasks")
	f.BoolVarP(&listOpts.long, "long", "l", false, "Multi-line output")
	f.StringVarP(&listOpts.status, "status", "s", "", "Only tasks with this status")
	f.StringVarP(&listOpts.priority, "priority", "p", "", "Only tasks with this priority")
	f.StringVarP(&listOpts.tag, "tag", "t", "", "Only tasks with a matching tag (glob)")
	f.StringVar(&listOpts.search, "search", "", "Only tasks whose title or body contains this text")
	f.IntVarP(&listOpts.limit, "limit", "n", 0, "Show at most this many tasks")
	f.BoolVar(&listOpts.json, "json", false, "Output as JSON")
	f.BoolVarP(&listOpts.body, "body", "b", false, "Show a preview of each body")
	_ = listCmd.RegisterFlagCompletionFunc("status", completeStatuses)
	_ = listCmd.RegisterFlagCompletionFunc("priority", completePriorities)
	rootCmd.AddCommand(listCmd)
}
