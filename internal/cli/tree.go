package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/bt/internal/core"
	"github.com/valter-silva-au/bt/internal/observability"
)

// Tree connectors.
const (
	branchMid  = "├── "
	branchLast = "└── "
	indentPipe = "│   "
	indentGap  = "    "
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show active tasks as a dependency tree",
	Long: `Show active tasks as a forest. A task is printed once, under the
blocker that is printed last. Green ids are ready, red ids wait on an active
blocker. Tasks caught in a dependency cycle cannot be placed and are listed
in a warning instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}
		all, err := Tasks.ListAll()
		if err != nil {
			return fmt.Errorf("listing tasks: %w", err)
		}
		logDanglingBlockers(all)
		resolver, err := shortIDs()
		if err != nil {
			return err
		}

		tree := core.BuildDependencyTree(all)
		if len(tree.Roots) == 0 && tree.Err() == nil {
			fmt.Fprintln(cmd.OutOrStdout(), Colors.Muted("No active tasks."))
			return nil
		}
		renderTree(cmd.OutOrStdout(), tree, resolver)

		var cycle *core.CycleError
		if errors.As(tree.Err(), &cycle) {
			short := make([]string, len(cycle.IDs))
			full := make([]string, len(cycle.IDs))
			for i, id := range cycle.IDs {
				short[i] = resolver.Shortest(id)
				full[i] = string(id)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s dependency cycle, not shown: %s\n", Colors.Warn("warning:"), strings.Join(short, ", "))
			recordEvent(observability.Event{
				Level:   "WARN",
				Type:    observability.EventCycleDetected,
				Message: observability.EventCycleDetected,
				Data:    map[string]any{"task_ids": full},
			})
		}
		return nil
	},
}

// renderTree prints the forest with box-drawing connectors. Roots carry no
// connector. Tasks waiting on more than one active blocker are annotated.
func renderTree(out io.Writer, tree *core.DependencyTree, resolver *core.PrefixResolver) {
	var visit func(n *core.TreeNode, prefix string, last, root bool)
	visit = func(n *core.TreeNode, prefix string, last, root bool) {
		connector := branchMid
		switch {
		case root:
			connector = ""
		case last:
			connector = branchLast
		}

		id := resolver.Shortest(n.Entry.Task.ID)
		if n.Ready() {
			id = Colors.Ready(id)
		} else {
			id = Colors.Blocked(id)
		}
		line := prefix + connector + id + "  " + n.Entry.Task.Title
		if len(n.Blockers) > 1 {
			ids := make([]string, len(n.Blockers))
			for i, b := range n.Blockers {
				ids[i] = resolver.Shortest(b)
			}
			line += "  " + Colors.Muted("(blocked by: "+strings.Join(ids, ", ")+")")
		}
		fmt.Fprintln(out, line)

		childPrefix := prefix
		switch {
		case root:
		case last:
			childPrefix += indentGap
		default:
			childPrefix += indentPipe
		}
		for i, c := range n.Children {
			visit(c, childPrefix, i == len(n.Children)-1, false)
		}
	}
	for _, r := range tree.Roots {
		visit(r, "", true, true)
	}
}

// recordEvent writes to the event log when it is enabled.
func recordEvent(e observability.Event) {
	if EventLog == nil {
		return
	}
	if err := EventLog.Write(e); err != nil {
		Logger.Warn("writing event failed", "type", e.Type, "error", err)
	}
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
