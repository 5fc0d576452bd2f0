package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/bt/internal/core"
)

var (
	newPriority  string
	newTags      string
	newBlockedBy string
)

var newCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create a task",
	Long: `Create a task in open. Piped stdin becomes the task body.

Blockers given with --blocked-by may be ids or prefixes. When any of them
is still unresolved the new task starts in blocked.`,
	Example: `  bt new "Write parser" -p high -t core,api
  bt new "Wire parser into CLI" -b k3j9
  echo "Details" | bt new "Document format"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}

		opts := core.CreateOptions{
			Title:     args[0],
			Priority:  DefaultPriority,
			Tags:      splitList(newTags),
			BlockedBy: splitList(newBlockedBy),
		}
		if newPriority != "" {
			p, err := parsePriorityFlag(newPriority)
			if err != nil {
				return err
			}
			opts.Priority = p
		}
		body, ok, err := readPipedStdin()
		if err != nil {
			return err
		}
		if ok {
			opts.Body = body
		}

		entry, err := TaskMgr.CreateTask(opts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, entry.Task.ID)
		fmt.Fprintf(out, "%s Created: %s\n", Colors.ID("info:"), entry.Path)
		return nil
	},
}

func init() {
	newCmd.Flags().StringVarP(&newPriority, "priority", "p", "", "Priority (critical, high, medium, low)")
	newCmd.Flags().StringVarP(&newTags, "tags", "t", "", "Comma-separated tags")
	newCmd.Flags().StringVarP(&newBlockedBy, "blocked-by", "b", "", "Comma-separated ids or prefixes of blocking tasks")
	_ = newCmd.RegisterFlagCompletionFunc("priority", completePriorities)
	rootCmd.AddCommand(newCmd)
}
