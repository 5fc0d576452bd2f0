package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/bt/internal/core"
)

type updateOptions struct {
	title     string
	priority  string
	tags      string
	addTag    string
	removeTag string
	body      string
}

var updateOpts updateOptions

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a task's fields",
	Long: `Change the title, priority, tags or body of a task. Only the given
flags are applied. --tags replaces all tags; --add-tag and --remove-tag
change one. --body - reads the body from piped stdin.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskIDs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}

		var opts core.UpdateOptions
		flags := cmd.Flags()
		if flags.Changed("title") {
			opts.Title = &updateOpts.title
		}
		if flags.Changed("priority") {
			p, err := parsePriorityFlag(updateOpts.priority)
			if err != nil {
				return err
			}
			opts.Priority = &p
		}
		if flags.Changed("tags") {
			tags := splitList(updateOpts.tags)
			opts.Tags = &tags
		}
		if flags.Changed("add-tag") {
			opts.AddTags = splitList(updateOpts.addTag)
		}
		if flags.Changed("remove-tag") {
			opts.RemoveTags = splitList(updateOpts.removeTag)
		}
		if flags.Changed("body") {
			body, ok, err := bodyArg(updateOpts.body)
			if err != nil {
				return err
			}
			if ok {
				opts.Body = &body
			}
		}
		return applyUpdate(cmd, args[0], opts)
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe <id> <description>...",
	Short: "Replace a task's body",
	Long: `Replace the body of a task with the given words joined by spaces, or
with piped stdin when the description is a single "-".`,
	Example: `  bt describe k3j9 Parse the record format described in docs/format.md
  cat notes.md | bt describe k3j9 -`,
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: completeTaskIDs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}
		body, ok, err := bodyArg(strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		var opts core.UpdateOptions
		if ok {
			opts.Body = &body
		}
		return applyUpdate(cmd, args[0], opts)
	},
}

// bodyArg resolves a body argument, where "-" means piped stdin. ok is
// false when "-" was given but nothing was piped.
func bodyArg(value string) (string, bool, error) {
	if value != "-" {
		return value, true, nil
	}
	return readPipedStdin()
}

func emptyUpdate(o core.UpdateOptions) bool {
	return o.Title == nil && o.Priority == nil && o.Tags == nil &&
		len(o.AddTags) == 0 && len(o.RemoveTags) == 0 && o.Body == nil
}

func applyUpdate(cmd *cobra.Command, id string, opts core.UpdateOptions) error {
	out := cmd.OutOrStdout()
	if emptyUpdate(opts) {
		e, err := TaskMgr.GetTask(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s No changes made to: %s\n", Colors.ID("info:"), e.Task.ID)
		return nil
	}
	e, err := TaskMgr.UpdateTask(id, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s Updated: %s (%s)\n", Colors.ID("info:"), e.Task.ID, e.Task.Title)
	return nil
}

func init() {
	f := updateCmd.Flags()
	f.StringVar(&updateOpts.title, "title", "", "New title")
	f.StringVar(&updateOpts.priority, "priority", "", "New priority (critical, high, medium, low)")
	f.StringVar(&updateOpts.tags, "tags", "", "Replace all tags (comma-separated)")
	f.StringVar(&updateOpts.addTag, "add-tag", "", "Add a tag")
	f.StringVar(&updateOpts.removeTag, "remove-tag", "", "Remove a tag")
	f.StringVar(&updateOpts.body, "body", "", `New body, or "-" to read stdin`)
	_ = updateCmd.RegisterFlagCompletionFunc("priority", completePriorities)
	rootCmd.AddCommand(updateCmd, describeCmd)
}
