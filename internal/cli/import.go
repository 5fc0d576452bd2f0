package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/bt/internal/core"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Create tasks from a YAML file",
	Long: `Create every task listed in a YAML file. Entries may name each other
by key in blocked_by, or name existing tasks by id or prefix. The whole file
is validated before any task is written. Use "-" to read stdin.`,
	Example: `  tasks:
    - key: parser
      title: Write the parser
      priority: high
    - title: Wire the parser into the CLI
      blocked_by: [parser]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTasks(); err != nil {
			return err
		}

		var r io.Reader = stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening import file: %w", err)
			}
			defer func() { _ = f.Close() }()
			r = f
		}
		file, err := core.ParseImport(r)
		if err != nil {
			return err
		}

		created, err := TaskMgr.ImportTasks(file)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, e := range created {
			fmt.Fprintf(out, "%s\t%s\t%s\n", Colors.ID(string(e.Task.ID)), statusLabel(e.Status), e.Task.Title)
		}
		fmt.Fprintf(out, "%s Imported %d task(s)\n", Colors.ID("info:"), len(created))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
