package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/bt/internal/storage"
	"github.com/valter-silva-au/bt/internal/taskpath"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create the .tasks directory layout",
	Long: `Create .tasks/ with one directory per status in the given path
(default: the current directory).

Safe to run on an existing layout: directories that already exist are
left untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		absPath, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}
		if info, err := os.Stat(absPath); err != nil || !info.IsDir() {
			return fmt.Errorf("%s is not a directory", absPath)
		}

		created, err := storage.Init(absPath)
		if err != nil {
			return fmt.Errorf("initializing %s: %w", absPath, err)
		}

		out := cmd.OutOrStdout()
		if len(created) == 0 {
			fmt.Fprintf(out, "Already initialized: %s\n", taskpath.Base(absPath))
			return nil
		}
		fmt.Fprintf(out, "Initialized %s\n", taskpath.Base(absPath))
		for _, p := range created {
			rel, err := filepath.Rel(absPath, p)
			if err != nil {
				rel = p
			}
			fmt.Fprintf(out, "  %s\n", rel)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
