package cli

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"github.com/valter-silva-au/bt/internal/core"
	"github.com/valter-silva-au/bt/internal/storage"
	"github.com/valter-silva-au/bt/pkg/models"
)

// listIDs hands out the given ids in order, then falls back to x0001...
type listIDs struct {
	ids []string
	n   int
}

func (g *listIDs) GenerateTaskID() (models.TaskID, error) {
	g.n++
	if g.n <= len(g.ids) {
		return models.TaskID(g.ids[g.n-1]), nil
	}
	return models.TaskID(fmt.Sprintf("x%09d", g.n)), nil
}

type cliEnv struct {
	root  string
	store storage.Store
}

// setupCLI points the package services at a fresh .tasks tree and restores
// the previous values when the test ends.
func setupCLI(t *testing.T, ids ...string) *cliEnv {
	t.Helper()
	root := t.TempDir()
	_, err := storage.Init(root)
	require.NoError(t, err)
	store, err := storage.Open(root)
	require.NoError(t, err)

	prevMgr, prevTasks, prevBase, prevRootErr := TaskMgr, Tasks, BasePath, RootErr
	prevEvents, prevMetrics, prevEditor := EventLog, MetricsCalc, NewEditor
	prevTTY, prevStdin := stdinIsTerminal, stdin
	t.Cleanup(func() {
		TaskMgr, Tasks, BasePath, RootErr = prevMgr, prevTasks, prevBase, prevRootErr
		EventLog, MetricsCalc, NewEditor = prevEvents, prevMetrics, prevEditor
		stdinIsTerminal, stdin = prevTTY, prevStdin
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	TaskMgr = core.NewTaskManager(store, &listIDs{ids: ids}, "tester", nil, logger)
	Tasks = store
	BasePath = root
	RootErr = nil
	EventLog = nil
	MetricsCalc = nil
	stdinIsTerminal = func() bool { return true }
	stdin = strings.NewReader("")

	return &cliEnv{root: root, store: store}
}

func (e *cliEnv) create(t *testing.T, title string, blockers ...string) models.Entry {
	t.Helper()
	entry, err := TaskMgr.CreateTask(core.CreateOptions{Title: title, Priority: models.DefaultPriority, BlockedBy: blockers})
	require.NoError(t, err)
	return entry
}

// setBlockers rewrites blocked_by directly on disk, bypassing cycle checks.
func (e *cliEnv) setBlockers(t *testing.T, id string, blockers ...models.TaskID) {
	t.Helper()
	path, err := e.store.Find(id)
	require.NoError(t, err)
	task, err := e.store.Load(path)
	require.NoError(t, err)
	task.BlockedBy = blockers
	require.NoError(t, e.store.Save(task, path))
}

func (e *cliEnv) pipeStdin(text string) {
	stdinIsTerminal = func() bool { return false }
	stdin = strings.NewReader(text)
}

// runCmd executes the root command with args, capturing stdout and stderr.
func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// resetFlags restores every flag to its default so package-level option
// variables do not leak between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func readRecord(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
