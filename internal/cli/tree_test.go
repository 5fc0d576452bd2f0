package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valter-silva-au/bt/internal/observability"
	"github.com/valter-silva-au/bt/pkg/models"
)

func TestTree_Chain(t *testing.T) {
	env := setupCLI(t, "aaaa111111", "bbbb222222", "bbbc333333")
	env.create(t, "A")
	env.create(t, "B", "aaaa111111")
	env.create(t, "C", "aaaa111111", "bbbb222222")

	out, errOut, err := runCmd(t, "tree")
	require.NoError(t, err)
	assert.Empty(t, errOut)
	assert.Equal(t, "a  A\n"+
		"└── bbbb  B\n"+
		"    └── bbbc  C  (blocked by: a, bbbb)\n", out)
}

func TestTree_Diamond(t *testing.T) {
	env := setupCLI(t, "a000000001", "b000000002", "c000000003", "d000000004")
	env.create(t, "A")
	env.create(t, "B", "a000000001")
	env.create(t, "C", "a000000001")
	env.create(t, "D", "b000000002", "c000000003")

	out, _, err := runCmd(t, "tree")
	require.NoError(t, err)
	assert.Equal(t, "a  A\n"+
		"├── b  B\n"+
		"└── c  C\n"+
		"    └── d  D  (blocked by: b, c)\n", out)
}

func TestTree_ClosedBlockersDropOut(t *testing.T) {
	env := setupCLI(t, "a000000001", "b000000002", "c000000003")
	env.create(t, "A")
	env.create(t, "B", "a000000001")
	env.create(t, "C")
	_, _, err := TaskMgr.CloseTask("a", "")
	require.NoError(t, err)

	out, _, err := runCmd(t, "tree")
	require.NoError(t, err)
	assert.Equal(t, "b  B\nc  C\n", out)
}

func TestTree_CycleIsReported(t *testing.T) {
	env := setupCLI(t, "a000000001", "b000000002", "c000000003")
	env.create(t, "A")
	env.create(t, "B")
	env.create(t, "C")
	env.setBlockers(t, "a", "b000000002")
	env.setBlockers(t, "b", "a000000001")

	el, err := observability.NewJSONLEventLog(filepath.Join(env.root, ".tasks", "events.jsonl"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = el.Close() })
	EventLog = el

	out, errOut, err := runCmd(t, "tree")
	require.NoError(t, err)
	assert.Equal(t, "c  C\n", out)
	assert.Equal(t, "warning: dependency cycle, not shown: a, b\n", errOut)

	events, err := el.Read(observability.EventFilter{Type: observability.EventCycleDetected})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "WARN", events[0].Level)
	assert.Equal(t, []any{"a000000001", "b000000002"}, events[0].Data["task_ids"])
}

func TestTree_SelfBlockIsACycle(t *testing.T) {
	env := setupCLI(t, "a000000001")
	env.create(t, "A")
	env.setBlockers(t, "a", models.TaskID("a000000001"))

	out, errOut, err := runCmd(t, "tree")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "not shown: a")
}

func TestTree_Empty(t *testing.T) {
	setupCLI(t)
	out, errOut, err := runCmd(t, "tree")
	require.NoError(t, err)
	assert.Equal(t, "No active tasks.\n", out)
	assert.Empty(t, errOut)
}

func TestTree_OnlyInactiveTasks(t *testing.T) {
	env := setupCLI(t, "a000000001")
	env.create(t, "A")
	_, _, err := runCmd(t, "close", "a")
	require.NoError(t, err)

	out, _, err := runCmd(t, "tree")
	require.NoError(t, err)
	assert.Equal(t, "No active tasks.\n", out)
}
