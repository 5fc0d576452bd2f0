package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valter-silva-au/bt/internal/taskpath"
	"github.com/valter-silva-au/bt/pkg/models"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	root := t.TempDir()
	_, err := Init(root)
	require.NoError(t, err)
	s, err := Open(root)
	require.NoError(t, err)
	return s
}

var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func createTask(t *testing.T, s Store, id models.TaskID, title string, offset time.Duration, blockers ...models.TaskID) string {
	t.Helper()
	task := models.NewTask(id, title, "tester", baseTime.Add(offset))
	task.BlockedBy = blockers
	path, err := s.Create(task)
	require.NoError(t, err)
	return path
}

func moveTask(t *testing.T, s Store, path string, status models.Status) string {
	t.Helper()
	dest, err := s.MoveToStatus(path, status)
	require.NoError(t, err)
	return dest
}

func TestInit_IsIdempotent(t *testing.T) {
	root := t.TempDir()

	created, err := Init(root)
	require.NoError(t, err)
	assert.Len(t, created, len(models.AllStatuses))

	created, err = Init(root)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestOpen_NotInitialized(t *testing.T) {
	root := t.TempDir()
	_, err := Open(root)
	assert.ErrorIs(t, err, ErrNotInitialized)

	// A partial layout is still uninitialized.
	require.NoError(t, os.MkdirAll(taskpath.StatusDir(root, models.StatusOpen), 0o755))
	_, err = Open(root)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestCreate_WritesToOpen(t *testing.T) {
	s := newTestStore(t)
	path := createTask(t, s, "abc123", "First", 0)

	assert.Equal(t, taskpath.TaskFile(s.Root(), models.StatusOpen, "abc123"), path)
	st, ok := s.StatusFromPath(path)
	assert.True(t, ok)
	assert.Equal(t, models.StatusOpen, st)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(filePerms), info.Mode().Perm())
}

func TestCreate_RejectsDuplicateAcrossStatuses(t *testing.T) {
	s := newTestStore(t)
	path := createTask(t, s, "abc123", "First", 0)
	moveTask(t, s, path, models.StatusClosed)

	_, err := s.Create(models.NewTask("abc123", "Again", "", baseTime))
	assert.Error(t, err)
}

func TestCreate_RejectsBadIDs(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create(models.NewTask("", "No id", "", baseTime))
	assert.Error(t, err)
	_, err = s.Create(models.NewTask("../escape", "Traversal", "", baseTime))
	assert.Error(t, err)
}

func TestLoadSave(t *testing.T) {
	s := newTestStore(t)
	path := createTask(t, s, "abc123", "First", 0)

	task, err := s.Load(path)
	require.NoError(t, err)
	task.Title = "Renamed"
	task.Tags = []string{"x"}
	require.NoError(t, s.Save(task, path))

	reloaded, err := s.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", reloaded.Title)
	assert.Equal(t, []string{"x"}, reloaded.Tags)
}

func TestSave_RejectsForeignPath(t *testing.T) {
	s := newTestStore(t)
	path := createTask(t, s, "abc123", "First", 0)
	task, err := s.Load(path)
	require.NoError(t, err)

	other := filepath.Join(filepath.Dir(path), "zzz999.md")
	assert.Error(t, s.Save(task, other))
}

func TestLoad_Missing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load(taskpath.TaskFile(s.Root(), models.StatusOpen, "nope"))
	assert.True(t, IsNotFound(err), "expected NotFoundError, got %v", err)
}

func TestMoveToStatus(t *testing.T) {
	s := newTestStore(t)
	path := createTask(t, s, "abc123", "First", 0)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	dest := moveTask(t, s, path, models.StatusInProgress)
	assert.Equal(t, taskpath.TaskFile(s.Root(), models.StatusInProgress, "abc123"), dest)
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "old path should be gone")

	after, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, before, after, "moving must not rewrite content")

	same := moveTask(t, s, dest, models.StatusInProgress)
	assert.Equal(t, dest, same)
}

func TestFind(t *testing.T) {
	s := newTestStore(t)
	abc := createTask(t, s, "abc123", "One", 0)
	abd := createTask(t, s, "abd456", "Two", time.Minute)
	ab := createTask(t, s, "ab", "Three", 2*time.Minute)
	closed := moveTask(t, s, createTask(t, s, "xyz789", "Four", 3*time.Minute), models.StatusClosed)

	tests := []struct {
		query string
		want  string
	}{
		{"abc", abc},
		{"abc123", abc},
		{"abd", abd},
		{"ab", ab},
		{"x", closed},
	}
	for _, tt := range tests {
		got, err := s.Find(tt.query)
		require.NoError(t, err, "Find(%q)", tt.query)
		assert.Equal(t, tt.want, got, "Find(%q)", tt.query)
	}

	_, err := s.Find("a")
	var ambiguous *AmbiguousPrefixError
	require.True(t, errors.As(err, &ambiguous), "expected AmbiguousPrefixError, got %v", err)
	assert.Equal(t, []models.TaskID{"ab", "abc123", "abd456"}, ambiguous.Candidates)

	_, err = s.Find("q")
	assert.True(t, IsNotFound(err))
	_, err = s.Find("")
	assert.True(t, IsNotFound(err))
}

func TestListAll_OrderAndFiltering(t *testing.T) {
	s := newTestStore(t)
	createTask(t, s, "late", "Late", 2*time.Hour)
	createTask(t, s, "early", "Early", time.Hour)
	moveTask(t, s, createTask(t, s, "done", "Done", 0), models.StatusClosed)
	moveTask(t, s, createTask(t, s, "wip", "Wip", 3*time.Hour), models.StatusInProgress)

	// Non-record files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(taskpath.StatusDir(s.Root(), models.StatusOpen), ".draft.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(taskpath.StatusDir(s.Root(), models.StatusOpen), "README.txt"), []byte("x"), 0o644))

	all, err := s.ListAll()
	require.NoError(t, err)
	var ids []models.TaskID
	for _, e := range all {
		ids = append(ids, e.Task.ID)
	}
	assert.Equal(t, []models.TaskID{"early", "late", "wip", "done"}, ids)

	active, err := s.ListActive()
	require.NoError(t, err)
	assert.Len(t, active, 3)
	for _, e := range active {
		assert.True(t, e.Status.IsActive())
	}
}

func TestListAll_MalformedRecordFails(t *testing.T) {
	s := newTestStore(t)
	createTask(t, s, "good", "Good", 0)
	bad := taskpath.TaskFile(s.Root(), models.StatusOpen, "bad")
	require.NoError(t, os.WriteFile(bad, []byte("not a record"), 0o644))

	_, err := s.ListAll()
	var malformed *MalformedRecordError
	require.True(t, errors.As(err, &malformed), "expected MalformedRecordError, got %v", err)
	assert.Equal(t, bad, malformed.Path)
}

func TestListReady(t *testing.T) {
	s := newTestStore(t)
	blocker := createTask(t, s, "blocker", "Blocker", 0)
	createTask(t, s, "waiting", "Waiting", time.Minute, "blocker")
	createTask(t, s, "dangling", "Dangling", 2*time.Minute, "ghost")
	moveTask(t, s, createTask(t, s, "stuck", "Stuck", 3*time.Minute), models.StatusBlocked)

	ready, err := s.ListReady()
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.TaskID{"blocker", "dangling"}, entryIDs(ready))

	moveTask(t, s, blocker, models.StatusCancelled)
	ready, err = s.ListReady()
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.TaskID{"waiting", "dangling"}, entryIDs(ready))
}

func entryIDs(entries []models.Entry) []models.TaskID {
	ids := make([]models.TaskID, len(entries))
	for i, e := range entries {
		ids[i] = e.Task.ID
	}
	return ids
}

func TestFindRoot(t *testing.T) {
	project := t.TempDir()
	_, err := Init(project)
	require.NoError(t, err)
	nested := filepath.Join(project, "src", "pkg")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, err := FindRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, project, got)

	got, err = FindRoot(project)
	require.NoError(t, err)
	assert.Equal(t, project, got)
}

func TestFindRoot_StopsAtRepositoryBoundary(t *testing.T) {
	outer := t.TempDir()
	_, err := Init(outer)
	require.NoError(t, err)

	repo := filepath.Join(outer, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))
	inner := filepath.Join(repo, "cmd")
	require.NoError(t, os.MkdirAll(inner, 0o755))

	_, err = FindRoot(inner)
	assert.ErrorIs(t, err, ErrNotInitialized)
}
