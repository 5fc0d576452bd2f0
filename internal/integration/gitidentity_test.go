package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateGit points git at an empty global config so the host's identity
// does not leak into tests.
func isolateGit(t *testing.T, content string) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "gitconfig")
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0o644))
	t.Setenv("GIT_CONFIG_GLOBAL", cfg)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
}

func TestResolveAuthor_ConfiguredWins(t *testing.T) {
	assert.Equal(t, "Ada", ResolveAuthor("  Ada ", t.TempDir()))
}

func TestResolveAuthor_GitName(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	isolateGit(t, "[user]\n\tname = Grace Hopper\n")

	assert.Equal(t, "Grace Hopper", GitUserName(t.TempDir()))
	assert.Equal(t, "Grace Hopper", ResolveAuthor("", t.TempDir()))
}

func TestResolveAuthor_FallsBackToUser(t *testing.T) {
	if _, err := exec.LookPath("git"); err == nil {
		isolateGit(t, "")
	}
	t.Setenv("USER", "brian")
	assert.Equal(t, "brian", ResolveAuthor("", t.TempDir()))

	t.Setenv("USER", "")
	assert.Equal(t, UnknownAuthor, ResolveAuthor("", t.TempDir()))
}
