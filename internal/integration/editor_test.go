package integration

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEditor(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want []string
	}{
		{"visual wins", map[string]string{"VISUAL": "nano", "EDITOR": "vim"}, []string{"nano"}},
		{"editor fallback", map[string]string{"EDITOR": "code --wait"}, []string{"code", "--wait"}},
		{"blank visual ignored", map[string]string{"VISUAL": "  ", "EDITOR": "vim"}, []string{"vim"}},
		{"default", nil, []string{DefaultEditor}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveEditor(func(k string) string { return tt.env[k] })
			assert.Equal(t, tt.want, got)
		})
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-editor.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestEditor_Edit_RunsCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script editor")
	}
	script := writeScript(t, `echo "edited" >> "$1"`)
	t.Setenv("VISUAL", script)

	target := filepath.Join(t.TempDir(), "task.md")
	require.NoError(t, os.WriteFile(target, []byte("body\n"), 0o644))

	var out bytes.Buffer
	ed := NewEditor(nil, &out, &out)
	assert.Equal(t, []string{script}, ed.Command())
	require.NoError(t, ed.Edit(target))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "body\nedited\n", string(data))
}

func TestEditor_Edit_NonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script editor")
	}
	t.Setenv("VISUAL", writeScript(t, "exit 3"))

	err := NewEditor(nil, nil, nil).Edit(filepath.Join(t.TempDir(), "x.md"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code 3")
}

func TestEditor_Edit_MissingBinary(t *testing.T) {
	t.Setenv("VISUAL", filepath.Join(t.TempDir(), "no-such-editor"))

	err := NewEditor(nil, nil, nil).Edit("x.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running editor")
}
