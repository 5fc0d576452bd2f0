package integration

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// DefaultEditor is used when neither VISUAL nor EDITOR is set.
const DefaultEditor = "vi"

// Editor opens a file in the user's editor and waits for it to exit.
type Editor interface {
	Edit(path string) error
	// Command returns the resolved editor command line.
	Command() []string
}

type externalEditor struct {
	command []string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// NewEditor resolves the editor from $VISUAL, then $EDITOR, then vi. The
// value may carry arguments, e.g. "code --wait".
func NewEditor(stdin io.Reader, stdout, stderr io.Writer) Editor {
	return &externalEditor{
		command: ResolveEditor(os.Getenv),
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
	}
}

// ResolveEditor returns the editor command line according to getenv.
func ResolveEditor(getenv func(string) string) []string {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(getenv(key)); len(fields) > 0 {
			return fields
		}
	}
	return []string{DefaultEditor}
}

func (e *externalEditor) Command() []string {
	return append([]string(nil), e.command...)
}

// Edit runs the editor with path as its final argument attached to the
// given terminal streams.
func (e *externalEditor) Edit(path string) error {
	args := append(e.command[1:len(e.command):len(e.command)], path)
	cmd := exec.Command(e.command[0], args...)
	cmd.Stdin = e.stdin
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("editor %s exited with code %d", e.command[0], exitErr.ExitCode())
		}
		return fmt.Errorf("running editor %s: %w", e.command[0], err)
	}
	return nil
}
