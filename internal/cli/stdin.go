package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// stdinIsTerminal and stdin are swapped in tests.
var (
	stdinIsTerminal = func() bool {
		fd := os.Stdin.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	stdin io.Reader = os.Stdin
)

// readPipedStdin returns trimmed stdin content when input is piped. ok is
// false when stdin is a terminal or the pipe was empty.
func readPipedStdin() (string, bool, error) {
	if stdinIsTerminal() {
		return "", false, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", false, fmt.Errorf("reading stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	return text, text != "", nil
}
