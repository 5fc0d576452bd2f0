package ui

import (
	"os"
	"strings"

	"github.com/valter-silva-au/bt/pkg/models"
	"golang.org/x/term"
)

// ShouldUseColor reports whether stdout should be styled. always and never
// are absolute; auto honours NO_COLOR, CLICOLOR_FORCE and CLICOLOR, then
// falls back to TTY detection.
func ShouldUseColor(mode models.ColorMode) bool {
	switch mode {
	case models.ColorAlways:
		return true
	case models.ColorNever:
		return false
	}
	// https://no-color.org: any non-empty value disables color.
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	return IsTerminal(os.Stdout)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of stdout, or fallback when it cannot
// be determined.
func Width(fallback int) int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
