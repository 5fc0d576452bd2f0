// Package ui holds terminal styling shared by the CLI and the board.
package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/valter-silva-au/bt/pkg/models"
)

// ANSI256 colors.
const (
	colorGreen  = "42"
	colorRed    = "196"
	colorYellow = "220"
	colorBlue   = "74"
	colorMuted  = "245"
	colorAccent = "62"
)

// Palette renders text in the bt colors. A disabled palette returns its
// input unchanged.
type Palette struct {
	enabled bool

	ready   lipgloss.Style
	blocked lipgloss.Style
	warn    lipgloss.Style
	id      lipgloss.Style
	muted   lipgloss.Style
	header  lipgloss.Style
}

// NewPalette creates a palette writing to w. When enabled, color is forced
// regardless of whether w is a terminal; the caller has already decided.
func NewPalette(w io.Writer, enabled bool) Palette {
	r := lipgloss.NewRenderer(w)
	if enabled {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return Palette{
		enabled: enabled,
		ready:   r.NewStyle().Foreground(lipgloss.Color(colorGreen)),
		blocked: r.NewStyle().Foreground(lipgloss.Color(colorRed)),
		warn:    r.NewStyle().Foreground(lipgloss.Color(colorYellow)).Bold(true),
		id:      r.NewStyle().Foreground(lipgloss.Color(colorBlue)),
		muted:   r.NewStyle().Foreground(lipgloss.Color(colorMuted)),
		header:  r.NewStyle().Foreground(lipgloss.Color(colorAccent)).Bold(true),
	}
}

// Enabled reports whether the palette emits escape sequences.
func (p Palette) Enabled() bool { return p.enabled }

func (p Palette) render(s lipgloss.Style, text string) string {
	if !p.enabled || text == "" {
		return text
	}
	return s.Render(text)
}

// Ready renders text in green.
func (p Palette) Ready(text string) string { return p.render(p.ready, text) }

// Blocked renders text in red.
func (p Palette) Blocked(text string) string { return p.render(p.blocked, text) }

// Warn renders a warning.
func (p Palette) Warn(text string) string { return p.render(p.warn, text) }

// ID renders a task id or prefix.
func (p Palette) ID(text string) string { return p.render(p.id, text) }

// Muted renders secondary text such as timestamps.
func (p Palette) Muted(text string) string { return p.render(p.muted, text) }

// Header renders a section header.
func (p Palette) Header(text string) string { return p.render(p.header, text) }

// Status renders text in the color associated with status.
func (p Palette) Status(status models.Status, text string) string {
	switch status {
	case models.StatusOpen:
		return p.Ready(text)
	case models.StatusBlocked:
		return p.Blocked(text)
	case models.StatusInProgress:
		return p.render(p.warn.UnsetBold(), text)
	default:
		return p.Muted(text)
	}
}

// Priority renders a priority label, emphasising the urgent ones.
func (p Palette) Priority(priority models.Priority) string {
	switch priority {
	case models.PriorityCritical:
		return p.Blocked(string(priority))
	case models.PriorityHigh:
		return p.render(p.warn.UnsetBold(), string(priority))
	case models.PriorityLow:
		return p.Muted(string(priority))
	default:
		return string(priority)
	}
}
