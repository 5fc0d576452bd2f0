package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/valter-silva-au/bt/internal/core"
	"github.com/valter-silva-au/bt/internal/integration"
	"github.com/valter-silva-au/bt/internal/observability"
	"github.com/valter-silva-au/bt/internal/ui"
	"github.com/valter-silva-au/bt/pkg/models"
)

// Service instances, set during app initialization in app.go. TaskMgr and
// Tasks are nil when no .tasks directory was found; RootErr says why.
var (
	TaskMgr  core.TaskManager
	Tasks    core.TaskStore
	BasePath string
	RootErr  error

	// DefaultPriority applies to new tasks created without --priority.
	DefaultPriority = models.DefaultPriority

	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator

	Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	Colors = ui.NewPalette(io.Discard, false)

	// NewEditor opens the user's editor; swapped in tests.
	NewEditor = func() integration.Editor {
		return integration.NewEditor(os.Stdin, os.Stdout, os.Stderr)
	}
)
