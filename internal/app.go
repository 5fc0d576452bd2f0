// Package internal provides the App struct that wires the bt components
// together and initializes the CLI layer.
package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/valter-silva-au/bt/internal/cli"
	"github.com/valter-silva-au/bt/internal/core"
	"github.com/valter-silva-au/bt/internal/integration"
	"github.com/valter-silva-au/bt/internal/observability"
	"github.com/valter-silva-au/bt/internal/storage"
	"github.com/valter-silva-au/bt/internal/taskpath"
	"github.com/valter-silva-au/bt/internal/ui"
	"github.com/valter-silva-au/bt/pkg/models"
)

// RootEnv overrides root discovery when set.
const RootEnv = "BT_ROOT"

// EventLogFile is the event log name inside .tasks/.
const EventLogFile = "events.jsonl"

// App holds all service dependencies for bt.
type App struct {
	// BasePath is the directory containing .tasks. It is empty when no
	// project was found.
	BasePath string

	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig
	Logger    *slog.Logger
	Author    string

	// Store and TaskMgr are nil when BasePath holds no usable .tasks layout.
	Store   storage.Store
	TaskMgr core.TaskManager

	// Observability, nil unless events are enabled.
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components for the project at basePath.
// rootErr explains why basePath is empty, if it is; commands that need
// tasks report it. Only configuration errors are returned.
func NewApp(basePath string, rootErr error) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg
	app.Logger = NewLogger(os.Stderr, cfg.LogLevel)

	cli.Logger = app.Logger
	cli.Colors = ui.NewPalette(os.Stdout, ui.ShouldUseColor(cfg.Color))
	cli.DefaultPriority = cfg.DefaultPriority
	cli.BasePath = basePath

	if basePath == "" {
		if rootErr == nil {
			rootErr = storage.ErrNotInitialized
		}
		cli.RootErr = rootErr
		return app, nil
	}

	// --- Storage layer ---
	store, err := storage.Open(basePath)
	if err != nil {
		app.Logger.Debug("task store unavailable", "root", basePath, "error", err)
		cli.RootErr = err
		return app, nil
	}
	app.Store = store

	// --- Observability ---
	var events core.EventLogger
	if cfg.EventsEnabled {
		app.EventLog, err = observability.NewJSONLEventLog(EventLogPath(basePath))
		if err != nil {
			// Non-fatal: task state never depends on the event log.
			app.Logger.Warn("event log disabled", "error", err)
			app.EventLog = nil
		}
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
		events = &eventLogAdapter{log: app.EventLog}
	}

	// --- Core services ---
	app.Author = integration.ResolveAuthor(cfg.Author, basePath)
	ids := core.NewTaskIDGenerator(func(id models.TaskID) bool {
		_, err := store.Find(string(id))
		return !storage.IsNotFound(err)
	})
	app.TaskMgr = core.NewTaskManager(store, ids, app.Author, events, app.Logger)

	// --- Wire CLI package-level variables ---
	cli.TaskMgr = app.TaskMgr
	cli.Tasks = app.Store
	cli.RootErr = nil
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath finds the project root: $BT_ROOT when set, otherwise the
// nearest ancestor of the working directory that contains .tasks.
func ResolveBasePath() (string, error) {
	if root := strings.TrimSpace(os.Getenv(RootEnv)); root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", RootEnv, err)
		}
		return abs, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	root, err := storage.FindRoot(cwd)
	if err != nil {
		return "", err
	}
	return root, nil
}

// EventLogPath returns the event log location for a project root.
func EventLogPath(root string) string {
	return filepath.Join(taskpath.Base(root), EventLogFile)
}

// NewLogger returns a text logger writing to w at the named level. Unknown
// levels fall back to warn.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   "INFO",
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}
