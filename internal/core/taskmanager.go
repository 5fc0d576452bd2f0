package core

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valter-silva-au/bt/pkg/models"
)

// ErrInvalidTransition is wrapped when a status change is not allowed from
// the task's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrWouldCycle is returned when adding a blocker would make a task depend
// on itself.
var ErrWouldCycle = errors.New("blocker would create a dependency cycle")

// CreateOptions describes a new task.
type CreateOptions struct {
	Title    string
	Priority models.Priority
	Tags     []string
	// BlockedBy holds ids or unambiguous prefixes of existing tasks.
	BlockedBy []string
	Body      string
}

// UpdateOptions lists field changes. Nil pointers leave a field unchanged.
type UpdateOptions struct {
	Title      *string
	Priority   *models.Priority
	Tags       *[]string
	AddTags    []string
	RemoveTags []string
	Body       *string
}

// TaskManager defines the interface for task lifecycle operations. All
// methods accept an exact id or an unambiguous prefix.
type TaskManager interface {
	CreateTask(opts CreateOptions) (models.Entry, error)
	GetTask(idOrPrefix string) (models.Entry, error)
	StartTask(idOrPrefix string) (models.Entry, error)
	StopTask(idOrPrefix string) (models.Entry, error)
	CloseTask(idOrPrefix, reason string) (models.Entry, []models.Entry, error)
	CancelTask(idOrPrefix, reason string) (models.Entry, []models.Entry, error)
	ReopenTask(idOrPrefix string) (models.Entry, error)
	BlockTask(idOrPrefix, blockerRef string) (models.Entry, error)
	UnblockTask(idOrPrefix, blockerRef string) (models.Entry, error)
	LogTask(idOrPrefix, message string) (models.Entry, error)
	UpdateTask(idOrPrefix string, opts UpdateOptions) (models.Entry, error)
	TouchTask(idOrPrefix string) (models.Entry, error)
	ImportTasks(file ImportFile) ([]models.Entry, error)
}

// taskManager implements TaskManager on top of a TaskStore. The author is
// resolved by the caller and passed in explicitly.
type taskManager struct {
	store  TaskStore
	ids    TaskIDGenerator
	author string
	events EventLogger
	logger *slog.Logger
	now    func() time.Time
}

// NewTaskManager creates a new TaskManager with all dependencies injected.
// events and logger may be nil.
func NewTaskManager(store TaskStore, ids TaskIDGenerator, author string, events EventLogger, logger *slog.Logger) TaskManager {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(author) == "" {
		author = UnknownAuthor
	}
	return &taskManager{
		store:  store,
		ids:    ids,
		author: author,
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// CreateTask writes a new task into open, then moves it to blocked when any
// of its blockers is still unresolved.
func (tm *taskManager) CreateTask(opts CreateOptions) (models.Entry, error) {
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		return models.Entry{}, fmt.Errorf("creating task: title must not be empty")
	}

	blockers, unresolved, err := tm.resolveBlockers(opts.BlockedBy)
	if err != nil {
		return models.Entry{}, fmt.Errorf("creating task: %w", err)
	}

	id, err := tm.ids.GenerateTaskID()
	if err != nil {
		return models.Entry{}, fmt.Errorf("creating task: %w", err)
	}

	task := models.NewTask(id, title, tm.author, tm.now())
	if opts.Priority != "" {
		task.Priority = opts.Priority
	}
	task.Tags = normalizeTags(opts.Tags)
	task.BlockedBy = blockers
	task.Body = NormalizeBody(opts.Body)

	path, err := tm.store.Create(task)
	if err != nil {
		return models.Entry{}, fmt.Errorf("creating task: %w", err)
	}
	entry := models.Entry{Path: path, Status: models.StatusOpen, Task: task}

	if unresolved {
		if entry, err = tm.move(entry, models.StatusBlocked); err != nil {
			return models.Entry{}, fmt.Errorf("creating task: %w", err)
		}
	}

	tm.logEvent("task.created", map[string]any{
		"task_id":  string(id),
		"title":    title,
		"priority": string(task.Priority),
		"status":   string(entry.Status),
	})
	return entry, nil
}

// GetTask resolves and loads a task.
func (tm *taskManager) GetTask(idOrPrefix string) (models.Entry, error) {
	path, err := tm.store.Find(idOrPrefix)
	if err != nil {
		return models.Entry{}, err
	}
	task, err := tm.store.Load(path)
	if err != nil {
		return models.Entry{}, err
	}
	status, ok := tm.store.StatusFromPath(path)
	if !ok {
		return models.Entry{}, fmt.Errorf("task %s is outside any status directory: %s", task.ID, path)
	}
	return models.Entry{Path: path, Status: status, Task: task}, nil
}

// StartTask moves an open task to in-progress.
func (tm *taskManager) StartTask(idOrPrefix string) (models.Entry, error) {
	return tm.transition(idOrPrefix, "start", models.StatusInProgress, models.StatusOpen)
}

// StopTask moves an in-progress task back to open.
func (tm *taskManager) StopTask(idOrPrefix string) (models.Entry, error) {
	return tm.transition(idOrPrefix, "stop", models.StatusOpen, models.StatusInProgress)
}

// CloseTask moves an active task to closed and opens any blocked
// dependents whose blockers are now all resolved.
func (tm *taskManager) CloseTask(idOrPrefix, reason string) (models.Entry, []models.Entry, error) {
	return tm.finish(idOrPrefix, "close", models.StatusClosed, reason)
}

// CancelTask is CloseTask for work that will not be done.
func (tm *taskManager) CancelTask(idOrPrefix, reason string) (models.Entry, []models.Entry, error) {
	return tm.finish(idOrPrefix, "cancel", models.StatusCancelled, reason)
}

// ReopenTask moves a closed or cancelled task back to open.
func (tm *taskManager) ReopenTask(idOrPrefix string) (models.Entry, error) {
	return tm.transition(idOrPrefix, "reopen", models.StatusOpen, models.StatusClosed, models.StatusCancelled)
}

func (tm *taskManager) transition(idOrPrefix, verb string, to models.Status, from ...models.Status) (models.Entry, error) {
	entry, err := tm.GetTask(idOrPrefix)
	if err != nil {
		return models.Entry{}, err
	}
	if !containsStatus(from, entry.Status) {
		return models.Entry{}, fmt.Errorf("cannot %s task %s: status is %s: %w", verb, entry.Task.ID, entry.Status, ErrInvalidTransition)
	}
	return tm.move(entry, to)
}

func (tm *taskManager) finish(idOrPrefix, verb string, to models.Status, reason string) (models.Entry, []models.Entry, error) {
	entry, err := tm.GetTask(idOrPrefix)
	if err != nil {
		return models.Entry{}, nil, err
	}
	if !entry.Status.IsActive() {
		return models.Entry{}, nil, fmt.Errorf("cannot %s task %s: status is %s: %w", verb, entry.Task.ID, entry.Status, ErrInvalidTransition)
	}

	if reason = strings.TrimSpace(reason); reason != "" {
		now := tm.now()
		AppendLog(entry.Task, now, tm.author, reason)
		entry.Task.Updated = now
		if err := tm.store.Save(entry.Task, entry.Path); err != nil {
			return models.Entry{}, nil, fmt.Errorf("recording %s reason for %s: %w", verb, entry.Task.ID, err)
		}
	}

	entry, err = tm.move(entry, to)
	if err != nil {
		return models.Entry{}, nil, err
	}

	unblocked, err := tm.unblockDependents(entry.Task.ID)
	if err != nil {
		return entry, nil, err
	}
	return entry, unblocked, nil
}

// unblockDependents opens blocked tasks that list id as a blocker and have
// no unresolved blockers left.
func (tm *taskManager) unblockDependents(id models.TaskID) ([]models.Entry, error) {
	all, err := tm.store.ListAll()
	if err != nil {
		return nil, fmt.Errorf("unblocking dependents of %s: %w", id, err)
	}
	statuses := models.StatusIndex(all)

	var unblocked []models.Entry
	for _, e := range all {
		if e.Status != models.StatusBlocked || !e.Task.IsBlockedBy(id) {
			continue
		}
		if !models.BlockersResolved(e.Task, statuses) {
			continue
		}
		moved, err := tm.move(e, models.StatusOpen)
		if err != nil {
			return unblocked, fmt.Errorf("unblocking %s: %w", e.Task.ID, err)
		}
		unblocked = append(unblocked, moved)
	}
	return unblocked, nil
}

// BlockTask records blockerRef as a blocker of the task. A non-terminal
// task moves to blocked when the new blocker is unresolved.
func (tm *taskManager) BlockTask(idOrPrefix, blockerRef string) (models.Entry, error) {
	entry, err := tm.GetTask(idOrPrefix)
	if err != nil {
		return models.Entry{}, err
	}
	blocker, err := tm.GetTask(blockerRef)
	if err != nil {
		return models.Entry{}, fmt.Errorf("resolving blocker: %w", err)
	}
	if blocker.Task.ID == entry.Task.ID {
		return models.Entry{}, fmt.Errorf("task %s cannot block itself: %w", entry.Task.ID, ErrWouldCycle)
	}

	all, err := tm.store.ListAll()
	if err != nil {
		return models.Entry{}, fmt.Errorf("checking dependencies: %w", err)
	}
	if dependsOn(all, blocker.Task.ID, entry.Task.ID) {
		return models.Entry{}, fmt.Errorf("%s already depends on %s: %w", blocker.Task.ID, entry.Task.ID, ErrWouldCycle)
	}

	if !entry.Task.IsBlockedBy(blocker.Task.ID) {
		entry.Task.BlockedBy = append(entry.Task.BlockedBy, blocker.Task.ID)
		entry.Task.Updated = tm.now()
		if err := tm.store.Save(entry.Task, entry.Path); err != nil {
			return models.Entry{}, fmt.Errorf("saving task %s: %w", entry.Task.ID, err)
		}
		tm.logEvent("task.updated", map[string]any{
			"task_id":    string(entry.Task.ID),
			"blocked_by": string(blocker.Task.ID),
		})
	}

	if !blocker.Status.IsTerminal() && !entry.Status.IsTerminal() && entry.Status != models.StatusBlocked {
		return tm.move(entry, models.StatusBlocked)
	}
	return entry, nil
}

// dependsOn reports whether from transitively lists to as a blocker.
func dependsOn(all []models.Entry, from, to models.TaskID) bool {
	byID := make(map[models.TaskID]*models.Task, len(all))
	for _, e := range all {
		byID[e.Task.ID] = e.Task
	}
	seen := make(map[models.TaskID]bool)
	stack := []models.TaskID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		if t, ok := byID[id]; ok {
			stack = append(stack, t.BlockedBy...)
		}
	}
	return false
}

// UnblockTask removes a blocker. A blocked task with nothing unresolved
// left moves to open.
func (tm *taskManager) UnblockTask(idOrPrefix, blockerRef string) (models.Entry, error) {
	entry, err := tm.GetTask(idOrPrefix)
	if err != nil {
		return models.Entry{}, err
	}

	target, err := tm.blockerToRemove(entry.Task, blockerRef)
	if err != nil {
		return models.Entry{}, err
	}

	var kept []models.TaskID
	for _, b := range entry.Task.BlockedBy {
		if b != target {
			kept = append(kept, b)
		}
	}
	entry.Task.BlockedBy = kept
	entry.Task.Updated = tm.now()
	if err := tm.store.Save(entry.Task, entry.Path); err != nil {
		return models.Entry{}, fmt.Errorf("saving task %s: %w", entry.Task.ID, err)
	}
	tm.logEvent("task.updated", map[string]any{
		"task_id":         string(entry.Task.ID),
		"removed_blocker": string(target),
	})

	if entry.Status != models.StatusBlocked {
		return entry, nil
	}
	all, err := tm.store.ListAll()
	if err != nil {
		return models.Entry{}, fmt.Errorf("checking remaining blockers: %w", err)
	}
	if models.BlockersResolved(entry.Task, models.StatusIndex(all)) {
		return tm.move(entry, models.StatusOpen)
	}
	return entry, nil
}

// blockerToRemove matches ref against the task's own blocked_by list first,
// so dangling blockers can still be removed, then falls back to Find.
func (tm *taskManager) blockerToRemove(task *models.Task, ref string) (models.TaskID, error) {
	var matches []models.TaskID
	for _, b := range task.BlockedBy {
		if string(b) == ref {
			return b, nil
		}
		if ref != "" && b.HasPrefix(ref) {
			matches = append(matches, b)
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("blocker prefix %q is ambiguous for task %s", ref, task.ID)
	}

	blocker, err := tm.GetTask(ref)
	if err != nil {
		return "", fmt.Errorf("resolving blocker: %w", err)
	}
	if !task.IsBlockedBy(blocker.Task.ID) {
		return "", fmt.Errorf("task %s is not blocked by %s", task.ID, blocker.Task.ID)
	}
	return blocker.Task.ID, nil
}

// LogTask appends a log entry.
func (tm *taskManager) LogTask(idOrPrefix, message string) (models.Entry, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return models.Entry{}, fmt.Errorf("log message must not be empty")
	}
	entry, err := tm.GetTask(idOrPrefix)
	if err != nil {
		return models.Entry{}, err
	}

	now := tm.now()
	AppendLog(entry.Task, now, tm.author, message)
	entry.Task.Updated = now
	if err := tm.store.Save(entry.Task, entry.Path); err != nil {
		return models.Entry{}, fmt.Errorf("saving task %s: %w", entry.Task.ID, err)
	}
	tm.logEvent("task.logged", map[string]any{"task_id": string(entry.Task.ID)})
	return entry, nil
}

// UpdateTask applies field changes and bumps updated.
func (tm *taskManager) UpdateTask(idOrPrefix string, opts UpdateOptions) (models.Entry, error) {
	entry, err := tm.GetTask(idOrPrefix)
	if err != nil {
		return models.Entry{}, err
	}
	task := entry.Task
	var changed []string

	if opts.Title != nil {
		title := strings.TrimSpace(*opts.Title)
		if title == "" {
			return models.Entry{}, fmt.Errorf("updating task %s: title must not be empty", task.ID)
		}
		task.Title = title
		changed = append(changed, "title")
	}
	if opts.Priority != nil {
		task.Priority = *opts.Priority
		changed = append(changed, "priority")
	}
	if opts.Tags != nil {
		task.Tags = normalizeTags(*opts.Tags)
		changed = append(changed, "tags")
	}
	if len(opts.AddTags) > 0 {
		task.Tags = normalizeTags(append(task.Tags, opts.AddTags...))
		changed = append(changed, "tags")
	}
	if len(opts.RemoveTags) > 0 {
		var kept []string
		for _, tag := range task.Tags {
			if !containsFold(opts.RemoveTags, tag) {
				kept = append(kept, tag)
			}
		}
		task.Tags = kept
		changed = append(changed, "tags")
	}
	if opts.Body != nil {
		task.Body = NormalizeBody(*opts.Body)
		changed = append(changed, "body")
	}

	if len(changed) == 0 {
		return entry, nil
	}
	task.Updated = tm.now()
	if err := tm.store.Save(task, entry.Path); err != nil {
		return models.Entry{}, fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	tm.logEvent("task.updated", map[string]any{
		"task_id": string(task.ID),
		"fields":  changed,
	})
	return entry, nil
}

// TouchTask bumps updated after the record was changed outside the manager,
// for example by an editor. The record is re-parsed, so invalid edits are
// reported here.
func (tm *taskManager) TouchTask(idOrPrefix string) (models.Entry, error) {
	entry, err := tm.GetTask(idOrPrefix)
	if err != nil {
		return models.Entry{}, err
	}
	entry.Task.Updated = tm.now()
	if err := tm.store.Save(entry.Task, entry.Path); err != nil {
		return models.Entry{}, fmt.Errorf("saving task %s: %w", entry.Task.ID, err)
	}
	tm.logEvent("task.updated", map[string]any{
		"task_id": string(entry.Task.ID),
		"fields":  []string{"edited"},
	})
	return entry, nil
}

// move relocates the record and reports the change.
func (tm *taskManager) move(entry models.Entry, to models.Status) (models.Entry, error) {
	from := entry.Status
	path, err := tm.store.MoveToStatus(entry.Path, to)
	if err != nil {
		return models.Entry{}, fmt.Errorf("moving task %s to %s: %w", entry.Task.ID, to, err)
	}
	entry.Path = path
	entry.Status = to

	if from != to {
		tm.logger.Debug("task status changed", "id", entry.Task.ID, "from", from, "to", to)
		tm.logEvent("task.status_changed", map[string]any{
			"task_id": string(entry.Task.ID),
			"from":    string(from),
			"to":      string(to),
		})
	}
	return entry, nil
}

// resolveBlockers maps refs to ids. unresolved is true when any blocker is
// not yet closed or cancelled.
func (tm *taskManager) resolveBlockers(refs []string) ([]models.TaskID, bool, error) {
	var ids []models.TaskID
	unresolved := false
	seen := make(map[models.TaskID]bool)
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		blocker, err := tm.GetTask(ref)
		if err != nil {
			return nil, false, fmt.Errorf("resolving blocker %q: %w", ref, err)
		}
		if seen[blocker.Task.ID] {
			continue
		}
		seen[blocker.Task.ID] = true
		ids = append(ids, blocker.Task.ID)
		if !blocker.Status.IsTerminal() {
			unresolved = true
		}
	}
	return ids, unresolved, nil
}

// logEvent emits an event if an EventLogger is configured.
func (tm *taskManager) logEvent(eventType string, data map[string]any) {
	if tm.events == nil {
		return
	}
	if err := tm.events.LogEvent(eventType, data); err != nil {
		tm.logger.Warn("writing event failed", "type", eventType, "error", err)
	}
}

// normalizeTags trims tags and drops empties and case-insensitive
// duplicates, keeping the first spelling.
// NormalizeBody drops leading blank lines and trailing whitespace. Indentation
// of the first non-blank line is kept.
func NormalizeBody(body string) string {
	body = strings.TrimRight(strings.ReplaceAll(body, "\r\n", "\n"), " \t\r\n")
	for {
		line, rest, found := strings.Cut(body, "\n")
		if !found || strings.TrimSpace(line) != "" {
			return body
		}
		body = rest
	}
}

func normalizeTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || containsFold(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
