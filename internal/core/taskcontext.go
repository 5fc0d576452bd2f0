package core

import (
	"fmt"

	"github.com/valter-silva-au/bt/pkg/models"
)

// BlockerInfo describes one entry of a task's blocked_by list. Missing is
// set for dangling references, which count as resolved.
type BlockerInfo struct {
	ID      models.TaskID
	Status  models.Status
	Title   string
	Missing bool
}

// Resolved reports whether the blocker no longer holds the task back.
func (b BlockerInfo) Resolved() bool {
	return b.Missing || b.Status.IsTerminal()
}

// TaskContext gathers what someone picking up a task needs to know.
type TaskContext struct {
	Entry      models.Entry
	Blockers   []BlockerInfo
	Dependents []models.Entry
	Recent     []models.LogEntry
}

// Ready reports whether the task is active with every blocker resolved.
func (c *TaskContext) Ready() bool {
	if c.Entry.Status != models.StatusOpen && c.Entry.Status != models.StatusInProgress {
		return false
	}
	for _, b := range c.Blockers {
		if !b.Resolved() {
			return false
		}
	}
	return true
}

// BuildTaskContext resolves idOrPrefix and collects its blockers, the tasks
// it blocks and its most recent log entries, newest first.
func BuildTaskContext(tm TaskManager, lister TaskLister, idOrPrefix string, recent int) (*TaskContext, error) {
	entry, err := tm.GetTask(idOrPrefix)
	if err != nil {
		return nil, err
	}
	all, err := lister.ListAll()
	if err != nil {
		return nil, fmt.Errorf("building context for %s: %w", entry.Task.ID, err)
	}
	byID := make(map[models.TaskID]models.Entry, len(all))
	for _, e := range all {
		byID[e.Task.ID] = e
	}

	ctx := &TaskContext{Entry: entry}
	for _, id := range entry.Task.BlockedBy {
		b, ok := byID[id]
		if !ok {
			ctx.Blockers = append(ctx.Blockers, BlockerInfo{ID: id, Missing: true})
			continue
		}
		ctx.Blockers = append(ctx.Blockers, BlockerInfo{ID: id, Status: b.Status, Title: b.Task.Title})
	}
	for _, e := range all {
		if e.Task.IsBlockedBy(entry.Task.ID) {
			ctx.Dependents = append(ctx.Dependents, e)
		}
	}

	logs := ParseLog(entry.Task.Log)
	for i := len(logs) - 1; i >= 0 && (recent <= 0 || len(ctx.Recent) < recent); i-- {
		ctx.Recent = append(ctx.Recent, logs[i])
	}
	return ctx, nil
}
