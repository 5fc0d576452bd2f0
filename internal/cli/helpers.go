package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/bt/internal/core"
	"github.com/valter-silva-au/bt/pkg/models"
)

// requireTasks reports why task commands cannot run.
func requireTasks() error {
	if TaskMgr != nil && Tasks != nil {
		return nil
	}
	if RootErr != nil {
		return RootErr
	}
	return fmt.Errorf("task manager not initialized")
}

// shortIDs resolves display prefixes against every task, closed ones
// included, so a printed prefix always works as input.
func shortIDs() (*core.PrefixResolver, error) {
	r, err := core.NewPrefixResolver(Tasks)
	if err != nil {
		return nil, fmt.Errorf("resolving short ids: %w", err)
	}
	return r, nil
}

// runBatch applies fn to every id. A failure is reported on stderr and does
// not stop the remaining ids; the returned error summarises the failures.
func runBatch(cmd *cobra.Command, ids []string, fn func(id string) error) error {
	failed := 0
	for _, id := range ids {
		if err := fn(id); err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %v\n", Colors.Blocked("error:"), id, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d task(s) failed", failed, len(ids))
	}
	return nil
}

// logDanglingBlockers notes blocked_by references to tasks that do not
// exist. They count as resolved.
func logDanglingBlockers(entries []models.Entry) {
	statuses := models.StatusIndex(entries)
	for _, e := range entries {
		for _, b := range e.Task.BlockedBy {
			if _, ok := statuses[b]; !ok {
				Logger.Debug("dangling blocker treated as resolved", "task", e.Task.ID, "blocker", b)
			}
		}
	}
}

// splitList parses a comma-separated flag value.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parsePriorityFlag(s string) (models.Priority, error) {
	p, err := models.ParsePriority(s)
	if err != nil {
		return "", fmt.Errorf("parsing --priority: %w", err)
	}
	return p, nil
}
