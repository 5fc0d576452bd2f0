package models

// Entry is a loaded task together with the record path that holds it. Status
// is derived from the path when the entry is listed.
type Entry struct {
	Path   string
	Status Status
	Task   *Task
}

// StatusIndex maps every task id in entries to its status.
func StatusIndex(entries []Entry) map[TaskID]Status {
	idx := make(map[TaskID]Status, len(entries))
	for _, e := range entries {
		idx[e.Task.ID] = e.Status
	}
	return idx
}

// BlockersResolved reports whether every blocker of task is closed,
// cancelled, or absent from statuses. Dangling references do not block.
func BlockersResolved(task *Task, statuses map[TaskID]Status) bool {
	for _, b := range task.BlockedBy {
		if st, ok := statuses[b]; ok && !st.IsTerminal() {
			return false
		}
	}
	return true
}

// IsReady reports whether e can be worked on now.
func IsReady(e Entry, statuses map[TaskID]Status) bool {
	if e.Status != StatusOpen && e.Status != StatusInProgress {
		return false
	}
	return BlockersResolved(e.Task, statuses)
}
