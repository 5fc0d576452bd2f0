// Package taskpath maps task statuses to their directories on disk.
// This package exists so storage, core and cli agree on the layout without
// inspecting path strings themselves.
package taskpath

import (
	"path/filepath"
	"strings"

	"github.com/valter-silva-au/bt/pkg/models"
)

// TasksDir is the directory under the project root that holds all records.
const TasksDir = ".tasks"

// RecordExt is the filename extension of a task record.
const RecordExt = ".md"

// statusDirs is the single source of truth for the status <-> directory
// mapping.
var statusDirs = map[models.Status]string{
	models.StatusOpen:       "open",
	models.StatusInProgress: "in-progress",
	models.StatusBlocked:    "blocked",
	models.StatusClosed:     "closed",
	models.StatusCancelled:  "cancelled",
}

// Base returns the .tasks directory for a project root.
func Base(root string) string {
	return filepath.Join(root, TasksDir)
}

// StatusDir returns the directory holding tasks in the given status.
func StatusDir(root string, status models.Status) string {
	return filepath.Join(Base(root), statusDirs[status])
}

// TaskFile returns the record path for a task in the given status.
func TaskFile(root string, status models.Status, id models.TaskID) string {
	return filepath.Join(StatusDir(root, status), FileName(id))
}

// FileName returns the record filename for an id.
func FileName(id models.TaskID) string {
	return string(id) + RecordExt
}

// IDFromFile returns the task id encoded in a record filename. ok is false
// for hidden files and files without the record extension.
func IDFromFile(name string) (models.TaskID, bool) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, RecordExt) {
		return "", false
	}
	id := strings.TrimSuffix(base, RecordExt)
	if id == "" {
		return "", false
	}
	return models.TaskID(id), true
}

// StatusFromPath derives the status from the name of the directory that
// contains path. It does not touch the filesystem.
func StatusFromPath(path string) (models.Status, bool) {
	dir := filepath.Base(filepath.Dir(path))
	for status, name := range statusDirs {
		if name == dir {
			return status, true
		}
	}
	return "", false
}
