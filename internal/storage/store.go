package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/valter-silva-au/bt/internal/taskpath"
	"github.com/valter-silva-au/bt/pkg/models"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// Store defines the interface for the file-backed task repository. Status
// is never stored in a record: moving a file between status directories is
// the only way to change it.
type Store interface {
	Root() string
	ListAll() ([]models.Entry, error)
	ListActive() ([]models.Entry, error)
	ListReady() ([]models.Entry, error)
	Find(idOrPrefix string) (string, error)
	Load(path string) (*models.Task, error)
	Save(task *models.Task, path string) error
	Create(task *models.Task) (string, error)
	MoveToStatus(path string, status models.Status) (string, error)
	StatusFromPath(path string) (models.Status, bool)
}

type fileStore struct {
	root string
}

// Init creates the .tasks layout under root. Existing directories are left
// untouched; the returned slice lists only directories that were created.
func Init(root string) ([]string, error) {
	var created []string
	for _, st := range models.AllStatuses {
		dir := taskpath.StatusDir(root, st)
		if _, err := os.Stat(dir); err == nil {
			continue
		}
		if err := os.MkdirAll(dir, dirPerms); err != nil {
			return created, fmt.Errorf("creating %s: %w", dir, err)
		}
		created = append(created, dir)
	}
	return created, nil
}

// Open returns a Store rooted at root. It fails with ErrNotInitialized when
// any status directory is missing.
func Open(root string) (Store, error) {
	for _, st := range models.AllStatuses {
		info, err := os.Stat(taskpath.StatusDir(root, st))
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("opening store at %s: %w", root, ErrNotInitialized)
		}
	}
	return &fileStore{root: root}, nil
}

func (s *fileStore) Root() string {
	return s.root
}

// ListAll loads every record, grouped in status order and sorted by
// creation time within each status.
func (s *fileStore) ListAll() ([]models.Entry, error) {
	var all []models.Entry
	for _, st := range models.AllStatuses {
		entries, err := s.listStatus(st)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}
	return all, nil
}

// ListActive returns tasks in open, in-progress or blocked.
func (s *fileStore) ListActive() ([]models.Entry, error) {
	var active []models.Entry
	for _, st := range models.AllStatuses {
		if !st.IsActive() {
			continue
		}
		entries, err := s.listStatus(st)
		if err != nil {
			return nil, err
		}
		active = append(active, entries...)
	}
	return active, nil
}

// ListReady returns open or in-progress tasks whose blockers are all
// closed, cancelled, or missing from the archive.
func (s *fileStore) ListReady() ([]models.Entry, error) {
	all, err := s.ListAll()
	if err != nil {
		return nil, err
	}
	return Ready(all), nil
}

// Ready filters entries down to ready tasks, resolving blockers against the
// same entry set. Callers must pass the full archive for correct results.
func Ready(all []models.Entry) []models.Entry {
	statuses := models.StatusIndex(all)
	var ready []models.Entry
	for _, e := range all {
		if models.IsReady(e, statuses) {
			ready = append(ready, e)
		}
	}
	return ready
}

func (s *fileStore) listStatus(status models.Status) ([]models.Entry, error) {
	dir := taskpath.StatusDir(s.root, status)
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s tasks: %w", status, err)
	}

	var entries []models.Entry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		if _, ok := taskpath.IDFromFile(de.Name()); !ok {
			continue
		}
		path := filepath.Join(dir, de.Name())
		task, err := s.Load(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, models.Entry{Path: path, Status: status, Task: task})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Task, entries[j].Task
		if !a.Created.Equal(b.Created) {
			return a.Created.Before(b.Created)
		}
		return a.ID < b.ID
	})
	return entries, nil
}

// Find resolves an exact id or unambiguous prefix to a record path,
// searching every status directory. Only filenames are inspected.
func (s *fileStore) Find(idOrPrefix string) (string, error) {
	if idOrPrefix == "" {
		return "", &NotFoundError{ID: idOrPrefix}
	}

	paths := make(map[models.TaskID]string)
	var ids []models.TaskID
	for _, st := range models.AllStatuses {
		dir := taskpath.StatusDir(s.root, st)
		dirEntries, err := os.ReadDir(dir)
		if err != nil {
			return "", fmt.Errorf("searching %s tasks: %w", st, err)
		}
		for _, de := range dirEntries {
			id, ok := taskpath.IDFromFile(de.Name())
			if !ok || de.IsDir() {
				continue
			}
			if _, seen := paths[id]; seen {
				continue
			}
			paths[id] = filepath.Join(dir, de.Name())
			ids = append(ids, id)
		}
	}

	if path, ok := paths[models.TaskID(idOrPrefix)]; ok {
		return path, nil
	}

	var matches []models.TaskID
	for _, id := range ids {
		if id.HasPrefix(idOrPrefix) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ID: idOrPrefix}
	case 1:
		return paths[matches[0]], nil
	default:
		sort.Slice(matches, func(i, j int) bool { return matches[i] < matches[j] })
		return "", &AmbiguousPrefixError{Prefix: idOrPrefix, Candidates: matches}
	}
}

// Load reads and parses the record at path.
func (s *fileStore) Load(path string) (*models.Task, error) {
	id, ok := taskpath.IDFromFile(path)
	if !ok {
		return nil, &MalformedRecordError{Path: path, Reason: "not a task record filename"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{ID: string(id)}
		}
		return nil, fmt.Errorf("reading task %s: %w", id, err)
	}
	return UnmarshalRecord(id, path, data)
}

// Save rewrites the record at path without moving it.
func (s *fileStore) Save(task *models.Task, path string) error {
	id, ok := taskpath.IDFromFile(path)
	if !ok || id != task.ID {
		return fmt.Errorf("saving task %s: path %s does not belong to this task", task.ID, path)
	}
	return writeRecord(task, path)
}

// Create writes a new record into the open directory.
func (s *fileStore) Create(task *models.Task) (string, error) {
	if task.ID == "" {
		return "", fmt.Errorf("creating task: ID must not be empty")
	}
	if strings.ContainsAny(string(task.ID), `/\`) {
		return "", fmt.Errorf("creating task: invalid ID %q", task.ID)
	}
	for _, st := range models.AllStatuses {
		if _, err := os.Stat(taskpath.TaskFile(s.root, st, task.ID)); err == nil {
			return "", fmt.Errorf("creating task: task %s already exists", task.ID)
		}
	}

	path := taskpath.TaskFile(s.root, models.StatusOpen, task.ID)
	if err := writeRecord(task, path); err != nil {
		return "", err
	}
	return path, nil
}

// MoveToStatus renames the record into the directory for status and returns
// the new path. Content and id are unchanged.
func (s *fileStore) MoveToStatus(path string, status models.Status) (string, error) {
	id, ok := taskpath.IDFromFile(path)
	if !ok {
		return "", &MalformedRecordError{Path: path, Reason: "not a task record filename"}
	}
	if current, ok := taskpath.StatusFromPath(path); ok && current == status {
		return path, nil
	}

	dest := taskpath.TaskFile(s.root, status, id)
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("moving task %s to %s: destination already exists", id, status)
	}
	if err := os.Rename(path, dest); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &NotFoundError{ID: string(id)}
		}
		return "", fmt.Errorf("moving task %s to %s: %w", id, status, err)
	}
	return dest, nil
}

func (s *fileStore) StatusFromPath(path string) (models.Status, bool) {
	return taskpath.StatusFromPath(path)
}

func writeRecord(task *models.Task, path string) error {
	data, err := MarshalRecord(task)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing task %s: %w", task.ID, err)
	}
	// atomic.WriteFile creates its temp file with 0600.
	if err := os.Chmod(path, filePerms); err != nil {
		return fmt.Errorf("setting permissions on task %s: %w", task.ID, err)
	}
	return nil
}
