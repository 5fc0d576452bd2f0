package core

import (
	"fmt"
	"io"
	"strings"

	"github.com/valter-silva-au/bt/pkg/models"
	"gopkg.in/yaml.v3"
)

// ImportFile is the YAML document accepted by ImportTasks.
type ImportFile struct {
	Tasks []ImportTask `yaml:"tasks"`
}

// ImportTask is one task in an import file. Key is a name local to the file
// that other entries may list in BlockedBy. BlockedBy may also name existing
// tasks by id or prefix.
type ImportTask struct {
	Key         string   `yaml:"key,omitempty"`
	Title       string   `yaml:"title"`
	Priority    string   `yaml:"priority,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Description string   `yaml:"description,omitempty"`
	BlockedBy   []string `yaml:"blocked_by,omitempty"`
}

// ParseImport decodes an import document. Unknown fields are rejected so
// typos do not silently drop data.
func ParseImport(r io.Reader) (ImportFile, error) {
	var file ImportFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return file, fmt.Errorf("parsing import file: document is empty")
		}
		return file, fmt.Errorf("parsing import file: %w", err)
	}
	return file, nil
}

// blockerRef is a blocked_by reference after validation: either a file key
// or an existing task.
type blockerRef struct {
	key      string
	existing models.Entry
}

// ImportTasks creates every task in file. All references are validated
// before anything is written. Tasks are created first, then blockers are
// attached, then tasks with unresolved blockers move to blocked.
func (tm *taskManager) ImportTasks(file ImportFile) ([]models.Entry, error) {
	if len(file.Tasks) == 0 {
		return nil, fmt.Errorf("importing tasks: no tasks in file")
	}

	keys := make(map[string]int)
	priorities := make([]models.Priority, len(file.Tasks))
	for i, t := range file.Tasks {
		if strings.TrimSpace(t.Title) == "" {
			return nil, fmt.Errorf("importing tasks: entry %d has no title", i+1)
		}
		priorities[i] = models.DefaultPriority
		if t.Priority != "" {
			p, err := models.ParsePriority(t.Priority)
			if err != nil {
				return nil, fmt.Errorf("importing tasks: entry %d: %w", i+1, err)
			}
			priorities[i] = p
		}
		if t.Key == "" {
			continue
		}
		if _, dup := keys[t.Key]; dup {
			return nil, fmt.Errorf("importing tasks: duplicate key %q", t.Key)
		}
		keys[t.Key] = i
	}

	refs := make([][]blockerRef, len(file.Tasks))
	for i, t := range file.Tasks {
		for _, raw := range t.BlockedBy {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			if j, ok := keys[raw]; ok {
				if j == i {
					return nil, fmt.Errorf("importing tasks: %q cannot block itself: %w", raw, ErrWouldCycle)
				}
				refs[i] = append(refs[i], blockerRef{key: raw})
				continue
			}
			existing, err := tm.GetTask(raw)
			if err != nil {
				return nil, fmt.Errorf("importing tasks: entry %d: resolving blocker %q: %w", i+1, raw, err)
			}
			refs[i] = append(refs[i], blockerRef{existing: existing})
		}
	}
	if key, ok := keyCycle(file.Tasks, keys, refs); ok {
		return nil, fmt.Errorf("importing tasks: key %q is part of a cycle: %w", key, ErrWouldCycle)
	}

	now := tm.now()
	created := make([]models.Entry, len(file.Tasks))
	for i, t := range file.Tasks {
		id, err := tm.ids.GenerateTaskID()
		if err != nil {
			return created[:i], fmt.Errorf("importing tasks: %w", err)
		}
		task := models.NewTask(id, strings.TrimSpace(t.Title), tm.author, now)
		task.Priority = priorities[i]
		task.Tags = normalizeTags(t.Tags)
		task.Body = NormalizeBody(t.Description)

		path, err := tm.store.Create(task)
		if err != nil {
			return created[:i], fmt.Errorf("importing tasks: %w", err)
		}
		created[i] = models.Entry{Path: path, Status: models.StatusOpen, Task: task}
		tm.logEvent("task.created", map[string]any{
			"task_id":  string(id),
			"title":    task.Title,
			"priority": string(task.Priority),
			"source":   "import",
		})
	}

	for i := range created {
		if len(refs[i]) == 0 {
			continue
		}
		task := created[i].Task
		unresolved := false
		for _, ref := range refs[i] {
			var id models.TaskID
			if ref.key != "" {
				id = created[keys[ref.key]].Task.ID
				unresolved = true
			} else {
				id = ref.existing.Task.ID
				if !ref.existing.Status.IsTerminal() {
					unresolved = true
				}
			}
			if !task.IsBlockedBy(id) {
				task.BlockedBy = append(task.BlockedBy, id)
			}
		}
		if err := tm.store.Save(task, created[i].Path); err != nil {
			return created, fmt.Errorf("importing tasks: saving %s: %w", task.ID, err)
		}
		if unresolved {
			moved, err := tm.move(created[i], models.StatusBlocked)
			if err != nil {
				return created, fmt.Errorf("importing tasks: %w", err)
			}
			created[i] = moved
		}
	}

	tm.logger.Info("imported tasks", "count", len(created))
	return created, nil
}

// keyCycle reports a key that participates in a cycle formed by file-local
// references.
func keyCycle(tasks []ImportTask, keys map[string]int, refs [][]blockerRef) (string, bool) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(tasks))
	var visit func(i int) (string, bool)
	visit = func(i int) (string, bool) {
		state[i] = visiting
		for _, ref := range refs[i] {
			if ref.key == "" {
				continue
			}
			j := keys[ref.key]
			if state[j] == visiting {
				return ref.key, true
			}
			if state[j] == unvisited {
				if key, found := visit(j); found {
					return key, true
				}
			}
		}
		state[i] = done
		return "", false
	}
	for i := range tasks {
		if state[i] != unvisited {
			continue
		}
		if key, found := visit(i); found {
			return key, true
		}
	}
	return "", false
}
