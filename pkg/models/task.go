package models

import (
	"fmt"
	"strings"
	"time"
)

// TaskID is the opaque identity of a task. It doubles as the record's
// filename stem and never changes when the task moves between statuses.
type TaskID string

// String returns the canonical form of the id.
func (id TaskID) String() string { return string(id) }

// HasPrefix reports whether prefix is a bytewise prefix of the id.
func (id TaskID) HasPrefix(prefix string) bool {
	return strings.HasPrefix(string(id), prefix)
}

// Status represents the lifecycle stage of a task. It is never stored in a
// record; the store derives it from the directory that holds the file.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusBlocked    Status = "blocked"
	StatusClosed     Status = "closed"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses lists every status in display order.
var AllStatuses = []Status{
	StatusOpen,
	StatusInProgress,
	StatusBlocked,
	StatusClosed,
	StatusCancelled,
}

// ParseStatus converts user input such as "in_progress" or "In-Progress"
// into a Status.
func ParseStatus(s string) (Status, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for _, st := range AllStatuses {
		if string(st) == normalized {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status %q: must be one of open, in-progress, blocked, closed, cancelled", s)
}

// IsActive reports whether the task still needs work.
func (s Status) IsActive() bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusBlocked
}

// IsTerminal reports whether the status resolves dependents.
func (s Status) IsTerminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

// Priority represents the urgency level of a task.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// DefaultPriority is assigned when a task does not specify one.
const DefaultPriority = PriorityMedium

// ParsePriority converts user input into a Priority, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityCritical:
		return PriorityCritical, nil
	case PriorityHigh:
		return PriorityHigh, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityLow:
		return PriorityLow, nil
	}
	return "", fmt.Errorf("invalid priority %q: must be one of critical, high, medium, low", s)
}

// Rank orders priorities from most to least urgent. Unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// UnmarshalYAML rejects unknown priority values so malformed records are
// reported instead of silently sorting last.
func (p *Priority) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if raw == "" {
		*p = DefaultPriority
		return nil
	}
	parsed, err := ParsePriority(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Frontmatter is the YAML header of a task record.
type Frontmatter struct {
	Title     string    `yaml:"title"`
	Priority  Priority  `yaml:"priority"`
	Tags      []string  `yaml:"tags,flow"`
	BlockedBy []TaskID  `yaml:"blocked_by,flow"`
	Created   time.Time `yaml:"created"`
	Updated   time.Time `yaml:"updated"`
	Author    string    `yaml:"author,omitempty"`
}

// Task is a single tracked unit of work. Log holds the raw append-only
// activity log; see core.ParseLog for the entry format.
type Task struct {
	ID TaskID
	Frontmatter
	Body string
	Log  string
}

// NewTask builds a task with default priority and creation timestamps set
// to now, truncated to whole seconds.
func NewTask(id TaskID, title, author string, now time.Time) *Task {
	ts := now.UTC().Truncate(time.Second)
	return &Task{
		ID: id,
		Frontmatter: Frontmatter{
			Title:    title,
			Priority: DefaultPriority,
			Created:  ts,
			Updated:  ts,
			Author:   author,
		},
	}
}

// HasTag reports whether the task carries tag, ignoring case.
func (t *Task) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if strings.EqualFold(existing, tag) {
			return true
		}
	}
	return false
}

// IsBlockedBy reports whether id is listed in blocked_by.
func (t *Task) IsBlockedBy(id TaskID) bool {
	for _, b := range t.BlockedBy {
		if b == id {
			return true
		}
	}
	return false
}

// LogEntry is one parsed activity log entry.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Author  string    `json:"author"`
	Message string    `json:"message"`
}

// Summary returns the first non-blank line of the message.
func (e LogEntry) Summary() string {
	for _, line := range strings.Split(e.Message, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
