package core

import (
	"strings"
	"time"

	"github.com/valter-silva-au/bt/pkg/models"
)

// TaskView is the JSON shape of a task shared by `bt list --json`,
// `bt show --json` and the MCP tools.
type TaskView struct {
	ID        string    `json:"id"`
	ShortID   string    `json:"short_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	Tags      []string  `json:"tags"`
	BlockedBy []string  `json:"blocked_by"`
	Created   time.Time `json:"created"`
	Updated   time.Time `json:"updated"`
	Author    string    `json:"author,omitempty"`
	Body      string    `json:"body"`
}

// NewTaskView builds the view of e. Empty lists are rendered as [] rather
// than null.
func NewTaskView(e models.Entry, shortID string) TaskView {
	t := e.Task
	v := TaskView{
		ID:        string(t.ID),
		ShortID:   shortID,
		Title:     t.Title,
		Status:    string(e.Status),
		Priority:  string(t.Priority),
		Tags:      append([]string{}, t.Tags...),
		BlockedBy: make([]string, 0, len(t.BlockedBy)),
		Created:   t.Created,
		Updated:   t.Updated,
		Author:    t.Author,
		Body:      t.Body,
	}
	for _, b := range t.BlockedBy {
		v.BlockedBy = append(v.BlockedBy, string(b))
	}
	return v
}

// BodyPreview returns the first non-blank body line, cut to max runes with
// a trailing "..." when longer. A max below 4 disables truncation.
func BodyPreview(body string, max int) string {
	var line string
	for _, l := range strings.Split(body, "\n") {
		if strings.HasPrefix(l, "## Log") {
			break
		}
		if trimmed := strings.TrimSpace(l); trimmed != "" {
			line = trimmed
			break
		}
	}
	runes := []rune(line)
	if max < 4 || len(runes) <= max {
		return line
	}
	return string(runes[:max-3]) + "..."
}
