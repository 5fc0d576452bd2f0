package core

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/valter-silva-au/bt/pkg/models"
)

// TaskFilter narrows a task listing. Zero values match everything.
type TaskFilter struct {
	Statuses   []models.Status
	Priorities []models.Priority
	// Tag matches case-insensitively and may be a glob such as "api-*".
	Tag string
	// Search matches title or body, case-insensitively.
	Search string
	// Limit caps the number of results after filtering; zero means no cap.
	Limit int
}

// Validate checks the tag pattern.
func (f TaskFilter) Validate() error {
	if f.Tag != "" && !doublestar.ValidatePattern(strings.ToLower(f.Tag)) {
		return fmt.Errorf("invalid tag pattern %q", f.Tag)
	}
	if f.Limit < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", f.Limit)
	}
	return nil
}

// FilterEntries returns the entries matching f, preserving order.
func FilterEntries(entries []models.Entry, f TaskFilter) ([]models.Entry, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var out []models.Entry
	for _, e := range entries {
		if !matchesFilter(e, f) {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func matchesFilter(e models.Entry, f TaskFilter) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, e.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, e.Task.Priority) {
		return false
	}
	if f.Tag != "" && !hasMatchingTag(e.Task.Tags, f.Tag) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(e.Task.Title), q) &&
			!strings.Contains(strings.ToLower(e.Task.Body), q) {
			return false
		}
	}
	return true
}

func containsStatus(haystack []models.Status, needle models.Status) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsPriority(haystack []models.Priority, needle models.Priority) bool {
	for _, p := range haystack {
		if p == needle {
			return true
		}
	}
	return false
}

func hasMatchingTag(tags []string, pattern string) bool {
	pattern = strings.ToLower(pattern)
	for _, tag := range tags {
		ok, err := doublestar.Match(pattern, strings.ToLower(tag))
		if err == nil && ok {
			return true
		}
	}
	return false
}
