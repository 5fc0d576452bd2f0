package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valter-silva-au/bt/pkg/models"
)

// ErrNotInitialized is returned when the expected .tasks layout is absent.
var ErrNotInitialized = errors.New("not a bt-enabled directory, run 'bt init' first")

// NotFoundError reports that no task matches an id or prefix.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.ID)
}

// AmbiguousPrefixError reports that a prefix matches more than one task.
type AmbiguousPrefixError struct {
	Prefix     string
	Candidates []models.TaskID
}

func (e *AmbiguousPrefixError) Error() string {
	ids := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		ids[i] = string(c)
	}
	return fmt.Sprintf("ambiguous prefix %q matches %d tasks: %s", e.Prefix, len(e.Candidates), strings.Join(ids, ", "))
}

// MalformedRecordError reports a record file that cannot be parsed.
type MalformedRecordError struct {
	Path   string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed task record %s: %s", e.Path, e.Reason)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
