package core

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
	"github.com/valter-silva-au/bt/pkg/models"
)

// IDAlphabet is the character set of generated task ids. Lowercase only, so
// ids stay unambiguous on case-insensitive filesystems.
const IDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// IDLength is the number of characters in a generated id. All generated ids
// have the same length, so none is a prefix of another.
const IDLength = 10

const maxIDAttempts = 8

// TaskIDGenerator defines the interface for generating unique task IDs.
type TaskIDGenerator interface {
	GenerateTaskID() (models.TaskID, error)
}

// nanoidGenerator draws random ids and retries when one is already taken.
type nanoidGenerator struct {
	taken func(models.TaskID) bool
}

// NewTaskIDGenerator returns a generator backed by nanoid. taken reports
// whether an id already exists anywhere in the archive; it may be nil.
func NewTaskIDGenerator(taken func(models.TaskID) bool) TaskIDGenerator {
	return &nanoidGenerator{taken: taken}
}

// GenerateTaskID returns a fresh id of IDLength characters from IDAlphabet.
func (g *nanoidGenerator) GenerateTaskID() (models.TaskID, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		raw, err := nanoid.Generate(IDAlphabet, IDLength)
		if err != nil {
			return "", fmt.Errorf("generating task id: %w", err)
		}
		id := models.TaskID(raw)
		if g.taken == nil || !g.taken(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("generating task id: no free id after %d attempts", maxIDAttempts)
}
