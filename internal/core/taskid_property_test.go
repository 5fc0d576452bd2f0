package core

import (
	"testing"

	"github.com/valter-silva-au/bt/pkg/models"
	"pgregory.net/rapid"
)

// Generated ids are unique within a run and never prefixes of each other.
func TestProperty_TaskIDUniqueness(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 100).Draw(rt, "n")

		seen := make(map[models.TaskID]struct{}, n)
		gen := NewTaskIDGenerator(func(id models.TaskID) bool {
			_, ok := seen[id]
			return ok
		})

		for i := 0; i < n; i++ {
			id, err := gen.GenerateTaskID()
			if err != nil {
				rt.Fatalf("GenerateTaskID failed on call %d: %v", i+1, err)
			}
			if _, exists := seen[id]; exists {
				rt.Fatalf("duplicate task ID %q on call %d", id, i+1)
			}
			for other := range seen {
				if other.HasPrefix(string(id)) || id.HasPrefix(string(other)) {
					rt.Fatalf("id %q and %q are prefixes of each other", id, other)
				}
			}
			seen[id] = struct{}{}
		}
	})
}
