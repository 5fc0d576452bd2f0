package core

import (
	"fmt"
	"sort"

	"github.com/valter-silva-au/bt/pkg/models"
)

// ReadyLister returns ready tasks. storage.Store satisfies it.
type ReadyLister interface {
	ListReady() ([]models.Entry, error)
}

// SortForNext orders entries by priority (critical first), then creation
// time (oldest first), then id. The id tie-break makes the order total.
func SortForNext(entries []models.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return nextLess(entries[i].Task, entries[j].Task)
	})
}

func nextLess(a, b *models.Task) bool {
	if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
		return ra < rb
	}
	if !a.Created.Equal(b.Created) {
		return a.Created.Before(b.Created)
	}
	return a.ID < b.ID
}

// Next returns the single ready task to work on. ok is false when nothing
// is ready.
func Next(lister ReadyLister) (models.Entry, bool, error) {
	ready, err := lister.ListReady()
	if err != nil {
		return models.Entry{}, false, fmt.Errorf("selecting next task: %w", err)
	}
	if len(ready) == 0 {
		return models.Entry{}, false, nil
	}
	SortForNext(ready)
	return ready[0], true, nil
}
