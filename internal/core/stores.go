package core

import (
	"github.com/valter-silva-au/bt/pkg/models"
)

// TaskStore is the subset of storage.Store that core services need.
// This interface is defined locally in core to avoid importing storage.
type TaskStore interface {
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

// TaskLister lists the full archive. Prefix resolution and the dependency
// tree need nothing more.
type TaskLister interface {
	ListAll() ([]models.Entry, error)
}
