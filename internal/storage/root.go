package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/bt/internal/taskpath"
)

// vcsMarkers end the upward search for a .tasks directory. A repository
// boundary is treated as the edge of the project.
var vcsMarkers = []string{".git", ".jj", ".hg", ".svn"}

// FindRoot walks up from start looking for a directory that contains
// .tasks. The walk stops at the first directory holding a VCS marker, at the
// filesystem root, or at a parent that cannot be searched.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}

	for {
		info, err := os.Stat(taskpath.Base(dir))
		switch {
		case err == nil && info.IsDir():
			return dir, nil
		case err != nil && errors.Is(err, fs.ErrPermission):
			return "", ErrNotInitialized
		}

		if hasVCSMarker(dir) {
			return "", ErrNotInitialized
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotInitialized
		}
		dir = parent
	}
}

func hasVCSMarker(dir string) bool {
	for _, m := range vcsMarkers {
		if _, err := os.Lstat(filepath.Join(dir, m)); err == nil {
			return true
		}
	}
	return false
}
