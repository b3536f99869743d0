// Package store persists task lists to local storage backends.
package store

import (
	"fmt"

	"github.com/taskdeck/taskdeck/internal/task"
)

// Store loads and saves a task list.
type Store interface {
	// Load reads the full list. A missing backing file yields an empty
	// list, not an error.
	Load() (*task.List, error)
	// Save writes the full list, replacing the previous contents.
	Save(*task.List) error
	// Close releases backend resources.
	Close() error
}

// Backend names.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open returns a store for the given backend and data file path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendJSON, "":
		return NewFileStore(path), nil
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q, must be one of: json, sqlite", backend)
	}
}
