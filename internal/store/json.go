package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/taskdeck/taskdeck/internal/task"
)

// FileStore persists the list as a single JSON document. Writes go through
// a temp file and rename so a crash never leaves a half-written list, and
// the previous generation is kept as a .bak sibling.
type FileStore struct {
	path string
}

// NewFileStore creates a JSON file store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and parses the list file. A missing file yields an empty list.
func (s *FileStore) Load() (*task.List, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return task.NewList(), nil
		}
		return nil, fmt.Errorf("read task file: %w", err)
	}

	var l task.List
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}
	if l.Tasks == nil {
		l.Tasks = []task.Task{}
	}

	return &l, nil
}

// Save writes the list with 2-space indentation and a trailing newline.
func (s *FileStore) Save(l *task.List) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task file: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	if prev, err := os.ReadFile(s.path); err == nil {
		if err := os.WriteFile(s.path+".bak", prev, 0644); err != nil {
			return fmt.Errorf("write backup file: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write task file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace task file: %w", err)
	}

	return nil
}

// Close is a no-op for file stores.
func (s *FileStore) Close() error {
	return nil
}
