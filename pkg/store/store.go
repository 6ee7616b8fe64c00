package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store persists small JSON documents under a single directory. Every write
// goes through a temp file + rename so a crash never leaves a torn file.
type Store struct {
	dir string
	mu  sync.Mutex
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load reads the named document into v. A missing file leaves v untouched
// and returns nil.
func (s *Store) Load(name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(name, v)
}

func (s *Store) loadLocked(name string, v any) error {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}
	return nil
}

// Save writes v as the named document atomically.
func (s *Store) Save(name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(name, v)
}

func (s *Store) saveLocked(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	target := s.path(name)
	tempFile := target + ".tmp"

	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempFile, target); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Update runs a read-modify-write cycle on the named document under the
// store lock. The callback receives the loaded value and returns whether
// the document should be written back.
func (s *Store) Update(name string, v any, modify func() (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(name, v); err != nil {
		return err
	}
	changed, err := modify()
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.saveLocked(name, v)
}
