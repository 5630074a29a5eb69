package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xinguang/stockdeck/pkg/model"
)

// FileStore persists the profile as a single JSON file. Writes go to a temp
// file first and are renamed into place, so a crash mid-save never leaves a
// truncated record. Saves are serialized by a mutex.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file store at path, creating parent directories as
// needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load implements Store.
func (s *FileStore) Load() (*model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}

	profile, err := model.UnmarshalProfile(data)
	if err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return profile, nil
}

// Save implements Store.
func (s *FileStore) Save(profile *model.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := profile.Marshal()
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	// Write to temp file first, then rename (atomic)
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.path)
}

// Close implements Store.
func (s *FileStore) Close() error {
	return nil
}
