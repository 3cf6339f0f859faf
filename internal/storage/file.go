package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// FileStore keeps one file per key under a base directory.
type FileStore struct {
	basePath string
	mu       sync.Mutex
	rename   func(oldpath, newpath string) error
}

// NewFileStore creates a new FileStore and ensures the base directory exists.
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &FileStore{basePath: basePath, rename: os.Rename}, nil
}

// pathFor escapes the key so it is always a single safe filename.
func (s *FileStore) pathFor(key string) string {
	return filepath.Join(s.basePath, url.PathEscape(key)+".json")
}

// Get retrieves the value stored for key.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Set writes to a temp file and renames it over the old one, so readers
// never see a half-written value.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.pathFor(key)
	tmp, err := os.CreateTemp(s.basePath, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s: %w", key, err)
	}
	if err := s.rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}

// Delete removes the files for all keys. Missing keys are not an error.
//
// Every file is first moved into a fresh tombstone directory, which is only
// removed once all moves succeed. If one fails, the moves are undone and no
// key changes.
func (s *FileStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tombs, err := os.MkdirTemp(s.basePath, ".del-*")
	if err != nil {
		return fmt.Errorf("failed to create tombstone directory: %w", err)
	}
	defer os.RemoveAll(tombs)

	type move struct{ from, to string }
	var done []move
	for i, key := range keys {
		from := s.pathFor(key)
		to := filepath.Join(tombs, strconv.Itoa(i))
		if err := s.rename(from, to); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			for j := len(done) - 1; j >= 0; j-- {
				_ = s.rename(done[j].to, done[j].from)
			}
			return fmt.Errorf("failed to remove %s: %w", key, err)
		}
		done = append(done, move{from: from, to: to})
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
