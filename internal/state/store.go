// Package state persists small pieces of front end state between runs, such
// as the folders of the last analysis.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Store keeps a value in memory and mirrors every change to a JSON file.
type Store[T any] struct {
	mu       sync.RWMutex
	data     T
	path     string
	defaults T
}

// NewStore creates a store backed by path. A missing or unreadable file
// yields defaults.
func NewStore[T any](path string, defaults T) *Store[T] {
	s := &Store[T]{
		path:     path,
		defaults: defaults,
		data:     defaults,
	}
	s.load()
	return s
}

// Path returns the backing file.
func (s *Store[T]) Path() string {
	return s.path
}

// Get returns the current value.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Set replaces the value and writes it out.
func (s *Store[T]) Set(data T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	return s.save()
}

// Update applies fn to the value and writes the result out.
func (s *Store[T]) Update(fn func(T) T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = fn(s.data)
	return s.save()
}

// Clear resets to the defaults and removes the file.
func (s *Store[T]) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = s.defaults
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	return nil
}

func (s *Store[T]) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return
	}
	s.data = v
}

// save writes through a temp file so readers never see a partial file.
func (s *Store[T]) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
