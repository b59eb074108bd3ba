// Package session keeps values that live for one run of the front end,
// such as the paths of the last analysis.
package session

import "github.com/billie-coop/mark/internal/csync"

// Keys used by the analysis flow.
const (
	KeyLastInputPath  = "lastInputPath"
	KeyLastOutputPath = "lastOutputPath"
)

// Store is a string key/value store scoped to the process.
type Store struct {
	values *csync.Map[string, string]
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{values: csync.NewMap[string, string]()}
}

// Set stores value under key.
func (s *Store) Set(key, value string) {
	s.values.Set(key, value)
}

// Get returns the value under key or "" when unset.
func (s *Store) Get(key string) string {
	v, _ := s.values.Get(key)
	return v
}

// Remove deletes key.
func (s *Store) Remove(key string) {
	s.values.Delete(key)
}

// SetPaths records the input and output folders of the last analysis.
func (s *Store) SetPaths(input, output string) {
	s.Set(KeyLastInputPath, input)
	s.Set(KeyLastOutputPath, output)
}

// Paths returns the folders recorded by SetPaths.
func (s *Store) Paths() (input, output string) {
	return s.Get(KeyLastInputPath), s.Get(KeyLastOutputPath)
}
