package csync

import "sync"

// Slice is an append-only list safe for concurrent use.
type Slice[T any] struct {
	mu    sync.RWMutex
	items []T
}

// NewSlice creates an empty Slice.
func NewSlice[T any]() *Slice[T] {
	return &Slice[T]{}
}

// Append adds items to the end.
func (s *Slice[T]) Append(items ...T) {
	s.mu.Lock()
	s.items = append(s.items, items...)
	s.mu.Unlock()
}

// Len returns the number of items.
func (s *Slice[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear drops every item.
func (s *Slice[T]) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

// ToSlice returns a copy of the items in order.
func (s *Slice[T]) ToSlice() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}
