package services

import "sync"

// InflightSet tracks report paths currently being processed.
// All methods are safe for concurrent use.
type InflightSet struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// NewInflightSet creates an empty set.
func NewInflightSet() *InflightSet {
	return &InflightSet{paths: make(map[string]struct{})}
}

// Add inserts path unconditionally.
func (s *InflightSet) Add(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths[path] = struct{}{}
}

// AddIfAbsent inserts path and returns true, or returns false if it was
// already present. The check and insert are atomic.
func (s *InflightSet) AddIfAbsent(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.paths[path]; ok {
		return false
	}
	s.paths[path] = struct{}{}
	return true
}

// Contains reports whether path is in flight.
func (s *InflightSet) Contains(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.paths[path]
	return ok
}

// Remove deletes path. Removing an absent path is a no-op.
func (s *InflightSet) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.paths, path)
}

// Clear empties the set.
func (s *InflightSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.paths)
}

// Len returns the number of paths in flight.
func (s *InflightSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}
