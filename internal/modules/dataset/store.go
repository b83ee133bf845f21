package dataset

import "sync"

// Store holds the current snapshot. Snapshots are immutable, so readers may
// keep using a snapshot after it has been replaced.
type Store struct {
	mu      sync.RWMutex
	current *Dataset
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// Current returns the current snapshot or ErrNoDataset
func (s *Store) Current() (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoDataset
	}
	return s.current, nil
}

// Swap replaces the current snapshot and returns the previous one (possibly nil)
func (s *Store) Swap(ds *Dataset) *Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.current
	s.current = ds
	return prev
}
