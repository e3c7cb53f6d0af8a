// Package credential holds the session-scoped API key.
//
// The key lives only in memory for the lifetime of the process. It is set
// explicitly (startup env seed or user input) and passed to provider
// construction as a value read at run start; nothing reads it mid-run.
package credential

import (
	"errors"
	"strings"
	"sync"
)

// ErrNotSet is returned when a run is started without a stored key.
var ErrNotSet = errors.New("API key is not set")

// Store is a single-slot credential holder. Set and Clear are serialized
// against concurrent readers.
type Store struct {
	mu  sync.RWMutex
	key string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Set stores the key. Whitespace is trimmed; an empty key is rejected.
func (s *Store) Set(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrNotSet
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
	return nil
}

// Clear removes the stored key.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = ""
}

// Get returns the stored key and whether one is set.
func (s *Store) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key, s.key != ""
}

// MustGet returns the stored key or ErrNotSet.
func (s *Store) MustGet() (string, error) {
	key, ok := s.Get()
	if !ok {
		return "", ErrNotSet
	}
	return key, nil
}
