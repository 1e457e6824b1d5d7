// Package keystore implements the local persistence boundary of the
// pipeline: a flat string key→value store holding, per blob id, the
// encryption key material and the registered document id. Loss of this index
// is unrecoverable for a document — there is no key escrow by design.
package keystore

import "sync"

// Store is the injected persistence abstraction. The pipeline never assumes
// a particular storage medium; anything honoring Get/Set semantics works.
// Implementations must support concurrent reads and serialized writes.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(key, value string) error

	// Close releases underlying resources.
	Close() error
}

// MemStore is an in-memory Store. Used by tests and as a cache-free default
// when no durable path is configured.
type MemStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

func (s *MemStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemStore) Close() error { return nil }
