// Package storage defines the key-value boundary the engine persists through.
//
// The engine never owns storage mechanics; it is handed a Store by the caller.
// Two adapters are provided: an in-memory store for tests and a JSON-file
// store for the CLI. Both expose prefix key listing, which the hidden-group
// migration relies on, and the file store exposes a one-shot readiness signal
// consumed by the identifier allocator.
package storage

import (
	"encoding/json"
	"sort"
	"sync"

	"offer-reconciliation-service/pkg/errors"
)

// Store is the persistence contract supplied by the caller.
type Store interface {
	// Get returns the raw value for key and whether it exists.
	Get(key string) (string, bool, error)

	// Set writes the raw value for key.
	Set(key, value string) error

	// Delete removes key; deleting an absent key is not an error.
	Delete(key string) error

	// Keys lists all stored keys with the given prefix, sorted.
	Keys(prefix string) ([]string, error)
}

// GetJSON reads key and unmarshals it into v. Returns false when the key is
// absent; a present-but-unparseable value is a storage read error.
func GetJSON(s Store, key string, v interface{}) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil {
		return false, errors.StorageError(errors.CodeStorageRead, key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, errors.StorageError(errors.CodeStorageRead, key, err)
	}
	return true, nil
}

// SetJSON marshals v and writes it under key.
func SetJSON(s Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.StorageError(errors.CodeStorageWrite, key, err)
	}
	if err := s.Set(key, string(raw)); err != nil {
		return errors.StorageError(errors.CodeStorageWrite, key, err)
	}
	return nil
}

// MemoryStore is a Store backed by an in-process map.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Len reports the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
