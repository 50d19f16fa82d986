package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"offer-reconciliation-service/pkg/errors"
)

// FileStore is a Store persisted as a single JSON object in one file.
// The whole map is rewritten on every mutation (write-through). Load must be
// called before the store is usable; Ready() lets dependents such as the
// identifier allocator defer work until hydration has happened.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	data   map[string]string
	loaded bool
	ready  chan struct{}
}

// NewFileStore creates a file store for path. The file does not need to
// exist yet; it is created on the first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:  path,
		data:  make(map[string]string),
		ready: make(chan struct{}),
	}
}

// Ready returns a channel that is closed once Load has hydrated the store.
func (f *FileStore) Ready() <-chan struct{} {
	return f.ready
}

// Load hydrates the store from disk and signals readiness. A missing file is
// treated as an empty store, not an error. Load is idempotent.
func (f *FileStore) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loaded {
		return nil
	}

	raw, err := os.ReadFile(f.path)
	switch {
	case os.IsNotExist(err):
		// First run; start empty.
	case err != nil:
		return errors.FileError(errors.CodeFilePermission, f.path, err)
	default:
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &f.data); err != nil {
				return errors.FileError(errors.CodeFileCorrupted, f.path, err)
			}
		}
	}

	f.loaded = true
	close(f.ready)
	return nil
}

func (f *FileStore) Get(key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.loaded {
		return "", false, errors.StorageError(errors.CodeStorageNotReady, key, nil)
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.loaded {
		return errors.StorageError(errors.CodeStorageNotReady, key, nil)
	}
	f.data[key] = value
	return f.flushLocked()
}

func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.loaded {
		return errors.StorageError(errors.CodeStorageNotReady, key, nil)
	}
	delete(f.data, key)
	return f.flushLocked()
}

func (f *FileStore) Keys(prefix string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.loaded {
		return nil, errors.StorageError(errors.CodeStorageNotReady, prefix, nil)
	}
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FileStore) flushLocked() error {
	raw, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return errors.StorageError(errors.CodeStorageWrite, f.path, err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.StorageError(errors.CodeStorageWrite, f.path, err)
		}
	}
	if err := os.WriteFile(f.path, raw, 0644); err != nil {
		return errors.StorageError(errors.CodeStorageWrite, f.path, err)
	}
	return nil
}
