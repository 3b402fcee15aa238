package internal

import (
	"fmt"
	"path/filepath"
	"sync"
)

// StateStore persists small string values across runs
type StateStore interface {
	// Get returns the value for key and whether it was present
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// State backends
const (
	StateBackendYAML   = "yaml"
	StateBackendSQLite = "sqlite"
	StateBackendMemory = "memory"
)

// OpenStateStore opens the store for backend inside dir
func OpenStateStore(backend, dir string) (StateStore, error) {
	switch backend {
	case StateBackendYAML, "":
		return NewFileStateStore(dir), nil
	case StateBackendSQLite:
		return OpenSQLiteStateStore(filepath.Join(dir, "state.db"))
	case StateBackendMemory:
		return NewMemoryStateStore(), nil
	default:
		return nil, fmt.Errorf("unsupported state backend: %s (supported: yaml, sqlite, memory)", backend)
	}
}

// MemoryStateStore keeps state for the lifetime of the process
type MemoryStateStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStateStore creates an empty MemoryStateStore
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{values: make(map[string]string)}
}

func (s *MemoryStateStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStateStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStateStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryStateStore) Close() error {
	return nil
}
