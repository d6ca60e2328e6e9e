package marketplace

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Store reads the marketplace registry. Administration of the registry
// (adding or removing marketplaces) happens elsewhere.
type Store interface {
	Load() (Registry, error)
}

// FileStore reads the registry from a JSON file. A missing file is an
// empty registry.
type FileStore struct {
	Path string
}

// NewFileStore creates a FileStore for the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads and parses the registry file.
func (s *FileStore) Load() (Registry, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return Registry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read marketplace registry: %w", err)
	}

	reg := Registry{}
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse marketplace registry %s: %w", s.Path, err)
	}
	return reg, nil
}

// MemoryStore is an in-memory registry, used by tests and embedders.
type MemoryStore struct {
	mu      sync.RWMutex
	entries Registry
}

// NewMemoryStore creates a MemoryStore holding a copy of entries.
func NewMemoryStore(entries Registry) *MemoryStore {
	s := &MemoryStore{entries: Registry{}}
	for k, v := range entries {
		s.entries[k] = v
	}
	return s
}

// Load returns a copy of the registry.
func (s *MemoryStore) Load() (Registry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(Registry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out, nil
}

// Put adds or replaces an entry.
func (s *MemoryStore) Put(name string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[name] = e
}
