package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store reads and writes the sync state of one workspace. Read returns nil
// without error when no state has been written yet.
type Store interface {
	Read() (*SyncState, error)
	Write(s *SyncState) error
}

// FileStore keeps the state as JSON on disk.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Read implements Store.
func (f *FileStore) Read() (*SyncState, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sync state: %w", err)
	}

	var s SyncState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse sync state %s: %w", f.Path, err)
	}
	if s.Version > Version {
		return nil, fmt.Errorf("sync state %s has unsupported version %d", f.Path, s.Version)
	}

	out := New()
	for client, paths := range s.Files {
		out.Set(client, paths)
	}
	return out, nil
}

// Write implements Store. The file is replaced atomically and left untouched
// when its content would not change.
func (f *FileStore) Write(s *SyncState) error {
	if s == nil {
		s = New()
	}
	out := New()
	for client, paths := range s.Files {
		out.Set(client, paths)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sync state: %w", err)
	}
	data = append(data, '\n')

	if existing, err := os.ReadFile(f.Path); err == nil && bytes.Equal(existing, data) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write sync state: %w", err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write sync state: %w", err)
	}
	return nil
}

// MemoryStore keeps the state in memory.
type MemoryStore struct {
	mu     sync.Mutex
	state  *SyncState
	writes int
}

// NewMemoryStore returns a store seeded with initial, which may be nil.
func NewMemoryStore(initial *SyncState) *MemoryStore {
	return &MemoryStore{state: initial.Clone()}
}

// Read implements Store.
func (m *MemoryStore) Read() (*SyncState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone(), nil
}

// Write implements Store. Unchanged states are not counted as writes.
func (m *MemoryStore) Write(s *SyncState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil && m.state.Equal(s) {
		return nil
	}
	m.state = s.Clone()
	m.writes++
	return nil
}

// Writes returns how many times the stored state changed.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
