// Package state persists, per client, the workspace paths a sync pass created.
package state

import (
	"sort"
	"strings"
)

// Version is the sync state format written by this build.
const Version = 1

// SyncState records which workspace-relative paths the engine owns for each
// client. Directory paths carry a trailing "/".
type SyncState struct {
	Version int                 `json:"version"`
	Files   map[string][]string `json:"files"`
}

// New returns an empty state at the current version.
func New() *SyncState {
	return &SyncState{Version: Version, Files: make(map[string][]string)}
}

// IsDir reports whether a synced path denotes a directory.
func IsDir(path string) bool {
	return strings.HasSuffix(path, "/")
}

// Clients returns the recorded client names in sorted order.
func (s *SyncState) Clients() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Files))
	for name := range s.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Paths returns the paths recorded for a client.
func (s *SyncState) Paths(client string) []string {
	if s == nil {
		return nil
	}
	return s.Files[client]
}

// Has reports whether client has recorded entries.
func (s *SyncState) Has(client string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Files[client]
	return ok
}

// Set replaces the paths of a client. Paths are stored sorted and unique; a
// client with no paths is dropped.
func (s *SyncState) Set(client string, paths []string) {
	if s.Files == nil {
		s.Files = make(map[string][]string)
	}
	normalized := normalize(paths)
	if len(normalized) == 0 {
		delete(s.Files, client)
		return
	}
	s.Files[client] = normalized
}

// Add records additional paths for a client.
func (s *SyncState) Add(client string, paths ...string) {
	s.Set(client, append(append([]string(nil), s.Paths(client)...), paths...))
}

// Owned returns every recorded path across all clients, keyed without the
// trailing directory separator so files and directories at the same
// location compare equal.
func (s *SyncState) Owned() map[string]bool {
	owned := make(map[string]bool)
	if s == nil {
		return owned
	}
	for _, paths := range s.Files {
		for _, p := range paths {
			owned[strings.TrimSuffix(p, "/")] = true
		}
	}
	return owned
}

// Clone returns a deep copy.
func (s *SyncState) Clone() *SyncState {
	if s == nil {
		return nil
	}
	c := &SyncState{Version: s.Version, Files: make(map[string][]string, len(s.Files))}
	for client, paths := range s.Files {
		c.Files[client] = append([]string(nil), paths...)
	}
	return c
}

// Equal reports whether two states record the same paths.
func (s *SyncState) Equal(other *SyncState) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.Version != other.Version || len(s.Files) != len(other.Files) {
		return false
	}
	for client, paths := range s.Files {
		o, ok := other.Files[client]
		if !ok || len(o) != len(paths) {
			return false
		}
		for i := range paths {
			if paths[i] != o[i] {
				return false
			}
		}
	}
	return true
}

func normalize(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimPrefix(strings.TrimSpace(p), "./")
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
