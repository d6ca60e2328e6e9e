// Package backup keeps copies of synced paths before they are purged, so a
// purge can be undone.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adamancini/plugsync/internal/fsutil"
)

const (
	manifestFile = "manifest.json"
	filesDir     = "files"
)

// Backup describes a single backup snapshot.
type Backup struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Note      string    `json:"note,omitempty" yaml:"note,omitempty"`
	Version   string    `json:"version" yaml:"version"`
	Workspace string    `json:"workspace" yaml:"workspace"`
	Paths     []string  `json:"paths" yaml:"paths"`
}

// BackupInfo provides summary information about a backup for listing.
type BackupInfo struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Note      string    `json:"note,omitempty" yaml:"note,omitempty"`
	Workspace string    `json:"workspace" yaml:"workspace"`
	Paths     int       `json:"paths" yaml:"paths"`
}

// RestoreResult lists what a restore put back and what it left alone.
type RestoreResult struct {
	Restored []string `json:"restored" yaml:"restored"`
	Skipped  []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Manager handles backup operations.
type Manager struct {
	backupDir string
	version   string
	now       func() time.Time
}

// NewManager creates a backup manager storing snapshots in backupDir.
func NewManager(backupDir, version string) *Manager {
	return &Manager{backupDir: backupDir, version: version, now: time.Now}
}

// BackupDir returns the backup directory path.
func (m *Manager) BackupDir() string {
	return m.backupDir
}

// Create copies the given workspace-relative paths into a new snapshot.
// Paths missing from the workspace are left out.
func (m *Manager) Create(workspace string, paths []string, note string) (*Backup, error) {
	if err := os.MkdirAll(m.backupDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	now := m.now()
	id := now.Format("2006-01-02-150405")
	dir := filepath.Join(m.backupDir, id)
	for n := 2; exists(dir); n++ {
		id = fmt.Sprintf("%s-%d", now.Format("2006-01-02-150405"), n)
		dir = filepath.Join(m.backupDir, id)
	}

	backup := &Backup{
		ID:        id,
		CreatedAt: now,
		Note:      note,
		Version:   m.version,
		Workspace: workspace,
	}

	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	for _, p := range sorted {
		src := filepath.Join(workspace, filepath.FromSlash(strings.TrimSuffix(p, "/")))
		if !exists(src) {
			continue
		}
		dest := filepath.Join(dir, filesDir, filepath.FromSlash(strings.TrimSuffix(p, "/")))
		if err := copyPath(src, dest); err != nil {
			_ = os.RemoveAll(dir)
			return nil, fmt.Errorf("failed to back up %s: %w", p, err)
		}
		backup.Paths = append(backup.Paths, p)
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to marshal backup: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFile), data, 0644); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to write backup manifest: %w", err)
	}

	return backup, nil
}

// List returns all backups sorted by creation time (newest first).
func (m *Manager) List() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		backup, err := m.load(entry.Name())
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			ID:        backup.ID,
			CreatedAt: backup.CreatedAt,
			Note:      backup.Note,
			Workspace: backup.Workspace,
			Paths:     len(backup.Paths),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].CreatedAt.Equal(backups[j].CreatedAt) {
			return backups[i].ID > backups[j].ID
		}
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})

	return backups, nil
}

// Get retrieves a backup by ID. Use "latest" to get the most recent backup.
func (m *Manager) Get(id string) (*Backup, error) {
	if id == "latest" {
		backups, err := m.List()
		if err != nil {
			return nil, err
		}
		if len(backups) == 0 {
			return nil, fmt.Errorf("no backups found")
		}
		id = backups[0].ID
	}
	return m.load(id)
}

// Delete removes a backup by ID.
func (m *Manager) Delete(id string) error {
	dir, err := m.dir(id)
	if err != nil {
		return err
	}
	if !exists(filepath.Join(dir, manifestFile)) {
		return fmt.Errorf("backup not found: %s", id)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	return nil
}

// Restore copies the paths of a backup back into workspace, or into the
// workspace recorded in the backup when workspace is empty. Paths that
// already exist are never overwritten.
func (m *Manager) Restore(id, workspace string) (*Backup, *RestoreResult, error) {
	backup, err := m.Get(id)
	if err != nil {
		return nil, nil, err
	}
	if workspace == "" {
		workspace = backup.Workspace
	}

	dir, err := m.dir(backup.ID)
	if err != nil {
		return nil, nil, err
	}

	result := &RestoreResult{}
	for _, p := range backup.Paths {
		rel := filepath.FromSlash(strings.TrimSuffix(p, "/"))
		dest := filepath.Join(workspace, rel)
		if exists(dest) {
			result.Skipped = append(result.Skipped, p)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return backup, result, fmt.Errorf("failed to restore %s: %w", p, err)
		}
		if err := copyPath(filepath.Join(dir, filesDir, rel), dest); err != nil {
			return backup, result, fmt.Errorf("failed to restore %s: %w", p, err)
		}
		result.Restored = append(result.Restored, p)
	}
	return backup, result, nil
}

func (m *Manager) dir(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("invalid backup id: %q", id)
	}
	return filepath.Join(m.backupDir, id), nil
}

// load reads and parses a backup manifest.
func (m *Manager) load(id string) (*Backup, error) {
	dir, err := m.dir(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("backup not found: %s", id)
		}
		return nil, fmt.Errorf("failed to read backup manifest: %w", err)
	}

	var backup Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("failed to parse backup manifest: %w", err)
	}
	return &backup, nil
}

// copyPath copies a file, a symlink or a directory tree without following
// a symlink at src.
func copyPath(src, dest string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dest)
	case info.IsDir():
		return fsutil.CopyTree(src, dest)
	default:
		return fsutil.CopyFile(src, dest)
	}
}

func exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}
