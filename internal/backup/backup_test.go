package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// tickingClock returns a clock advancing one second per call.
func tickingClock() func() time.Time {
	t := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(t.TempDir(), "v1.0.0")
	m.now = tickingClock()
	return m
}

func seedWorkspace(t *testing.T) string {
	t.Helper()
	ws := t.TempDir()
	files := map[string]string{
		".claude/commands/deploy.md":       "deploy",
		".claude/skills/setup/SKILL.md":    "skill",
		".claude/skills/setup/ref/more.md": "more",
	}
	for rel, content := range files {
		full := filepath.Join(ws, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(ws, ".cursor", "skills"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("../../.claude/skills/setup", filepath.Join(ws, ".cursor", "skills", "setup")); err != nil {
		t.Fatal(err)
	}
	return ws
}

func TestManager_Create(t *testing.T) {
	manager := newTestManager(t)
	ws := seedWorkspace(t)

	bak, err := manager.Create(ws, []string{
		".claude/skills/setup/",
		".claude/commands/deploy.md",
		".cursor/skills/setup",
		".claude/commands/missing.md",
	}, "before purge")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if bak.ID != "2026-01-02-150406" {
		t.Errorf("Create() ID = %v", bak.ID)
	}
	if bak.Version != "v1.0.0" {
		t.Errorf("Create() Version = %v, want v1.0.0", bak.Version)
	}
	if bak.Note != "before purge" {
		t.Errorf("Create() Note = %v", bak.Note)
	}
	if len(bak.Paths) != 3 {
		t.Fatalf("Create() Paths = %v, want 3 entries", bak.Paths)
	}

	dir := filepath.Join(manager.BackupDir(), bak.ID)
	if _, err := os.Stat(filepath.Join(dir, manifestFile)); err != nil {
		t.Errorf("manifest missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, filesDir, ".claude", "skills", "setup", "ref", "more.md")); err != nil {
		t.Errorf("nested skill file not backed up: %v", err)
	}
	info, err := os.Lstat(filepath.Join(dir, filesDir, ".cursor", "skills", "setup"))
	if err != nil {
		t.Fatalf("symlink not backed up: %v", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Error("symlink was backed up as a copy")
	}
}

func TestManager_CreateSameSecond(t *testing.T) {
	manager := NewManager(t.TempDir(), "v1.0.0")
	fixed := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	manager.now = func() time.Time { return fixed }

	first, err := manager.Create(t.TempDir(), nil, "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := manager.Create(t.TempDir(), nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == second.ID {
		t.Errorf("Create() reused id %s", first.ID)
	}
	if second.ID != "2026-01-02-150405-2" {
		t.Errorf("Create() second ID = %v", second.ID)
	}
}

func TestManager_ListAndGet(t *testing.T) {
	manager := newTestManager(t)

	backups, err := manager.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("List() on empty dir = %v", backups)
	}
	if _, err := manager.Get("latest"); err == nil {
		t.Error("Get(latest) with no backups should fail")
	}

	ws := seedWorkspace(t)
	older, _ := manager.Create(ws, []string{".claude/commands/deploy.md"}, "first")
	newer, _ := manager.Create(ws, []string{".claude/commands/deploy.md"}, "second")

	backups, err = manager.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 2 || backups[0].ID != newer.ID || backups[1].ID != older.ID {
		t.Fatalf("List() = %+v, want newest first", backups)
	}
	if backups[0].Paths != 1 || backups[0].Workspace != ws {
		t.Errorf("List() info = %+v", backups[0])
	}

	latest, err := manager.Get("latest")
	if err != nil {
		t.Fatalf("Get(latest) error = %v", err)
	}
	if latest.Note != "second" {
		t.Errorf("Get(latest) Note = %v, want second", latest.Note)
	}

	if _, err := manager.Get("../escape"); err == nil {
		t.Error("Get() accepted a path-like id")
	}
	if _, err := manager.Get("nope"); err == nil {
		t.Error("Get() of unknown id should fail")
	}
}

func TestManager_Delete(t *testing.T) {
	manager := newTestManager(t)
	bak, err := manager.Create(seedWorkspace(t), []string{".claude/commands/deploy.md"}, "")
	if err != nil {
		t.Fatal(err)
	}

	if err := manager.Delete(bak.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(manager.BackupDir(), bak.ID)); !os.IsNotExist(err) {
		t.Error("Delete() left the backup directory behind")
	}
	if err := manager.Delete(bak.ID); err == nil {
		t.Error("Delete() of a missing backup should fail")
	}
}

func TestManager_Restore(t *testing.T) {
	manager := newTestManager(t)
	ws := seedWorkspace(t)

	bak, err := manager.Create(ws, []string{".claude/skills/setup/", ".claude/commands/deploy.md", ".cursor/skills/setup"}, "")
	if err != nil {
		t.Fatal(err)
	}

	if err := os.RemoveAll(filepath.Join(ws, ".claude", "skills")); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(ws, ".cursor", "skills", "setup")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(ws, ".claude", "commands", "deploy.md"), []byte("user edit"), 0644); err != nil {
		t.Fatal(err)
	}

	_, result, err := manager.Restore(bak.ID, "")
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if len(result.Restored) != 2 {
		t.Errorf("Restore() Restored = %v, want 2", result.Restored)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != ".claude/commands/deploy.md" {
		t.Errorf("Restore() Skipped = %v", result.Skipped)
	}

	data, err := os.ReadFile(filepath.Join(ws, ".claude", "commands", "deploy.md"))
	if err != nil || string(data) != "user edit" {
		t.Errorf("Restore() overwrote an existing file: %q", data)
	}
	if _, err := os.Stat(filepath.Join(ws, ".claude", "skills", "setup", "ref", "more.md")); err != nil {
		t.Errorf("Restore() did not bring back the skill tree: %v", err)
	}
	target, err := os.Readlink(filepath.Join(ws, ".cursor", "skills", "setup"))
	if err != nil || target != "../../.claude/skills/setup" {
		t.Errorf("Restore() symlink = %q, %v", target, err)
	}
}
