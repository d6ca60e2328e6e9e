package backup

import (
	"testing"
)

func TestManager_Prune(t *testing.T) {
	manager := newTestManager(t)
	ws := t.TempDir()

	var ids []string
	for i := 0; i < 5; i++ {
		bak, err := manager.Create(ws, nil, "")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		ids = append(ids, bak.ID)
	}

	result, err := manager.Prune(2)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	if result.Kept != 2 {
		t.Errorf("Prune() Kept = %v, want 2", result.Kept)
	}
	if len(result.Deleted) != 3 {
		t.Errorf("Prune() Deleted count = %v, want 3", len(result.Deleted))
	}

	backups, err := manager.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("List() after prune = %v, want 2", len(backups))
	}
	if backups[0].ID != ids[4] || backups[1].ID != ids[3] {
		t.Errorf("Prune() kept %v, want the two newest", backups)
	}
}

func TestManager_PruneNoOp(t *testing.T) {
	manager := newTestManager(t)
	ws := t.TempDir()

	for i := 0; i < 2; i++ {
		if _, err := manager.Create(ws, nil, ""); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	result, err := manager.Prune(5)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if result.Kept != 2 {
		t.Errorf("Prune() Kept = %v, want 2", result.Kept)
	}
	if len(result.Deleted) != 0 {
		t.Errorf("Prune() Deleted count = %v, want 0", len(result.Deleted))
	}
}

func TestManager_PruneNegative(t *testing.T) {
	manager := newTestManager(t)
	if _, err := manager.Prune(-1); err == nil {
		t.Error("Prune(-1) should fail")
	}
}
