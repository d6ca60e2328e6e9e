package backup

import (
	"errors"
	"fmt"
)

// DefaultKeepCount is the default number of backups to retain.
const DefaultKeepCount = 30

// PruneResult lists the backups a prune deleted.
type PruneResult struct {
	Deleted []BackupInfo `json:"deleted" yaml:"deleted"`
	Kept    int          `json:"kept" yaml:"kept"`
}

// Prune deletes all but the keep newest backups. A backup that cannot be
// deleted is counted as kept and reported in the returned error; the
// remaining ones are still attempted.
func (m *Manager) Prune(keep int) (*PruneResult, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep count must be non-negative, got %d", keep)
	}

	backups, err := m.List()
	if err != nil {
		return nil, err
	}

	result := &PruneResult{Kept: min(keep, len(backups))}
	var errs []error
	for _, info := range backups[result.Kept:] {
		if err := m.Delete(info.ID); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete backup %s: %w", info.ID, err))
			result.Kept++
			continue
		}
		result.Deleted = append(result.Deleted, info)
	}
	return result, errors.Join(errs...)
}
