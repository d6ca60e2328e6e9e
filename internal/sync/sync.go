// Package sync reconciles a workspace with its configured plugins and
// clients.
package sync

import (
	"github.com/adamancini/plugsync/internal/diff"
	"github.com/adamancini/plugsync/internal/materialize"
	"github.com/adamancini/plugsync/internal/plugin"
	"github.com/adamancini/plugsync/internal/types"
)

// Phase is a step of one sync pass.
type Phase string

const (
	PhaseValidating Phase = "validating"
	PhaseAborted    Phase = "aborted"
	PhasePurging    Phase = "purging"
	PhaseCopying    Phase = "copying"
	PhasePersisting Phase = "persisting"
	PhaseDone       Phase = "done"
)

// Options configures one sync pass.
type Options struct {
	ConfigPath     string             // Explicit workspace config, found automatically when empty
	Offline        bool               // Use cached remote plugins only
	ClientsFilter  []types.ClientType // Restrict the pass to these clients
	DisabledSkills []string           // Extra "plugin:skill" keys to exclude
	Backup         bool               // Back up paths before purging them
	Retain         []string           // Recorded paths to leave in place this pass; they stay recorded
	DryRun         bool               // Report without touching the workspace
}

// Result represents the outcome of a sync pass.
type Result struct {
	Success   bool           `json:"success" yaml:"success"`
	Aborted   bool           `json:"aborted,omitempty" yaml:"aborted,omitempty"`
	DryRun    bool           `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Workspace string         `json:"workspace" yaml:"workspace"`
	Scope     types.Scope    `json:"scope" yaml:"scope"`
	Mode      types.SyncMode `json:"mode" yaml:"mode"`
	Clients   []string       `json:"clients" yaml:"clients"`

	Copied    int `json:"copied" yaml:"copied"`
	Generated int `json:"generated" yaml:"generated"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Failed    int `json:"failed" yaml:"failed"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`

	Plugins       []plugin.ValidatedPlugin      `json:"plugins" yaml:"plugins"`
	Operations    []materialize.OperationResult `json:"operations" yaml:"operations"`
	PurgePlan     []diff.PathDiff               `json:"purge_plan,omitempty" yaml:"purge_plan,omitempty"`
	Purged        []string                      `json:"purged" yaml:"purged"`
	PurgeFailures []string                      `json:"purge_failures,omitempty" yaml:"purge_failures,omitempty"`
	Warnings      []string                      `json:"warnings" yaml:"warnings"`
	BackupID      string                        `json:"backup_id,omitempty" yaml:"backup_id,omitempty"`
}

// WouldWrite returns the destinations a pass wrote, or a dry run would
// write, leaving out those already up to date.
func (r *Result) WouldWrite() []string {
	var out []string
	for _, op := range r.Operations {
		if op.Unchanged {
			continue
		}
		if op.Outcome.Wrote() || (op.Outcome == types.OutcomeSkipped && op.WouldBe.Wrote()) {
			out = append(out, op.Dest)
		}
	}
	return out
}

func (r *Result) count(results []materialize.OperationResult) {
	for _, op := range results {
		switch {
		case op.Outcome == types.OutcomeFailed:
			r.Failed++
		case op.Outcome == types.OutcomeSkipped:
			r.Skipped++
		case op.Unchanged:
			r.Unchanged++
		case op.Outcome == types.OutcomeCopied:
			r.Copied++
		case op.Outcome == types.OutcomeGenerated:
			r.Generated++
		}
	}
}
