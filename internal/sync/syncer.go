package sync

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/adamancini/plugsync/internal/backup"
	"github.com/adamancini/plugsync/internal/config"
	"github.com/adamancini/plugsync/internal/diff"
	"github.com/adamancini/plugsync/internal/logging"
	"github.com/adamancini/plugsync/internal/materialize"
	"github.com/adamancini/plugsync/internal/plugin"
	"github.com/adamancini/plugsync/internal/purge"
	"github.com/adamancini/plugsync/internal/skills"
	"github.com/adamancini/plugsync/internal/state"
	"github.com/adamancini/plugsync/internal/types"
)

// ErrAllPluginsFailed aborts a pass before any mutation when plugins are
// configured and none of them resolved.
var ErrAllPluginsFailed = errors.New("no configured plugin could be resolved")

// BackupCreator snapshots paths before they are purged.
type BackupCreator interface {
	Create(workspace string, paths []string, note string) (*backup.Backup, error)
}

// Syncer runs sync passes. Each collaborator can be replaced for testing.
type Syncer struct {
	Validator *plugin.Validator
	Metadata  skills.MetadataValidator
	Backups   BackupCreator

	// NewStore returns the state store of a workspace.
	NewStore func(workspace string) state.Store
	// LoadConfig finds and parses the configuration of a workspace.
	LoadConfig func(workspace, explicitPath string) (*config.Workspace, error)

	Concurrency int
	Logger      zerolog.Logger
}

// NewSyncer creates a syncer with the on-disk state store and config loader.
func NewSyncer(validator *plugin.Validator, backups BackupCreator, concurrency int) *Syncer {
	return &Syncer{
		Validator:   validator,
		Metadata:    skills.FrontmatterValidator{},
		Backups:     backups,
		NewStore:    func(ws string) state.Store { return state.NewFileStore(config.StatePath(ws)) },
		LoadConfig:  LoadWorkspaceConfig,
		Concurrency: concurrency,
		Logger:      logging.GetLogger("sync"),
	}
}

// LoadWorkspaceConfig locates and loads the configuration of a workspace.
func LoadWorkspaceConfig(workspace, explicitPath string) (*config.Workspace, error) {
	path, err := config.FindConfig(workspace, explicitPath)
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// DryRunSync reports what Sync would do without touching the workspace.
func (s *Syncer) DryRunSync(ctx context.Context, workspace string, opts Options) (*Result, error) {
	opts.DryRun = true
	return s.Sync(ctx, workspace, opts)
}

// Sync reconciles the workspace. Plugin, purge and file failures are
// collected in the result; an error is returned only when the pass could
// not run, including ErrAllPluginsFailed.
func (s *Syncer) Sync(ctx context.Context, workspace string, opts Options) (*Result, error) {
	done := logging.LogOperationStart(s.Logger, "sync")
	defer done()

	ws, err := filepath.Abs(workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}

	cfg, err := s.LoadConfig(ws, opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	targeted, fullScope, err := targetClients(cfg.Clients, opts.ClientsFilter)
	if err != nil {
		return nil, err
	}

	result := &Result{
		DryRun:    opts.DryRun,
		Workspace: ws,
		Scope:     cfg.EffectiveScope(ws),
		Mode:      cfg.SyncMode.Default(),
		Clients:   clientNames(targeted),
		Purged:    []string{},
		Warnings:  []string{},
	}

	// validating
	s.phase(PhaseValidating)
	refs := cfg.PluginReferences()
	result.Plugins = s.Validator.Validate(ctx, refs, ws, plugin.FetchOptions{Offline: opts.Offline})
	okCount := 0
	for _, p := range result.Plugins {
		if p.OK {
			okCount++
		} else {
			result.Warnings = append(result.Warnings, p.Failure().Error())
		}
		for _, w := range p.Warnings {
			result.Warnings = append(result.Warnings, fmt.Sprintf("plugin %s: %s", p.Reference, w))
		}
	}
	if len(refs) > 0 && okCount == 0 {
		s.phase(PhaseAborted)
		result.Aborted = true
		return result, ErrAllPluginsFailed
	}

	disabled := skills.DisabledSet(append(append([]string(nil), cfg.DisabledSkills...), opts.DisabledSkills...))
	entries, warnings := skills.Collect(result.Plugins, disabled)
	result.Warnings = append(result.Warnings, warnings...)
	names := skills.Resolve(entries)

	store := s.NewStore(ws)
	previous, err := store.Read()
	if err != nil {
		return nil, err
	}

	planner := &materialize.Planner{Root: ws, Scope: result.Scope, Mode: result.Mode, Metadata: s.Metadata}
	plan, err := planner.Plan(materialize.Input{
		Plugins: result.Plugins,
		Skills:  entries,
		Names:   names,
		Clients: targeted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to plan sync: %w", err)
	}
	result.Warnings = append(result.Warnings, plan.Warnings...)

	// purging
	s.phase(PhasePurging)
	purgePlan := diff.Compute(diff.Input{
		Previous:   previous,
		Desired:    plan.Desired(),
		Targeted:   result.Clients,
		Configured: clientNames(cfg.Clients),
		FullScope:  fullScope,
	})
	result.PurgePlan = purgePlan.Paths
	retained := make(map[string]bool, len(opts.Retain))
	for _, p := range opts.Retain {
		retained[p] = true
	}
	var removals []string
	for _, p := range purgePlan.RemovalPaths() {
		if !retained[p] {
			removals = append(removals, p)
		}
	}

	if opts.Backup && !opts.DryRun && len(removals) > 0 && s.Backups != nil {
		bak, err := s.Backups.Create(ws, removals, "Auto (sync purge)")
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to create backup: %v", err))
		} else {
			result.BackupID = bak.ID
		}
	}

	purged := purge.NewEngine(ws, s.Logger).Purge(removals, opts.DryRun)
	result.Purged = append(result.Purged, purged.Removed...)
	result.Purged = append(result.Purged, purged.Stripped...)
	sort.Strings(result.Purged)
	for _, f := range purged.Failures {
		result.PurgeFailures = append(result.PurgeFailures, f.Error())
		result.Warnings = append(result.Warnings, f.Error())
	}

	// copying
	s.phase(PhaseCopying)
	engine := &materialize.Engine{
		Root:        ws,
		Concurrency: s.Concurrency,
		Owned:       previous.Owned(),
		Logger:      s.Logger,
	}
	applied := engine.Apply(ctx, plan.Operations, opts.DryRun)
	result.Operations = append(append(result.Operations, plan.Rejected...), applied...)
	result.count(result.Operations)
	for _, op := range applied {
		if op.Outcome == types.OutcomeFailed {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", op.Dest, op.Error))
		}
	}

	result.Success = result.Failed == 0
	if opts.DryRun {
		s.phase(PhaseDone)
		return result, nil
	}

	// persisting
	s.phase(PhasePersisting)
	next := nextState(purgePlan, purged, retained, applied, result.Clients)
	if err := store.Write(next); err != nil {
		return result, fmt.Errorf("failed to write sync state: %w", err)
	}

	s.phase(PhaseDone)
	return result, nil
}

// nextState records, for each targeted client, what this pass wrote or
// kept plus the removals that failed or were retained. Entries of clients
// the pass did not touch are carried forward.
func nextState(purgePlan *diff.Result, purged *purge.Result, retained map[string]bool, applied []materialize.OperationResult, targeted []string) *state.SyncState {
	next := state.New()

	for client, paths := range purgePlan.Carried() {
		next.Set(client, paths)
	}

	files := make(map[string][]string)
	for _, op := range applied {
		if !op.Recorded() {
			continue
		}
		for _, owner := range op.Owners {
			files[owner] = append(files[owner], op.Dest)
		}
	}
	for _, r := range purgePlan.Removals() {
		if purged.Failed(r.Path) || retained[r.Path] {
			files[r.Client] = append(files[r.Client], r.Path)
		}
	}

	for _, client := range targeted {
		next.Add(client, files[client]...)
	}
	// Removals of clients dropped from configuration that failed or were
	// retained stay recorded so a later pass retries them.
	for client, paths := range files {
		if !contains(targeted, client) {
			next.Add(client, paths...)
		}
	}
	return next
}

func (s *Syncer) phase(p Phase) {
	s.Logger.Debug().Str("phase", string(p)).Msg("Sync phase")
}

// targetClients applies the clients filter. A pass is full scope when it
// covers every configured client.
func targetClients(configured, filter []types.ClientType) ([]types.ClientType, bool, error) {
	if len(filter) == 0 {
		return configured, true, nil
	}

	wanted := make(map[types.ClientType]bool, len(filter))
	for _, c := range filter {
		if !containsClient(configured, c) {
			return nil, false, fmt.Errorf("client %q is not configured in this workspace", c)
		}
		wanted[c] = true
	}

	var targeted []types.ClientType
	for _, c := range configured {
		if wanted[c] {
			targeted = append(targeted, c)
		}
	}
	return targeted, len(targeted) == len(configured), nil
}

func clientNames(list []types.ClientType) []string {
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.String()
	}
	return names
}

func containsClient(list []types.ClientType, c types.ClientType) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
