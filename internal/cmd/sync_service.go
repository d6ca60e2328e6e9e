package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/adamancini/plugsync/internal/backup"
	"github.com/adamancini/plugsync/internal/marketplace"
	"github.com/adamancini/plugsync/internal/output"
	"github.com/adamancini/plugsync/internal/plugin"
	"github.com/adamancini/plugsync/internal/settings"
	"github.com/adamancini/plugsync/internal/sync"
	"github.com/adamancini/plugsync/internal/types"
)

// SyncOptions configures one sync or diff invocation.
type SyncOptions struct {
	ConfigPath     string
	DryRun         bool
	Offline        bool
	Clients        []types.ClientType
	DisabledSkills []string
	Backup         bool
	Retain         []string // Recorded paths to leave in place
	Strict         bool     // Non-zero exit on warnings as well as failures
}

// SyncService wires settings into a Syncer and reports its result.
type SyncService struct {
	settings *settings.Settings
	syncer   *sync.Syncer
	backups  *backup.Manager
}

// NewSyncService creates a sync service with the default collaborators:
// a git-backed fetcher, the marketplace registry from settings and the
// backup manager.
func NewSyncService(s *settings.Settings, version string) *SyncService {
	fetcher := plugin.NewGitFetcher(s.PluginCacheDir(), s.FetchTimeout)
	resolver := marketplace.NewResolver(marketplace.NewFileStore(s.RegistryPath), fetcher)
	validator := &plugin.Validator{
		Fetcher:     fetcher,
		Marketplace: resolver,
		Concurrency: s.Concurrency,
	}
	backups := backup.NewManager(s.BackupDir, version)

	return NewSyncServiceWithDeps(s, sync.NewSyncer(validator, backups, s.Concurrency), backups)
}

// NewSyncServiceWithDeps creates a sync service with custom dependencies (for testing).
func NewSyncServiceWithDeps(s *settings.Settings, syncer *sync.Syncer, backups *backup.Manager) *SyncService {
	return &SyncService{settings: s, syncer: syncer, backups: backups}
}

// Run executes one pass over ws.
func (s *SyncService) Run(ctx context.Context, ws string, opts SyncOptions) (*sync.Result, error) {
	syncOpts := sync.Options{
		ConfigPath:     opts.ConfigPath,
		Offline:        opts.Offline || s.settings.Offline,
		ClientsFilter:  opts.Clients,
		DisabledSkills: opts.DisabledSkills,
		Backup:         opts.Backup,
		Retain:         opts.Retain,
	}
	if opts.DryRun {
		return s.syncer.DryRunSync(ctx, ws, syncOpts)
	}
	return s.syncer.Sync(ctx, ws, syncOpts)
}

// Report writes the result and returns the error that decides the exit
// status.
func (s *SyncService) Report(w io.Writer, result *sync.Result, runErr error, opts SyncOptions) error {
	if result == nil {
		return runErr
	}

	writer, err := newOutputWriter(w)
	if err != nil {
		return err
	}
	if writer.Structured() {
		if err := writer.Write(result); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if err := output.RenderSyncResult(w, result, renderOptions()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	switch {
	case runErr != nil:
		return runErr
	case result.Failed > 0:
		return fmt.Errorf("sync completed with %d failures", result.Failed)
	case opts.Strict && len(result.Warnings) > 0:
		return fmt.Errorf("sync completed with %d warnings (strict mode)", len(result.Warnings))
	}
	return nil
}
