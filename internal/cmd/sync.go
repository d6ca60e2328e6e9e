package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adamancini/plugsync/internal/diff"
	"github.com/adamancini/plugsync/internal/interactive"
	"github.com/adamancini/plugsync/internal/output"
)

// syncFlags holds the flags shared by sync and diff.
type syncFlags struct {
	offline        bool
	clients        []string
	disabledSkills []string
}

func (f *syncFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.offline, "offline", false, "Use cached remote plugins only, never touch the network")
	cmd.Flags().StringSliceVar(&f.clients, "client", nil, "Sync only these clients (repeatable)")
	cmd.Flags().StringSliceVar(&f.disabledSkills, "disable-skill", nil, "Skip a skill for this run, as plugin:skill (repeatable)")
	_ = cmd.RegisterFlagCompletionFunc("client", completeClients)
}

func (f *syncFlags) options() (SyncOptions, error) {
	clientList, err := parseClients(f.clients)
	if err != nil {
		return SyncOptions{}, err
	}
	return SyncOptions{
		ConfigPath:     expandHomePath(configPath),
		Offline:        f.offline,
		Clients:        clientList,
		DisabledSkills: f.disabledSkills,
	}, nil
}

func newSyncCmd() *cobra.Command {
	var (
		flags    syncFlags
		dryRun   bool
		doBackup bool
		strict   bool
		review   bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Materialize configured plugins into the workspace",
		Long: `Sync reads the workspace configuration and writes each plugin's commands,
skills, hooks and agent instructions to the locations every configured
client expects.

Paths written by an earlier sync that are no longer produced are removed.
Files plugsync did not create are never modified or removed; an existing
agent file only gets its plugsync block updated.

Use --client to sync a subset of clients. Entries of other clients are kept
until the next full sync.`,
		Example: `  plugsync sync
  plugsync sync --dry-run
  plugsync sync --client claude --client codex
  plugsync sync --disable-skill alpha:setup --backup
  plugsync sync --interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			opts.DryRun = dryRun
			opts.Backup = doBackup
			opts.Strict = strict
			if review && !dryRun {
				return runInteractiveSync(cmd, opts)
			}
			return runSync(cmd, opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would change without touching the workspace")
	cmd.Flags().BoolVar(&doBackup, "backup", false, "Back up paths before removing them")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero on warnings as well as failures")
	cmd.Flags().BoolVarP(&review, "interactive", "i", false, "Review each removal before syncing")

	return cmd
}

// runSync executes the sync workflow.
func runSync(cmd *cobra.Command, opts SyncOptions) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}

	s, err := loadSettings()
	if err != nil {
		return err
	}

	service := NewSyncService(s, buildInfo.Version)
	result, runErr := service.Run(cmd.Context(), ws, opts)
	return service.Report(cmd.OutOrStdout(), result, runErr, opts)
}

// runInteractiveSync previews the pass, asks about every removal and then
// syncs, leaving declined paths in place.
func runInteractiveSync(cmd *cobra.Command, opts SyncOptions) error {
	if outputFormat != "" && outputFormat != "text" {
		return fmt.Errorf("--interactive cannot be combined with --output %s", outputFormat)
	}
	if cmd.InOrStdin() == os.Stdin && !interactive.IsTerminal() {
		return fmt.Errorf("--interactive requires a terminal")
	}

	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}
	s, err := loadSettings()
	if err != nil {
		return err
	}

	service := NewSyncService(s, buildInfo.Version)
	preview := opts
	preview.DryRun = true
	result, runErr := service.Run(cmd.Context(), ws, preview)
	if runErr != nil {
		return service.Report(cmd.OutOrStdout(), result, runErr, preview)
	}
	if err := output.RenderSyncResult(cmd.OutOrStdout(), result, renderOptions()); err != nil {
		return err
	}

	prompter := interactive.NewPrompterWithIO(cmd.InOrStdin(), cmd.OutOrStdout())
	selection, proceed := prompter.ReviewRemovals(&diff.Result{Paths: result.PurgePlan}, len(result.WouldWrite()))
	if !proceed {
		return nil
	}

	opts.Retain = selection.Retain
	result, runErr = service.Run(cmd.Context(), ws, opts)
	return service.Report(cmd.OutOrStdout(), result, runErr, opts)
}
