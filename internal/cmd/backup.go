package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adamancini/plugsync/internal/backup"
	"github.com/adamancini/plugsync/internal/config"
	"github.com/adamancini/plugsync/internal/output"
	"github.com/adamancini/plugsync/internal/state"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up and restore synced files",
		Long: `Backup manages copies of files written by plugsync.

'plugsync sync --backup' copies every path it is about to purge into a new
backup first. 'plugsync backup create' copies every path recorded by the
last sync. Backups live under the backup_dir setting
(default ~/.cache/plugsync/backups).

Restore only brings back paths that are missing from the workspace.`,
	}

	cmd.AddCommand(newBackupCreateCmd())
	cmd.AddCommand(newBackupListCmd())
	cmd.AddCommand(newBackupRestoreCmd())
	cmd.AddCommand(newBackupDeleteCmd())
	cmd.AddCommand(newBackupPruneCmd())

	return cmd
}

func newBackupCreateCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Back up every path recorded by the last sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := backupManager()
			if err != nil {
				return err
			}
			ws, err := resolveWorkspace()
			if err != nil {
				return err
			}
			return runBackupCreate(cmd.OutOrStdout(), manager, ws, note)
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "Describe this backup")

	return cmd
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := backupManager()
			if err != nil {
				return err
			}
			return runBackupList(cmd.OutOrStdout(), manager)
		},
	}
}

func newBackupRestoreCmd() *cobra.Command {
	var here bool

	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore missing paths from a backup",
		Long: `Restore copies paths from a backup back into the workspace it was taken
from. Paths that already exist are left alone. Use 'latest' as the ID to
restore the most recent backup, and --here to restore into the current
workspace instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := backupManager()
			if err != nil {
				return err
			}
			var ws string
			if here || workspaceDir != "" {
				if ws, err = resolveWorkspace(); err != nil {
					return err
				}
			}
			return runBackupRestore(cmd.OutOrStdout(), manager, args[0], ws)
		},
	}

	cmd.Flags().BoolVar(&here, "here", false, "Restore into the current workspace")

	return cmd
}

func newBackupDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := backupManager()
			if err != nil {
				return err
			}
			if err := manager.Delete(args[0]); err != nil {
				return err
			}
			if !quiet {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Backup deleted: %s\n", args[0])
			}
			return nil
		},
	}
}

func newBackupPruneCmd() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove old backups",
		Long: `Prune deletes old backups, keeping only the most recent N backups.

By default, keeps the 30 most recent backups.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := backupManager()
			if err != nil {
				return err
			}
			return runBackupPrune(cmd.OutOrStdout(), manager, keep)
		},
	}

	cmd.Flags().IntVar(&keep, "keep", backup.DefaultKeepCount, "Number of backups to keep")

	return cmd
}

func backupManager() (*backup.Manager, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return backup.NewManager(s.BackupDir, buildInfo.Version), nil
}

func runBackupCreate(stdout io.Writer, manager *backup.Manager, ws, note string) error {
	recorded, err := state.NewFileStore(config.StatePath(ws)).Read()
	if err != nil {
		return err
	}
	if recorded == nil {
		return fmt.Errorf("nothing to back up: %s has never been synced", ws)
	}

	var paths []string
	seen := make(map[string]bool)
	for _, c := range recorded.Clients() {
		for _, p := range recorded.Paths(c) {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}

	bak, err := manager.Create(ws, paths, note)
	if err != nil {
		return err
	}

	writer, err := newOutputWriter(stdout)
	if err != nil {
		return err
	}
	if writer.Structured() {
		return writer.Write(bak)
	}
	_, _ = fmt.Fprintf(stdout, "Backup created: %s (%d paths)\n", bak.ID, len(bak.Paths))
	return nil
}

func runBackupList(stdout io.Writer, manager *backup.Manager) error {
	backups, err := manager.List()
	if err != nil {
		return err
	}

	writer, err := newOutputWriter(stdout)
	if err != nil {
		return err
	}
	if writer.Structured() {
		return writer.Write(backups)
	}
	return output.RenderBackups(stdout, backups)
}

func runBackupRestore(stdout io.Writer, manager *backup.Manager, id, ws string) error {
	bak, result, err := manager.Restore(id, ws)
	if err != nil {
		return err
	}

	writer, err := newOutputWriter(stdout)
	if err != nil {
		return err
	}
	if writer.Structured() {
		return writer.Write(result)
	}

	_, _ = fmt.Fprintf(stdout, "Restored from backup %s\n", bak.ID)
	for _, p := range result.Restored {
		_, _ = fmt.Fprintf(stdout, "  restored %s\n", p)
	}
	for _, p := range result.Skipped {
		_, _ = fmt.Fprintf(stdout, "  skipped  %s (already exists)\n", p)
	}
	return nil
}

func runBackupPrune(stdout io.Writer, manager *backup.Manager, keep int) error {
	result, err := manager.Prune(keep)
	if err != nil {
		return err
	}

	writer, err := newOutputWriter(stdout)
	if err != nil {
		return err
	}
	if writer.Structured() {
		return writer.Write(result)
	}
	_, _ = fmt.Fprintf(stdout, "Deleted %d backups, kept %d\n", len(result.Deleted), result.Kept)
	return nil
}
