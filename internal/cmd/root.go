// Package cmd contains the CLI command implementations.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adamancini/plugsync/internal/logging"
)

var (
	// Global flags
	workspaceDir string
	configPath   string
	settingsPath string
	outputFormat string
	verbosity    int
	quiet        bool
)

// buildInfo is set by Execute.
var buildInfo = struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}{Version: "dev", Commit: "none", Date: "unknown"}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "plugsync",
		Short: "Sync agent plugins into every AI coding client",
		Long: `plugsync materializes the plugins listed in a workspace configuration into
the files and directories each AI coding client reads: commands, skills,
hooks and agent instruction files.

Define plugins and clients in .plugsync/workspace.yaml, then run plugsync sync.
Files plugsync did not create are never modified or removed.`,
		Version:       buildInfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if quiet {
				logging.Discard()
				return
			}
			logging.SetupLogger(verbosity)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&workspaceDir, "workspace", "w", "", "Workspace directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the workspace configuration")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Path to the plugsync settings file")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Verbose output (repeat for more)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newDiffCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newBackupCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newVersionCmd())

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return rootCmd
}

// Execute runs the root command.
func Execute(version, commit, date string) error {
	buildInfo.Version = version
	buildInfo.Commit = commit
	buildInfo.Date = date

	// Cancellation stops pending copy operations; completed ones are still
	// recorded in the sync state.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}
