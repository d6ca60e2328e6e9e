package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adamancini/plugsync/internal/diff"
	"github.com/adamancini/plugsync/internal/sync"
)

func newDiffCmd() *cobra.Command {
	var flags syncFlags

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show what sync would do (dry-run)",
		Long: `Diff runs a sync pass without touching the workspace and explains, for
every path recorded by the last sync, whether it is kept, removed or carried
forward, followed by what would be written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			opts.DryRun = true
			return runDiff(cmd, opts)
		},
	}

	flags.register(cmd)
	return cmd
}

func runDiff(cmd *cobra.Command, opts SyncOptions) error {
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

	writer, err := newOutputWriter(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if result != nil && !writer.Structured() && !quiet {
		printPurgePlan(cmd.OutOrStdout(), result)
	}
	return service.Report(cmd.OutOrStdout(), result, runErr, opts)
}

// printPurgePlan lists the decision for every recorded path.
func printPurgePlan(w io.Writer, result *sync.Result) {
	if len(result.PurgePlan) == 0 {
		_, _ = fmt.Fprintln(w, "No previous sync recorded.")
		return
	}

	plan := &diff.Result{Paths: result.PurgePlan}
	keep, remove, carry := plan.Summary()
	_, _ = fmt.Fprintf(w, "Recorded paths: %d keep, %d remove, %d carried forward\n", keep, remove, carry)
	for _, d := range plan.Paths {
		if d.Action == diff.ActionKeep && verbosity == 0 {
			continue
		}
		line := fmt.Sprintf("  %-6s %-10s %s", d.Action, d.Client, d.Path)
		if d.Reason != "" {
			line += " (" + d.Reason + ")"
		}
		_, _ = fmt.Fprintln(w, line)
	}
	_, _ = fmt.Fprintln(w)
}
