package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adamancini/plugsync/internal/config"
)

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove",
		Aliases: []string{"rm"},
		Short:   "Remove entries from the workspace configuration",
	}

	cmd.AddCommand(newRemovePluginCmd())

	return cmd
}

func newRemovePluginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plugin <ref>",
		Short: "Remove a plugin reference",
		Long: `Remove a plugin reference from the configuration. Its files stay in the
workspace until the next 'plugsync sync' purges them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := resolveWorkspace()
			if err != nil {
				return err
			}
			return runRemovePlugin(cmd.OutOrStdout(), ws, args[0])
		},
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			ws, err := resolveWorkspace()
			if err != nil {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			cfg, _, err := loadWorkspaceConfig(ws)
			if err != nil {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var refs []string
			for _, p := range cfg.Plugins {
				refs = append(refs, p.Source)
			}
			return refs, cobra.ShellCompDirectiveNoFileComp
		},
	}
}

func runRemovePlugin(stdout io.Writer, ws, ref string) error {
	cfg, path, err := loadWorkspaceConfig(ws)
	if err != nil {
		return err
	}

	kept := make([]config.Plugin, 0, len(cfg.Plugins))
	for _, p := range cfg.Plugins {
		if p.Source != ref {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(cfg.Plugins) {
		return fmt.Errorf("plugin %s is not configured", ref)
	}
	cfg.Plugins = kept

	if err := config.Save(path, cfg); err != nil {
		return err
	}
	if !quiet {
		_, _ = fmt.Fprintf(stdout, "Removed plugin %s from %s\n", ref, path)
	}
	return nil
}
