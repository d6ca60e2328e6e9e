package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adamancini/plugsync/internal/config"
	"github.com/adamancini/plugsync/internal/plugin"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add entries to the workspace configuration",
	}

	cmd.AddCommand(newAddPluginCmd())

	return cmd
}

func newAddPluginCmd() *cobra.Command {
	var disabled bool

	cmd := &cobra.Command{
		Use:   "plugin <ref>",
		Short: "Add a plugin reference",
		Long: `Add a plugin reference to the end of the plugin list. References take the
forms ./local/path, github:owner/repo[#branch], https://host/owner/repo or
name@marketplace. Run 'plugsync sync' afterwards to materialize it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := resolveWorkspace()
			if err != nil {
				return err
			}
			return runAddPlugin(cmd.OutOrStdout(), ws, args[0], !disabled)
		},
	}

	cmd.Flags().BoolVar(&disabled, "disabled", false, "Add the plugin but keep it disabled")

	return cmd
}

func runAddPlugin(stdout io.Writer, ws, ref string, enabled bool) error {
	if _, err := plugin.ParseReference(ref); err != nil {
		return err
	}

	cfg, path, err := loadWorkspaceConfig(ws)
	if err != nil {
		return err
	}
	if cfg.HasPlugin(ref) {
		return fmt.Errorf("plugin %s is already configured", ref)
	}

	p := config.Plugin{Source: ref}
	if !enabled {
		p.Enabled = &enabled
	}
	cfg.Plugins = append(cfg.Plugins, p)

	if err := config.Save(path, cfg); err != nil {
		return err
	}
	if !quiet {
		_, _ = fmt.Fprintf(stdout, "Added plugin %s to %s\n", ref, path)
	}
	return nil
}
