package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/adamancini/plugsync/internal/config"
	"github.com/adamancini/plugsync/internal/git"
	"github.com/adamancini/plugsync/internal/output"
	"github.com/adamancini/plugsync/internal/plugin"
	"github.com/adamancini/plugsync/internal/settings"
	"github.com/adamancini/plugsync/internal/state"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show workspace configuration and sync state",
		Long: `Status summarizes the workspace configuration, the checkout state of cached
remote plugins and the paths recorded by the last sync for each client.
It never fetches or writes anything.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}
	cfg, path, err := loadWorkspaceConfig(ws)
	if err != nil {
		return err
	}
	s, err := loadSettings()
	if err != nil {
		return err
	}

	report, err := buildStatus(cmd.Context(), ws, path, cfg, s, git.NewClient())
	if err != nil {
		return err
	}

	writer, err := newOutputWriter(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if writer.Structured() {
		return writer.Write(report)
	}
	return output.RenderStatus(cmd.OutOrStdout(), report, renderOptions())
}

// buildStatus gathers a status report without touching the network.
func buildStatus(ctx context.Context, ws, path string, cfg *config.Workspace, s *settings.Settings, gitClient *git.Client) (*output.StatusReport, error) {
	report := &output.StatusReport{
		Workspace:      ws,
		ConfigPath:     path,
		Scope:          cfg.EffectiveScope(ws),
		Mode:           cfg.SyncMode.Default(),
		DisabledSkills: cfg.DisabledSkills,
		Recorded:       map[string][]string{},
	}
	for _, c := range cfg.Clients {
		report.Clients = append(report.Clients, c.String())
	}

	for _, p := range cfg.Plugins {
		ps := output.PluginStatus{Reference: p.Source, Enabled: p.IsEnabled()}
		ref, err := plugin.ParseReference(p.Source)
		if err != nil {
			ps.Kind = "invalid"
			report.Plugins = append(report.Plugins, ps)
			continue
		}
		switch r := ref.(type) {
		case plugin.LocalPath:
			ps.Kind = "local"
		case plugin.MarketplaceSpec:
			ps.Kind = "marketplace"
		case plugin.RemoteURL:
			ps.Kind = "remote"
			checkout := filepath.Join(s.PluginCacheDir(), r.CacheKey())
			if _, err := os.Stat(checkout); err == nil {
				st := gitClient.CheckRepository(ctx, checkout)
				ps.Checkout = &st
			} else {
				ps.Checkout = &git.Status{Path: checkout, Level: git.LevelInfo, Message: "not cached yet"}
			}
		}
		report.Plugins = append(report.Plugins, ps)
	}

	recorded, err := state.NewFileStore(config.StatePath(ws)).Read()
	if err != nil {
		return nil, err
	}
	if recorded != nil {
		report.Synced = true
		for _, c := range recorded.Clients() {
			report.Recorded[c] = recorded.Paths(c)
		}
	}
	return report, nil
}
