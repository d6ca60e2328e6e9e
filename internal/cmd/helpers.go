package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamancini/plugsync/internal/config"
	"github.com/adamancini/plugsync/internal/output"
	"github.com/adamancini/plugsync/internal/settings"
	"github.com/adamancini/plugsync/internal/types"
)

// resolveWorkspace returns the absolute workspace directory.
func resolveWorkspace() (string, error) {
	dir := workspaceDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to determine working directory: %w", err)
		}
		dir = wd
	}
	dir = expandHomePath(dir)
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace: %w", err)
	}
	return abs, nil
}

// loadWorkspaceConfig finds and loads the configuration of ws.
func loadWorkspaceConfig(ws string) (*config.Workspace, string, error) {
	path, err := config.FindConfig(ws, expandHomePath(configPath))
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load %s: %w", path, err)
	}
	return cfg, path, nil
}

func loadSettings() (*settings.Settings, error) {
	return settings.Load(expandHomePath(settingsPath))
}

func newOutputWriter(w io.Writer) (*output.Writer, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return output.NewWriter(w, format), nil
}

func renderOptions() output.RenderOptions {
	return output.RenderOptions{Verbose: verbosity > 0, Quiet: quiet}
}

// parseClients converts --client values, suggesting the closest name for
// typos.
func parseClients(values []string) ([]types.ClientType, error) {
	var out []types.ClientType
	for _, v := range values {
		for _, name := range strings.Split(v, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			c, err := types.ParseClientType(name)
			if err != nil {
				if s := config.SuggestClient(name); s != "" {
					return nil, fmt.Errorf("%w (did you mean %q?)", err, s)
				}
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

func completeClients(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return types.AllClientNames(), cobra.ShellCompDirectiveNoFileComp
}

// expandHomePath expands ~ to the user's home directory.
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
