// Package config handles workspace configuration parsing and location resolution.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adamancini/plugsync/internal/types"
)

const (
	// Dir is the per-workspace directory holding configuration and sync state.
	Dir = ".plugsync"
	// StateFileName is the sync state file inside Dir.
	StateFileName = "sync-state.json"
	// EnvConfigPath overrides the configuration file location.
	EnvConfigPath = "PLUGSYNC_CONFIG"
)

// fileNames are searched in order inside Dir.
var fileNames = []string{
	"workspace.yaml",
	"workspace.yml",
	"workspace.toml",
	"workspace.json",
	"workspace",
}

// Plugin is one configured plugin reference.
// Can be specified as:
//   - Simple string: "./plugins/foo", "github:owner/repo", "name@marketplace"
//   - Struct with source and enabled fields
type Plugin struct {
	Source  string `yaml:"source" toml:"source" json:"source"`
	Enabled *bool  `yaml:"enabled,omitempty" toml:"enabled,omitempty" json:"enabled,omitempty"`
}

// IsEnabled returns false only when the plugin is explicitly disabled.
func (p Plugin) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// Workspace represents the parsed workspace configuration file.
type Workspace struct {
	Version        int                `yaml:"version" toml:"version" json:"version"`
	Plugins        []Plugin           `yaml:"plugins" toml:"plugins" json:"plugins"`
	Clients        []types.ClientType `yaml:"clients" toml:"clients" json:"clients"`
	SyncMode       types.SyncMode     `yaml:"sync_mode,omitempty" toml:"sync_mode,omitempty" json:"sync_mode,omitempty"`
	DisabledSkills []string           `yaml:"disabled_skills,omitempty" toml:"disabled_skills,omitempty" json:"disabled_skills,omitempty"`
	Scope          types.Scope        `yaml:"scope,omitempty" toml:"scope,omitempty" json:"scope,omitempty"`
}

// PluginReferences returns the sources of enabled plugins, in configured order.
func (w *Workspace) PluginReferences() []string {
	refs := make([]string, 0, len(w.Plugins))
	for _, p := range w.Plugins {
		if p.IsEnabled() {
			refs = append(refs, p.Source)
		}
	}
	return refs
}

// HasPlugin reports whether source is already configured.
func (w *Workspace) HasPlugin(source string) bool {
	for _, p := range w.Plugins {
		if p.Source == source {
			return true
		}
	}
	return false
}

// StatePath returns the sync state file path for a workspace root.
func StatePath(workspace string) string {
	return filepath.Join(workspace, Dir, StateFileName)
}

// DefaultPath returns where a new configuration file is created.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, Dir, fileNames[0])
}

// FindConfig searches for the configuration file of a workspace.
// Returns the path to the first file found, or an error if none exists.
func FindConfig(workspace, explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("specified config not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	for _, name := range fileNames {
		path := filepath.Join(workspace, Dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}

	return "", fmt.Errorf("no workspace config found in %s (run 'plugsync init')", filepath.Join(workspace, Dir))
}

// Load reads, parses and validates a workspace configuration file.
func Load(path string) (*Workspace, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	format := detectFormat(path, content)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unable to detect file format for %s", path)
	}

	return Parse(content, format)
}

// Parse parses and validates configuration content in a known format.
func Parse(content []byte, format Format) (*Workspace, error) {
	ws, err := parse(content, format)
	if err != nil {
		return nil, err
	}
	if err := Validate(ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// InferScope determines the default scope from the workspace location.
// Returns "user" for the home directory, "project" otherwise.
func InferScope(workspace string) types.Scope {
	home, err := os.UserHomeDir()
	if err != nil {
		// If we can't determine home directory, default to project scope (safer)
		return types.ScopeProject
	}

	abs, err := filepath.Abs(workspace)
	if err != nil {
		return types.ScopeProject
	}

	if filepath.Clean(abs) == filepath.Clean(home) {
		return types.ScopeUser
	}
	return types.ScopeProject
}

// EffectiveScope returns the configured scope, or the inferred one when unset.
func (w *Workspace) EffectiveScope(workspace string) types.Scope {
	if w.Scope != "" {
		return w.Scope
	}
	return InferScope(workspace)
}
