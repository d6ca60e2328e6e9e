package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// fileWorkspace is the on-disk shape written by Save. Plugins without an
// explicit enabled flag are written back as plain strings.
type fileWorkspace struct {
	Version        int           `yaml:"version" toml:"version" json:"version"`
	Plugins        []interface{} `yaml:"plugins" toml:"plugins" json:"plugins"`
	Clients        []string      `yaml:"clients" toml:"clients" json:"clients"`
	SyncMode       string        `yaml:"sync_mode,omitempty" toml:"sync_mode,omitempty" json:"sync_mode,omitempty"`
	DisabledSkills []string      `yaml:"disabled_skills,omitempty" toml:"disabled_skills,omitempty" json:"disabled_skills,omitempty"`
	Scope          string        `yaml:"scope,omitempty" toml:"scope,omitempty" json:"scope,omitempty"`
}

func toFile(w *Workspace) fileWorkspace {
	f := fileWorkspace{
		Version:        w.Version,
		Plugins:        make([]interface{}, 0, len(w.Plugins)),
		Clients:        make([]string, 0, len(w.Clients)),
		SyncMode:       string(w.SyncMode),
		DisabledSkills: w.DisabledSkills,
		Scope:          string(w.Scope),
	}
	if f.Version == 0 {
		f.Version = CurrentVersion
	}
	for _, p := range w.Plugins {
		if p.Enabled == nil {
			f.Plugins = append(f.Plugins, p.Source)
			continue
		}
		f.Plugins = append(f.Plugins, map[string]interface{}{"source": p.Source, "enabled": *p.Enabled})
	}
	for _, c := range w.Clients {
		f.Clients = append(f.Clients, string(c))
	}
	return f
}

// Marshal encodes the workspace in the given format.
func Marshal(w *Workspace, format Format) ([]byte, error) {
	f := toFile(w)

	switch format {
	case FormatTOML:
		return toml.Marshal(f)
	case FormatJSON:
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

// Save validates and writes the workspace config to path, choosing the
// format from the extension (or the existing content for extensionless
// files). The write goes through a temporary file and a rename.
func Save(path string, w *Workspace) error {
	if err := Validate(w); err != nil {
		return err
	}

	var existing []byte
	if data, err := os.ReadFile(path); err == nil {
		existing = data
	}
	format := detectFormat(path, existing)
	if format == FormatUnknown {
		format = FormatYAML
	}

	data, err := Marshal(w, format)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
