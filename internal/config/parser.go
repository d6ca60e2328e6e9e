package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/adamancini/plugsync/internal/types"
)

// Format represents the file format of a workspace config.
type Format int

const (
	FormatUnknown Format = iota
	FormatYAML
	FormatTOML
	FormatJSON
)

var formatsByExt = map[string]Format{
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".toml": FormatTOML,
	".json": FormatJSON,
}

// detectFormat picks the format from the extension, sniffing the content of
// extensionless files.
func detectFormat(path string, content []byte) Format {
	if f, ok := formatsByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return sniffFormat(content)
}

var tomlAssignment = regexp.MustCompile(`^[A-Za-z0-9_."-]+\s*=`)

// sniffFormat decides on the first line that is neither blank nor a comment.
func sniffFormat(content []byte) Format {
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "{"):
			return FormatJSON
		case strings.HasPrefix(line, "[") || tomlAssignment.MatchString(line):
			return FormatTOML
		case strings.Contains(line, ":") || strings.HasPrefix(line, "- "):
			return FormatYAML
		}
		return FormatUnknown
	}
	return FormatUnknown
}

// rawWorkspace is an intermediate representation for parsing.
// It handles the flexible Plugin format (string or struct).
type rawWorkspace struct {
	Version        int           `yaml:"version" toml:"version" json:"version"`
	Plugins        []interface{} `yaml:"plugins" toml:"plugins" json:"plugins"`
	Clients        []string      `yaml:"clients" toml:"clients" json:"clients"`
	SyncMode       string        `yaml:"sync_mode" toml:"sync_mode" json:"sync_mode"`
	DisabledSkills []string      `yaml:"disabled_skills" toml:"disabled_skills" json:"disabled_skills"`
	Scope          string        `yaml:"scope" toml:"scope" json:"scope"`
}

// parsePlugins accepts each entry either as a bare reference string or as
// an object with "source" and an optional "enabled".
func parsePlugins(raw []interface{}) ([]Plugin, error) {
	plugins := make([]Plugin, len(raw))
	for i, item := range raw {
		var err error
		if plugins[i], err = parsePlugin(item); err != nil {
			return nil, fmt.Errorf("plugins[%d]: %w", i, err)
		}
	}
	return plugins, nil
}

func parsePlugin(item interface{}) (Plugin, error) {
	if ref, ok := item.(string); ok {
		return Plugin{Source: ref}, nil
	}

	fields, ok := item.(map[string]interface{})
	if !ok {
		return Plugin{}, fmt.Errorf("expected a reference string or an object, got %T", item)
	}
	source, ok := fields["source"].(string)
	if !ok {
		return Plugin{}, fmt.Errorf("missing or invalid 'source' field")
	}
	p := Plugin{Source: source}
	switch enabled := fields["enabled"].(type) {
	case nil:
	case bool:
		p.Enabled = &enabled
	default:
		return Plugin{}, fmt.Errorf("'enabled' must be a boolean, got %T", enabled)
	}
	return p, nil
}

// envReference matches ${VAR} and ${VAR:-fallback}.
var envReference = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvVars substitutes environment references before parsing. An
// unset or empty variable takes the fallback when one is given.
func expandEnvVars(content []byte) []byte {
	return envReference.ReplaceAllFunc(content, func(ref []byte) []byte {
		m := envReference.FindSubmatch(ref)
		if v := os.Getenv(string(m[1])); v != "" {
			return []byte(v)
		}
		return m[2]
	})
}

// parse decodes content in format into a Workspace without validating it.
func parse(content []byte, format Format) (*Workspace, error) {
	var raw rawWorkspace
	if err := decode(expandEnvVars(content), format, &raw); err != nil {
		return nil, err
	}

	plugins, err := parsePlugins(raw.Plugins)
	if err != nil {
		return nil, err
	}

	ws := &Workspace{
		Version:        raw.Version,
		Plugins:        plugins,
		Clients:        make([]types.ClientType, len(raw.Clients)),
		SyncMode:       types.SyncMode(normalize(raw.SyncMode)),
		DisabledSkills: raw.DisabledSkills,
		Scope:          types.Scope(normalize(raw.Scope)),
	}
	for i, c := range raw.Clients {
		ws.Clients[i] = types.ClientType(normalize(c))
	}
	return ws, nil
}

func decode(content []byte, format Format, v interface{}) error {
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(content, v); err != nil {
			return fmt.Errorf("YAML parse error: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(content, v); err != nil {
			return fmt.Errorf("TOML parse error: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(content, v); err != nil {
			return fmt.Errorf("JSON parse error: %w", err)
		}
	default:
		return fmt.Errorf("unknown file format")
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
