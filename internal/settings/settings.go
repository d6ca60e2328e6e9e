// Package settings loads tool-wide settings (as opposed to the per-workspace
// configuration) from defaults, an optional settings file and the environment.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment overrides, e.g. PLUGSYNC_OFFLINE=true.
const EnvPrefix = "PLUGSYNC_"

// Settings holds tool-wide knobs.
type Settings struct {
	CacheDir     string        `koanf:"cache_dir"`
	RegistryPath string        `koanf:"registry_path"`
	BackupDir    string        `koanf:"backup_dir"`
	FetchTimeout time.Duration `koanf:"fetch_timeout"`
	Concurrency  int           `koanf:"concurrency"`
	Offline      bool          `koanf:"offline"`
}

// PluginCacheDir is where remote plugins are cloned.
func (s *Settings) PluginCacheDir() string {
	return filepath.Join(s.CacheDir, "plugins")
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"cache_dir":     filepath.Join(xdg.CacheHome, "plugsync"),
		"registry_path": filepath.Join(xdg.ConfigHome, "plugsync", "marketplaces.json"),
		"backup_dir":    filepath.Join(xdg.CacheHome, "plugsync", "backups"),
		"fetch_timeout": "60s",
		"concurrency":   4,
		"offline":       false,
	}
}

// DefaultPath returns the first settings file that exists under the XDG
// config directory, or the TOML path when none does.
func DefaultPath() string {
	dir := filepath.Join(xdg.ConfigHome, "plugsync")
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(dir, "config.toml")
}

// Load layers defaults, the settings file at path (skipped when absent) and
// PLUGSYNC_* environment variables. An empty path means DefaultPath().
func Load(path string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load default settings: %w", err)
	}

	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		parser := koanf.Parser(toml.Parser())
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("failed to load settings from %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var s Settings
	if err := k.UnmarshalWithConf("", &s, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if s.Concurrency < 1 {
		s.Concurrency = 1
	}
	if s.FetchTimeout <= 0 {
		return nil, fmt.Errorf("fetch_timeout must be positive, got %s", s.FetchTimeout)
	}

	return &s, nil
}
