// Package skills discovers plugin skills and assigns each one a
// conflict-free installed name.
package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adamancini/plugsync/internal/plugin"
)

// Dir is the skills directory inside a plugin.
const Dir = "skills"

// Entry is one skill discovered in a validated plugin.
type Entry struct {
	FolderName        string
	PluginDisplayName string
	PluginReference   string
	PluginPath        string
	SourceDir         string
}

// Key identifies an entry independently of its resolved name.
type Key struct {
	PluginPath string
	FolderName string
}

// Key returns the entry's identity.
func (e Entry) Key() Key {
	return Key{PluginPath: e.PluginPath, FolderName: e.FolderName}
}

// DisabledKey is the "plugin:skill" form used in configuration.
func (e Entry) DisabledKey() string {
	return e.PluginDisplayName + ":" + e.FolderName
}

// Collect enumerates the skill directories of every OK plugin, in plugin
// order, skipping hidden directories and disabled "plugin:skill" keys.
// Unreadable skills directories are reported as warnings.
func Collect(plugins []plugin.ValidatedPlugin, disabled map[string]bool) ([]Entry, []string) {
	var entries []Entry
	var warnings []string

	for _, p := range plugins {
		if !p.OK {
			continue
		}

		skillsDir := filepath.Join(p.ResolvedPath, Dir)
		dirEntries, err := os.ReadDir(skillsDir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("plugin %s: cannot read skills: %v", p.DisplayName, err))
			continue
		}

		for _, de := range dirEntries {
			name := de.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}

			full := filepath.Join(skillsDir, name)
			// Stat follows symlinked skill directories.
			info, err := os.Stat(full)
			if err != nil || !info.IsDir() {
				continue
			}

			e := Entry{
				FolderName:        name,
				PluginDisplayName: p.DisplayName,
				PluginReference:   p.Reference,
				PluginPath:        p.ResolvedPath,
				SourceDir:         full,
			}
			if disabled[e.DisabledKey()] {
				continue
			}
			entries = append(entries, e)
		}
	}

	return entries, warnings
}

// DisabledSet builds a lookup set from "plugin:skill" keys.
func DisabledSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[strings.TrimSpace(k)] = true
	}
	return set
}
