// Package marketplace reads the marketplace registry and resolves
// name@marketplace plugin references to local directories.
package marketplace

import (
	"encoding/json"
	"fmt"
)

// Entry is one registered marketplace.
type Entry struct {
	SourceType     string `json:"sourceType"` // "git" or "directory"
	SourceLocation string `json:"sourceLocation"`
	LocalPath      string `json:"localPath"`
	LastUpdated    string `json:"lastUpdated,omitempty"`
}

// Registry maps marketplace name to its entry.
type Registry map[string]Entry

// Manifest represents the .claude-plugin/marketplace.json structure.
type Manifest struct {
	Name     string    `json:"name"`
	Owner    Owner     `json:"owner"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Plugins  []Plugin  `json:"plugins"`
}

// Owner represents the marketplace owner information.
type Owner struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Metadata contains optional metadata for the marketplace.
type Metadata struct {
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
	PluginRoot  string `json:"pluginRoot,omitempty"`
}

// Plugin is a plugin entry in the marketplace manifest.
type Plugin struct {
	Name        string       `json:"name"`
	Source      PluginSource `json:"source"`
	Version     string       `json:"version,omitempty"`
	Description string       `json:"description,omitempty"`
}

// PluginSource is either a relative directory (written as a plain string)
// or an object naming a remote repository.
type PluginSource struct {
	Type string `json:"source,omitempty"` // "github", "url" or empty for a path
	Repo string `json:"repo,omitempty"`
	URL  string `json:"url,omitempty"`
	Ref  string `json:"ref,omitempty"`
	Path string `json:"path,omitempty"`
}

// UnmarshalJSON accepts both the string and the object form.
func (s *PluginSource) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		*s = PluginSource{Path: path}
		return nil
	}

	type plain PluginSource
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("plugin source must be a string or an object: %w", err)
	}
	*s = PluginSource(obj)
	return nil
}

// RemoteReference returns the source as a plugin reference string when it
// points at a repository, or "" for a path source.
func (s PluginSource) RemoteReference() string {
	var ref string
	switch s.Type {
	case "github":
		ref = "github:" + s.Repo
	case "url", "git":
		ref = s.URL
	default:
		return ""
	}
	if s.Ref != "" {
		ref += "#" + s.Ref
	}
	return ref
}
