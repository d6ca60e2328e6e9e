package plugin

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// ManifestPath is the plugin manifest location relative to the plugin root.
const ManifestPath = ".claude-plugin/plugin.json"

// Manifest is the subset of plugin.json the sync engine reads.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
}

// ReadManifest loads the plugin manifest at dir. A missing manifest is not
// an error and yields nil.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(ManifestPath)))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	m.Name = strings.TrimSpace(m.Name)
	return &m, nil
}
