// Package templates provides embedded workspace configurations for
// plugsync init.
package templates

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.yaml
var templatesFS embed.FS

const ext = ".yaml"

// Default is the template used when none is named.
const Default = "minimal"

// Template represents a workspace configuration template with metadata.
type Template struct {
	Name        string
	Description string
	Content     []byte
}

var templateDescriptions = map[string]string{
	"minimal":      "Single client, no plugins",
	"multi-client": "Claude, Codex, Cursor and Copilot sharing one plugin directory",
	"home":         "User scope for the home directory",
}

// List returns all available template names sorted alphabetically.
func List() []string {
	files, err := fs.Glob(templatesFS, "*"+ext)
	if err != nil {
		return nil
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = strings.TrimSuffix(f, ext)
	}
	sort.Strings(names)
	return names
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	content, err := templatesFS.ReadFile(name + ext)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("template '%s' not found (available: %s)", name, strings.Join(List(), ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read template '%s': %w", name, err)
	}
	return &Template{Name: name, Description: GetDescription(name), Content: content}, nil
}

// GetDescription returns the description for a template.
func GetDescription(name string) string {
	if desc, ok := templateDescriptions[name]; ok {
		return desc
	}
	return "Custom template"
}
