package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamancini/plugsync/internal/types"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		content  string
		expected Format
	}{
		{"yaml extension", "workspace.yaml", "", FormatYAML},
		{"yml extension", "workspace.yml", "", FormatYAML},
		{"toml extension", "workspace.toml", "", FormatTOML},
		{"json extension", "workspace.json", "", FormatJSON},
		{"json content", "workspace", `{"version": 1}`, FormatJSON},
		{"yaml content", "workspace", `version: 1`, FormatYAML},
		{"toml content", "workspace", `version = 1`, FormatTOML},
		{"empty content", "workspace", ``, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detectFormat(tt.path, []byte(tt.content)))
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "test_value")
	t.Setenv("EMPTY_VAR", "")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple var", "${TEST_VAR}", "test_value"},
		{"var with default", "${PLUGSYNC_MISSING_VAR:-default_value}", "default_value"},
		{"existing var ignores default", "${TEST_VAR:-default_value}", "test_value"},
		{"empty var uses default", "${EMPTY_VAR:-default_value}", "default_value"},
		{"no var", "plain text", "plain text"},
		{"mixed content", "prefix ${TEST_VAR} suffix", "prefix test_value suffix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(expandEnvVars([]byte(tt.input))))
		})
	}
}

func TestParseYAML(t *testing.T) {
	content := []byte(`
version: 1
plugins:
  - ./plugins/alpha
  - source: superpowers@official
    enabled: false
  - github:acme/tools#main
clients: [Claude, copilot]
sync_mode: copy
disabled_skills:
  - alpha:setup
scope: project
`)

	ws, err := parse(content, FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, 1, ws.Version)
	require.Len(t, ws.Plugins, 3)
	assert.Equal(t, "./plugins/alpha", ws.Plugins[0].Source)
	assert.True(t, ws.Plugins[0].IsEnabled())
	assert.Equal(t, "superpowers@official", ws.Plugins[1].Source)
	assert.False(t, ws.Plugins[1].IsEnabled())

	assert.Equal(t, []string{"./plugins/alpha", "github:acme/tools#main"}, ws.PluginReferences())
	assert.Equal(t, []types.ClientType{types.ClientClaude, types.ClientCopilot}, ws.Clients)
	assert.Equal(t, types.SyncModeCopy, ws.SyncMode)
	assert.Equal(t, []string{"alpha:setup"}, ws.DisabledSkills)
	assert.Equal(t, types.ScopeProject, ws.Scope)
}

func TestParseTOML(t *testing.T) {
	content := []byte(`
version = 1
plugins = ["./plugins/alpha", { source = "beta@market", enabled = true }]
clients = ["claude", "codex"]
sync_mode = "symlink"
`)

	ws, err := parse(content, FormatTOML)
	require.NoError(t, err)

	require.Len(t, ws.Plugins, 2)
	assert.Equal(t, "beta@market", ws.Plugins[1].Source)
	require.NotNil(t, ws.Plugins[1].Enabled)
	assert.True(t, *ws.Plugins[1].Enabled)
	assert.Equal(t, []types.ClientType{types.ClientClaude, types.ClientCodex}, ws.Clients)
}

func TestParseJSON(t *testing.T) {
	content := []byte(`{
  "version": 1,
  "plugins": ["./a", {"source": "./b"}],
  "clients": ["gemini"]
}`)

	ws, err := parse(content, FormatJSON)
	require.NoError(t, err)
	assert.Len(t, ws.Plugins, 2)
	assert.Equal(t, types.SyncMode(""), ws.SyncMode)
}

func TestParsePluginErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing source", "plugins:\n  - enabled: true\n"},
		{"number", "plugins:\n  - 42\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse([]byte(tt.content), FormatYAML)
			assert.Error(t, err)
		})
	}
}

func TestParseEnvVarExpansion(t *testing.T) {
	t.Setenv("PLUGIN_HOME", "/opt/plugins")

	ws, err := parse([]byte("plugins:\n  - ${PLUGIN_HOME}/alpha\n  - ${NOPE_UNSET:-./beta}\nclients: [claude]\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "/opt/plugins/alpha", ws.Plugins[0].Source)
	assert.Equal(t, "./beta", ws.Plugins[1].Source)
}
