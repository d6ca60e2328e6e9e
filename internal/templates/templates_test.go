package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamancini/plugsync/internal/config"
)

func TestList(t *testing.T) {
	names := List()
	assert.Equal(t, []string{"home", "minimal", "multi-client"}, names)
	assert.Contains(t, names, Default)
}

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"minimal", false},
		{"multi-client", false},
		{"home", false},
		{"nonexistent", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Get(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "available: home, minimal, multi-client")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, tmpl.Name)
			assert.NotEmpty(t, tmpl.Content)
			assert.NotEqual(t, "Custom template", tmpl.Description)
		})
	}
}

func TestGetDescription(t *testing.T) {
	assert.Equal(t, "User scope for the home directory", GetDescription("home"))
	assert.Equal(t, "Custom template", GetDescription("unknown"))
}

// Every template must load as a valid workspace configuration.
func TestTemplatesParse(t *testing.T) {
	for _, name := range List() {
		t.Run(name, func(t *testing.T) {
			tmpl, err := Get(name)
			require.NoError(t, err)

			ws, err := config.Parse(tmpl.Content, config.FormatYAML)
			require.NoError(t, err)
			assert.Equal(t, config.CurrentVersion, ws.Version)
			assert.NotEmpty(t, ws.Clients)
		})
	}
}

func TestMultiClientDefaultPluginDir(t *testing.T) {
	t.Setenv("PLUGSYNC_PLUGIN_DIR", "")
	tmpl, err := Get("multi-client")
	require.NoError(t, err)
	require.True(t, strings.Contains(string(tmpl.Content), "${PLUGSYNC_PLUGIN_DIR:-./plugins}"))

	ws, err := config.Parse(tmpl.Content, config.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, []string{"./plugins/example"}, ws.PluginReferences())

	t.Setenv("PLUGSYNC_PLUGIN_DIR", "/opt/plugins")
	ws, err = config.Parse(tmpl.Content, config.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, []string{"/opt/plugins/example"}, ws.PluginReferences())
}
