package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamancini/plugsync/internal/types"
)

func TestFindConfig(t *testing.T) {
	ws := t.TempDir()
	t.Setenv(EnvConfigPath, "")

	_, err := FindConfig(ws, "")
	assert.ErrorContains(t, err, "plugsync init")

	require.NoError(t, os.MkdirAll(filepath.Join(ws, Dir), 0755))
	tomlPath := filepath.Join(ws, Dir, "workspace.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("version = 1\n"), 0644))

	got, err := FindConfig(ws, "")
	require.NoError(t, err)
	assert.Equal(t, tomlPath, got)

	yamlPath := filepath.Join(ws, Dir, "workspace.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("version: 1\n"), 0644))
	got, err = FindConfig(ws, "")
	require.NoError(t, err)
	assert.Equal(t, yamlPath, got, "yaml takes precedence")

	_, err = FindConfig(ws, filepath.Join(ws, "nope.yaml"))
	assert.Error(t, err)
}

func TestFindConfigEnvOverride(t *testing.T) {
	ws := t.TempDir()
	custom := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(custom, []byte("version: 1\n"), 0644))
	t.Setenv(EnvConfigPath, custom)

	got, err := FindConfig(ws, "")
	require.NoError(t, err)
	assert.Equal(t, custom, got)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workspace.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\nplugins: [./a]\nclients: [claude]\n"), 0644))

	ws, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"./a"}, ws.PluginReferences())

	require.NoError(t, os.WriteFile(path, []byte("version: 1\nplugins: [./a]\nclients: [clade]\n"), 0644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "did you mean 'claude'")
}

func TestSaveRoundTrip(t *testing.T) {
	disabled := false

	for _, name := range []string{"workspace.yaml", "workspace.toml", "workspace.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), Dir, name)
			ws := &Workspace{
				Version:        1,
				Plugins:        []Plugin{{Source: "./a"}, {Source: "b@market", Enabled: &disabled}},
				Clients:        []types.ClientType{types.ClientClaude, types.ClientCursor},
				SyncMode:       types.SyncModeCopy,
				DisabledSkills: []string{"a:x"},
			}

			require.NoError(t, Save(path, ws))
			assert.NoFileExists(t, path+".tmp")

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, ws.Plugins[0], loaded.Plugins[0])
			assert.False(t, loaded.Plugins[1].IsEnabled())
			assert.Equal(t, ws.Clients, loaded.Clients)
			assert.Equal(t, ws.SyncMode, loaded.SyncMode)
			assert.Equal(t, ws.DisabledSkills, loaded.DisabledSkills)
		})
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workspace.yaml")
	err := Save(path, &Workspace{Version: 1})
	assert.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestInferScope(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, types.ScopeUser, InferScope(home))
	assert.Equal(t, types.ScopeProject, InferScope(t.TempDir()))

	ws := &Workspace{Scope: types.ScopeUser}
	assert.Equal(t, types.ScopeUser, ws.EffectiveScope(t.TempDir()))
}

func TestStatePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/w", ".plugsync", "sync-state.json"), StatePath("/w"))
	assert.Equal(t, filepath.Join("/w", ".plugsync", "workspace.yaml"), DefaultPath("/w"))
}
