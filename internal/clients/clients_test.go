package clients

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamancini/plugsync/internal/types"
)

func TestLookup(t *testing.T) {
	m, ok := Lookup(types.ClientClaude, types.ScopeProject)
	require.True(t, ok)
	assert.Equal(t, ".claude/skills", m.SkillsPath)
	assert.Equal(t, "CLAUDE.md", m.AgentFile)
	assert.Equal(t, "AGENTS.md", m.AgentFileFallback)

	m, ok = Lookup(types.ClientClaude, types.ScopeUser)
	require.True(t, ok)
	assert.Equal(t, ".claude/CLAUDE.md", m.AgentFile)

	_, ok = Lookup("emacs", types.ScopeProject)
	assert.False(t, ok)
}

func TestCanonicalSkillsPath(t *testing.T) {
	assert.Equal(t, ".agents/skills", CanonicalSkillsPath())
}

func TestEveryClientHasAnAgentFile(t *testing.T) {
	for _, c := range types.AllClientTypes() {
		for _, scope := range types.AllScopes() {
			m, ok := Lookup(c, scope)
			require.True(t, ok, "%s/%s", c, scope)
			assert.NotEmpty(t, m.AgentFile, "%s/%s", c, scope)
		}
		assert.True(t, Known(c))
	}
}

func TestGroupBySkillsPath(t *testing.T) {
	groups := GroupBySkillsPath([]types.ClientType{
		types.ClientCopilot,
		types.ClientClaude,
		types.ClientCodex,
		types.ClientVSCode,
		types.ClientAmp,
		types.ClientCodex,
	}, types.ScopeProject)

	require.Len(t, groups, 3)

	assert.Equal(t, ".github/skills", groups[0].SkillsPath)
	assert.Equal(t, types.ClientCopilot, groups[0].Representative)
	assert.Equal(t, []types.ClientType{types.ClientCopilot, types.ClientVSCode}, groups[0].Members)

	assert.Equal(t, types.ClientClaude, groups[1].Representative)
	assert.Equal(t, []types.ClientType{types.ClientClaude}, groups[1].Members)

	assert.Equal(t, ".agents/skills", groups[2].SkillsPath)
	assert.Equal(t, []types.ClientType{types.ClientCodex, types.ClientAmp}, groups[2].Members)
}

func TestGroupBySkillsPathUnknownClientIsSingleton(t *testing.T) {
	groups := GroupBySkillsPath([]types.ClientType{"emacs", types.ClientClaude}, types.ScopeProject)
	require.Len(t, groups, 2)
	assert.Empty(t, groups[0].SkillsPath)
	assert.Equal(t, types.ClientType("emacs"), groups[0].Representative)
}
