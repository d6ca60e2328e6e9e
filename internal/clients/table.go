// Package clients holds the static client path table and groups clients that
// share a skills directory.
package clients

import (
	"github.com/adamancini/plugsync/internal/types"
)

// canonicalSkillsPath is where symlink mode keeps the single physical copy
// of every skill. It is relative to the workspace in both scopes.
const canonicalSkillsPath = ".agents/skills"

// Mapping describes where a client expects each kind of content.
// Paths are relative to the workspace and slash separated. An empty path
// means the client does not support that kind of content.
type Mapping struct {
	CommandsPath      string
	SkillsPath        string
	HooksPath         string
	AgentFile         string
	AgentFileFallback string
}

var projectTable = map[types.ClientType]Mapping{
	types.ClientClaude: {
		CommandsPath:      ".claude/commands",
		SkillsPath:        ".claude/skills",
		HooksPath:         ".claude/hooks",
		AgentFile:         "CLAUDE.md",
		AgentFileFallback: "AGENTS.md",
	},
	types.ClientCopilot: {
		CommandsPath: ".github/prompts",
		SkillsPath:   ".github/skills",
		AgentFile:    "AGENTS.md",
	},
	types.ClientVSCode: {
		SkillsPath: ".github/skills",
		AgentFile:  "AGENTS.md",
	},
	types.ClientCodex: {
		SkillsPath: ".agents/skills",
		AgentFile:  "AGENTS.md",
	},
	types.ClientCursor: {
		CommandsPath: ".cursor/commands",
		SkillsPath:   ".cursor/skills",
		AgentFile:    "AGENTS.md",
	},
	types.ClientOpenCode: {
		CommandsPath: ".opencode/command",
		SkillsPath:   ".agents/skills",
		AgentFile:    "AGENTS.md",
	},
	types.ClientGemini: {
		CommandsPath:      ".gemini/commands",
		SkillsPath:        ".gemini/skills",
		AgentFile:         "GEMINI.md",
		AgentFileFallback: "AGENTS.md",
	},
	types.ClientFactory: {
		CommandsPath: ".factory/commands",
		SkillsPath:   ".factory/skills",
		HooksPath:    ".factory/hooks",
		AgentFile:    "AGENTS.md",
	},
	types.ClientAmp: {
		SkillsPath: ".agents/skills",
		AgentFile:  "AGENTS.md",
	},
}

var userTable = map[types.ClientType]Mapping{
	types.ClientClaude: {
		CommandsPath: ".claude/commands",
		SkillsPath:   ".claude/skills",
		HooksPath:    ".claude/hooks",
		AgentFile:    ".claude/CLAUDE.md",
	},
	types.ClientCopilot: {
		SkillsPath: ".copilot/skills",
		AgentFile:  ".copilot/AGENTS.md",
	},
	types.ClientVSCode: {
		SkillsPath: ".copilot/skills",
		AgentFile:  ".copilot/AGENTS.md",
	},
	types.ClientCodex: {
		CommandsPath: ".codex/prompts",
		SkillsPath:   ".codex/skills",
		AgentFile:    ".codex/AGENTS.md",
	},
	types.ClientCursor: {
		CommandsPath: ".cursor/commands",
		SkillsPath:   ".cursor/skills",
		AgentFile:    ".cursor/AGENTS.md",
	},
	types.ClientOpenCode: {
		CommandsPath: ".config/opencode/command",
		SkillsPath:   ".config/opencode/skills",
		AgentFile:    ".config/opencode/AGENTS.md",
	},
	types.ClientGemini: {
		CommandsPath: ".gemini/commands",
		SkillsPath:   ".gemini/skills",
		AgentFile:    ".gemini/GEMINI.md",
	},
	types.ClientFactory: {
		CommandsPath: ".factory/commands",
		SkillsPath:   ".factory/skills",
		HooksPath:    ".factory/hooks",
		AgentFile:    ".factory/AGENTS.md",
	},
	types.ClientAmp: {
		SkillsPath: ".config/agents/skills",
		AgentFile:  ".config/AGENTS.md",
	},
}

// Lookup returns the mapping for a client in the given scope.
func Lookup(client types.ClientType, scope types.Scope) (Mapping, bool) {
	table := projectTable
	if scope.IsUser() {
		table = userTable
	}
	m, ok := table[client]
	return m, ok
}

// CanonicalSkillsPath returns the workspace-relative canonical skills
// directory. Project and user scope share .agents/skills.
func CanonicalSkillsPath() string {
	return canonicalSkillsPath
}

// Known reports whether the client has a mapping in every scope.
func Known(client types.ClientType) bool {
	_, inProject := projectTable[client]
	_, inUser := userTable[client]
	return inProject && inUser
}
