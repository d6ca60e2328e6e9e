// Package types provides type-safe constants for the plugsync configuration system.
//
// This package centralizes all enumerated types used throughout the codebase,
// replacing magic strings with typed constants that provide compile-time safety
// and validation methods.
//
// SYNC REQUIREMENT: These types must stay in sync with:
//   - internal/clients/table.go (client path table)
//   - internal/config/validate.go (runtime validation)
package types

import (
	"fmt"
	"strings"
)

// ClientType identifies a target AI-assistant tool.
type ClientType string

const (
	// ClientClaude is Claude Code.
	ClientClaude ClientType = "claude"
	// ClientCopilot is GitHub Copilot.
	ClientCopilot ClientType = "copilot"
	// ClientVSCode is VS Code agent mode.
	ClientVSCode ClientType = "vscode"
	// ClientCodex is the Codex CLI.
	ClientCodex ClientType = "codex"
	// ClientCursor is Cursor.
	ClientCursor ClientType = "cursor"
	// ClientOpenCode is OpenCode.
	ClientOpenCode ClientType = "opencode"
	// ClientGemini is the Gemini CLI.
	ClientGemini ClientType = "gemini"
	// ClientFactory is Factory droids.
	ClientFactory ClientType = "factory"
	// ClientAmp is Amp.
	ClientAmp ClientType = "ampcode"
)

// AllClientTypes returns all valid clients in table order.
func AllClientTypes() []ClientType {
	return []ClientType{
		ClientClaude, ClientCopilot, ClientVSCode, ClientCodex, ClientCursor,
		ClientOpenCode, ClientGemini, ClientFactory, ClientAmp,
	}
}

// AllClientNames returns all valid client identifiers as strings.
func AllClientNames() []string {
	all := AllClientTypes()
	names := make([]string, len(all))
	for i, c := range all {
		names[i] = string(c)
	}
	return names
}

// Validate checks if the ClientType is a valid value.
func (c ClientType) Validate() error {
	if c == "" {
		return fmt.Errorf("client is required")
	}
	for _, known := range AllClientTypes() {
		if c == known {
			return nil
		}
	}
	return fmt.Errorf("unknown client '%s'", c)
}

// String returns the string representation of the ClientType.
func (c ClientType) String() string {
	return string(c)
}

// ParseClientType parses a string into a ClientType.
// Returns an error if the string is not a known client.
func ParseClientType(s string) (ClientType, error) {
	c := ClientType(strings.ToLower(strings.TrimSpace(s)))
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

// SyncMode selects how skills are materialized.
type SyncMode string

const (
	// SyncModeSymlink copies skills once into the canonical location and
	// links every other client to it.
	SyncModeSymlink SyncMode = "symlink"
	// SyncModeCopy gives every client an independent physical copy.
	SyncModeCopy SyncMode = "copy"
)

// AllSyncModes returns all valid sync modes.
func AllSyncModes() []SyncMode {
	return []SyncMode{SyncModeSymlink, SyncModeCopy}
}

// Validate checks if the SyncMode is a valid value.
// Empty mode is valid and means symlink.
func (m SyncMode) Validate() error {
	switch m {
	case SyncModeSymlink, SyncModeCopy, "":
		return nil
	default:
		return fmt.Errorf("invalid sync mode '%s' (must be symlink or copy)", m)
	}
}

// String returns the string representation of the SyncMode.
func (m SyncMode) String() string {
	return string(m)
}

// Default returns symlink when the mode is empty.
func (m SyncMode) Default() SyncMode {
	if m == "" {
		return SyncModeSymlink
	}
	return m
}

// IsSymlink returns true if skills are linked to the canonical copy.
func (m SyncMode) IsSymlink() bool {
	return m.Default() == SyncModeSymlink
}

// ParseSyncMode parses a string into a SyncMode.
func ParseSyncMode(s string) (SyncMode, error) {
	m := SyncMode(strings.ToLower(s))
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// Scope represents where a workspace lives (project directory or home).
type Scope string

const (
	// ScopeUser indicates the workspace is the user's home directory.
	ScopeUser Scope = "user"
	// ScopeProject indicates the workspace is a project directory.
	ScopeProject Scope = "project"
)

// AllScopes returns all valid scopes.
func AllScopes() []Scope {
	return []Scope{ScopeUser, ScopeProject}
}

// Validate checks if the Scope is a valid value.
// Empty scope is considered valid (inferred from the workspace location).
func (s Scope) Validate() error {
	switch s {
	case ScopeUser, ScopeProject, "":
		return nil
	default:
		return fmt.Errorf("invalid scope '%s' (must be user or project)", s)
	}
}

// String returns the string representation of the Scope.
func (s Scope) String() string {
	return string(s)
}

// IsUser returns true if the scope is user.
func (s Scope) IsUser() bool {
	return s == ScopeUser
}

// Default returns project scope if empty, otherwise returns the current scope.
func (s Scope) Default() Scope {
	if s == "" {
		return ScopeProject
	}
	return s
}

// ParseScope parses a string into a Scope.
// Returns an error if the string is not a valid scope.
func ParseScope(s string) (Scope, error) {
	scope := Scope(strings.ToLower(s))
	if err := scope.Validate(); err != nil {
		return "", err
	}
	return scope, nil
}

// Outcome is the result of a single file or directory operation.
type Outcome string

const (
	// OutcomeCopied means content was copied (or linked) from a plugin.
	OutcomeCopied Outcome = "copied"
	// OutcomeGenerated means derived content was written, e.g. an agent file.
	OutcomeGenerated Outcome = "generated"
	// OutcomeSkipped means nothing was written (dry run, unmanaged file, invalid input).
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means an I/O error occurred.
	OutcomeFailed Outcome = "failed"
)

// String returns the string representation of the Outcome.
func (o Outcome) String() string {
	return string(o)
}

// Wrote returns true if the outcome leaves managed content on disk.
func (o Outcome) Wrote() bool {
	return o == OutcomeCopied || o == OutcomeGenerated
}
