package config

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/adamancini/plugsync/internal/plugin"
	"github.com/adamancini/plugsync/internal/types"
)

// CurrentVersion is the only configuration schema version understood.
const CurrentVersion = 1

// ValidationError represents a workspace config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the workspace config for required fields and valid values.
// All problems are reported together.
func Validate(w *Workspace) error {
	var errs []string
	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if w.Version != 0 && w.Version != CurrentVersion {
		add(ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (expected %d)", w.Version, CurrentVersion),
		})
	}

	seenPlugins := make(map[string]bool)
	for i, p := range w.Plugins {
		add(validatePlugin(i, p, seenPlugins))
	}

	add(validateClients(w.Clients))

	if err := w.SyncMode.Validate(); err != nil {
		add(ValidationError{Field: "sync_mode", Message: err.Error()})
	}

	if err := w.Scope.Validate(); err != nil {
		add(ValidationError{Field: "scope", Message: err.Error()})
	}

	for i, key := range w.DisabledSkills {
		if _, _, err := ParseSkillKey(key); err != nil {
			add(ValidationError{Field: fmt.Sprintf("disabled_skills[%d]", i), Message: err.Error()})
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func validatePlugin(index int, p Plugin, seen map[string]bool) error {
	field := fmt.Sprintf("plugins[%d]", index)

	if strings.TrimSpace(p.Source) == "" {
		return ValidationError{Field: field, Message: "source is required"}
	}

	if _, err := plugin.ParseReference(p.Source); err != nil {
		return ValidationError{Field: field, Message: err.Error()}
	}

	if seen[p.Source] {
		return ValidationError{Field: field, Message: fmt.Sprintf("duplicate plugin '%s'", p.Source)}
	}
	seen[p.Source] = true

	return nil
}

func validateClients(clients []types.ClientType) error {
	if len(clients) == 0 {
		return ValidationError{Field: "clients", Message: "at least one client is required"}
	}

	seen := make(map[types.ClientType]bool)
	for i, c := range clients {
		field := fmt.Sprintf("clients[%d]", i)

		if err := c.Validate(); err != nil {
			msg := err.Error()
			if s := SuggestClient(string(c)); s != "" {
				msg += fmt.Sprintf(" (did you mean '%s'?)", s)
			}
			return ValidationError{Field: field, Message: msg}
		}

		if seen[c] {
			return ValidationError{Field: field, Message: fmt.Sprintf("duplicate client '%s'", c)}
		}
		seen[c] = true
	}

	return nil
}

// SuggestClient returns the closest known client name, or "" when nothing is close.
func SuggestClient(name string) string {
	if name == "" {
		return ""
	}
	matches := fuzzy.Find(strings.ToLower(name), types.AllClientNames())
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

// ParseSkillKey splits a "plugin:skill" key.
func ParseSkillKey(key string) (pluginName, skill string, err error) {
	parts := strings.SplitN(key, ":", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("invalid skill key '%s' (must be plugin:skill)", key)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
