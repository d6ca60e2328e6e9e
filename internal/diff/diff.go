// Package diff computes which previously synced paths a pass no longer wants.
package diff

import (
	"sort"
)

// Action represents what happens to a previously recorded path.
type Action string

const (
	ActionKeep   Action = "keep"   // Still produced by this pass or owned elsewhere
	ActionRemove Action = "remove" // No longer wanted, will be purged
	ActionCarry  Action = "carry"  // Client not targeted, entry carried forward
)

// PathDiff is the decision for one recorded path of one client.
type PathDiff struct {
	Client string `json:"client" yaml:"client"`
	Path   string `json:"path" yaml:"path"`
	Action Action `json:"action" yaml:"action"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Result contains every decision, sorted by client then path.
type Result struct {
	Paths []PathDiff
}

// Removals returns the paths marked for removal.
func (r *Result) Removals() []PathDiff {
	var out []PathDiff
	for _, p := range r.Paths {
		if p.Action == ActionRemove {
			out = append(out, p)
		}
	}
	return out
}

// RemovalPaths returns the unique paths to purge, sorted.
func (r *Result) RemovalPaths() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range r.Removals() {
		if !seen[p.Path] {
			seen[p.Path] = true
			out = append(out, p.Path)
		}
	}
	sort.Strings(out)
	return out
}

// Carried returns the entries of clients this pass does not touch, grouped
// by client.
func (r *Result) Carried() map[string][]string {
	out := make(map[string][]string)
	for _, p := range r.Paths {
		if p.Action == ActionCarry {
			out[p.Client] = append(out[p.Client], p.Path)
		}
	}
	return out
}

// Summary returns counts of each action.
func (r *Result) Summary() (keep, remove, carry int) {
	for _, p := range r.Paths {
		switch p.Action {
		case ActionKeep:
			keep++
		case ActionRemove:
			remove++
		case ActionCarry:
			carry++
		}
	}
	return
}
