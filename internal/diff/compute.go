package diff

import (
	"strings"

	"github.com/adamancini/plugsync/internal/state"
)

// Input describes one pass for purge planning.
type Input struct {
	// Previous is the state recorded by the last pass, nil on a first run.
	Previous *state.SyncState
	// Desired maps each targeted client to the paths this pass produces.
	Desired map[string][]string
	// Targeted lists the clients this pass materializes.
	Targeted []string
	// Configured lists every client in the workspace configuration.
	Configured []string
	// FullScope is set when the pass targets the whole client list, which
	// also purges clients dropped from configuration.
	FullScope bool
}

// Compute decides, for every recorded path, whether it is kept, removed or
// carried forward. With no previous state nothing is removed.
func Compute(in Input) *Result {
	result := &Result{}
	if in.Previous == nil {
		return result
	}

	candidates := make(map[string]bool)
	for _, c := range in.Targeted {
		candidates[c] = true
	}
	if in.FullScope {
		configured := make(map[string]bool, len(in.Configured))
		for _, c := range in.Configured {
			configured[c] = true
		}
		for _, c := range in.Previous.Clients() {
			if !configured[c] {
				candidates[c] = true
			}
		}
	}

	// Paths still produced by this pass or owned by a client this pass does
	// not touch are never purged.
	protected := make(map[string]string)
	for _, paths := range in.Desired {
		for _, p := range paths {
			protected[p] = "still produced"
		}
	}
	for _, c := range in.Previous.Clients() {
		if candidates[c] {
			continue
		}
		for _, p := range in.Previous.Paths(c) {
			if _, ok := protected[p]; !ok {
				protected[p] = "owned by " + c
			}
		}
	}

	for _, c := range in.Previous.Clients() {
		for _, p := range in.Previous.Paths(c) {
			d := PathDiff{Client: c, Path: p}
			switch {
			case !candidates[c]:
				d.Action = ActionCarry
			case protected[p] != "":
				d.Action = ActionKeep
				d.Reason = protected[p]
			case containsProtected(p, protected):
				d.Action = ActionKeep
				d.Reason = "contains a produced path"
			default:
				d.Action = ActionRemove
				if !contains(in.Targeted, c) {
					d.Reason = "client removed from configuration"
				} else {
					d.Reason = "no longer produced"
				}
			}
			result.Paths = append(result.Paths, d)
		}
	}

	return result
}

// containsProtected reports whether a directory path is an ancestor of a
// protected path.
func containsProtected(p string, protected map[string]string) bool {
	if !state.IsDir(p) {
		return false
	}
	for q := range protected {
		if q != p && strings.HasPrefix(q, p) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
