package skills

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
)

// Resolution maps each entry to its installed skill name.
type Resolution map[Key]string

// Name returns the resolved name for an entry.
func (r Resolution) Name(e Entry) string {
	return r[e.Key()]
}

// Fingerprint returns the first six hex characters of the SHA-256 of path.
func Fingerprint(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])[:6]
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func prefixed(display, folder string) string {
	display = unsafeNameChars.ReplaceAllString(display, "-")
	return display + "-" + folder
}

// Resolve assigns pairwise-distinct names. The result depends only on the
// set of entries, not on their order:
//   - a folder name used once keeps its name;
//   - a shared folder name is prefixed with the plugin display name;
//   - entries sharing both folder and display name are ordered by plugin
//     path, the first keeps the prefixed name and the rest get a path
//     fingerprint appended.
//
// A final pass resolves any remaining collision (for example a folder
// literally named "alpha-setup") with a fingerprint and then a counter.
func Resolve(entries []Entry) Resolution {
	unique := make(map[Key]Entry, len(entries))
	for _, e := range entries {
		unique[e.Key()] = e
	}

	byFolder := make(map[string][]Entry)
	for _, e := range unique {
		byFolder[e.FolderName] = append(byFolder[e.FolderName], e)
	}

	res := make(Resolution, len(unique))
	for folder, group := range byFolder {
		if len(group) == 1 {
			res[group[0].Key()] = folder
			continue
		}

		byDisplay := make(map[string][]Entry)
		for _, e := range group {
			byDisplay[e.PluginDisplayName] = append(byDisplay[e.PluginDisplayName], e)
		}

		for display, same := range byDisplay {
			sort.Slice(same, func(i, j int) bool { return same[i].PluginPath < same[j].PluginPath })
			base := prefixed(display, folder)
			for i, e := range same {
				if i == 0 {
					res[e.Key()] = base
					continue
				}
				res[e.Key()] = base + "-" + Fingerprint(e.PluginPath)
			}
		}
	}

	ensureUnique(res)
	return res
}

func ensureUnique(res Resolution) {
	keys := make([]Key, 0, len(res))
	for k := range res {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if res[keys[i]] != res[keys[j]] {
			return res[keys[i]] < res[keys[j]]
		}
		if keys[i].PluginPath != keys[j].PluginPath {
			return keys[i].PluginPath < keys[j].PluginPath
		}
		return keys[i].FolderName < keys[j].FolderName
	})

	// Reserve every initially assigned name so a renamed entry cannot take
	// a name another entry already holds.
	taken := make(map[string]int, len(res))
	for _, k := range keys {
		taken[res[k]]++
	}

	claimed := make(map[string]bool, len(res))
	for _, k := range keys {
		name := res[k]
		if !claimed[name] {
			claimed[name] = true
			continue
		}

		candidate := name + "-" + Fingerprint(k.PluginPath)
		for n := 2; claimed[candidate] || taken[candidate] > 0; n++ {
			candidate = fmt.Sprintf("%s-%s-%d", name, Fingerprint(k.PluginPath), n)
		}
		res[k] = candidate
		claimed[candidate] = true
	}
}
