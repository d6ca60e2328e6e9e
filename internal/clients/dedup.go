package clients

import (
	"github.com/adamancini/plugsync/internal/types"
)

// Group is a set of clients sharing one skills directory. The
// Representative performs the file I/O; every member is credited as an owner.
type Group struct {
	SkillsPath     string
	Representative types.ClientType
	Members        []types.ClientType
	Mapping        Mapping
}

// GroupBySkillsPath partitions clients by skills path, keeping configured
// order. Clients without a skills path (or unknown to the table) form
// singleton groups. Duplicate client entries are ignored.
func GroupBySkillsPath(clientList []types.ClientType, scope types.Scope) []Group {
	var groups []Group
	index := make(map[string]int)
	seen := make(map[types.ClientType]bool)

	for _, c := range clientList {
		if seen[c] {
			continue
		}
		seen[c] = true

		m, _ := Lookup(c, scope)
		if m.SkillsPath == "" {
			groups = append(groups, Group{Representative: c, Members: []types.ClientType{c}, Mapping: m})
			continue
		}

		if i, ok := index[m.SkillsPath]; ok {
			groups[i].Members = append(groups[i].Members, c)
			continue
		}

		index[m.SkillsPath] = len(groups)
		groups = append(groups, Group{
			SkillsPath:     m.SkillsPath,
			Representative: c,
			Members:        []types.ClientType{c},
			Mapping:        m,
		})
	}

	return groups
}
