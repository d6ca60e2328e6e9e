// Package materialize plans and applies the file operations that bring a
// workspace in line with its configured plugins and clients.
package materialize

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adamancini/plugsync/internal/agentfile"
	"github.com/adamancini/plugsync/internal/clients"
	"github.com/adamancini/plugsync/internal/plugin"
	"github.com/adamancini/plugsync/internal/skills"
	"github.com/adamancini/plugsync/internal/types"
)

// Kind is the type of a planned operation.
type Kind string

const (
	KindCopyFile  Kind = "copy-file"
	KindCopyDir   Kind = "copy-dir"
	KindSymlink   Kind = "symlink"
	KindAgentFile Kind = "agent-file"
)

// Plugin source directories copied file by file.
const (
	CommandsDir = "commands"
	HooksDir    = "hooks"
	AgentSource = "AGENTS.md"
)

// Operation writes one destination. Dest is workspace relative and slash
// separated; directory destinations end with "/".
type Operation struct {
	Kind   Kind     `json:"kind" yaml:"kind"`
	Plugin string   `json:"plugin,omitempty" yaml:"plugin,omitempty"`
	Skill  string   `json:"skill,omitempty" yaml:"skill,omitempty"`
	Source string   `json:"source,omitempty" yaml:"source,omitempty"`
	Dest   string   `json:"dest" yaml:"dest"`
	Target string   `json:"target,omitempty" yaml:"target,omitempty"`
	Owners []string `json:"owners" yaml:"owners"`

	content string
}

// Planner turns validated plugins and resolved skills into operations.
type Planner struct {
	Root     string
	Scope    types.Scope
	Mode     types.SyncMode
	Metadata skills.MetadataValidator
}

// Input is everything one plan needs.
type Input struct {
	Plugins []plugin.ValidatedPlugin
	Skills  []skills.Entry
	Names   skills.Resolution
	Clients []types.ClientType
}

// Plan is the ordered set of operations for a pass. Rejected holds
// operations dropped at planning time, already resolved to skipped.
type Plan struct {
	Operations []Operation
	Rejected   []OperationResult
	Warnings   []string
}

// Desired maps each client to the destinations it is credited with.
func (p *Plan) Desired() map[string][]string {
	out := make(map[string][]string)
	for _, op := range p.Operations {
		for _, owner := range op.Owners {
			out[owner] = append(out[owner], op.Dest)
		}
	}
	return out
}

type planBuilder struct {
	plan  *Plan
	index map[string]int
}

// add records op, merging owners when another client already claimed the
// same destination from the same source. A destination claimed from a
// different source is rejected.
func (b *planBuilder) add(op Operation) {
	if i, ok := b.index[op.Dest]; ok {
		existing := &b.plan.Operations[i]
		if existing.Kind == op.Kind && existing.Source == op.Source && existing.Target == op.Target {
			existing.Owners = mergeOwners(existing.Owners, op.Owners)
			return
		}
		reason := fmt.Sprintf("destination already provided by %s", describe(*existing))
		b.plan.Rejected = append(b.plan.Rejected, OperationResult{
			Operation: op,
			Outcome:   types.OutcomeSkipped,
			Reason:    reason,
		})
		b.plan.Warnings = append(b.plan.Warnings, fmt.Sprintf("%s: %s", op.Dest, reason))
		return
	}
	b.index[op.Dest] = len(b.plan.Operations)
	b.plan.Operations = append(b.plan.Operations, op)
}

// Plan computes the operations for the given clients. Plugins are taken in
// configured order; the first plugin to claim a destination wins.
func (p *Planner) Plan(in Input) (*Plan, error) {
	b := &planBuilder{plan: &Plan{}, index: make(map[string]int)}

	for _, pl := range in.Plugins {
		if !pl.OK {
			continue
		}
		if err := p.planFiles(b, pl, in.Clients, CommandsDir, func(m clients.Mapping) string { return m.CommandsPath }); err != nil {
			return nil, err
		}
		if err := p.planFiles(b, pl, in.Clients, HooksDir, func(m clients.Mapping) string { return m.HooksPath }); err != nil {
			return nil, err
		}
	}

	p.planSkills(b, in)

	if err := p.planAgentFiles(b, in); err != nil {
		return nil, err
	}

	return b.plan, nil
}

func (p *Planner) planFiles(b *planBuilder, pl plugin.ValidatedPlugin, clientList []types.ClientType, dir string, dest func(clients.Mapping) string) error {
	files, err := listFiles(filepath.Join(pl.ResolvedPath, dir))
	if err != nil {
		return fmt.Errorf("plugin %s: failed to list %s: %w", pl.DisplayName, dir, err)
	}
	if len(files) == 0 {
		return nil
	}

	for _, c := range clientList {
		m, _ := clients.Lookup(c, p.Scope)
		base := dest(m)
		if base == "" {
			continue
		}
		for _, rel := range files {
			b.add(Operation{
				Kind:   KindCopyFile,
				Plugin: pl.DisplayName,
				Source: filepath.Join(pl.ResolvedPath, dir, filepath.FromSlash(rel)),
				Dest:   path.Join(base, rel),
				Owners: []string{c.String()},
			})
		}
	}
	return nil
}

func (p *Planner) planSkills(b *planBuilder, in Input) {
	groups := clients.GroupBySkillsPath(in.Clients, p.Scope)

	var skillGroups []clients.Group
	var allOwners []string
	for _, g := range groups {
		if g.SkillsPath == "" {
			continue
		}
		skillGroups = append(skillGroups, g)
		allOwners = mergeOwners(allOwners, memberNames(g))
	}
	if len(skillGroups) == 0 {
		return
	}

	entries := append([]skills.Entry(nil), in.Skills...)
	sort.SliceStable(entries, func(i, j int) bool {
		return in.Names.Name(entries[i]) < in.Names.Name(entries[j])
	})

	canonical := clients.CanonicalSkillsPath()
	for _, e := range entries {
		name := in.Names.Name(e)
		if name == "" {
			continue
		}

		if p.Metadata != nil {
			if reasons := p.Metadata.Validate(e.SourceDir); len(reasons) > 0 {
				reason := "invalid skill metadata: " + strings.Join(reasons, "; ")
				dest := dirPath(skillGroups[0].SkillsPath, name)
				if p.Mode.IsSymlink() {
					dest = dirPath(canonical, name)
				}
				b.plan.Rejected = append(b.plan.Rejected, OperationResult{
					Operation: Operation{Kind: KindCopyDir, Plugin: e.PluginDisplayName, Skill: name, Source: e.SourceDir, Dest: dest},
					Outcome:   types.OutcomeSkipped,
					Reason:    reason,
				})
				b.plan.Warnings = append(b.plan.Warnings, fmt.Sprintf("skill %s: %s", e.DisabledKey(), reason))
				continue
			}
		}

		if !p.Mode.IsSymlink() {
			for _, g := range skillGroups {
				b.add(Operation{
					Kind:   KindCopyDir,
					Plugin: e.PluginDisplayName,
					Skill:  name,
					Source: e.SourceDir,
					Dest:   dirPath(g.SkillsPath, name),
					Owners: memberNames(g),
				})
			}
			continue
		}

		canonicalDest := dirPath(canonical, name)
		b.add(Operation{
			Kind:   KindCopyDir,
			Plugin: e.PluginDisplayName,
			Skill:  name,
			Source: e.SourceDir,
			Dest:   canonicalDest,
			Owners: allOwners,
		})
		for _, g := range skillGroups {
			if g.SkillsPath == canonical {
				continue
			}
			link := path.Join(g.SkillsPath, name)
			target, err := filepath.Rel(filepath.FromSlash(path.Dir(link)), filepath.FromSlash(path.Join(canonical, name)))
			if err != nil {
				b.plan.Warnings = append(b.plan.Warnings, fmt.Sprintf("skill %s: %v", name, err))
				continue
			}
			b.add(Operation{
				Kind:   KindSymlink,
				Plugin: e.PluginDisplayName,
				Skill:  name,
				Source: canonicalDest,
				Dest:   link,
				Target: target,
				Owners: memberNames(g),
			})
		}
	}
}

func (p *Planner) planAgentFiles(b *planBuilder, in Input) error {
	var fragments []agentfile.Fragment
	for _, pl := range in.Plugins {
		if !pl.OK {
			continue
		}
		data, err := os.ReadFile(filepath.Join(pl.ResolvedPath, AgentSource))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("plugin %s: failed to read %s: %w", pl.DisplayName, AgentSource, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		fragments = append(fragments, agentfile.Fragment{Plugin: pl.DisplayName, Content: string(data)})
	}
	if len(fragments) == 0 {
		return nil
	}

	body := agentfile.Body(fragments)
	for _, c := range in.Clients {
		m, _ := clients.Lookup(c, p.Scope)
		if m.AgentFile == "" {
			continue
		}
		b.add(Operation{
			Kind:    KindAgentFile,
			Source:  AgentSource,
			Dest:    p.agentTarget(m),
			Owners:  []string{c.String()},
			content: body,
		})
	}
	return nil
}

// agentTarget prefers the primary agent file, then an existing fallback.
func (p *Planner) agentTarget(m clients.Mapping) string {
	if exists(filepath.Join(p.Root, filepath.FromSlash(m.AgentFile))) {
		return m.AgentFile
	}
	if m.AgentFileFallback != "" && exists(filepath.Join(p.Root, filepath.FromSlash(m.AgentFileFallback))) {
		return m.AgentFileFallback
	}
	return m.AgentFile
}

// listFiles returns the regular files below dir as sorted slash paths,
// skipping hidden entries. A missing dir yields no files.
func listFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(p)
			if err != nil || !target.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func dirPath(base, name string) string {
	return path.Join(base, name) + "/"
}

func memberNames(g clients.Group) []string {
	names := make([]string, len(g.Members))
	for i, m := range g.Members {
		names[i] = m.String()
	}
	return names
}

func mergeOwners(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, o := range b {
		found := false
		for _, e := range out {
			if e == o {
				found = true
				break
			}
		}
		if !found {
			out = append(out, o)
		}
	}
	return out
}

func describe(op Operation) string {
	if op.Plugin != "" {
		return "plugin " + op.Plugin
	}
	return string(op.Kind)
}

func exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}
