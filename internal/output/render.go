package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/adamancini/plugsync/internal/backup"
	"github.com/adamancini/plugsync/internal/git"
	"github.com/adamancini/plugsync/internal/materialize"
	"github.com/adamancini/plugsync/internal/sync"
	"github.com/adamancini/plugsync/internal/types"
)

// RenderOptions controls text rendering.
type RenderOptions struct {
	Verbose bool // Include unchanged operations and plugin details
	Quiet   bool // Only failures
}

type palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	warn  lipgloss.Style
	fail  lipgloss.Style
	muted lipgloss.Style
	path  lipgloss.Style
}

// newPalette binds styles to w so colour is dropped when w is not a terminal.
func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	return palette{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
		ok:    r.NewStyle().Foreground(lipgloss.Color("42")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("214")),
		fail:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		muted: r.NewStyle().Faint(true).Foreground(lipgloss.Color("244")),
		path:  r.NewStyle().Foreground(lipgloss.Color("39")),
	}
}

// RenderSyncResult writes a human-readable report of a sync pass.
func RenderSyncResult(w io.Writer, res *sync.Result, opts RenderOptions) error {
	p := newPalette(w)
	var b strings.Builder

	if opts.Quiet {
		for _, op := range res.Operations {
			if op.Outcome == types.OutcomeFailed {
				fmt.Fprintf(&b, "%s %s: %s\n", p.fail.Render("failed"), op.Dest, op.Error)
			}
		}
		for _, f := range res.PurgeFailures {
			fmt.Fprintf(&b, "%s %s\n", p.fail.Render("failed"), f)
		}
		_, err := io.WriteString(w, b.String())
		return err
	}

	if res.Aborted {
		fmt.Fprintln(&b, p.fail.Render("Sync aborted: no configured plugin could be resolved"))
		writeWarnings(&b, p, res.Warnings)
		_, err := io.WriteString(w, b.String())
		return err
	}

	if res.DryRun {
		fmt.Fprintln(&b, p.title.Render("Dry run: no changes made"))
	}
	if opts.Verbose {
		fmt.Fprintf(&b, "%s %s (%s, %s) clients: %s\n",
			p.title.Render("Workspace"), res.Workspace, res.Scope, res.Mode, strings.Join(res.Clients, ", "))
		for _, pl := range res.Plugins {
			if pl.OK {
				fmt.Fprintf(&b, "  %s %s %s\n", p.ok.Render("✓"), pl.DisplayName, p.muted.Render(pl.ResolvedPath))
			} else {
				fmt.Fprintf(&b, "  %s %s\n", p.fail.Render("✗"), pl.Reference)
			}
		}
	}

	if len(res.Purged) > 0 {
		verb := "removed"
		if res.DryRun {
			verb = "would remove"
		}
		fmt.Fprintln(&b, p.title.Render("Purged"))
		for _, path := range res.Purged {
			fmt.Fprintf(&b, "  %s %s\n", p.warn.Render(verb), p.path.Render(path))
		}
	}

	var lines []string
	for _, op := range res.Operations {
		if line, ok := operationLine(p, op, res.DryRun, opts.Verbose); ok {
			lines = append(lines, line)
		}
	}
	if len(lines) > 0 {
		fmt.Fprintln(&b, p.title.Render("Operations"))
		for _, line := range lines {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}

	writeWarnings(&b, p, res.Warnings)

	summary := fmt.Sprintf("Copied: %d  Generated: %d  Unchanged: %d  Skipped: %d  Failed: %d  Purged: %d",
		res.Copied, res.Generated, res.Unchanged, res.Skipped, res.Failed, len(res.Purged))
	switch {
	case res.Failed > 0:
		fmt.Fprintln(&b, p.fail.Render(summary))
	case res.Copied+res.Generated+len(res.Purged) == 0 && !res.DryRun:
		fmt.Fprintln(&b, p.ok.Render("Already in sync. ")+p.muted.Render(summary))
	default:
		fmt.Fprintln(&b, p.ok.Render(summary))
	}
	if res.BackupID != "" {
		fmt.Fprintf(&b, "Backup created: %s\n", res.BackupID)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func operationLine(p palette, op materialize.OperationResult, dryRun, verbose bool) (string, bool) {
	dest := p.path.Render(op.Dest)
	switch {
	case op.Outcome == types.OutcomeFailed:
		return fmt.Sprintf("%s %s: %s", p.fail.Render("failed"), dest, op.Error), true
	case op.Unchanged:
		if !verbose {
			return "", false
		}
		return fmt.Sprintf("%s %s", p.muted.Render("unchanged"), dest), true
	case op.Outcome == types.OutcomeSkipped && dryRun && op.WouldBe.Wrote():
		return fmt.Sprintf("%s %s", p.ok.Render("would be "+string(op.WouldBe)), dest), true
	case op.Outcome == types.OutcomeSkipped:
		return fmt.Sprintf("%s %s %s", p.warn.Render("skipped"), dest, p.muted.Render("("+op.Reason+")")), true
	default:
		line := fmt.Sprintf("%s %s", p.ok.Render(string(op.Outcome)), dest)
		if op.Kind == materialize.KindSymlink {
			line += p.muted.Render(" -> " + op.Target)
		}
		return line, true
	}
}

func writeWarnings(b *strings.Builder, p palette, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(b, p.warn.Render("Warnings"))
	for _, w := range warnings {
		fmt.Fprintf(b, "  - %s\n", w)
	}
}

// PluginStatus describes one configured plugin in a status report.
type PluginStatus struct {
	Reference string      `json:"reference" yaml:"reference"`
	Kind      string      `json:"kind" yaml:"kind"`
	Enabled   bool        `json:"enabled" yaml:"enabled"`
	Checkout  *git.Status `json:"checkout,omitempty" yaml:"checkout,omitempty"`
}

// StatusReport summarizes a workspace configuration and its sync state.
type StatusReport struct {
	Workspace      string              `json:"workspace" yaml:"workspace"`
	ConfigPath     string              `json:"config_path" yaml:"config_path"`
	Scope          types.Scope         `json:"scope" yaml:"scope"`
	Mode           types.SyncMode      `json:"mode" yaml:"mode"`
	Clients        []string            `json:"clients" yaml:"clients"`
	Plugins        []PluginStatus      `json:"plugins" yaml:"plugins"`
	DisabledSkills []string            `json:"disabled_skills,omitempty" yaml:"disabled_skills,omitempty"`
	Synced         bool                `json:"synced" yaml:"synced"`
	Recorded       map[string][]string `json:"recorded" yaml:"recorded"`
}

// RenderStatus writes a status report.
func RenderStatus(w io.Writer, s *StatusReport, opts RenderOptions) error {
	p := newPalette(w)
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", p.title.Render("Workspace"), s.Workspace)
	fmt.Fprintf(&b, "  config: %s\n", p.path.Render(s.ConfigPath))
	fmt.Fprintf(&b, "  scope: %s  mode: %s\n", s.Scope, s.Mode)
	fmt.Fprintf(&b, "  clients: %s\n", strings.Join(s.Clients, ", "))
	if len(s.DisabledSkills) > 0 {
		fmt.Fprintf(&b, "  disabled skills: %s\n", strings.Join(s.DisabledSkills, ", "))
	}

	fmt.Fprintln(&b, p.title.Render("Plugins"))
	if len(s.Plugins) == 0 {
		fmt.Fprintln(&b, p.muted.Render("  (none)"))
	}
	for _, pl := range s.Plugins {
		line := fmt.Sprintf("  %s %s", pl.Reference, p.muted.Render("["+pl.Kind+"]"))
		if !pl.Enabled {
			line += p.muted.Render(" disabled")
		}
		if pl.Checkout != nil {
			style := p.ok
			switch pl.Checkout.Level {
			case git.LevelWarning, git.LevelError:
				style = p.warn
			}
			line += " " + style.Render(pl.Checkout.Message)
		}
		fmt.Fprintln(&b, line)
	}

	fmt.Fprintln(&b, p.title.Render("Sync state"))
	if !s.Synced {
		fmt.Fprintln(&b, p.muted.Render("  never synced (run 'plugsync sync')"))
	}
	clientNames := make([]string, 0, len(s.Recorded))
	for c := range s.Recorded {
		clientNames = append(clientNames, c)
	}
	sort.Strings(clientNames)
	for _, c := range clientNames {
		paths := s.Recorded[c]
		fmt.Fprintf(&b, "  %s: %d paths\n", c, len(paths))
		if opts.Verbose {
			for _, path := range paths {
				fmt.Fprintf(&b, "    %s\n", p.path.Render(path))
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderBackups writes a backup listing, newest first.
func RenderBackups(w io.Writer, backups []backup.BackupInfo) error {
	p := newPalette(w)
	var b strings.Builder

	if len(backups) == 0 {
		fmt.Fprintln(&b, "No backups found.")
		_, err := io.WriteString(w, b.String())
		return err
	}

	id := p.title.Width(22)
	for _, bak := range backups {
		note := bak.Note
		if note == "" {
			note = "-"
		}
		fmt.Fprintf(&b, "%s %s  %3d paths  %s %s\n",
			id.Render(bak.ID),
			bak.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			bak.Paths,
			note,
			p.muted.Render(bak.Workspace))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
