package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/adamancini/plugsync/internal/backup"
	"github.com/adamancini/plugsync/internal/git"
	"github.com/adamancini/plugsync/internal/materialize"
	"github.com/adamancini/plugsync/internal/plugin"
	"github.com/adamancini/plugsync/internal/sync"
	"github.com/adamancini/plugsync/internal/types"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func sampleResult() *sync.Result {
	return &sync.Result{
		Success:   false,
		Workspace: "/work",
		Scope:     types.ScopeProject,
		Mode:      types.SyncModeSymlink,
		Clients:   []string{"claude", "codex"},
		Copied:    2,
		Generated: 1,
		Unchanged: 1,
		Failed:    1,
		Plugins: []plugin.ValidatedPlugin{
			{Reference: "./plugins/a", DisplayName: "alpha", ResolvedPath: "/work/plugins/a", OK: true},
			{Reference: "./plugins/missing", Error: "path does not exist"},
		},
		Operations: []materialize.OperationResult{
			{Operation: materialize.Operation{Kind: materialize.KindCopyFile, Dest: ".claude/commands/run.md"}, Outcome: types.OutcomeCopied},
			{Operation: materialize.Operation{Kind: materialize.KindSymlink, Dest: ".claude/skills/setup", Target: "../../.agents/skills/setup"}, Outcome: types.OutcomeCopied},
			{Operation: materialize.Operation{Kind: materialize.KindCopyDir, Dest: ".agents/skills/setup/"}, Outcome: types.OutcomeCopied, Unchanged: true},
			{Operation: materialize.Operation{Kind: materialize.KindAgentFile, Dest: "AGENTS.md"}, Outcome: types.OutcomeGenerated},
			{Operation: materialize.Operation{Kind: materialize.KindCopyFile, Dest: ".claude/commands/bad.md"}, Outcome: types.OutcomeFailed, Error: "permission denied"},
		},
		Purged:   []string{".claude/commands/old.md"},
		Warnings: []string{"plugin ./plugins/missing: path does not exist"},
	}
}

func TestWriterStructured(t *testing.T) {
	res := sampleResult()

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatJSON).Write(res))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "/work", decoded["workspace"])
	ops := decoded["operations"].([]interface{})
	require.Len(t, ops, 5)
	first := ops[0].(map[string]interface{})
	assert.Equal(t, ".claude/commands/run.md", first["dest"])
	assert.Equal(t, "copied", first["outcome"])

	buf.Reset()
	require.NoError(t, NewWriter(&buf, FormatYAML).Write(res))
	var fromYAML map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	assert.Equal(t, 2, fromYAML["copied"])
	yops := fromYAML["operations"].([]interface{})
	assert.Equal(t, "AGENTS.md", yops[3].(map[string]interface{})["dest"])
}

func TestRenderSyncResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSyncResult(&buf, sampleResult(), RenderOptions{}))
	out := buf.String()

	assert.Contains(t, out, "removed .claude/commands/old.md")
	assert.Contains(t, out, "copied .claude/commands/run.md")
	assert.Contains(t, out, "-> ../../.agents/skills/setup")
	assert.Contains(t, out, "generated AGENTS.md")
	assert.Contains(t, out, "failed .claude/commands/bad.md: permission denied")
	assert.NotContains(t, out, "unchanged .agents/skills/setup/")
	assert.Contains(t, out, "plugin ./plugins/missing")
	assert.Contains(t, out, "Copied: 2  Generated: 1  Unchanged: 1  Skipped: 0  Failed: 1  Purged: 1")
}

func TestRenderSyncResultVerbose(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSyncResult(&buf, sampleResult(), RenderOptions{Verbose: true}))
	out := buf.String()

	assert.Contains(t, out, "unchanged .agents/skills/setup/")
	assert.Contains(t, out, "alpha /work/plugins/a")
	assert.Contains(t, out, "clients: claude, codex")
}

func TestRenderSyncResultQuiet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSyncResult(&buf, sampleResult(), RenderOptions{Quiet: true}))
	assert.Equal(t, "failed .claude/commands/bad.md: permission denied\n", buf.String())
}

func TestRenderSyncResultDryRun(t *testing.T) {
	res := &sync.Result{
		DryRun: true,
		Operations: []materialize.OperationResult{
			{Operation: materialize.Operation{Dest: "AGENTS.md"}, Outcome: types.OutcomeSkipped, WouldBe: types.OutcomeGenerated, Reason: "dry run"},
			{Operation: materialize.Operation{Dest: ".claude/commands/x.md"}, Outcome: types.OutcomeSkipped, WouldBe: types.OutcomeSkipped, Reason: "exists and is not managed by plugsync"},
		},
		Purged:  []string{"CLAUDE.md"},
		Skipped: 2,
	}
	var buf bytes.Buffer
	require.NoError(t, RenderSyncResult(&buf, res, RenderOptions{}))
	out := buf.String()

	assert.Contains(t, out, "Dry run: no changes made")
	assert.Contains(t, out, "would remove CLAUDE.md")
	assert.Contains(t, out, "would be generated AGENTS.md")
	assert.Contains(t, out, "skipped .claude/commands/x.md (exists and is not managed by plugsync)")
}

func TestRenderSyncResultInSync(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSyncResult(&buf, &sync.Result{Success: true, Unchanged: 4}, RenderOptions{}))
	assert.Contains(t, buf.String(), "Already in sync.")
}

func TestRenderSyncResultAborted(t *testing.T) {
	var buf bytes.Buffer
	res := &sync.Result{Aborted: true, Warnings: []string{"plugin ./x: path does not exist"}}
	require.NoError(t, RenderSyncResult(&buf, res, RenderOptions{}))
	assert.Contains(t, buf.String(), "Sync aborted")
	assert.Contains(t, buf.String(), "plugin ./x")
}

func TestRenderStatus(t *testing.T) {
	report := &StatusReport{
		Workspace:  "/work",
		ConfigPath: "/work/.plugsync/workspace.yaml",
		Scope:      types.ScopeProject,
		Mode:       types.SyncModeCopy,
		Clients:    []string{"claude"},
		Plugins: []PluginStatus{
			{Reference: "./plugins/a", Kind: "local", Enabled: true},
			{Reference: "github:acme/tools", Kind: "remote", Enabled: false,
				Checkout: &git.Status{Level: git.LevelWarning, Message: "local modifications in cached checkout"}},
		},
		Synced:   true,
		Recorded: map[string][]string{"claude": {"CLAUDE.md", ".claude/commands/run.md"}},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderStatus(&buf, report, RenderOptions{}))
	out := buf.String()
	assert.Contains(t, out, "scope: project  mode: copy")
	assert.Contains(t, out, "github:acme/tools [remote] disabled local modifications in cached checkout")
	assert.Contains(t, out, "claude: 2 paths")
	assert.NotContains(t, out, "never synced")
	assert.NotContains(t, out, "CLAUDE.md")

	buf.Reset()
	require.NoError(t, RenderStatus(&buf, report, RenderOptions{Verbose: true}))
	assert.Contains(t, buf.String(), "CLAUDE.md")
}

func TestRenderBackups(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderBackups(&buf, nil))
	assert.Equal(t, "No backups found.\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderBackups(&buf, []backup.BackupInfo{
		{ID: "2026-01-02-150405", CreatedAt: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC), Note: "Auto (sync purge)", Workspace: "/work", Paths: 3},
	}))
	out := buf.String()
	assert.Contains(t, out, "2026-01-02-150405")
	assert.Contains(t, out, "3 paths")
	assert.Contains(t, out, "Auto (sync purge)")
}
