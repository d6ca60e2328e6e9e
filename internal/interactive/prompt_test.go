package interactive

import (
	"bytes"
	"strings"
	"testing"

	"github.com/adamancini/plugsync/internal/diff"
)

func TestPrompterYesResponse(t *testing.T) {
	input := strings.NewReader("y\n")
	output := &bytes.Buffer{}
	p := NewPrompterWithIO(input, output)

	resp := p.prompt("Test prompt?")

	if resp != ResponseYes {
		t.Errorf("expected ResponseYes, got %v", resp)
	}
}

func TestPrompterNoResponse(t *testing.T) {
	input := strings.NewReader("n\n")
	output := &bytes.Buffer{}
	p := NewPrompterWithIO(input, output)

	resp := p.prompt("Test prompt?")

	if resp != ResponseNo {
		t.Errorf("expected ResponseNo, got %v", resp)
	}
}

func TestPrompterAllResponse(t *testing.T) {
	input := strings.NewReader("a\n")
	output := &bytes.Buffer{}
	p := NewPrompterWithIO(input, output)

	resp := p.prompt("First prompt?")
	if resp != ResponseYes {
		t.Errorf("expected ResponseYes after 'a', got %v", resp)
	}

	// Subsequent prompts should auto-approve
	resp = p.prompt("Second prompt?")
	if resp != ResponseYes {
		t.Errorf("expected ResponseYes (auto-approve), got %v", resp)
	}
}

func TestPrompterQuitOnEOF(t *testing.T) {
	p := NewPrompterWithIO(strings.NewReader(""), &bytes.Buffer{})

	if resp := p.prompt("Test prompt?"); resp != ResponseQuit {
		t.Errorf("expected ResponseQuit on EOF, got %v", resp)
	}
}

func TestPrompterInvalidResponse(t *testing.T) {
	input := strings.NewReader("invalid\n")
	output := &bytes.Buffer{}
	p := NewPrompterWithIO(input, output)

	resp := p.prompt("Test prompt?")

	if resp != ResponseNo {
		t.Errorf("expected ResponseNo for invalid input, got %v", resp)
	}
	if !strings.Contains(output.String(), "Invalid response") {
		t.Errorf("expected 'Invalid response' message in output")
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		p := NewPrompterWithIO(strings.NewReader(tt.input), &bytes.Buffer{})
		if got := p.Confirm("Go?"); got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func samplePlan() *diff.Result {
	return &diff.Result{Paths: []diff.PathDiff{
		{Client: "claude", Path: ".claude/commands/old.md", Action: diff.ActionRemove, Reason: "no longer produced"},
		{Client: "claude", Path: ".claude/commands/run.md", Action: diff.ActionKeep},
		{Client: "codex", Path: "AGENTS.md", Action: diff.ActionRemove, Reason: "no longer produced"},
		{Client: "cursor", Path: "AGENTS.md", Action: diff.ActionRemove, Reason: "no longer produced"},
	}}
}

func TestReviewRemovals(t *testing.T) {
	output := &bytes.Buffer{}
	p := NewPrompterWithIO(strings.NewReader("y\nn\ny\n"), output)

	sel, proceed := p.ReviewRemovals(samplePlan(), 0)
	if !proceed {
		t.Fatalf("expected to proceed, output:\n%s", output.String())
	}
	if len(sel.Remove) != 1 || sel.Remove[0] != ".claude/commands/old.md" {
		t.Errorf("unexpected removals: %v", sel.Remove)
	}
	if len(sel.Retain) != 1 || sel.Retain[0] != "AGENTS.md" {
		t.Errorf("unexpected retained: %v", sel.Retain)
	}
	if strings.Count(output.String(), "Remove AGENTS.md?") != 1 {
		t.Errorf("shared path should be asked about once:\n%s", output.String())
	}
}

func TestReviewRemovalsQuit(t *testing.T) {
	output := &bytes.Buffer{}
	p := NewPrompterWithIO(strings.NewReader("q\n"), output)

	if _, proceed := p.ReviewRemovals(samplePlan(), 3); proceed {
		t.Error("expected quit to abort")
	}
	if !strings.Contains(output.String(), "Aborted.") {
		t.Errorf("expected abort message, got:\n%s", output.String())
	}
}

func TestReviewRemovalsNothingSelected(t *testing.T) {
	output := &bytes.Buffer{}
	p := NewPrompterWithIO(strings.NewReader("n\nn\n"), output)

	if _, proceed := p.ReviewRemovals(samplePlan(), 0); proceed {
		t.Error("expected no-op review to stop")
	}
	if !strings.Contains(output.String(), "No changes selected.") {
		t.Errorf("expected no-changes message, got:\n%s", output.String())
	}
}

func TestReviewRemovalsDeclineFinal(t *testing.T) {
	p := NewPrompterWithIO(strings.NewReader("a\nn\n"), &bytes.Buffer{})

	sel, proceed := p.ReviewRemovals(samplePlan(), 1)
	if proceed {
		t.Error("expected declined confirmation to stop")
	}
	if len(sel.Remove) != 2 {
		t.Errorf("expected 'all' to approve both paths, got %v", sel.Remove)
	}
}
