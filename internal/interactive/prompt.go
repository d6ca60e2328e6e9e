// Package interactive asks the user which pending removals a sync may apply.
package interactive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/adamancini/plugsync/internal/diff"
)

// Response represents the user's response to a prompt.
type Response int

const (
	ResponseYes  Response = iota // Remove this path
	ResponseNo                   // Leave this path in place
	ResponseAll                  // Remove all remaining paths
	ResponseQuit                 // Abort the sync
)

// Prompter handles interactive prompts before a sync.
type Prompter struct {
	out        io.Writer
	scanner    *bufio.Scanner
	approveAll bool
}

// Selection is the outcome of a removal review.
type Selection struct {
	Remove []string // Paths approved for removal
	Retain []string // Paths to leave in place this pass
}

// NewPrompter creates a prompter with stdin/stdout.
func NewPrompter() *Prompter {
	return NewPrompterWithIO(os.Stdin, os.Stdout)
}

// NewPrompterWithIO creates a prompter with custom input/output (for testing).
func NewPrompterWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{out: out, scanner: bufio.NewScanner(in)}
}

// IsTerminal checks if stdin is a terminal (TTY).
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// prompt displays a question and reads the response.
func (p *Prompter) prompt(format string, args ...interface{}) Response {
	if p.approveAll {
		return ResponseYes
	}

	_, _ = fmt.Fprintf(p.out, format, args...)
	_, _ = fmt.Fprint(p.out, " [y/n/a/q] ")

	if !p.scanner.Scan() {
		return ResponseQuit
	}

	switch strings.ToLower(strings.TrimSpace(p.scanner.Text())) {
	case "y", "yes":
		return ResponseYes
	case "n", "no":
		return ResponseNo
	case "a", "all":
		p.approveAll = true
		return ResponseYes
	case "q", "quit":
		return ResponseQuit
	default:
		_, _ = fmt.Fprintln(p.out, "Invalid response, keeping.")
		return ResponseNo
	}
}

// Confirm asks a yes/no question. Anything but yes is no.
func (p *Prompter) Confirm(question string) bool {
	_, _ = fmt.Fprintf(p.out, "%s [y/n] ", question)
	if !p.scanner.Scan() {
		return false
	}
	input := strings.ToLower(strings.TrimSpace(p.scanner.Text()))
	return input == "y" || input == "yes"
}

// ReviewRemovals asks about every path the plan would remove, then for a
// final confirmation of the pass. It returns false when the user quits or
// declines.
func (p *Prompter) ReviewRemovals(plan *diff.Result, writes int) (*Selection, bool) {
	selection := &Selection{}

	removals := plan.Removals()
	reviewed := make(map[string]bool)
	if len(removals) > 0 {
		_, _ = fmt.Fprintln(p.out, "\nPaths no longer produced:")
	}
	for _, r := range removals {
		// A path shared by several clients is asked about once.
		if reviewed[r.Path] {
			continue
		}
		reviewed[r.Path] = true

		_, _ = fmt.Fprintf(p.out, "  %s %s (%s, %s)\n", removeSymbol, r.Path, r.Client, r.Reason)
		switch p.prompt("    -> Remove %s?", r.Path) {
		case ResponseYes:
			selection.Remove = append(selection.Remove, r.Path)
		case ResponseNo:
			_, _ = fmt.Fprintf(p.out, "    %s Kept\n", keepSymbol)
			selection.Retain = append(selection.Retain, r.Path)
		case ResponseQuit:
			_, _ = fmt.Fprintln(p.out, "\nAborted.")
			return selection, false
		}
	}

	_, _ = fmt.Fprintln(p.out, "\nSummary:")
	_, _ = fmt.Fprintf(p.out, "  Will write: %d paths\n", writes)
	_, _ = fmt.Fprintf(p.out, "  Will remove: %d paths\n", len(selection.Remove))
	if len(selection.Retain) > 0 {
		_, _ = fmt.Fprintf(p.out, "  Kept: %d\n", len(selection.Retain))
	}

	if writes+len(selection.Remove) == 0 {
		_, _ = fmt.Fprintln(p.out, "No changes selected.")
		return selection, false
	}

	if !p.Confirm("\nProceed with sync?") {
		_, _ = fmt.Fprintln(p.out, "Aborted.")
		return selection, false
	}
	return selection, true
}

const (
	removeSymbol = "-"
	keepSymbol   = "="
)
