// Package agentfile maintains the generated block plugsync owns inside an
// agent instructions file such as CLAUDE.md or AGENTS.md.
package agentfile

import (
	"bytes"
	"strings"
)

const (
	BeginMarker = "<!-- plugsync:begin -->"
	EndMarker   = "<!-- plugsync:end -->"
)

// Fragment is one plugin's contribution to the block.
type Fragment struct {
	Plugin  string
	Content string
}

// Body assembles the block body from fragments in the given order.
func Body(fragments []Fragment) string {
	var b strings.Builder
	for i, f := range fragments {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("<!-- plugin: " + f.Plugin + " -->\n")
		b.WriteString(strings.TrimSpace(f.Content))
		b.WriteString("\n")
	}
	return b.String()
}

// Render returns existing with its managed block replaced by body. When
// existing has no block, the block is appended after a blank line.
func Render(existing []byte, body string) []byte {
	block := BeginMarker + "\n" + body + EndMarker + "\n"

	before, after, found := split(existing)
	if !found {
		if len(bytes.TrimSpace(existing)) == 0 {
			return []byte(block)
		}
		out := bytes.TrimRight(existing, "\n")
		out = append(append([]byte(nil), out...), '\n', '\n')
		return append(out, block...)
	}

	out := append([]byte(nil), before...)
	out = append(out, block...)
	return append(out, after...)
}

// Strip removes the managed block. It reports whether a block was present
// and whether anything other than whitespace remains.
func Strip(content []byte) (rest []byte, found bool, empty bool) {
	before, after, found := split(content)
	if !found {
		return content, false, len(bytes.TrimSpace(content)) == 0
	}
	rest = append(bytes.TrimRight(append([]byte(nil), before...), "\n"), after...)
	if len(bytes.TrimSpace(rest)) == 0 {
		return nil, true, true
	}
	if !bytes.HasSuffix(rest, []byte("\n")) {
		rest = append(rest, '\n')
	}
	return rest, true, false
}

// split returns the content before the begin marker and after the line
// holding the end marker.
func split(content []byte) (before, after []byte, found bool) {
	start := bytes.Index(content, []byte(BeginMarker))
	if start < 0 {
		return nil, nil, false
	}
	rel := bytes.Index(content[start:], []byte(EndMarker))
	if rel < 0 {
		return nil, nil, false
	}
	end := start + rel + len(EndMarker)
	if end < len(content) && content[end] == '\n' {
		end++
	}
	return content[:start], content[end:], true
}
