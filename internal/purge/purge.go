// Package purge removes previously synced paths from a workspace.
package purge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/adamancini/plugsync/internal/agentfile"
	"github.com/adamancini/plugsync/internal/state"
)

// Failure is a path that could not be removed.
type Failure struct {
	Path string `json:"path" yaml:"path"`
	Err  error  `json:"-" yaml:"-"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("failed to remove %s: %v", f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result reports the outcome of one purge.
type Result struct {
	DryRun   bool
	Removed  []string
	Stripped []string
	Missing  []string
	Failures []Failure
}

// Failed reports whether path could not be removed.
func (r *Result) Failed(path string) bool {
	for _, f := range r.Failures {
		if f.Path == path {
			return true
		}
	}
	return false
}

var errOutsideRoot = errors.New("path escapes the workspace")

// Engine deletes synced paths below Root.
type Engine struct {
	Root   string
	Logger zerolog.Logger
}

// NewEngine returns an engine for a workspace root.
func NewEngine(root string, logger zerolog.Logger) *Engine {
	return &Engine{Root: root, Logger: logger}
}

// Purge removes every path, continuing past failures. Missing paths are
// skipped. Directory paths (trailing "/") are removed recursively and
// symlinks are removed as links. Files holding a generated agent block keep
// their other content. Parent directories left empty are removed up to the
// workspace root. With dryRun nothing is touched and Removed lists what
// would go.
func (e *Engine) Purge(paths []string, dryRun bool) *Result {
	result := &Result{DryRun: dryRun}

	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	for _, p := range sorted {
		full, err := e.resolve(p)
		if err != nil {
			result.Failures = append(result.Failures, Failure{Path: p, Err: err})
			continue
		}

		info, err := os.Lstat(full)
		if os.IsNotExist(err) {
			result.Missing = append(result.Missing, p)
			continue
		}
		if err != nil {
			result.Failures = append(result.Failures, Failure{Path: p, Err: err})
			continue
		}

		if dryRun {
			result.Removed = append(result.Removed, p)
			continue
		}

		stripped, err := e.remove(p, full, info)
		if err != nil {
			e.Logger.Warn().Str("path", p).Err(err).Msg("purge failed")
			result.Failures = append(result.Failures, Failure{Path: p, Err: err})
			continue
		}
		if stripped {
			e.Logger.Debug().Str("path", p).Msg("removed generated block")
			result.Stripped = append(result.Stripped, p)
			continue
		}

		e.Logger.Debug().Str("path", p).Msg("removed")
		result.Removed = append(result.Removed, p)
		e.cleanupParents(filepath.Dir(full))
	}

	return result
}

func (e *Engine) resolve(p string) (string, error) {
	rel := filepath.FromSlash(strings.TrimSuffix(p, "/"))
	if rel == "" || filepath.IsAbs(rel) {
		return "", errOutsideRoot
	}
	clean := filepath.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errOutsideRoot
	}
	return filepath.Join(e.Root, clean), nil
}

// remove deletes one path and reports whether only a generated block was
// stripped from a file that keeps other content.
func (e *Engine) remove(p, full string, info os.FileInfo) (bool, error) {
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return false, os.Remove(full)
	case info.IsDir():
		if !state.IsDir(p) {
			return false, fmt.Errorf("expected a file but found a directory")
		}
		return false, os.RemoveAll(full)
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return false, err
	}
	rest, found, empty := agentfile.Strip(content)
	if !found || empty {
		return false, os.Remove(full)
	}
	return true, os.WriteFile(full, rest, info.Mode().Perm())
}

func (e *Engine) cleanupParents(dir string) {
	root := filepath.Clean(e.Root)
	for {
		dir = filepath.Clean(dir)
		if dir == root || !strings.HasPrefix(dir, root+string(filepath.Separator)) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		e.Logger.Trace().Str("dir", dir).Msg("removed empty directory")
		dir = filepath.Dir(dir)
	}
}
