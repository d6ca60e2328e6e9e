package materialize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/adamancini/plugsync/internal/agentfile"
	"github.com/adamancini/plugsync/internal/fsutil"
	"github.com/adamancini/plugsync/internal/types"
)

// OperationResult is the outcome of one operation.
type OperationResult struct {
	Operation `yaml:",inline"`

	Outcome   types.Outcome `json:"outcome" yaml:"outcome"`
	WouldBe   types.Outcome `json:"would_be,omitempty" yaml:"would_be,omitempty"`
	Unchanged bool          `json:"unchanged,omitempty" yaml:"unchanged,omitempty"`
	Reason    string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`

	// Managed is set when the destination belongs to plugsync: it was
	// recorded by an earlier pass or created by this one.
	Managed bool `json:"-" yaml:"-"`
	// Exists is set when the destination is present after the operation.
	Exists bool `json:"-" yaml:"-"`
}

// Recorded reports whether the destination belongs in the sync state.
func (r OperationResult) Recorded() bool {
	if !r.Managed {
		return false
	}
	return r.Outcome.Wrote() || (r.Outcome == types.OutcomeFailed && r.Exists)
}

// Engine applies planned operations below Root.
type Engine struct {
	Root        string
	Concurrency int
	// Owned holds destinations recorded by the previous pass, keyed without
	// a trailing "/".
	Owned  map[string]bool
	Logger zerolog.Logger
}

// Apply runs every operation and returns one result per operation, in
// order. Destinations are disjoint, so operations run concurrently. With
// dryRun nothing is written: each result is skipped and WouldBe holds the
// outcome a real run would produce.
func (e *Engine) Apply(ctx context.Context, ops []Operation, dryRun bool) []OperationResult {
	results := make([]OperationResult, len(ops))

	limit := e.Concurrency
	if limit < 1 {
		limit = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, op := range ops {
		g.Go(func() error {
			results[i] = e.applyOne(ctx, op, dryRun)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (e *Engine) applyOne(ctx context.Context, op Operation, dryRun bool) OperationResult {
	r := OperationResult{Operation: op}

	if err := ctx.Err(); err != nil {
		r.Outcome = types.OutcomeFailed
		r.Error = err.Error()
		return r
	}

	dest := filepath.Join(e.Root, filepath.FromSlash(strings.TrimSuffix(op.Dest, "/")))
	_, statErr := os.Lstat(dest)
	existed := statErr == nil
	r.Managed = !existed || e.Owned[strings.TrimSuffix(op.Dest, "/")]

	outcome := types.OutcomeCopied
	if op.Kind == KindAgentFile {
		outcome = types.OutcomeGenerated
	}

	// Never write into something plugsync could not purge later.
	if existed && !r.Managed {
		r.Outcome = types.OutcomeSkipped
		r.WouldBe = types.OutcomeSkipped
		r.Reason = "exists and is not managed by plugsync"
		r.Exists = true
		e.Logger.Debug().Str("dest", op.Dest).Msg("skipping unmanaged destination")
		return r
	}

	var err error
	r.Unchanged, err = e.upToDate(op, dest)
	if err != nil {
		r.Outcome = types.OutcomeFailed
		r.Error = err.Error()
		r.Exists = existed
		return r
	}

	if dryRun {
		r.Outcome = types.OutcomeSkipped
		r.WouldBe = outcome
		r.Reason = "dry run"
		r.Exists = existed
		return r
	}

	if !r.Unchanged {
		if err := e.write(op, dest); err != nil {
			e.Logger.Warn().Str("dest", op.Dest).Err(err).Msg("operation failed")
			r.Outcome = types.OutcomeFailed
			r.Error = err.Error()
			r.Exists = exists(dest)
			return r
		}
		e.Logger.Debug().Str("kind", string(op.Kind)).Str("dest", op.Dest).Msg("wrote")
	}

	r.Outcome = outcome
	r.Exists = true
	return r
}

// upToDate reports whether dest already holds what op would write.
func (e *Engine) upToDate(op Operation, dest string) (bool, error) {
	switch op.Kind {
	case KindCopyFile:
		return fsutil.FileEqual(op.Source, dest)
	case KindCopyDir:
		return fsutil.TreeEqual(op.Source, dest)
	case KindSymlink:
		target, err := os.Readlink(dest)
		if err != nil {
			return false, nil
		}
		return target == op.Target, nil
	case KindAgentFile:
		existing, err := readIfRegular(dest)
		if err != nil {
			return false, err
		}
		return existing != nil && string(agentfile.Render(existing, op.content)) == string(existing), nil
	default:
		return false, fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

func (e *Engine) write(op Operation, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	switch op.Kind {
	case KindCopyFile:
		if err := clearNonRegular(dest); err != nil {
			return err
		}
		return fsutil.CopyFile(op.Source, dest)

	case KindCopyDir:
		if err := os.RemoveAll(dest); err != nil {
			return fmt.Errorf("failed to replace %s: %w", op.Dest, err)
		}
		return fsutil.CopyTree(op.Source, dest)

	case KindSymlink:
		if err := os.RemoveAll(dest); err != nil {
			return fmt.Errorf("failed to replace %s: %w", op.Dest, err)
		}
		if err := os.Symlink(op.Target, dest); err != nil {
			return fmt.Errorf("failed to create symlink: %w", err)
		}
		return nil

	case KindAgentFile:
		if err := clearNonRegular(dest); err != nil {
			return err
		}
		existing, err := readIfRegular(dest)
		if err != nil {
			return err
		}
		return fsutil.WriteFile(dest, agentfile.Render(existing, op.content), 0644)

	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

// clearNonRegular removes a directory or symlink occupying a file
// destination.
func clearNonRegular(dest string) error {
	info, err := os.Lstat(dest)
	if err != nil || info.Mode().IsRegular() {
		return nil
	}
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to replace %s: %w", dest, err)
	}
	return nil
}

func readIfRegular(p string) ([]byte, error) {
	info, err := os.Lstat(p)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, nil
	}
	return os.ReadFile(p)
}
