package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/adamancini/plugsync/internal/logging"
)

// SpecResolver resolves name@marketplace references.
type SpecResolver interface {
	ResolvePluginSpec(ctx context.Context, spec MarketplaceSpec, opts FetchOptions) (*Resolved, error)
}

// ValidatedPlugin is one configured reference after resolution.
type ValidatedPlugin struct {
	Reference    string    `json:"reference" yaml:"reference"`
	Source       Reference `json:"-" yaml:"-"`
	ResolvedPath string    `json:"resolved_path,omitempty" yaml:"resolved_path,omitempty"`
	DisplayName  string    `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	OK           bool      `json:"ok" yaml:"ok"`
	Error        string    `json:"error,omitempty" yaml:"error,omitempty"`
	Warnings     []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ValidationFailure explains why a single reference could not be resolved.
type ValidationFailure struct {
	Reference string
	Err       error
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("plugin %s: %v", e.Reference, e.Err)
}

func (e *ValidationFailure) Unwrap() error {
	return e.Err
}

// Validator resolves references concurrently. A nil Fetcher or Marketplace
// makes the corresponding reference kind fail validation.
type Validator struct {
	Fetcher     RemoteFetcher
	Marketplace SpecResolver
	Concurrency int
}

// Validate returns one ValidatedPlugin per reference, in input order. It
// never mutates the workspace at baseDir.
func (v *Validator) Validate(ctx context.Context, refs []string, baseDir string, opts FetchOptions) []ValidatedPlugin {
	logger := logging.GetLogger("validator")
	results := make([]ValidatedPlugin, len(refs))

	var g errgroup.Group
	if v.Concurrency > 0 {
		g.SetLimit(v.Concurrency)
	}

	for i, raw := range refs {
		g.Go(func() error {
			results[i] = v.validateOne(ctx, raw, baseDir, opts)
			if !results[i].OK {
				logger.Warn().Str("plugin", raw).Str("reason", results[i].Error).Msg("Plugin failed validation")
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Failure returns the validation failure for a plugin that is not OK.
func (p ValidatedPlugin) Failure() error {
	if p.OK {
		return nil
	}
	return &ValidationFailure{Reference: p.Reference, Err: errors.New(p.Error)}
}

func (v *Validator) validateOne(ctx context.Context, raw, baseDir string, opts FetchOptions) ValidatedPlugin {
	vp := ValidatedPlugin{Reference: raw}

	ref, err := ParseReference(raw)
	if err != nil {
		vp.Error = err.Error()
		return vp
	}
	vp.Source = ref

	var resolved *Resolved
	switch r := ref.(type) {
	case MarketplaceSpec:
		if v.Marketplace == nil {
			err = fmt.Errorf("marketplace resolution is not configured")
			break
		}
		resolved, err = v.Marketplace.ResolvePluginSpec(ctx, r, opts)
	case RemoteURL:
		if v.Fetcher == nil {
			err = fmt.Errorf("remote fetching is not configured")
			break
		}
		resolved, err = v.Fetcher.Fetch(ctx, r, opts)
	case LocalPath:
		resolved = &Resolved{Path: resolveLocal(r.Path, baseDir)}
	}
	if err != nil {
		vp.Error = err.Error()
		return vp
	}

	info, err := os.Stat(resolved.Path)
	switch {
	case os.IsNotExist(err):
		vp.Error = fmt.Sprintf("path does not exist: %s", resolved.Path)
		return vp
	case err != nil:
		vp.Error = err.Error()
		return vp
	case !info.IsDir():
		vp.Error = fmt.Sprintf("not a directory: %s", resolved.Path)
		return vp
	}

	vp.ResolvedPath = resolved.Path
	vp.Warnings = resolved.Warnings
	vp.DisplayName = displayName(ref, resolved)
	vp.OK = true
	return vp
}

func resolveLocal(p, baseDir string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(baseDir, filepath.FromSlash(p))
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return filepath.Clean(p)
}

func displayName(ref Reference, resolved *Resolved) string {
	if m, err := ReadManifest(resolved.Path); err == nil && m != nil && m.Name != "" {
		return m.Name
	}
	if resolved.Name != "" {
		return resolved.Name
	}
	if r, ok := ref.(RemoteURL); ok {
		return r.BaseName()
	}
	return filepath.Base(resolved.Path)
}
