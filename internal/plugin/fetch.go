package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/adamancini/plugsync/internal/git"
	"github.com/adamancini/plugsync/internal/logging"
)

// FetchKind classifies a remote fetch failure.
type FetchKind string

const (
	FetchTimeout  FetchKind = "timeout"
	FetchAuth     FetchKind = "auth"
	FetchNotFound FetchKind = "not-found"
	FetchOther    FetchKind = "other"
)

// ErrNotCached is returned in offline mode when a remote has never been fetched.
var ErrNotCached = errors.New("not in local cache")

// FetchError is a classified remote fetch failure.
type FetchError struct {
	Kind    FetchKind
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchTimeout:
		return fmt.Sprintf("timed out fetching %s after %s (check network access or raise fetch_timeout)", e.URL, e.Timeout)
	case FetchAuth:
		return fmt.Sprintf("authentication failed for %s (check ssh keys or git credentials for private repositories)", e.URL)
	case FetchNotFound:
		return fmt.Sprintf("repository, branch or path not found: %s", e.URL)
	default:
		if errors.Is(e.Err, ErrNotCached) {
			return fmt.Sprintf("%s is %v and offline mode is enabled (run sync once without --offline)", e.URL, e.Err)
		}
		return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetchOptions control a single resolution.
type FetchOptions struct {
	Offline bool
}

// Resolved is a reference materialized as a local directory.
type Resolved struct {
	Path     string
	Name     string // optional name supplied by the resolver
	Warnings []string
}

// RemoteFetcher materializes a remote repository.
type RemoteFetcher interface {
	Fetch(ctx context.Context, ref RemoteURL, opts FetchOptions) (*Resolved, error)
}

// GitOps is the subset of git operations the fetcher needs.
type GitOps interface {
	Clone(ctx context.Context, url, dest, branch string) error
	Pull(ctx context.Context, dir string) error
}

// GitFetcher clones remotes into a local cache and refreshes them on later passes.
// Concurrent fetches of the same checkout share one clone or pull.
type GitFetcher struct {
	Git      GitOps
	CacheDir string
	Timeout  time.Duration

	checkouts singleflight.Group
}

// NewGitFetcher creates a fetcher backed by the git command line.
func NewGitFetcher(cacheDir string, timeout time.Duration) *GitFetcher {
	return &GitFetcher{Git: git.NewClient(), CacheDir: cacheDir, Timeout: timeout}
}

// Fetch returns the local directory for ref, cloning or refreshing as needed.
func (f *GitFetcher) Fetch(ctx context.Context, ref RemoteURL, opts FetchOptions) (*Resolved, error) {
	dest := filepath.Join(f.CacheDir, ref.CacheKey())

	key := ref.CacheKey()
	if opts.Offline {
		key += "#offline"
	}
	warnings, err, _ := f.checkouts.Do(key, func() (interface{}, error) {
		return f.checkout(ctx, ref, dest, opts)
	})
	if err != nil {
		return nil, err
	}

	res := &Resolved{Path: dest}
	res.Warnings = append(res.Warnings, warnings.([]string)...)
	if ref.Subpath != "" {
		res.Path = filepath.Join(dest, filepath.FromSlash(ref.Subpath))
		if !isDir(res.Path) {
			return nil, &FetchError{Kind: FetchNotFound, URL: ref.URL + "/tree/" + ref.Branch + "/" + ref.Subpath}
		}
	}
	return res, nil
}

// checkout brings the cached repository at dest up to date and returns any
// warnings. Subpaths play no part, so references into one repository share it.
func (f *GitFetcher) checkout(ctx context.Context, ref RemoteURL, dest string, opts FetchOptions) ([]string, error) {
	logger := logging.GetLogger("fetch")

	cached := isDir(dest)
	switch {
	case opts.Offline && !cached:
		return nil, &FetchError{Kind: FetchOther, URL: ref.URL, Err: ErrNotCached}

	case opts.Offline:
		logger.Debug().Str("path", dest).Msg("Using cached checkout (offline)")

	case cached:
		if err := f.withTimeout(ctx, func(ctx context.Context) error { return f.Git.Pull(ctx, dest) }); err != nil {
			logger.Warn().Err(err).Str("url", ref.URL).Msg("Refresh failed, using cached checkout")
			return []string{fmt.Sprintf("could not refresh %s@%s, using cached copy: %v",
				ref.URL, ref.Branch, f.classify(ref, err))}, nil
		}

	default:
		if err := f.clone(ctx, ref, dest); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// clone checks out into a temporary sibling and renames it into place, so a
// failed or interrupted clone never leaves a partial directory at dest.
func (f *GitFetcher) clone(ctx context.Context, ref RemoteURL, dest string) error {
	logger := logging.GetLogger("fetch")

	if err := os.MkdirAll(f.CacheDir, 0755); err != nil {
		return &FetchError{Kind: FetchOther, URL: ref.URL, Err: err}
	}

	tmp, err := os.MkdirTemp(f.CacheDir, ".clone-"+ref.CacheKey()+"-")
	if err != nil {
		return &FetchError{Kind: FetchOther, URL: ref.URL, Err: err}
	}

	logger.Info().Str("url", ref.URL).Str("branch", ref.Branch).Msg("Cloning plugin")

	err = f.withTimeout(ctx, func(ctx context.Context) error {
		return f.Git.Clone(ctx, ref.URL, tmp, ref.Branch)
	})
	if err == nil {
		err = os.Rename(tmp, dest)
		// Another process populated the cache first.
		if err != nil && isDir(dest) {
			logger.Debug().Str("path", dest).Msg("Checkout already cached")
			_ = os.RemoveAll(tmp)
			return nil
		}
	}
	if err != nil {
		_ = os.RemoveAll(tmp)
		return f.classify(ref, err)
	}
	return nil
}

func (f *GitFetcher) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	if f.Timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()
	return fn(ctx)
}

func (f *GitFetcher) classify(ref RemoteURL, err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}

	kind := FetchOther
	switch {
	case git.IsTimeout(err):
		kind = FetchTimeout
	case git.IsAuthFailure(err):
		kind = FetchAuth
	case git.IsNotFound(err):
		kind = FetchNotFound
	}
	return &FetchError{Kind: kind, URL: ref.URL, Timeout: f.Timeout, Err: err}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
