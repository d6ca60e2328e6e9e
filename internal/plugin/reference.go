// Package plugin parses plugin references and resolves them to local
// directories.
package plugin

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Reference is a parsed plugin reference. It is one of LocalPath,
// RemoteURL or MarketplaceSpec.
type Reference interface {
	// String returns the reference as written in the configuration.
	String() string
	isReference()
}

// LocalPath is a directory on disk, relative to the workspace unless absolute.
type LocalPath struct {
	Raw  string
	Path string
}

// RemoteURL is a git repository, optionally pinned to a branch and narrowed
// to a subdirectory.
type RemoteURL struct {
	Raw     string
	URL     string // clone URL
	Host    string
	Owner   string
	Repo    string
	Branch  string
	Subpath string
}

// MarketplaceSpec names a plugin published in a registered marketplace.
type MarketplaceSpec struct {
	Raw         string
	Plugin      string
	Marketplace string
}

func (r LocalPath) String() string       { return r.Raw }
func (r RemoteURL) String() string       { return r.Raw }
func (r MarketplaceSpec) String() string { return r.Raw }

func (LocalPath) isReference()       {}
func (RemoteURL) isReference()       {}
func (MarketplaceSpec) isReference() {}

var marketplaceSpecPattern = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)@([A-Za-z0-9][A-Za-z0-9._-]*)$`)

// scpLikePattern matches git@host:owner/repo style addresses.
var scpLikePattern = regexp.MustCompile(`^([A-Za-z0-9._-]+)@([A-Za-z0-9.-]+):(.+)$`)

// ParseReference classifies a raw plugin reference.
func ParseReference(raw string) (Reference, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("plugin reference is empty")
	}

	if m := marketplaceSpecPattern.FindStringSubmatch(s); m != nil {
		return MarketplaceSpec{Raw: raw, Plugin: m[1], Marketplace: m[2]}, nil
	}

	if isRemote(s) {
		return parseRemote(raw, s)
	}

	return LocalPath{Raw: raw, Path: s}, nil
}

func isRemote(s string) bool {
	for _, prefix := range []string{"https://", "http://", "ssh://", "git://", "github:"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return scpLikePattern.MatchString(s)
}

func parseRemote(raw, s string) (RemoteURL, error) {
	ref := RemoteURL{Raw: raw}

	if i := strings.LastIndex(s, "#"); i >= 0 {
		ref.Branch = s[i+1:]
		s = s[:i]
		if ref.Branch == "" {
			return RemoteURL{}, fmt.Errorf("invalid remote reference %q: empty branch after '#'", raw)
		}
	}

	var repoPath string
	switch {
	case strings.HasPrefix(s, "github:"):
		ref.Host = "github.com"
		repoPath = strings.TrimPrefix(s, "github:")
	case scpLikePattern.MatchString(s):
		m := scpLikePattern.FindStringSubmatch(s)
		ref.Host = m[2]
		repoPath = m[3]
	default:
		u, err := url.Parse(s)
		if err != nil {
			return RemoteURL{}, fmt.Errorf("invalid remote reference %q: %w", raw, err)
		}
		ref.Host = u.Hostname()
		repoPath = strings.TrimPrefix(u.Path, "/")
	}

	segments := strings.Split(strings.Trim(repoPath, "/"), "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return RemoteURL{}, fmt.Errorf("invalid remote reference %q: expected owner/repo", raw)
	}
	ref.Owner = segments[0]
	ref.Repo = strings.TrimSuffix(segments[1], ".git")

	// Browser URLs: owner/repo/tree/<branch>/<subpath...>
	rest := segments[2:]
	if len(rest) >= 2 && rest[0] == "tree" {
		if ref.Branch == "" {
			ref.Branch = rest[1]
		}
		if len(rest) > 2 {
			ref.Subpath = path.Join(rest[2:]...)
		}
	} else if len(rest) > 0 {
		return RemoteURL{}, fmt.Errorf("invalid remote reference %q: unexpected path %q", raw, strings.Join(rest, "/"))
	}

	switch {
	case strings.HasPrefix(s, "github:"):
		ref.URL = fmt.Sprintf("https://github.com/%s/%s.git", ref.Owner, ref.Repo)
	case scpLikePattern.MatchString(s):
		m := scpLikePattern.FindStringSubmatch(s)
		ref.URL = fmt.Sprintf("%s@%s:%s/%s.git", m[1], ref.Host, ref.Owner, ref.Repo)
	default:
		u, _ := url.Parse(s)
		u.Path = "/" + ref.Owner + "/" + ref.Repo
		if strings.HasSuffix(segments[1], ".git") {
			u.Path += ".git"
		}
		ref.URL = u.String()
	}

	return ref, nil
}

var unsafeCacheChars = regexp.MustCompile(`[^A-Za-z0-9._@-]+`)

// CacheKey is the directory name used for this remote under the plugin cache.
func (r RemoteURL) CacheKey() string {
	key := strings.Join([]string{r.Host, r.Owner, r.Repo}, "-")
	if r.Branch != "" {
		key += "@" + r.Branch
	}
	return unsafeCacheChars.ReplaceAllString(key, "_")
}

// BaseName is the name used for display when nothing better is known.
func (r RemoteURL) BaseName() string {
	if r.Subpath != "" {
		return path.Base(r.Subpath)
	}
	return r.Repo
}
