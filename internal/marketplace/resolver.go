package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/adamancini/plugsync/internal/plugin"
)

const (
	// ManifestDir is the directory containing marketplace.json.
	ManifestDir = ".claude-plugin"
	// ManifestFile is the marketplace manifest filename.
	ManifestFile = "marketplace.json"
)

// Resolver implements plugin.SpecResolver on top of a registry Store. The
// registry is read once per Resolver.
type Resolver struct {
	Store   Store
	Fetcher plugin.RemoteFetcher

	once     sync.Once
	registry Registry
	loadErr  error
}

// NewResolver creates a Resolver. fetcher may be nil, in which case plugins
// published as remote repositories fail to resolve.
func NewResolver(store Store, fetcher plugin.RemoteFetcher) *Resolver {
	return &Resolver{Store: store, Fetcher: fetcher}
}

func (r *Resolver) load() (Registry, error) {
	r.once.Do(func() {
		r.registry, r.loadErr = r.Store.Load()
	})
	return r.registry, r.loadErr
}

// ResolvePluginSpec finds the directory for spec.Plugin inside spec.Marketplace.
func (r *Resolver) ResolvePluginSpec(ctx context.Context, spec plugin.MarketplaceSpec, opts plugin.FetchOptions) (*plugin.Resolved, error) {
	reg, err := r.load()
	if err != nil {
		return nil, err
	}

	entry, ok := reg[spec.Marketplace]
	if !ok {
		return nil, unknownMarketplaceError(spec.Marketplace, reg)
	}
	if entry.LocalPath == "" {
		return nil, fmt.Errorf("marketplace '%s' has no local checkout", spec.Marketplace)
	}

	manifest, err := LoadManifest(entry.LocalPath)
	if err != nil {
		return nil, err
	}

	if manifest != nil {
		if p := manifest.FindPlugin(spec.Plugin); p != nil {
			return r.resolveEntry(ctx, entry.LocalPath, manifest, p, opts)
		}
	}

	for _, candidate := range []string{
		filepath.Join(entry.LocalPath, "plugins", spec.Plugin),
		filepath.Join(entry.LocalPath, spec.Plugin),
	} {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return &plugin.Resolved{Path: candidate, Name: spec.Plugin}, nil
		}
	}

	return nil, fmt.Errorf("plugin '%s' not found in marketplace '%s'", spec.Plugin, spec.Marketplace)
}

func (r *Resolver) resolveEntry(ctx context.Context, root string, m *Manifest, p *Plugin, opts plugin.FetchOptions) (*plugin.Resolved, error) {
	if raw := p.Source.RemoteReference(); raw != "" {
		if r.Fetcher == nil {
			return nil, fmt.Errorf("plugin '%s' is published as %s but remote fetching is not configured", p.Name, raw)
		}
		ref, err := plugin.ParseReference(raw)
		if err != nil {
			return nil, fmt.Errorf("plugin '%s' has an invalid source: %w", p.Name, err)
		}
		remote, ok := ref.(plugin.RemoteURL)
		if !ok {
			return nil, fmt.Errorf("plugin '%s' has an invalid source: %s", p.Name, raw)
		}
		res, err := r.Fetcher.Fetch(ctx, remote, opts)
		if err != nil {
			return nil, err
		}
		if res.Name == "" {
			res.Name = p.Name
		}
		return res, nil
	}

	base := root
	if m.Metadata != nil && m.Metadata.PluginRoot != "" {
		base = filepath.Join(root, filepath.FromSlash(m.Metadata.PluginRoot))
	}
	return &plugin.Resolved{
		Path: filepath.Join(base, filepath.FromSlash(p.Source.Path)),
		Name: p.Name,
	}, nil
}

// LoadManifest loads the marketplace manifest from dir. A missing manifest
// yields nil without error.
func LoadManifest(dir string) (*Manifest, error) {
	manifestPath := filepath.Join(dir, ManifestDir, ManifestFile)

	data, err := os.ReadFile(manifestPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", manifestPath, err)
	}
	return &manifest, nil
}

// FindPlugin finds a plugin by name in the manifest.
func (m *Manifest) FindPlugin(name string) *Plugin {
	for i := range m.Plugins {
		if m.Plugins[i].Name == name {
			return &m.Plugins[i]
		}
	}
	return nil
}

func unknownMarketplaceError(name string, reg Registry) error {
	names := make([]string, 0, len(reg))
	for n := range reg {
		names = append(names, n)
	}
	sort.Strings(names)

	msg := fmt.Sprintf("marketplace '%s' is not registered", name)
	if matches := fuzzy.Find(name, names); len(matches) > 0 {
		msg += fmt.Sprintf(" (did you mean '%s'?)", matches[0].Str)
	} else if len(names) > 0 {
		msg += fmt.Sprintf(" (registered: %s)", strings.Join(names, ", "))
	}
	return errors.New(msg)
}
