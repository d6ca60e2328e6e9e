package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReferenceKinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Reference
	}{
		{
			name:  "marketplace spec",
			input: "superpowers@official",
			want:  MarketplaceSpec{Raw: "superpowers@official", Plugin: "superpowers", Marketplace: "official"},
		},
		{
			name:  "relative path",
			input: "./plugins/alpha",
			want:  LocalPath{Raw: "./plugins/alpha", Path: "./plugins/alpha"},
		},
		{
			name:  "bare directory name",
			input: "alpha",
			want:  LocalPath{Raw: "alpha", Path: "alpha"},
		},
		{
			name:  "github shorthand",
			input: "github:acme/tools",
			want: RemoteURL{
				Raw: "github:acme/tools", URL: "https://github.com/acme/tools.git",
				Host: "github.com", Owner: "acme", Repo: "tools",
			},
		},
		{
			name:  "https with branch fragment",
			input: "https://github.com/acme/tools.git#dev",
			want: RemoteURL{
				Raw: "https://github.com/acme/tools.git#dev", URL: "https://github.com/acme/tools.git",
				Host: "github.com", Owner: "acme", Repo: "tools", Branch: "dev",
			},
		},
		{
			name:  "browser tree url with subpath",
			input: "https://github.com/acme/monorepo/tree/main/plugins/beta",
			want: RemoteURL{
				Raw: "https://github.com/acme/monorepo/tree/main/plugins/beta", URL: "https://github.com/acme/monorepo",
				Host: "github.com", Owner: "acme", Repo: "monorepo", Branch: "main", Subpath: "plugins/beta",
			},
		},
		{
			name:  "scp style",
			input: "git@gitlab.com:acme/tools.git",
			want: RemoteURL{
				Raw: "git@gitlab.com:acme/tools.git", URL: "git@gitlab.com:acme/tools.git",
				Host: "gitlab.com", Owner: "acme", Repo: "tools",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReference(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestParseReferenceErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", "   "},
		{"missing repo", "https://github.com/acme"},
		{"empty branch", "github:acme/tools#"},
		{"unexpected path", "https://github.com/acme/tools/blob/main/README.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReference(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestRemoteCacheKey(t *testing.T) {
	ref, err := ParseReference("https://github.com/acme/tools#feature/x")
	require.NoError(t, err)

	remote := ref.(RemoteURL)
	assert.Equal(t, "github.com-acme-tools@feature_x", remote.CacheKey())
	assert.Equal(t, "tools", remote.BaseName())

	ref, err = ParseReference("https://github.com/acme/monorepo/tree/main/plugins/beta")
	require.NoError(t, err)
	assert.Equal(t, "beta", ref.(RemoteURL).BaseName())
}
