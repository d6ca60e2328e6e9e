package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyTreeAndCompare(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.md"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "nested", "run.sh"), []byte("#!/bin/sh"), 0755))
	require.NoError(t, os.Symlink("a.md", filepath.Join(src, "link.md")))

	dest := filepath.Join(t.TempDir(), "dest")
	equal, err := TreeEqual(src, dest)
	require.NoError(t, err)
	assert.False(t, equal)

	require.NoError(t, CopyTree(src, dest))

	equal, err = TreeEqual(src, dest)
	require.NoError(t, err)
	assert.True(t, equal)

	info, err := os.Stat(filepath.Join(dest, "nested", "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	target, err := os.Readlink(filepath.Join(dest, "link.md"))
	require.NoError(t, err)
	assert.Equal(t, "a.md", target)

	require.NoError(t, os.WriteFile(filepath.Join(dest, "extra.md"), []byte("x"), 0644))
	equal, err = TreeEqual(src, dest)
	require.NoError(t, err)
	assert.False(t, equal)
}

func TestCopyTreeFollowsSymlinkedRoot(t *testing.T) {
	base := t.TempDir()
	realDir := filepath.Join(base, "realDir")
	require.NoError(t, os.MkdirAll(realDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(realDir, "SKILL.md"), []byte("s"), 0644))
	link := filepath.Join(base, "link")
	require.NoError(t, os.Symlink(realDir, link))

	dest := filepath.Join(t.TempDir(), "dest")
	require.NoError(t, CopyTree(link, dest))
	assert.FileExists(t, filepath.Join(dest, "SKILL.md"))

	equal, err := TreeEqual(link, dest)
	require.NoError(t, err)
	assert.True(t, equal)
}

func TestFileEqual(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dest := filepath.Join(dir, "dest")
	require.NoError(t, os.WriteFile(src, []byte("same"), 0644))

	equal, err := FileEqual(src, dest)
	require.NoError(t, err)
	assert.False(t, equal)

	require.NoError(t, CopyFile(src, dest))
	equal, err = FileEqual(src, dest)
	require.NoError(t, err)
	assert.True(t, equal)

	require.NoError(t, os.Chmod(dest, 0600))
	equal, err = FileEqual(src, dest)
	require.NoError(t, err)
	assert.False(t, equal)
}

func TestWriteFileLeavesNoTemp(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.md")
	require.NoError(t, WriteFile(dest, []byte("x"), 0600))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
