// Package fsutil copies and compares files and directory trees.
package fsutil

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteFile replaces dest through a temporary sibling so readers never see
// a partial file.
func WriteFile(dest string, data []byte, perm os.FileMode) error {
	tmp := dest + ".plugsync-tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := os.Chmod(tmp, perm); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}

// CopyFile copies the content and permissions of src to dest.
func CopyFile(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	return WriteFile(dest, data, info.Mode().Perm())
}

// FileEqual reports whether dest is a regular file with the content and
// permissions of src.
func FileEqual(src, dest string) (bool, error) {
	di, err := os.Lstat(dest)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !di.Mode().IsRegular() {
		return false, nil
	}
	si, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", src, err)
	}
	if si.Size() != di.Size() || si.Mode().Perm() != di.Mode().Perm() {
		return false, nil
	}
	a, err := os.ReadFile(src)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", src, err)
	}
	b, err := os.ReadFile(dest)
	if err != nil {
		return false, err
	}
	return bytes.Equal(a, b), nil
}

// CopyTree copies src into dest. Symlinks inside the tree are recreated as
// links with the same target.
func CopyTree(src, dest string) error {
	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	src = resolved
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(p)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.IsDir():
			return os.MkdirAll(target, 0755)
		case d.Type().IsRegular():
			return CopyFile(p, target)
		default:
			return nil
		}
	})
}

type treeEntry struct {
	mode os.FileMode
	link string
	data []byte
}

func snapshot(root string) (map[string]treeEntry, error) {
	entries := make(map[string]treeEntry)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		e := treeEntry{mode: info.Mode().Type()}
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			if e.link, err = os.Readlink(p); err != nil {
				return err
			}
		case d.Type().IsRegular():
			e.mode = info.Mode()
			if e.data, err = os.ReadFile(p); err != nil {
				return err
			}
		case !d.IsDir():
			return nil
		}
		entries[rel] = e
		return nil
	})
	return entries, err
}

// TreeEqual reports whether dest is a directory holding exactly the
// entries of src.
func TreeEqual(src, dest string) (bool, error) {
	di, err := os.Lstat(dest)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !di.IsDir() {
		return false, nil
	}

	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", src, err)
	}
	want, err := snapshot(resolved)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", src, err)
	}
	have, err := snapshot(dest)
	if err != nil {
		return false, err
	}
	if len(want) != len(have) {
		return false, nil
	}
	for rel, w := range want {
		h, ok := have[rel]
		if !ok || h.mode != w.mode || h.link != w.link || !bytes.Equal(h.data, w.data) {
			return false, nil
		}
	}
	return true, nil
}
