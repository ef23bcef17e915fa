package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/otiai10/copy"
)

// excludedNames are files and directories never copied between a snapshot
// and a project, and never compared by the drift detector.
var excludedNames = map[string]bool{
	"node_modules": true,
	".git":         true,
	".DS_Store":    true,
}

// Excluded reports whether an entry with this base name is skipped by copies
// and comparisons.
func Excluded(name string) bool {
	return excludedNames[name]
}

// Mode selects how CopyTree treats an existing destination.
type Mode int

const (
	// Replace removes the destination first so it ends up an exact copy.
	Replace Mode = iota
	// Merge overlays the source onto the destination. Files only present
	// in the destination are kept.
	Merge
)

// CopyTree copies the directory src to dst. Symlinks and excluded entries
// are skipped.
func CopyTree(src, dst string, mode Mode) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("reading source %s: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", src)
	}

	if mode == Replace {
		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("removing existing copy at %s: %w", dst, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating parent of %s: %w", dst, err)
	}

	opts := copy.Options{
		Skip: func(srcinfo os.FileInfo, src, dest string) (bool, error) {
			return Excluded(srcinfo.Name()), nil
		},
		OnSymlink: func(string) copy.SymlinkAction {
			return copy.Skip
		},
		OnDirExists: func(src, dest string) copy.DirExistsAction {
			if mode == Replace {
				return copy.Replace
			}
			return copy.Merge
		},
		PermissionControl: copy.AddPermission(0o200),
	}
	if err := copy.Copy(src, dst, opts); err != nil {
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	return nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Join joins rel onto base and requires the result to lie strictly below
// base. Paths that resolve to base itself or escape it are rejected.
func Join(base, rel string) (string, error) {
	p := filepath.Join(base, filepath.FromSlash(rel))
	r, err := filepath.Rel(base, p)
	if err != nil || r == "." || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("path %q escapes %s", rel, base)
	}
	return p, nil
}
