// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when none of the candidate file paths exist.
var ErrNotFound = errors.New("fsutil: file not found")

// DefaultExtensions are tried by GetFilePath when no extensions are given.
var DefaultExtensions = []string{".yml", ".yaml"}

// DefaultSuffix is the suffix pattern used by ListFilesRecursively when the
// given one is empty. "?" matches exactly one character.
const DefaultSuffix = "y?ml"

// GetFilePath returns the first existing <dir>/<base><ext> over exts, trying
// DefaultExtensions when exts is empty. It fails with an error wrapping
// ErrNotFound when no candidate exists.
func GetFilePath(dir, base string, exts ...string) (string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	if path, ok := FindFilePath(dir, base, exts...); ok {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s %v", ErrNotFound, filepath.Join(dir, base), exts)
}

// FindFilePath is GetFilePath without the error: ok is false when nothing
// matched.
func FindFilePath(dir, base string, exts ...string) (string, bool) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	for _, ext := range exts {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// ListFilesRecursively searches root for files named <base>.<suffix>, where
// suffix is a filepath.Match pattern. Paths are returned relative to root in
// walk order. Hidden directories below root are skipped.
func ListFilesRecursively(root, base, suffix string) ([]string, error) {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	pattern := base + "." + suffix
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("fsutil: bad pattern %q: %w", pattern, err)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); !ok {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fsutil: walk %s: %w", root, err)
	}
	return files, nil
}
