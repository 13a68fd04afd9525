package fsutil

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsSubdir reports whether path lies inside dir (or is dir itself) once both
// are resolved to absolute paths with symlinks evaluated.
func IsSubdir(path, dir string) (bool, error) {
	rel, err := relative(path, dir)
	if err != nil {
		return false, err
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)), nil
}

// RelativePath returns full relative to parent, both resolved first.
//
//	RelativePath("/a/b/c", "/a/") == "b/c"
func RelativePath(full, parent string) (string, error) {
	if parent == "" {
		return "", errors.New("fsutil: empty parent path")
	}
	return relative(full, parent)
}

func relative(path, dir string) (string, error) {
	p, err := realpath(path)
	if err != nil {
		return "", err
	}
	d, err := realpath(dir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(d, p)
	if err != nil {
		return "", fmt.Errorf("fsutil: %w", err)
	}
	return rel, nil
}

// realpath resolves symlinks when the path exists and falls back to the
// cleaned absolute path when it does not.
func realpath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("fsutil: abs %s: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// MakedirExistOK creates dir and any missing parents. An existing directory
// is not an error.
func MakedirExistOK(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("fsutil: mkdir %s: %w", dir, err)
	}
	return nil
}

// SubSuffix returns the last and second to last dot-separated suffixes.
//
//	SubSuffix("asds.lmdb.zarr") == ("zarr", "lmdb")
func SubSuffix(path string) (suffix, subsuffix string) {
	elems := strings.Split(path, ".")
	switch len(elems) {
	case 1:
		return "", ""
	case 2:
		return elems[1], ""
	default:
		return elems[len(elems)-1], elems[len(elems)-2]
	}
}

// ReadTxt returns the non-empty lines of a text file with everything from
// comment onward removed and surrounding whitespace trimmed. An empty comment
// means "#".
func ReadTxt(path, comment string) ([]string, error) {
	if comment == "" {
		comment = "#"
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fsutil: open %s: %w", path, err)
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line, _, _ := strings.Cut(scanner.Text(), comment)
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("fsutil: read %s: %w", path, err)
	}
	return out, nil
}

// Chdir switches the working directory to dir, expanding a leading "~", and
// returns a func that switches back.
func Chdir(dir string) (restore func() error, err error) {
	prev, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("fsutil: getwd: %w", err)
	}
	target, err := expandHome(dir)
	if err != nil {
		return nil, err
	}
	if err := os.Chdir(target); err != nil {
		return nil, fmt.Errorf("fsutil: chdir %s: %w", target, err)
	}
	return func() error {
		if err := os.Chdir(prev); err != nil {
			return fmt.Errorf("fsutil: chdir %s: %w", prev, err)
		}
		return nil
	}, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("fsutil: home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
