package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestGetFilePath(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "model.yaml"), "")

	path, err := GetFilePath(dir, "model")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "model.yaml"), path)

	touch(t, filepath.Join(dir, "model.yml"), "")
	path, err = GetFilePath(dir, "model")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "model.yml"), path, "earlier extension wins")

	_, err = GetFilePath(dir, "dataloader")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, ok := FindFilePath(dir, "dataloader", ".json")
	assert.False(t, ok)
}

func TestListFilesRecursively(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "model.yaml"), "")
	touch(t, filepath.Join(root, "a", "model.yml"), "")
	touch(t, filepath.Join(root, "a", "b", "model.yaml"), "")
	touch(t, filepath.Join(root, "a", "model.yamll"), "")
	touch(t, filepath.Join(root, "a", "other.yaml"), "")
	touch(t, filepath.Join(root, ".git", "model.yaml"), "")

	files, err := ListFilesRecursively(root, "model", "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"model.yaml",
		filepath.Join("a", "model.yml"),
		filepath.Join("a", "b", "model.yaml"),
	}, files)

	files, err = ListFilesRecursively(root, "other", "yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("a", "other.yaml")}, files)

	_, err = ListFilesRecursively(root, "model", "[")
	assert.Error(t, err)
}

func TestIsSubdirAndRelativePath(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "b", "c")
	require.NoError(t, MakedirExistOK(sub))
	require.NoError(t, MakedirExistOK(sub))

	ok, err := IsSubdir(sub, root)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsSubdir(root, sub)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = IsSubdir("/a/b/c", "/a/c")
	require.NoError(t, err)
	assert.False(t, ok)

	rel, err := RelativePath(sub, root+string(filepath.Separator))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("b", "c"), rel)

	_, err = RelativePath(sub, "")
	assert.Error(t, err)
}

func TestSubSuffix(t *testing.T) {
	cases := []struct {
		in, suffix, sub string
	}{
		{"asds.lmdb.zarr", "zarr", "lmdb"},
		{"model.h5", "h5", ""},
		{"README", "", ""},
	}
	for _, c := range cases {
		s, sub := SubSuffix(c.in)
		assert.Equal(t, c.suffix, s, c.in)
		assert.Equal(t, c.sub, sub, c.in)
	}
}

func TestReadTxt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requirements.txt")
	touch(t, path, "# header\nnumpy  # pinned later\n\n   \nh5py\n")

	lines, err := ReadTxt(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"numpy", "h5py"}, lines)

	lines, err = ReadTxt(path, "h5")
	require.NoError(t, err)
	assert.Equal(t, []string{"# header", "numpy  # pinned later"}, lines)

	_, err = ReadTxt(filepath.Join(t.TempDir(), "missing.txt"), "#")
	assert.Error(t, err)
}

func TestChdir(t *testing.T) {
	start, err := os.Getwd()
	require.NoError(t, err)

	dir := t.TempDir()
	restore, err := Chdir(dir)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(cwd)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, restore())
	cwd, err = os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, start, cwd)

	_, err = Chdir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
