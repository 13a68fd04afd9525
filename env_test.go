package kipoiutils

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/kipoiutils/fsutil"
	"github.com/kingrea/kipoiutils/internal/ctxlog"
	"github.com/kingrea/kipoiutils/kwargs"
	"github.com/kingrea/kipoiutils/nested"
)

const projectConfig = `version: 1
loader:
  search_dirs: [models]
files:
  extensions: [.hcl, .yaml]
  comment: ";"
log:
  level: debug
`

const scaleSource = `package main

func Scale(x float64, factor float64) float64 {
	return x * factor
}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func openProject(t *testing.T) (*Env, string) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".kipoiutils", "config.yaml"), projectConfig)
	env, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { env.Close() })
	return env, dir
}

func TestOpenDefaults(t *testing.T) {
	dir := t.TempDir()
	env, err := Open(dir)
	require.NoError(t, err)
	defer env.Close()

	assert.Equal(t, dir, env.ProjectDir())
	_, err = os.Stat(filepath.Join(dir, ".kipoiutils", "logs", "kipoiutils.log"))
	assert.NoError(t, err)
}

func TestOpenRejectsBadConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".kipoiutils", "config.yaml"), "log:\n  format: xml\n")
	_, err := Open(dir)
	assert.Error(t, err)
}

func TestEnvFindAndReadFile(t *testing.T) {
	env, dir := openProject(t)
	writeFile(t, filepath.Join(dir, "model.yaml"), "type: keras\n")
	writeFile(t, filepath.Join(dir, "model.hcl"), "type = \"pytorch\"\n")

	path, err := env.FindFile(dir, "model")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "model.hcl"), path)

	n, err := env.ReadFile(dir, "model")
	require.NoError(t, err)
	first, err := nested.FirstLeaf(n)
	require.NoError(t, err)
	assert.Equal(t, "pytorch", first)

	_, err = env.ReadFile(dir, "dataloader")
	assert.ErrorIs(t, err, fsutil.ErrNotFound)
}

func TestEnvReadTxt(t *testing.T) {
	env, dir := openProject(t)
	path := filepath.Join(dir, "deps.txt")
	writeFile(t, path, "numpy ; comment\n# kept\n")

	lines, err := env.ReadTxt(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"numpy", "# kept"}, lines)
}

func TestEnvLoadEntity(t *testing.T) {
	env, dir := openProject(t)
	writeFile(t, filepath.Join(dir, "models", "mathutil.go"), scaleSource)

	ent, err := env.LoadEntity("mathutil.Scale", kwargs.Required("x"), kwargs.Optional("factor", 2.0))
	require.NoError(t, err)

	triple, err := kwargs.Override(ent, map[string]any{"factor": 3.0})
	require.NoError(t, err)
	out, err := triple.Call(2.0)
	require.NoError(t, err)
	assert.Equal(t, 6.0, out)

	_, err = env.LoadEntity("mathutil.Scale")
	assert.ErrorIs(t, err, kwargs.ErrUnsupported)
}

func TestEnvLoadObjFailureIsLogged(t *testing.T) {
	env, dir := openProject(t)

	_, err := env.LoadObj("nomodule.Thing")
	require.Error(t, err)
	require.NoError(t, env.Close())

	data, err := os.ReadFile(filepath.Join(dir, ".kipoiutils", "logs", "kipoiutils.log"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "load nomodule.Thing failed"), string(data))
}

func TestEnvContextCarriesLogger(t *testing.T) {
	env, _ := openProject(t)
	ctx := env.Context(context.Background())
	assert.Same(t, env.Logger(), ctxlog.FromContext(ctx))
}
