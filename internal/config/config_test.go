package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, projectDir, body string) {
	t.Helper()
	dir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(strings.TrimSpace(body)), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewConfigDefaultsWhenMissing(t *testing.T) {
	c, err := NewConfig(t.TempDir())
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if got := strings.Join(c.Project.Files.Extensions, ","); got != ".yml,.yaml" {
		t.Fatalf("unexpected default extensions %q", got)
	}
	if c.Project.Files.Comment != "#" {
		t.Fatalf("unexpected default comment %q", c.Project.Files.Comment)
	}
	if c.Project.Log.Level != "info" || c.Project.Log.Format != "text" {
		t.Fatalf("unexpected log defaults %+v", c.Project.Log)
	}
}

func TestNewConfigParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, `
version: 1
loader:
  search_dirs:
    - models
    - models
    - /opt/shared
files:
  extensions: [json, .yaml]
  comment: "//"
log:
  level: DEBUG
  format: json
`)
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	dirs := c.Project.Loader.SearchDirs
	if len(dirs) != 2 {
		t.Fatalf("expected duplicate search dirs to collapse, got %v", dirs)
	}
	if dirs[0] != filepath.Join(projectDir, "models") {
		t.Fatalf("expected relative search dir to be resolved, got %s", dirs[0])
	}
	if got := strings.Join(c.Project.Files.Extensions, ","); got != ".json,.yaml" {
		t.Fatalf("expected extensions to be dotted, got %q", got)
	}
	if c.Project.Log.Level != "debug" {
		t.Fatalf("expected level to be lowercased, got %q", c.Project.Log.Level)
	}

	opts := c.LoaderOptions()
	if opts.Dir != projectDir || len(opts.SearchDirs) != 2 {
		t.Fatalf("unexpected loader options %+v", opts)
	}
}

func TestNewConfigValidation(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, `
version: 1
log:
  level: loud
`)
	if _, err := NewConfig(projectDir); err == nil {
		t.Fatalf("expected validation error but got none")
	}
}

func TestInitWritesDefaultConfig(t *testing.T) {
	projectDir := t.TempDir()
	if err := Init(projectDir); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(projectDir, Dir, "logs")); err != nil {
		t.Fatalf("expected logs dir: %v", err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("default config does not load: %v", err)
	}
	if c.Project.Files.Comment != "#" {
		t.Fatalf("unexpected comment %q", c.Project.Files.Comment)
	}
}

func TestAddSearchDirPersists(t *testing.T) {
	projectDir := t.TempDir()
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.AddSearchDir("extra"); err != nil {
		t.Fatalf("AddSearchDir returned error: %v", err)
	}
	if err := c.AddSearchDir(" "); err == nil {
		t.Fatalf("expected error for blank dir")
	}

	reloaded, err := NewConfig(projectDir)
	if err != nil {
		t.Fatal(err)
	}
	dirs := reloaded.Project.Loader.SearchDirs
	if len(dirs) != 1 || dirs[0] != filepath.Join(projectDir, "extra") {
		t.Fatalf("expected persisted search dir, got %v", dirs)
	}
}
