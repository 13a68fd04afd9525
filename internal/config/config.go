// internal/config/config.go
//
// This package handles configuration and the .kipoiutils directory structure.
// A project may carry a .kipoiutils/ folder in its root; everything in it is
// optional and missing values fall back to the embedded defaults.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/kipoiutils/common"
	"github.com/kingrea/kipoiutils/loader"
)

const (
	// Dir is the name of the per-project configuration directory.
	Dir = ".kipoiutils"

	defaultComment = "#"
)

var defaultExtensions = []string{".yml", ".yaml"}

const defaultProjectConfigYAML = `# kipoiutils project configuration
version: 1

# Where Go sources for load_obj style references are looked up.
loader:
  # gopath: /home/me/go
  search_dirs: []

# Extensions tried, in order, when looking up a model or dataloader file.
files:
  extensions: [.yml, .yaml]
  comment: "#"

log:
  level: info
  format: text
`

// LoaderConfig configures dynamic object loading.
type LoaderConfig struct {
	GoPath     string   `yaml:"gopath,omitempty"`
	SearchDirs []string `yaml:"search_dirs,omitempty"`
}

// FilesConfig configures file lookup and text reading.
type FilesConfig struct {
	Extensions []string `yaml:"extensions"`
	Comment    string   `yaml:"comment"`
}

// LogConfig selects the slog level and handler format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ProjectConfig models .kipoiutils/config.yaml.
type ProjectConfig struct {
	Version int          `yaml:"version"`
	Loader  LoaderConfig `yaml:"loader"`
	Files   FilesConfig  `yaml:"files"`
	Log     LogConfig    `yaml:"log"`
}

// Config holds the runtime configuration for a project directory.
type Config struct {
	ProjectDir string

	// ConfigDir is ProjectDir/.kipoiutils
	ConfigDir string

	Project ProjectConfig
}

// Init creates the .kipoiutils directory with a logs/ folder and writes the
// default config.yaml unless one exists.
func Init(projectDir string) error {
	dir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0o755); err != nil {
		return fmt.Errorf("config: ensure %s: %w", dir, err)
	}
	return ensureProjectConfig(filepath.Join(dir, "config.yaml"))
}

// NewConfig loads the configuration for projectDir. A missing config file
// yields the defaults.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir: projectDir,
		ConfigDir:  filepath.Join(projectDir, Dir),
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.ConfigDir, "logs")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.ConfigDir, "config.yaml")
}

// LoaderOptions turns the loader section into loader.Options rooted at the
// project directory.
func (c *Config) LoaderOptions() loader.Options {
	return loader.Options{
		GoPath:     c.Project.Loader.GoPath,
		Dir:        c.ProjectDir,
		SearchDirs: append([]string(nil), c.Project.Loader.SearchDirs...),
	}
}

// AddSearchDir appends dir to loader.search_dirs and persists the config.
func (c *Config) AddSearchDir(dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return fmt.Errorf("config: search dir is required")
	}
	c.Project.Loader.SearchDirs = append(c.Project.Loader.SearchDirs, dir)
	return c.Save()
}

// Save validates the project config and writes it back to disk.
func (c *Config) Save() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize(c.ProjectDir)
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.ConfigDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure config dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	pc := ProjectConfig{}
	pc.applyDefaults()
	return pc
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if len(pc.Files.Extensions) == 0 {
		pc.Files.Extensions = append([]string(nil), defaultExtensions...)
	}
	if pc.Files.Comment == "" {
		pc.Files.Comment = defaultComment
	}
	if pc.Log.Level == "" {
		pc.Log.Level = "info"
	}
	if pc.Log.Format == "" {
		pc.Log.Format = "text"
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Loader.GoPath = resolvePath(base, pc.Loader.GoPath)
	dirs := make([]string, 0, len(pc.Loader.SearchDirs))
	for _, d := range pc.Loader.SearchDirs {
		if p := resolvePath(base, d); p != "" {
			dirs = append(dirs, p)
		}
	}
	pc.Loader.SearchDirs = common.Unique(dirs)
	for i, ext := range pc.Files.Extensions {
		ext = strings.TrimSpace(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		pc.Files.Extensions[i] = ext
	}
	pc.Log.Level = strings.ToLower(strings.TrimSpace(pc.Log.Level))
	pc.Log.Format = strings.ToLower(strings.TrimSpace(pc.Log.Format))
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	for i, ext := range pc.Files.Extensions {
		if ext == "" {
			return fmt.Errorf("files.extensions[%d]: extension is empty", i)
		}
	}
	switch pc.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn or error")
	}
	switch pc.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
