// Package kipoiutils ties the utility packages to a project directory: its
// .kipoiutils/config.yaml, its log file and its Go source search path.
//
// The helpers themselves live in subpackages and can be used on their own:
// kwargs (default-argument override), nested (tree recursion), loader
// (runtime object loading), attr, parse, fsutil, shell, typeutil and common.
package kipoiutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kingrea/kipoiutils/fsutil"
	"github.com/kingrea/kipoiutils/internal/config"
	"github.com/kingrea/kipoiutils/internal/ctxlog"
	"github.com/kingrea/kipoiutils/internal/logging"
	"github.com/kingrea/kipoiutils/kwargs"
	"github.com/kingrea/kipoiutils/loader"
	"github.com/kingrea/kipoiutils/nested"
	"github.com/kingrea/kipoiutils/parse"
)

// Env is an opened project directory.
type Env struct {
	cfg    *config.Config
	file   *logging.Logger
	logger *slog.Logger
	loader *loader.Loader
}

// Open loads the configuration of projectDir and opens its log file.
func Open(projectDir string) (*Env, error) {
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	file, err := logging.New(projectDir)
	if err != nil {
		return nil, err
	}
	logger := file.Slog(cfg.Project.Log.Level, cfg.Project.Log.Format)

	opts := cfg.LoaderOptions()
	opts.Logger = logger
	env := &Env{
		cfg:    cfg,
		file:   file,
		logger: logger,
		loader: loader.New(opts),
	}
	file.Printf("opened %s", projectDir)
	return env, nil
}

// Close releases the log file.
func (e *Env) Close() error {
	return e.file.Close()
}

// ProjectDir returns the directory the Env was opened on.
func (e *Env) ProjectDir() string { return e.cfg.ProjectDir }

// Logger returns the logger backed by the project log file.
func (e *Env) Logger() *slog.Logger { return e.logger }

// Context returns ctx carrying the project logger, for the shell helpers.
func (e *Env) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, e.logger)
}

// FindFile looks up <dir>/<base> with the configured extensions.
func (e *Env) FindFile(dir, base string) (string, error) {
	return fsutil.GetFilePath(dir, base, e.cfg.Project.Files.Extensions...)
}

// ReadFile finds <dir>/<base> with the configured extensions and parses it.
func (e *Env) ReadFile(dir, base string) (nested.Node, error) {
	path, err := e.FindFile(dir, base)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("reading description", "path", path)
	return parse.ReadFile(path)
}

// ReadTxt reads a text file using the configured comment prefix.
func (e *Env) ReadTxt(path string) ([]string, error) {
	return fsutil.ReadTxt(path, e.cfg.Project.Files.Comment)
}

// LoadObj resolves ref with the project loader.
func (e *Env) LoadObj(ref string) (any, error) {
	obj, err := e.loader.LoadObj(ref)
	if err != nil {
		e.file.Printf("load %s failed: %v", ref, err)
		return nil, err
	}
	return obj, nil
}

// LoadEntity resolves ref and wraps the result as a kwargs.Entity. Funcs need
// their parameters spelled out; struct types do not.
func (e *Env) LoadEntity(ref string, params ...kwargs.Param) (kwargs.Entity, error) {
	obj, err := e.LoadObj(ref)
	if err != nil {
		return nil, err
	}
	var ent kwargs.Entity
	if len(params) > 0 {
		ent, err = funcEntity(ref, obj, params)
	} else {
		ent, err = kwargs.Resolve(obj)
	}
	if err != nil {
		return nil, fmt.Errorf("kipoiutils: %s: %w", ref, err)
	}
	return ent, nil
}

func funcEntity(ref string, obj any, params []kwargs.Param) (kwargs.Entity, error) {
	fn, err := kwargs.FuncOf(ref, obj, params...)
	if err != nil {
		return nil, err
	}
	return fn, nil
}
