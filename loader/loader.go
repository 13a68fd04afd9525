// Package loader resolves objects from Go source at runtime.
//
// Source files are evaluated with the yaegi interpreter, so a model
// directory can ship plain .go files (a dataloader, a preprocessor) that are
// picked up without recompiling the host. Each load uses a fresh interpreter;
// nothing is cached between calls, so two modules of the same name never
// shadow each other.
package loader

import (
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/kingrea/kipoiutils/attr"
	"github.com/kingrea/kipoiutils/common"
)

const sourceExt = ".go"

// Options configures a Loader.
type Options struct {
	// GoPath is handed to the interpreter to resolve non-stdlib imports.
	GoPath string
	// Dir is searched first for <module>.go files. Empty means the process
	// working directory at load time.
	Dir string
	// SearchDirs are searched after Dir, in order.
	SearchDirs []string
	Logger     *slog.Logger
}

// Loader evaluates Go source files and resolves dotted object references.
type Loader struct {
	opts   Options
	logger *slog.Logger
}

// New returns a Loader using opts.
func New(opts Options) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{opts: opts, logger: logger.With("component", "loader")}
}

// Module is one evaluated source file.
type Module struct {
	Name    string
	Path    string
	Package string
	interp  *interp.Interpreter
}

// ImportError reports a reference that could not be resolved.
type ImportError struct {
	Ref string
	Err error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("loader: object %s couldn't be imported: %v", e.Ref, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

func (l *Loader) newInterpreter() (*interp.Interpreter, error) {
	i := interp.New(interp.Options{GoPath: l.opts.GoPath})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("loader: load stdlib symbols: %w", err)
	}
	return i, nil
}

// LoadModule evaluates the Go source file at path. name defaults to the file
// name without its extension.
func (l *Loader) LoadModule(path, name string) (*Module, error) {
	if !strings.HasSuffix(path, sourceExt) {
		return nil, fmt.Errorf("loader: %s is not a %s file", path, sourceExt)
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), sourceExt)
	}
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("loader: %s is empty", path)
	}
	clause, err := parser.ParseFile(token.NewFileSet(), path, code, parser.PackageClauseOnly)
	if err != nil {
		return nil, fmt.Errorf("loader: parse %s: %w", path, err)
	}
	l.logger.Debug("loading module", "path", path, "name", name)
	i, err := l.newInterpreter()
	if err != nil {
		return nil, err
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("loader: interpret %s: %w", path, err)
	}
	return &Module{Name: name, Path: filepath.Clean(path), Package: clause.Name.Name, interp: i}, nil
}

// Symbol returns the top-level declaration called name.
func (m *Module) Symbol(name string) (reflect.Value, error) {
	v, err := m.interp.Eval(name)
	if err != nil && m.Package != "main" {
		v, err = m.interp.Eval(m.Package + "." + name)
	}
	if err != nil {
		return reflect.Value{}, fmt.Errorf("loader: %s has no symbol %s: %w", m.Path, name, err)
	}
	if !v.IsValid() {
		return reflect.Value{}, fmt.Errorf("loader: %s: symbol %s has no value", m.Path, name)
	}
	return v, nil
}

// Lookup resolves a dotted path inside the module: the first segment names
// a top-level symbol, the rest are resolved with attr.Get.
func (m *Module) Lookup(ref string) (any, error) {
	head, rest, _ := strings.Cut(ref, ".")
	v, err := m.Symbol(head)
	if err != nil {
		return nil, err
	}
	obj := v.Interface()
	if rest == "" {
		return obj, nil
	}
	return attr.Get(obj, rest)
}

// LoadObj resolves a reference of the form "module.Object[.attr...]".
// module is first tried as a standard library package, then as a file
// <module>.go under Dir and each SearchDir.
func (l *Loader) LoadObj(ref string) (any, error) {
	if !strings.Contains(ref, ".") {
		return nil, &ImportError{
			Ref: ref,
			Err: errors.New("object description needs to be of the form module.submodule.Object, currently lacking a dot (.)"),
		}
	}
	moduleName, objPath, _ := strings.Cut(ref, ".")
	obj, pkgErr := l.fromPackage(moduleName, objPath)
	if pkgErr == nil {
		return obj, nil
	}
	obj, fileErr := l.fromFile(moduleName, objPath)
	if fileErr == nil {
		return obj, nil
	}
	return nil, &ImportError{Ref: ref, Err: errors.Join(pkgErr, fileErr)}
}

func (l *Loader) fromPackage(importPath, objPath string) (any, error) {
	head, rest, _ := strings.Cut(objPath, ".")
	i, err := l.newInterpreter()
	if err != nil {
		return nil, err
	}
	if _, err := i.Eval(fmt.Sprintf("import %q", importPath)); err != nil {
		return nil, fmt.Errorf("import %s: %w", importPath, err)
	}
	v, err := i.Eval(path.Base(importPath) + "." + head)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", importPath, err)
	}
	obj := v.Interface()
	if rest == "" {
		return obj, nil
	}
	return attr.Get(obj, rest)
}

func (l *Loader) fromFile(moduleName, objPath string) (any, error) {
	for _, dir := range l.searchDirs() {
		candidate := filepath.Join(dir, moduleName+sourceExt)
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		m, err := l.LoadModule(candidate, moduleName)
		if err != nil {
			return nil, err
		}
		return m.Lookup(objPath)
	}
	return nil, fmt.Errorf("no %s%s found in %s", moduleName, sourceExt, strings.Join(l.searchDirs(), ", "))
}

func (l *Loader) searchDirs() []string {
	dir := l.opts.Dir
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		}
	}
	dirs := append([]string{dir}, l.opts.SearchDirs...)
	return common.Unique(dirs)
}
