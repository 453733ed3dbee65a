package compiler

import (
	"errors"
	"os"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/starconf/starconf/pkg/telemetry"
)

// VarsName is the binding under which the import resolver is visible to
// every script.
const VarsName = "vars"

// ScriptExt is the file extension shared by environment, overlay, and
// fragment scripts.
const ScriptExt = ".conf"

// Scope is one isolated Starlark execution context. Each Scope owns a fresh
// thread and predeclared environment; binding tables produced in one Scope
// are never shared with another except by explicit injection.
type Scope struct {
	thread      *starlark.Thread
	predeclared starlark.StringDict
}

// Loader evaluates script files, one brand-new Scope per file. It also
// backs the vars() import resolver, which re-enters the Loader for every
// fragment request.
type Loader struct {
	varsDir string
	logger  *telemetry.Logger
	depth   int
}

// NewLoader creates a Loader resolving shared fragments under varsDir.
func NewLoader(varsDir string, logger *telemetry.Logger) *Loader {
	if logger == nil {
		logger = telemetry.NewLogger(telemetry.DefaultLoggingConfig())
	}
	return &Loader{
		varsDir: varsDir,
		logger:  logger.NewComponentLogger("loader"),
	}
}

// LoadScope executes the script at path in a brand-new, otherwise-empty
// Scope and returns the resulting binding table. The Scope itself does not
// outlive the call; ownership of the table transfers to the caller.
func (l *Loader) LoadScope(path string) (starlark.StringDict, error) {
	return l.loadFile(path, nil)
}

// loadFile executes one script file against a fresh Scope whose predeclared
// environment is the standard library, the import resolver, and any extra
// bindings supplied by the caller.
func (l *Loader) loadFile(path string, extra starlark.StringDict) (starlark.StringDict, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, NewIOError(path, err)
	}

	scope := l.newScope(path, extra)
	l.logger.WithField("script", path).Debug("executing script")

	globals, err := starlark.ExecFile(scope.thread, path, src, scope.predeclared)
	if err != nil {
		return nil, classifyExecError(path, err)
	}
	return globals, nil
}

// newScope builds an isolated execution context for one script file.
// Bindings are never chained from an enclosing scope; everything a script
// sees beyond the standard library arrives through predeclared names.
func (l *Loader) newScope(name string, extra starlark.StringDict) *Scope {
	predeclared := starlark.StringDict{
		"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
		VarsName: starlark.NewBuiltin(VarsName, l.resolveVars),
	}
	for k, v := range extra {
		predeclared[k] = v
	}

	log := l.logger.WithField("script", name)
	thread := &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			log.Debug(msg)
		},
	}
	return &Scope{thread: thread, predeclared: predeclared}
}

// classifyExecError maps a starlark.ExecFile failure onto the error
// taxonomy. An evaluation error that already carries a classified Error in
// its cause chain (a vars() import that failed deeper down) keeps its
// original classification.
func classifyExecError(path string, err error) error {
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		return NewRuntimeError(path, err)
	}
	return NewLoadError(path, err)
}
