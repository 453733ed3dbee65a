package compiler

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a compilation failure by the stage that produced it.
type ErrorKind string

const (
	// ErrorKindLoad indicates a script failed to parse or compile.
	ErrorKindLoad ErrorKind = "load"

	// ErrorKindRuntime indicates a script raised an error during execution,
	// including misuse of the vars() import resolver.
	ErrorKindRuntime ErrorKind = "runtime"

	// ErrorKindConversion indicates an unsupported key or value type was
	// encountered while converting a script value to a canonical Value.
	ErrorKindConversion ErrorKind = "conversion"

	// ErrorKindIO indicates a file could not be opened, read, or written.
	ErrorKindIO ErrorKind = "io"
)

// Error is a classified compilation error with enough context to locate the
// offending script construct. Every Error is fatal to the whole batch: the
// first one encountered anywhere terminates the run.
type Error struct {
	// Kind is the failure classification.
	Kind ErrorKind

	// Script is the path of the script file involved, if known.
	Script string

	// Path is the dotted diagnostic path (e.g. "app.prod.SERVERS[3]")
	// identifying the value under conversion, if applicable.
	Path string

	// Message is the human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	switch {
	case e.Script != "" && e.Path != "":
		return fmt.Sprintf("[%s] %s (script=%s, path=%s)", e.Kind, msg, e.Script, e.Path)
	case e.Script != "":
		return fmt.Sprintf("[%s] %s (script=%s)", e.Kind, msg, e.Script)
	case e.Path != "":
		return fmt.Sprintf("[%s] %s (path=%s)", e.Kind, msg, e.Path)
	default:
		return fmt.Sprintf("[%s] %s", e.Kind, msg)
	}
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements kind-based equality for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewLoadError creates a load-stage error for the given script.
func NewLoadError(script string, err error) *Error {
	return &Error{Kind: ErrorKindLoad, Script: script, Message: "script failed to compile", Err: err}
}

// NewRuntimeError creates an execution-stage error for the given script.
func NewRuntimeError(script string, err error) *Error {
	return &Error{Kind: ErrorKindRuntime, Script: script, Message: "script raised an error", Err: err}
}

// NewConversionError creates a conversion error at the given diagnostic path.
func NewConversionError(path, message string) *Error {
	return &Error{Kind: ErrorKindConversion, Path: path, Message: message}
}

// NewIOError creates a filesystem error.
func NewIOError(path string, err error) *Error {
	return &Error{Kind: ErrorKindIO, Script: path, Message: "file access failed", Err: err}
}

// IsLoadError reports whether err is classified as a load failure.
func IsLoadError(err error) bool { return hasKind(err, ErrorKindLoad) }

// IsRuntimeError reports whether err is classified as a runtime failure.
func IsRuntimeError(err error) bool { return hasKind(err, ErrorKindRuntime) }

// IsConversionError reports whether err is classified as a conversion failure.
func IsConversionError(err error) bool { return hasKind(err, ErrorKindConversion) }

// IsIOError reports whether err is classified as a filesystem failure.
func IsIOError(err error) bool { return hasKind(err, ErrorKindIO) }

func hasKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
