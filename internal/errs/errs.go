// Package errs defines the error taxonomy shared by every stage of a
// configure pass. Each error carries a Kind so the dispatcher and the app can
// decide whether a failure is fatal, capturable or only worth a warning.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	// KindUsage covers unknown, duplicate or malformed command arguments.
	KindUsage Kind = "usage"
	// KindConfiguration covers missing or invalid ambient values.
	KindConfiguration Kind = "configuration"
	// KindGeneratorCreation is reported when a named backend is unavailable.
	KindGeneratorCreation Kind = "generator_creation"
	// KindExportGraph covers unknown export sets, non-exportable targets and
	// conflicting export file bindings.
	KindExportGraph Kind = "export_graph"
	// KindPackageName is reported for empty or malformed package names.
	KindPackageName Kind = "package_name"
	// KindIO covers filesystem and backend write failures.
	KindIO Kind = "io"
)

// Error is a classified error with an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil && e.Message != "" {
		return e.Message + ": " + e.Cause.Error()
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same kind and, when set, message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when err
// carries no classification.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Usage is shorthand for a KindUsage error.
func Usage(format string, args ...any) *Error {
	return Newf(KindUsage, format, args...)
}

// Configuration is shorthand for a KindConfiguration error.
func Configuration(format string, args ...any) *Error {
	return Newf(KindConfiguration, format, args...)
}
