package maven

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a machine-readable error code.
type Code string

// Error codes for the resolution failure taxonomy.
const (
	// ErrCodeUnresolvableCoordinate means no source produced the bytes a
	// lookup required.
	ErrCodeUnresolvableCoordinate Code = "UNRESOLVABLE_COORDINATE"

	// ErrCodeMalformedModel means descriptor or metadata text did not parse
	// into the expected structure.
	ErrCodeMalformedModel Code = "MALFORMED_MODEL"

	// ErrCodeUnresolvedProperty means an expression references an undefined
	// or cyclically-defined property.
	ErrCodeUnresolvedProperty Code = "UNRESOLVED_PROPERTY"

	// ErrCodeCyclicDependency means a parent chain or active traversal path
	// revisited a coordinate.
	ErrCodeCyclicDependency Code = "CYCLIC_DEPENDENCY"

	// ErrCodeParentResolutionFailure means an ancestor in the parent chain
	// could not be resolved.
	ErrCodeParentResolutionFailure Code = "PARENT_RESOLUTION_FAILURE"

	// ErrCodeRepositoryIO is a single source's transient failure. It is
	// always recovered locally by skipping that source and only surfaces
	// wrapped in an UNRESOLVABLE_COORDINATE when every source failed.
	ErrCodeRepositoryIO Code = "REPOSITORY_IO"
)

// Error is a structured resolution error carrying a code, an optional cause,
// and the coordinate chain that led to the failure (root first).
type Error struct {
	Code    Code
	Message string
	Cause   error
	Path    []string // coordinate chain root → failing coordinate
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Path) > 0 {
		b.WriteString(" (via ")
		b.WriteString(strings.Join(e.Path, " -> "))
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// WithPath returns a copy of err with coord prepended to its coordinate
// chain. Non-structured errors are wrapped under the given fallback code.
func WithPath(err error, fallback Code, coord Coordinate) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		out := *e
		out.Path = append([]string{coord.String()}, e.Path...)
		return &out
	}
	return &Error{Code: fallback, Message: err.Error(), Cause: err, Path: []string{coord.String()}}
}

// Is reports whether err carries the given error code anywhere in its chain.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code, or "" for unstructured errors.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for display.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
