package engine

import (
	"errors"
	"fmt"
	"strings"
)

// SyntaxError reports a malformed template construct.
//
// It is raised at compile time for malformed directives and at render
// time for failures that are fatal to the render (such as referencing
// an undefined partial).
type SyntaxError struct {
	// Message describes the problem.
	Message string
	// Token is the contents of the offending token, if known.
	Token string
	// Line is the 1-based source line of the offending token.
	Line int
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d)", e.Message, e.Line)
	}
	return e.Message
}

// NotFoundError reports that no loader could resolve a template name.
//
// Tried lists every source attempted so callers can chain resolution
// attempts into a single diagnostic. A missing fragment on an existing
// document is reported with this same type; only the message differs.
type NotFoundError struct {
	// Name is the requested template or fragment name.
	Name string
	// Tried lists the sources that were attempted.
	Tried []string
}

func (e *NotFoundError) Error() string {
	if len(e.Tried) == 0 {
		return fmt.Sprintf("template %q not found", e.Name)
	}
	return fmt.Sprintf("template %q not found (tried: %s)", e.Name, strings.Join(e.Tried, ", "))
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ExceptionInfo carries the source location of a render failure,
// resolved against the real owning document so stack traces report
// actual files and lines.
type ExceptionInfo struct {
	// Name is the owning template's name.
	Name string `json:"name"`
	// Line is the 1-based line of the failing token.
	Line int `json:"line"`
	// Token is the contents of the failing token.
	Token string `json:"token"`
	// Message is the underlying error message.
	Message string `json:"message"`
}
