// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error reporting for the launcher's
// fatal paths. Fatal errors (version resolution, binary location) must tell
// the user what was attempted, what was searched, and what to do next; this
// package is the single formatting seam for that output.
package issue

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

type (
	// ActionableError is an error carrying context for user-facing messages:
	// what operation failed, what resource was involved, and suggestions for
	// fixing the problem.
	//
	// Use the Context builder for construction:
	//
	//	return issue.NewContext().
	//		WithOperation("resolve version").
	//		WithResource("108.1").
	//		WithSuggestion("run skiff --list-versions").
	//		Wrap(err)
	ActionableError struct {
		// Operation describes what was being attempted.
		Operation string

		// Resource identifies the file, path, or version involved (optional).
		Resource string

		// Suggestions are hints on how to fix the issue (optional).
		Suggestions []string

		// Cause is the underlying error (optional).
		Cause error
	}

	// Context is a fluent builder for ActionableError values.
	Context struct {
		err ActionableError
	}
)

// NewContext creates an empty Context builder.
func NewContext() *Context {
	return &Context{}
}

// WithOperation sets the operation being attempted.
func (c *Context) WithOperation(op string) *Context {
	c.err.Operation = op
	return c
}

// WithResource sets the resource involved.
func (c *Context) WithResource(resource string) *Context {
	c.err.Resource = resource
	return c
}

// WithSuggestion appends a fix-it hint. Call repeatedly to add several.
func (c *Context) WithSuggestion(s string) *Context {
	c.err.Suggestions = append(c.err.Suggestions, s)
	return c
}

// Wrap finalizes the builder around a cause (which may be nil) and returns
// the ActionableError.
func (c *Context) Wrap(cause error) *ActionableError {
	e := c.err
	e.Cause = cause
	return &e
}

// Error returns the single-line form used when the error travels through
// normal error chains.
func (e *ActionableError) Error() string {
	var b strings.Builder
	if e.Operation != "" {
		b.WriteString(e.Operation)
	} else {
		b.WriteString("operation failed")
	}
	if e.Resource != "" {
		fmt.Fprintf(&b, " (%s)", e.Resource)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause so errors.Is/As keep working.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Fprint writes the multi-line user-facing rendering of err to w. Errors that
// are not ActionableError are printed as a single line; nothing is ever
// swallowed.
func Fprint(w io.Writer, err error) {
	if err == nil {
		return
	}

	var ae *ActionableError
	if !errors.As(err, &ae) {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}

	fmt.Fprintf(w, "error: failed to %s\n", orDefault(ae.Operation, "complete the operation"))
	if ae.Resource != "" {
		fmt.Fprintf(w, "  resource: %s\n", ae.Resource)
	}
	if ae.Cause != nil {
		fmt.Fprintf(w, "  cause: %v\n", ae.Cause)
	}
	if len(ae.Suggestions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Suggestions:")
		for _, s := range ae.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
