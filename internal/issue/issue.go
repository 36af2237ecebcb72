// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Error is an error with a stable code and context for user-facing
// messages. It records what operation failed, which resource was
// involved, and suggestions for fixing the issue.
//
// Construct with New and the chainable With* methods:
//
//	return issue.New(issue.CodeConfigParse, issue.CategoryConfig, "parse project config").
//		WithResource(path).
//		WithSuggestion("Check the TOML syntax").
//		Wrap(err)
type Error struct {
	// Code is the stable DCG-XXXX identifier.
	Code Code

	// Category groups the code (pattern_match, configuration, runtime, external).
	Category Category

	// Operation describes what was being attempted (e.g. "load allowlist").
	Operation string

	// Resource identifies the file, path, or entity involved (optional).
	Resource string

	// Suggestions provides hints on how to fix the issue (optional).
	Suggestions []string

	// Cause is the underlying error (optional).
	Cause error
}

// New creates an Error with a code, category, and operation.
func New(code Code, category Category, operation string) *Error {
	return &Error{Code: code, Category: category, Operation: operation}
}

// WithResource sets the resource involved.
func (e *Error) WithResource(res string) *Error {
	e.Resource = res
	return e
}

// WithSuggestion appends a fix suggestion. May be called repeatedly.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestions = append(e.Suggestions, s)
	return e
}

// Wrap records the underlying cause and returns the error.
func (e *Error) Wrap(err error) *Error {
	e.Cause = err
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	var msg strings.Builder
	msg.WriteString(string(e.Code))
	msg.WriteString(": failed to ")
	msg.WriteString(e.Operation)
	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}
	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}
	return msg.String()
}

// Unwrap returns the cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Format renders the error for terminal output. Suggestions are listed
// as bullets; verbose mode appends the full error chain.
func (e *Error) Format(verbose bool) string {
	var msg strings.Builder
	msg.WriteString(e.Error())
	for _, s := range e.Suggestions {
		msg.WriteString("\n  • ")
		msg.WriteString(s)
	}
	if verbose && e.Cause != nil {
		msg.WriteString("\n\nError chain:")
		err := e.Cause
		for depth := 1; err != nil; depth++ {
			fmt.Fprintf(&msg, "\n  %d. %s", depth, err.Error())
			err = errors.Unwrap(err)
		}
	}
	return msg.String()
}

// robotError is the machine-readable error shape for robot/JSON mode.
type robotError struct {
	Code     Code              `json:"code"`
	Category Category          `json:"category"`
	Message  string            `json:"message"`
	Context  map[string]string `json:"context,omitempty"`
}

// MarshalJSON renders the {code, category, message, context?} object.
func (e *Error) MarshalJSON() ([]byte, error) {
	out := robotError{Code: e.Code, Category: e.Category, Message: e.Error()}
	if e.Resource != "" {
		out.Context = map[string]string{"resource": e.Resource}
	}
	return json.Marshal(out)
}

// CodeOf extracts the stable code from an error chain, or "" when the
// chain contains no issue.Error.
func CodeOf(err error) Code {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}
