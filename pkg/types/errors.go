// Package types defines the error taxonomy shared by the calculator pipeline
// and the services built on top of it.
package types

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Error class tags. Tags[0] of every Error is one of these.
const (
	TagLexError     = "LexError"
	TagSyntaxError  = "SyntaxError"
	TagRuntimeError = "RuntimeError"
)

// Runtime error kinds, carried as the second tag of a RuntimeError.
const (
	TagDivisionByZero  = "DivisionByZero"
	TagStackOverflow   = "StackOverflow"
	TagStackUnderflow  = "StackUnderflow"
	TagUnbalancedStack = "UnbalancedStack"
)

// Snippet is the source context around an unexpected character.
type Snippet struct {
	Before string // up to 5 characters preceding the fault
	Char   string // the offending character
	After  string // up to 5 characters following the fault
}

// Markers returns the marker line aligned under the snippet: '~' under
// context characters and '^' under the fault, one mark per rune.
func (s *Snippet) Markers() string {
	return strings.Repeat("~", utf8.RuneCountInString(s.Before)) + "^" +
		strings.Repeat("~", utf8.RuneCountInString(s.After))
}

// String returns the plain snippet text.
func (s *Snippet) String() string {
	return s.Before + s.Char + s.After
}

// Error is a per-line failure of the lex, parse or evaluate stage.
type Error struct {
	Message string
	Tags    []string
	Column  int      // 1-based column of the fault, 0 when not tied to a position
	Context *Snippet // set for lex errors only
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Class(), e.Message)
}

// Class returns the error class tag (LexError, SyntaxError or RuntimeError).
func (e *Error) Class() string {
	if len(e.Tags) == 0 {
		return "Error"
	}
	return e.Tags[0]
}

// HasTag returns true if the error has the specified tag.
func (e *Error) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ToMap converts the error to a JSON-friendly map.
func (e *Error) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"message": e.Error(),
		"tags":    e.Tags,
	}
	if e.Column > 0 {
		m["column"] = e.Column
	}
	if e.Context != nil {
		m["snippet"] = e.Context.String()
		m["markers"] = e.Context.Markers()
	}
	return m
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsClass reports whether err carries the given class tag.
func IsClass(err error, class string) bool {
	e, ok := AsError(err)
	return ok && e.Class() == class
}

// Common error constructors.

// NewLexError creates a LexError for an unexpected character.
func NewLexError(ch rune, column int, ctx *Snippet) *Error {
	return &Error{
		Message: fmt.Sprintf("unexpected character %q at column %d", ch, column),
		Tags:    []string{TagLexError},
		Column:  column,
		Context: ctx,
	}
}

// NewSyntaxError creates a SyntaxError positioned at column.
func NewSyntaxError(column int, format string, args ...interface{}) *Error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Tags:    []string{TagSyntaxError},
		Column:  column,
	}
}

// NewRuntimeError creates a RuntimeError of the given kind.
func NewRuntimeError(kind string) *Error {
	return &Error{Message: kind, Tags: []string{TagRuntimeError, kind}}
}

// NewDivisionByZeroError creates a DivisionByZero RuntimeError.
func NewDivisionByZeroError() *Error {
	return NewRuntimeError(TagDivisionByZero)
}

// NewStackOverflowError creates a StackOverflow RuntimeError.
func NewStackOverflowError() *Error {
	return NewRuntimeError(TagStackOverflow)
}

// NewStackUnderflowError creates a StackUnderflow RuntimeError.
func NewStackUnderflowError() *Error {
	return NewRuntimeError(TagStackUnderflow)
}
