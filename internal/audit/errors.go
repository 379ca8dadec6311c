package audit

import (
	"errors"
	"fmt"
)

// Sentinel errors for error type checking
var (
	// ErrNoStylesheets indicates the run was given no inputs
	ErrNoStylesheets = errors.New("no stylesheets provided")

	// ErrReadFailed indicates an input could not be read
	ErrReadFailed = errors.New("read failed")

	// ErrParseFailed indicates an input could not be parsed into rules
	ErrParseFailed = errors.New("parse failed")
)

// ReadError represents an input that could not be read
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() []error {
	return []error{ErrReadFailed, e.Err}
}

// NewReadError creates a new read error
func NewReadError(path string, err error) error {
	return &ReadError{
		Path: path,
		Err:  err,
	}
}

// ParseError represents a stylesheet whose rule structure could not be parsed
type ParseError struct {
	Path   string
	Line   int
	Column int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s:%d:%d: %s", e.Path, e.Line, e.Column, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrParseFailed
}

// NewParseError creates a new parse error
func NewParseError(path string, line, column int, reason string) error {
	return &ParseError{
		Path:   path,
		Line:   line,
		Column: column,
		Reason: reason,
	}
}
