package sources

import (
	"errors"
	"fmt"
)

// ErrNoMatches indicates a glob argument matched no files
var ErrNoMatches = errors.New("no files matched")

// NoMatchError represents a glob argument that matched no files
type NoMatchError struct {
	Pattern string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no files matched %q", e.Pattern)
}

func (e *NoMatchError) Unwrap() error {
	return ErrNoMatches
}

// NewNoMatchError creates a new no-match error
func NewNoMatchError(pattern string) error {
	return &NoMatchError{Pattern: pattern}
}
