package pathstore

import (
	"errors"
	"fmt"
)

// ErrInvalidPath indicates a field path that cannot be parsed.
var ErrInvalidPath = errors.New("invalid field path")

// SyntaxError describes where a field path failed to parse.
type SyntaxError struct {
	// Path is the input that failed to parse.
	Path string
	// Offset is the byte offset of the offending character.
	Offset int
	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid field path %q at offset %d: %s", e.Path, e.Offset, e.Message)
}

// Is allows errors.Is to match SyntaxError with ErrInvalidPath.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrInvalidPath
}
