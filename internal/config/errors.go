package config

import (
	"errors"
	"fmt"
)

// Errors returned by the loaders.
var (
	// ErrFileNotFound indicates the document doesn't exist.
	ErrFileNotFound = errors.New("config file not found")

	// ErrUnsupportedFormat indicates a file extension no loader handles.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrIncludeDepthExceeded indicates too many nested @include directives.
	ErrIncludeDepthExceeded = errors.New("include depth exceeded")

	// ErrInvalidInclude indicates an @include value that is not a path list.
	ErrInvalidInclude = errors.New("@include must be a string or a list of strings")

	// ErrNotATable indicates a document whose top level is not a table.
	ErrNotATable = errors.New("top level must be a table")
)

// ParseError represents an error while parsing a document.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string
	// Line is the 1-based line of the error, or 0 when unknown.
	Line int
	// Column is the 1-based column of the error, or 0 when unknown.
	Column int
	// Message describes the error.
	Message string
	// Err is the decoder's error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the decoder's error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// position converts a byte offset in data into a 1-based line and column.
func position(data []byte, offset int) (line, col int) {
	if offset < 0 {
		return 0, 0
	}
	if offset > len(data) {
		offset = len(data)
	}
	line, col = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
