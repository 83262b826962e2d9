package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrNoScript indicates no scenario script was given.
	ErrNoScript = errors.New("no script given")

	// ErrInvalidOverride indicates a -set argument without a path.
	ErrInvalidOverride = errors.New("override must have the form path=value")

	// ErrNoMatch indicates a query matched nothing in the snapshot.
	ErrNoMatch = errors.New("query matched nothing")
)

// OperationError represents an error that occurred during one stage of a run.
type OperationError struct {
	Op     string // Stage name (e.g., "load", "override", "run")
	Target string // File or argument the stage worked on
	Err    error  // Underlying error
}

func (e *OperationError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func opError(op, target string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Op: op, Target: target, Err: err}
}
