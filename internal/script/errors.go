package script

import "errors"

// Errors for script execution.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNotAttached is returned when a script runs before a store is attached.
	ErrNotAttached = errors.New("no form store attached")
)
