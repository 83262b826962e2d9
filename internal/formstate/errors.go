package formstate

import "errors"

// Sentinel errors for the form store.
var (
	// ErrClosed is returned when a closed store or field array is used.
	ErrClosed = errors.New("form store is closed")

	// ErrRootValue is returned when the whole value tree is replaced by a
	// value that is not an object.
	ErrRootValue = errors.New("root value must be an object")

	// ErrRootArray is returned when a field array is requested for the root.
	ErrRootArray = errors.New("field array name must not be empty")
)
