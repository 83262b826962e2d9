package formstate

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/formsync/internal/pathstore"
)

// RootErrorKey holds errors that belong to the form as a whole.
const RootErrorKey = "root"

// ValidationRequest is handed to the validator.
type ValidationRequest struct {
	// Path is the field being validated; empty for the whole form.
	Path string

	// Value is a copy of the value at Path.
	Value any

	// Values is a copy of the whole value tree.
	Values map[string]any

	// Rules are the registration rules for Path, or, for a whole-form
	// validation, a map from registered path to rules.
	Rules any
}

// Validator checks values. It returns an error tree anchored at the form
// root; the store only reads the part of it below the requested path. The
// tree's containers are rebuilt to follow the value tree, so errors for array
// items may be keyed by index in a map or given as typed slices. Leaves
// may be FieldError, *FieldError, error or string values. A non-nil error
// means validation could not run and is recorded as a "validate" error at the
// requested path.
type Validator interface {
	Validate(ctx context.Context, req ValidationRequest) (map[string]any, error)
}

// ValidatorFunc is a function adapter for Validator.
type ValidatorFunc func(ctx context.Context, req ValidationRequest) (map[string]any, error)

// Validate implements the Validator interface.
func (f ValidatorFunc) Validate(ctx context.Context, req ValidationRequest) (map[string]any, error) {
	return f(ctx, req)
}

// normalizeErrors converts validator leaves to FieldError values and drops
// empty branches.
func normalizeErrors(v any) any {
	switch c := v.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(c))
		for k, child := range c {
			out[k] = normalizeErrors(child)
		}
		return pathstore.Sparse(out)
	case []any:
		out := make([]any, len(c))
		for i, child := range c {
			out[i] = normalizeErrors(child)
		}
		return pathstore.Sparse(out)
	case FieldError:
		return c
	case *FieldError:
		if c == nil {
			return nil
		}
		return *c
	case string:
		if c == "" {
			return nil
		}
		return FieldError{Type: "validate", Message: c}
	case error:
		var fe FieldError
		if errors.As(c, &fe) {
			return fe
		}
		return FieldError{Type: "validate", Message: c.Error()}
	case bool:
		if !c {
			return nil
		}
		return FieldError{Type: "invalid"}
	}
	return FieldError{Type: "validate", Message: fmt.Sprint(v)}
}

// asFieldError returns the error stored at a leaf, if it is one.
func asFieldError(v any) (*FieldError, bool) {
	fe, ok := v.(FieldError)
	if !ok {
		return nil, false
	}
	return &fe, true
}
