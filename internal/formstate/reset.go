package formstate

import (
	"context"

	"github.com/dshills/formsync/internal/pathstore"
)

// Reset restores the form. values, when non-nil, become the new values and,
// unless KeepDefaultValues is set, the new default values. With nil values
// the form returns to its current defaults. Every piece of state not kept by
// keep returns to its baseline. Field arrays rekey their items.
func (s *Store) Reset(ctx context.Context, values map[string]any, keep KeepStateOptions) error {
	if s.closed {
		return ErrClosed
	}

	next := s.defaults
	if values != nil {
		next = values
		if !keep.KeepDefaultValues {
			s.defaults = pathstore.CloneMap(values)
		}
	}
	if !keep.KeepValues {
		s.values = pathstore.CloneMap(next)
	}

	if !keep.KeepErrors {
		s.errors = map[string]any{}
	}
	if !keep.KeepTouched {
		s.touched = map[string]any{}
	}
	if !keep.KeepDirty {
		s.dirty = map[string]any{}
		s.updateDirty(nil)
	}
	if !keep.KeepIsSubmitted {
		s.isSubmitted = false
		s.isSubmitSuccessful = false
	}
	if !keep.KeepSubmitCount {
		s.submitCount = 0
	}
	if !keep.KeepIsValid {
		s.validity = map[string]any{}
		s.refreshValid(ctx)
	}
	s.log.Debug("reset", "values", values != nil, "keep", keep)

	for _, name := range s.arrayNames() {
		fa := s.arrays[name]
		fa.rebuild()
		fa.publish(ctx, true)
	}
	s.publishWatch(ctx, nil, WatchReset)
	s.publishState(ctx, nil, FlagReset|FlagValues|FlagErrors|FlagDirty|FlagTouched|FlagValid|FlagSubmit)
	return nil
}
