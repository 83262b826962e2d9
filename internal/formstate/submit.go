package formstate

import (
	"context"
	"fmt"
)

// SubmitFunc receives a copy of the values of a valid form.
type SubmitFunc func(ctx context.Context, values map[string]any) error

// Submit validates the whole form and, when it is valid, hands a copy of the
// values to onValid. It reports whether the form was valid. An error from
// onValid is returned and marks the submit unsuccessful.
func (s *Store) Submit(ctx context.Context, onValid SubmitFunc) (bool, error) {
	if s.closed {
		return false, ErrClosed
	}

	valid := s.validatePath(ctx, nil)
	if s.interest.Validity {
		s.isValid = valid
	}

	var err error
	if valid && onValid != nil {
		if err = onValid(ctx, s.Values()); err != nil {
			err = fmt.Errorf("submit: %w", err)
		}
	}

	s.isSubmitted = true
	s.isSubmitSuccessful = valid && err == nil
	s.submitCount++
	s.log.Debug("submit", "valid", valid, "count", s.submitCount, "err", err)

	s.publishState(ctx, nil, FlagSubmit|FlagErrors|FlagValid)
	return valid, err
}
