package formstate

import (
	"context"
	"fmt"

	"github.com/dshills/formsync/internal/pathstore"
)

// Change records user input at name. Whether it validates follows the
// validation mode, or the revalidation mode once the form was submitted.
func (s *Store) Change(ctx context.Context, name string, value any) error {
	if s.closed {
		return ErrClosed
	}
	p, err := s.resolve(name)
	if err != nil {
		return fmt.Errorf("change: %w", err)
	}
	return s.SetValue(ctx, name, value, SetValueOptions{
		ShouldValidate: s.validatesOnChange(p),
	})
}

// Blur records that name lost focus. It marks the field touched when touched
// state is tracked and validates according to the mode.
func (s *Store) Blur(ctx context.Context, name string) error {
	if s.closed {
		return ErrClosed
	}
	p, err := s.resolve(name)
	if err != nil {
		return fmt.Errorf("blur: %w", err)
	}
	if p.IsRoot() {
		return fmt.Errorf("blur: empty field name: %w", pathstore.ErrInvalidPath)
	}

	var flags StateFlag
	if s.interest.Touched && !pathstore.Has(s.touched, p) {
		pathstore.Set(s.touched, p, true)
		flags |= FlagTouched
	}
	if s.validatesOnBlur() {
		s.validatePath(ctx, p)
		flags |= FlagErrors
		if s.refreshValid(ctx) {
			flags |= FlagValid
		}
	}
	s.log.Debug("blur", "path", p.String(), "changed", flags)

	if flags != 0 {
		s.publishState(ctx, p, flags)
	}
	return nil
}

func (s *Store) validatesOnChange(p pathstore.Path) bool {
	if s.isSubmitted {
		switch s.cfg.reValidateMode {
		case OnChange, All:
			return true
		case OnTouched:
			return pathstore.Has(s.touched, p)
		}
		return false
	}
	switch s.cfg.mode {
	case OnChange, All:
		return true
	case OnTouched:
		return pathstore.Has(s.touched, p)
	}
	return false
}

func (s *Store) validatesOnBlur() bool {
	m := s.cfg.mode
	if s.isSubmitted {
		m = s.cfg.reValidateMode
	}
	switch m {
	case OnBlur, OnTouched, All:
		return true
	}
	return false
}
