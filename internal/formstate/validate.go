package formstate

import (
	"context"
	"fmt"

	"github.com/dshills/formsync/internal/pathstore"
)

// rulesFor returns the rules registered for p. The root gets a map from every
// registered path to its rules.
func (s *Store) rulesFor(p pathstore.Path) any {
	if !p.IsRoot() {
		if reg, ok := s.fields[p.String()]; ok {
			return reg.rules
		}
		return nil
	}
	all := make(map[string]any, len(s.fields))
	for name, reg := range s.fields {
		if reg.rules != nil {
			all[name] = reg.rules
		}
	}
	return all
}

// runValidator calls the validator for p and returns the normalized error
// subtree below p. It returns nil when p is valid.
func (s *Store) runValidator(ctx context.Context, p pathstore.Path) any {
	value, _ := pathstore.Lookup(s.values, p)
	req := ValidationRequest{
		Path:   p.String(),
		Value:  pathstore.Clone(value),
		Values: pathstore.CloneMap(s.values),
		Rules:  s.rulesFor(p),
	}
	tree, err := s.validator.Validate(ctx, req)
	if err != nil {
		s.log.Warn("validator failed", "path", req.Path, "err", err)
		return FieldError{Type: "validate", Message: err.Error()}
	}
	sub, _ := pathstore.Lookup(normalizeErrors(pathstore.Align(tree, s.values)), p)
	return sub
}

// validatePath validates p and merges the result into the errors tree. It
// reports whether p is free of errors afterwards. Without a validator the
// errors tree is left alone.
func (s *Store) validatePath(ctx context.Context, p pathstore.Path) bool {
	if s.validator == nil {
		node, _ := pathstore.Lookup(s.errors, p)
		return pathstore.IsEmpty(node)
	}
	s.validations.Add(1)

	sub := s.runValidator(ctx, p)
	s.mergeErrors(p, sub)

	if s.interest.Validity {
		if p.IsRoot() {
			s.validity = map[string]any{}
			for _, reg := range s.fields {
				node, _ := pathstore.Lookup(s.errors, reg.path)
				pathstore.Set(s.validity, reg.path, pathstore.IsEmpty(node))
			}
		} else {
			pathstore.Set(s.validity, p, sub == nil)
		}
	}
	return sub == nil
}

// mergeErrors replaces the error subtree at p with sub.
func (s *Store) mergeErrors(p pathstore.Path, sub any) {
	if p.IsRoot() {
		switch c := sub.(type) {
		case map[string]any:
			s.errors = c
		case nil:
			s.errors = map[string]any{}
		default:
			s.errors = map[string]any{RootErrorKey: c}
		}
		return
	}
	if sub == nil {
		pathstore.Unset(s.errors, p)
		return
	}
	pathstore.Set(s.errors, p, sub)
}

// refreshValid recomputes the whole-form validity flag when it is tracked.
// The validator runs silently: the errors tree is not touched. It reports
// whether the flag changed.
func (s *Store) refreshValid(ctx context.Context) bool {
	if !s.interest.Validity {
		return false
	}
	s.validityRuns.Add(1)

	prev := s.isValid
	if s.validator == nil {
		s.isValid = len(s.errors) == 0
	} else {
		s.isValid = s.runValidator(ctx, nil) == nil
	}
	return prev != s.isValid
}

// Trigger validates the named fields, or the whole form when none are given,
// and reports whether all of them are valid.
func (s *Store) Trigger(ctx context.Context, names ...string) (bool, error) {
	if s.closed {
		return false, ErrClosed
	}

	paths := make([]pathstore.Path, 0, len(names))
	for _, name := range names {
		p, err := s.resolve(name)
		if err != nil {
			return false, fmt.Errorf("trigger: %w", err)
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		paths = append(paths, nil)
	}

	valid := true
	for _, p := range paths {
		if !s.validatePath(ctx, p) {
			valid = false
		}
	}
	s.log.Debug("trigger", "paths", names, "valid", valid)

	flags := FlagErrors
	if len(names) == 0 && s.interest.Validity {
		if s.isValid != valid {
			flags |= FlagValid
		}
		s.isValid = valid
	} else if s.refreshValid(ctx) {
		flags |= FlagValid
	}

	var name pathstore.Path
	if len(paths) == 1 {
		name = paths[0]
	}
	s.publishState(ctx, name, flags)
	return valid, nil
}

// SetError stores err at name. An empty name stores it under RootErrorKey.
func (s *Store) SetError(ctx context.Context, name string, err FieldError) error {
	if s.closed {
		return ErrClosed
	}
	p, perr := s.resolve(name)
	if perr != nil {
		return fmt.Errorf("set error: %w", perr)
	}
	if p.IsRoot() {
		p = pathstore.Path{pathstore.Key(RootErrorKey)}
	}
	pathstore.Set(s.errors, p, err)

	flags := FlagErrors
	if s.interest.Validity && s.isValid {
		s.isValid = false
		flags |= FlagValid
	}
	s.publishState(ctx, p, flags)
	return nil
}

// ClearErrors removes the errors at names, or every error when none are given.
func (s *Store) ClearErrors(ctx context.Context, names ...string) error {
	if s.closed {
		return ErrClosed
	}
	if len(names) == 0 {
		s.errors = map[string]any{}
	}
	for _, name := range names {
		p, err := s.resolve(name)
		if err != nil {
			return fmt.Errorf("clear errors: %w", err)
		}
		pathstore.Unset(s.errors, p)
	}

	flags := FlagErrors
	if s.refreshValid(ctx) {
		flags |= FlagValid
	}
	var p pathstore.Path
	if len(names) == 1 {
		p, _ = s.resolve(names[0])
	}
	s.publishState(ctx, p, flags)
	return nil
}
