package formstate

import (
	"context"
	"fmt"
	"sort"

	"github.com/dshills/formsync/internal/pathstore"
)

// registration is one registered field. Array operations move registrations
// below an array field along with their items, so path may change over time.
type registration struct {
	path    pathstore.Path
	rules   any
	refs    int
	dropped bool
}

// Register declares that a field exists at name. When the field has no value
// yet its default value is copied in. The returned function releases the
// registration; once every registration of the path is released the field is
// forgotten, and with WithShouldUnregister its value and state are removed.
func (s *Store) Register(name string, rules any) (func(), error) {
	if s.closed {
		return nil, ErrClosed
	}
	p, err := s.resolve(name)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if p.IsRoot() {
		return nil, fmt.Errorf("register: empty field name: %w", pathstore.ErrInvalidPath)
	}

	key := p.String()
	reg, ok := s.fields[key]
	if !ok {
		reg = &registration{path: p}
		s.fields[key] = reg
	}
	reg.refs++
	if rules != nil {
		reg.rules = rules
	}

	if !pathstore.Has(s.values, p) {
		if def := pathstore.Get(s.defaults, p, nil); def != nil {
			pathstore.Set(s.values, p, pathstore.Clone(def))
			s.publishWatch(context.Background(), p, WatchRegister)
		}
	}
	s.log.Debug("register", "path", key, "refs", reg.refs)

	released := false
	return func() {
		if released {
			return
		}
		released = true
		s.unregister(reg)
	}, nil
}

func (s *Store) unregister(reg *registration) {
	if reg.dropped {
		return
	}
	reg.refs--
	if reg.refs > 0 {
		return
	}
	reg.dropped = true
	delete(s.fields, reg.path.String())
	s.log.Debug("unregister", "path", reg.path.String(), "remove", s.cfg.shouldUnregister)

	if !s.cfg.shouldUnregister || s.closed {
		return
	}
	ctx := context.Background()
	for _, tree := range []map[string]any{s.values, s.errors, s.touched, s.dirty, s.validity} {
		pathstore.Unset(tree, reg.path)
	}
	flags := FlagValues | FlagErrors | FlagDirty | FlagTouched
	if s.refreshValid(ctx) {
		flags |= FlagValid
	}
	s.publishWatch(ctx, reg.path, WatchUnregister)
	s.publishState(ctx, reg.path, flags)
}

// IsRegistered reports whether a field is registered at name.
func (s *Store) IsRegistered(name string) bool {
	p, err := s.resolve(name)
	if err != nil {
		return false
	}
	_, ok := s.fields[p.String()]
	return ok
}

// registrationsUnder returns the registrations strictly below p.
func (s *Store) registrationsUnder(p pathstore.Path) []*registration {
	var out []*registration
	for _, reg := range s.fields {
		if len(reg.path) > len(p) && reg.path.HasPrefix(p) {
			out = append(out, reg)
		}
	}
	return out
}

// rekey replaces the registration index after registrations moved.
func (s *Store) rekey() {
	fields := make(map[string]*registration, len(s.fields))
	for _, reg := range s.fields {
		fields[reg.path.String()] = reg
	}
	s.fields = fields
}

// Registered returns the registered field paths in sorted order.
func (s *Store) Registered() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
