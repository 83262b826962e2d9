package formstate

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dshills/formsync/internal/event"
	"github.com/dshills/formsync/internal/identity"
	"github.com/dshills/formsync/internal/pathstore"
)

// Store owns the value tree and auxiliary trees of one form.
type Store struct {
	cfg       config
	log       *slog.Logger
	keyer     *identity.Keyer
	validator Validator

	values   map[string]any
	defaults map[string]any
	errors   map[string]any
	touched  map[string]any
	dirty    map[string]any
	validity map[string]any

	interest           Interest
	isValid            bool
	isSubmitted        bool
	isSubmitSuccessful bool
	submitCount        int

	fields map[string]*registration
	arrays map[string]*FieldArray

	states  *event.Subject[StateEvent]
	watches *event.Subject[WatchEvent]
	entries *event.Subject[ArrayEvent]

	dirtyChecks  atomic.Uint64
	validityRuns atomic.Uint64
	validations  atomic.Uint64
	publishes    atomic.Uint64

	closed bool
}

// New creates a store. The value tree starts as a copy of the default values.
func New(opts ...Option) *Store {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = discardLogger()
	}
	if cfg.keyer == nil {
		cfg.keyer = identity.NewKeyer(nil)
	}

	s := &Store{
		cfg:       cfg,
		log:       cfg.logger,
		keyer:     cfg.keyer,
		validator: cfg.validator,
		defaults:  pathstore.CloneMap(cfg.defaults),
		errors:    map[string]any{},
		touched:   map[string]any{},
		dirty:     map[string]any{},
		validity:  map[string]any{},
		fields:    make(map[string]*registration),
		arrays:    make(map[string]*FieldArray),
	}
	s.values = pathstore.CloneMap(s.defaults)

	onPanic := func(err *event.PanicError) {
		s.log.Error("observer panicked", "subject", err.Subject, "subscription", err.SubscriptionID, "value", err.Value)
	}
	onError := func(err *event.HandlerError) {
		s.log.Warn("observer failed", "subject", err.Subject, "subscription", err.SubscriptionID, "err", err.Err)
	}
	s.states = event.NewSubject[StateEvent](event.WithName("state"), event.WithPanicHandler(onPanic), event.WithErrorHandler(onError))
	s.watches = event.NewSubject[WatchEvent](event.WithName("watch"), event.WithPanicHandler(onPanic), event.WithErrorHandler(onError))
	s.entries = event.NewSubject[ArrayEvent](event.WithName("array"), event.WithPanicHandler(onPanic), event.WithErrorHandler(onError))

	in := cfg.interest
	if cfg.mode == OnTouched {
		in.Touched = true
	}
	s.Declare(in)
	return s
}

// resolve parses name and pins its numeric segments against the value tree.
func (s *Store) resolve(name string) (pathstore.Path, error) {
	p, err := pathstore.Parse(name)
	if err != nil {
		return nil, err
	}
	return pathstore.Resolve(s.values, p), nil
}

// SetValue writes value at name. The value is copied. An empty name replaces
// the whole value tree and requires an object.
func (s *Store) SetValue(ctx context.Context, name string, value any, opts SetValueOptions) error {
	if s.closed {
		return ErrClosed
	}
	p, err := s.resolve(name)
	if err != nil {
		return err
	}

	v := pathstore.Clone(value)
	if p.IsRoot() {
		m, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("set value: %w", ErrRootValue)
		}
		s.values = m
	} else {
		pathstore.Set(s.values, p, v)
	}
	s.log.Debug("set value", "path", p.String(), "validate", opts.ShouldValidate, "touch", opts.ShouldTouch)

	flags := FlagValues
	if opts.ShouldTouch && s.interest.Touched && !p.IsRoot() {
		pathstore.Set(s.touched, p, true)
		flags |= FlagTouched
	}
	if s.updateDirty(p) {
		flags |= FlagDirty
	}
	if opts.ShouldValidate {
		s.validatePath(ctx, p)
		flags |= FlagErrors
	}
	if s.refreshValid(ctx) {
		flags |= FlagValid
	}

	s.syncArrays(ctx, p)
	s.publishWatch(ctx, p, WatchChange)
	s.publishState(ctx, p, flags)
	return nil
}

// GetValues returns a copy of the values. With no names it returns the whole
// tree, with one name the value at that path and with several a slice of
// values in order. Invalid or missing paths yield nil.
func (s *Store) GetValues(names ...string) any {
	switch len(names) {
	case 0:
		return pathstore.CloneMap(s.values)
	case 1:
		return s.valueAt(names[0])
	}
	out := make([]any, len(names))
	for i, name := range names {
		out[i] = s.valueAt(name)
	}
	return out
}

// Values returns a copy of the whole value tree.
func (s *Store) Values() map[string]any {
	return pathstore.CloneMap(s.values)
}

// DefaultValues returns a copy of the default values.
func (s *Store) DefaultValues() map[string]any {
	return pathstore.CloneMap(s.defaults)
}

func (s *Store) valueAt(name string) any {
	p, err := pathstore.Parse(name)
	if err != nil {
		s.log.Debug("get values", "path", name, "err", err)
		return nil
	}
	return pathstore.Clone(pathstore.Get(s.values, p, nil))
}

// GetIsDirty reports whether the value at name differs from its default. An
// empty name compares the whole form. When candidate is given it is compared
// instead of the current value. The comparison stops at the first difference.
func (s *Store) GetIsDirty(name string, candidate ...any) bool {
	p, err := pathstore.Parse(name)
	if err != nil {
		return false
	}
	var cur any
	if len(candidate) > 0 {
		cur = pathstore.Clone(candidate[0])
	} else {
		cur, _ = pathstore.Lookup(s.values, p)
	}
	def, _ := pathstore.Lookup(s.defaults, p)
	s.dirtyChecks.Add(1)
	return !pathstore.Equal(cur, def)
}

// GetFieldState returns the state of one field.
func (s *Store) GetFieldState(name string) FieldState {
	p, err := s.resolve(name)
	if err != nil {
		return FieldState{}
	}

	var fs FieldState
	errNode, _ := pathstore.Lookup(s.errors, p)
	if !pathstore.IsEmpty(errNode) {
		fs.Invalid = true
		fs.Error, _ = asFieldError(errNode)
	}
	fs.IsTouched = pathstore.Has(s.touched, p)
	if s.interest.Dirty {
		fs.IsDirty = pathstore.Has(s.dirty, p)
	} else {
		fs.IsDirty = s.GetIsDirty(name)
	}
	_, fs.IsValidated = pathstore.Lookup(s.validity, p)
	if p.IsRoot() {
		fs.IsValidated = len(s.validity) > 0
	}
	return fs
}

// Snapshot returns a copy of the form state. Untracked dirty and touched
// state is reported empty.
func (s *Store) Snapshot() FormState {
	fs := FormState{
		Values:             pathstore.CloneMap(s.values),
		DefaultValues:      pathstore.CloneMap(s.defaults),
		Errors:             pathstore.CloneMap(s.errors),
		TouchedFields:      pathstore.CloneMap(s.touched),
		DirtyFields:        pathstore.CloneMap(s.dirty),
		IsSubmitted:        s.isSubmitted,
		IsSubmitSuccessful: s.isSubmitSuccessful,
		SubmitCount:        s.submitCount,
	}
	if s.interest.Dirty {
		fs.IsDirty = s.GetIsDirty("")
	}
	if s.interest.Validity {
		fs.IsValid = s.isValid
	} else {
		fs.IsValid = len(s.errors) == 0
	}
	return fs
}

// Declare adds to the tracking interest. Interest is never withdrawn. Newly
// declared dirty tracking computes the dirty tree immediately and newly
// declared validity tracking computes the validity flag.
func (s *Store) Declare(in Interest) {
	prev := s.interest
	s.interest = prev.Merge(in)

	if s.interest.Dirty && !prev.Dirty {
		s.updateDirty(nil)
	}
	if s.interest.Validity && !prev.Validity {
		s.refreshValid(context.Background())
	}
	if s.interest != prev {
		s.log.Debug("declare interest", "dirty", s.interest.Dirty, "touched", s.interest.Touched, "validity", s.interest.Validity)
	}
}

// Interest returns the declared tracking interest.
func (s *Store) Interest() Interest {
	return s.interest
}

// Stats returns bookkeeping counters.
func (s *Store) Stats() Stats {
	return Stats{
		DirtyChecks:  s.dirtyChecks.Load(),
		ValidityRuns: s.validityRuns.Load(),
		Validations:  s.validations.Load(),
		Publishes:    s.publishes.Load(),
	}
}

// Close releases observers and field arrays. Later mutations fail with
// ErrClosed.
func (s *Store) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for _, fa := range s.arrays {
		fa.closed = true
	}
	s.arrays = map[string]*FieldArray{}
	s.states.Close()
	s.watches.Close()
	s.entries.Close()
}

// updateDirty recomputes the dirty subtree at p when dirty state is tracked.
// It reports whether the dirty tree was touched.
func (s *Store) updateDirty(p pathstore.Path) bool {
	if !s.interest.Dirty {
		return false
	}
	s.dirtyChecks.Add(1)

	cur, _ := pathstore.Lookup(s.values, p)
	def, _ := pathstore.Lookup(s.defaults, p)
	diff := pathstore.Diff(cur, def)

	if p.IsRoot() {
		m, _ := diff.(map[string]any)
		if m == nil {
			m = map[string]any{}
		}
		s.dirty = m
		return true
	}
	if diff == nil {
		pathstore.Unset(s.dirty, p)
	} else {
		pathstore.Set(s.dirty, p, diff)
	}
	return true
}
