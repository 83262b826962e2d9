package formstate

import (
	"context"
	"fmt"

	"github.com/dshills/formsync/internal/arrayop"
	"github.com/dshills/formsync/internal/event"
	"github.com/dshills/formsync/internal/identity"
	"github.com/dshills/formsync/internal/pathstore"
)

// FieldArray manipulates one array field. Every operation transforms the
// value array, the aligned auxiliary arrays, the registrations below the
// field and the keyed entry list together, then notifies observers. Results
// are read back through Fields or a subscription.
type FieldArray struct {
	store   *Store
	name    string
	path    pathstore.Path
	entries []identity.Entry
	closed  bool
}

// FieldArray returns the array field at name, creating it on first use. Its
// entries are keyed from the current values.
func (s *Store) FieldArray(name string) (*FieldArray, error) {
	if s.closed {
		return nil, ErrClosed
	}
	p, err := s.resolve(name)
	if err != nil {
		return nil, fmt.Errorf("field array: %w", err)
	}
	if p.IsRoot() {
		return nil, ErrRootArray
	}

	key := p.String()
	if fa, ok := s.arrays[key]; ok {
		return fa, nil
	}
	fa := &FieldArray{store: s, name: key, path: p}
	fa.entries = s.keyer.MapIDs(fa.values())
	s.arrays[key] = fa
	s.log.Debug("field array", "path", key, "len", len(fa.entries))
	return fa, nil
}

// Name returns the canonical path of the array field.
func (fa *FieldArray) Name() string {
	return fa.name
}

// Fields returns a copy of the keyed entries.
func (fa *FieldArray) Fields() []identity.Entry {
	out := make([]identity.Entry, len(fa.entries))
	for i, e := range fa.entries {
		out[i] = identity.Entry{Key: e.Key, Value: pathstore.Clone(e.Value)}
	}
	return out
}

// Len returns the number of items.
func (fa *FieldArray) Len() int {
	return len(fa.entries)
}

// Append adds items at the tail.
func (fa *FieldArray) Append(ctx context.Context, items ...any) error {
	return fa.apply(ctx, arrayop.AppendOp(len(items)), items)
}

// Prepend adds items at the head.
func (fa *FieldArray) Prepend(ctx context.Context, items ...any) error {
	return fa.apply(ctx, arrayop.PrependOp(len(items)), items)
}

// Insert adds items before index. The index is clamped.
func (fa *FieldArray) Insert(ctx context.Context, index int, items ...any) error {
	return fa.apply(ctx, arrayop.InsertOp(index, len(items)), items)
}

// Remove removes the items at indices, or every item when none are given.
func (fa *FieldArray) Remove(ctx context.Context, indices ...int) error {
	return fa.apply(ctx, arrayop.RemoveOp(indices...), nil)
}

// Swap exchanges the items at i and j.
func (fa *FieldArray) Swap(ctx context.Context, i, j int) error {
	return fa.apply(ctx, arrayop.SwapOp(i, j), nil)
}

// Move moves the item at from to to.
func (fa *FieldArray) Move(ctx context.Context, from, to int) error {
	return fa.apply(ctx, arrayop.MoveOp(from, to), nil)
}

// Replace replaces every item. Errors, touched state and validity recorded
// for the field are discarded.
func (fa *FieldArray) Replace(ctx context.Context, items ...any) error {
	return fa.apply(ctx, arrayop.ReplaceOp(len(items)), items)
}

// Update replaces the item at index. The item gets a new key and its
// auxiliary state is cleared.
func (fa *FieldArray) Update(ctx context.Context, index int, item any) error {
	return fa.apply(ctx, arrayop.UpdateOp(index), []any{item})
}

// Subscribe calls fn with the new entries after every change of this field.
func (fa *FieldArray) Subscribe(fn func(ArrayEvent), opts ...event.SubscriptionOption) (event.Subscription, error) {
	if fa.closed {
		return nil, ErrClosed
	}
	opts = append(opts, event.WithFilter(event.Typed(func(e ArrayEvent) bool {
		return e.Name == fa.name
	})))
	return fa.store.entries.SubscribeFunc(event.Observer(fn), opts...)
}

// Close detaches the field array from the store. Its entries are dropped and
// later operations fail with ErrClosed.
func (fa *FieldArray) Close() {
	if fa.closed {
		return
	}
	fa.closed = true
	fa.entries = nil
	if cur, ok := fa.store.arrays[fa.name]; ok && cur == fa {
		delete(fa.store.arrays, fa.name)
	}
}

// values returns the array currently stored at the field path.
func (fa *FieldArray) values() []any {
	v, _ := pathstore.Lookup(fa.store.values, fa.path)
	arr, _ := v.([]any)
	return arr
}

func (fa *FieldArray) apply(ctx context.Context, op arrayop.Op, items []any) error {
	s := fa.store
	if fa.closed || s.closed {
		return ErrClosed
	}

	cur := fa.values()
	if len(cur) == 0 && !grows(op) {
		s.log.Debug("array op on empty field", "path", fa.name, "op", op.String())
		return nil
	}
	if len(fa.entries) != len(cur) {
		fa.resync(cur)
	}

	fresh := make([]any, len(items))
	keyed := make([]identity.Entry, len(items))
	for i, item := range items {
		fresh[i] = pathstore.Clone(item)
		keyed[i] = s.keyer.AppendID(fresh[i])
	}

	next := arrayop.Apply(cur, op, fresh)
	pathstore.Set(s.values, fa.path, next)
	fa.entries = arrayop.Apply(fa.entries, op, keyed)

	if op.Kind == arrayop.KindReplace {
		pathstore.Unset(s.errors, fa.path)
		pathstore.Unset(s.touched, fa.path)
		pathstore.Unset(s.validity, fa.path)
	} else {
		fa.applyAux(s.errors, op, len(cur))
		if s.interest.Touched {
			fa.applyAux(s.touched, op, len(cur))
		}
		if s.interest.Validity {
			fa.applyAux(s.validity, op, len(cur))
		}
	}
	fa.moveRegistrations(op, len(cur), next)
	s.log.Debug("array op", "path", fa.name, "op", op.String(), "len", len(next))

	flags := FlagValues | FlagErrors | FlagTouched
	if s.updateDirty(fa.path) {
		flags |= FlagDirty
		if len(next) == 0 {
			pathstore.Unset(s.dirty, fa.path)
		}
	}
	if s.isSubmitted && s.validatesOnChange(fa.path) {
		s.validatePath(ctx, fa.path)
	}
	if s.refreshValid(ctx) {
		flags |= FlagValid
	}

	fa.publish(ctx, false)
	s.publishWatch(ctx, fa.path, WatchArray)
	s.publishState(ctx, fa.path, flags)
	return nil
}

// grows reports whether op can turn an empty array into a non-empty one.
func grows(op arrayop.Op) bool {
	switch op.Kind {
	case arrayop.KindAppend, arrayop.KindPrepend, arrayop.KindInsert, arrayop.KindReplace:
		return true
	}
	return false
}

// applyAux transforms the auxiliary array at the field path. The array is
// padded to the value length first so every index lines up with its item.
// Anything other than an array at the path is left alone.
func (fa *FieldArray) applyAux(tree map[string]any, op arrayop.Op, n int) {
	node, ok := pathstore.Lookup(tree, fa.path)
	if !ok {
		return
	}
	arr, isArr := node.([]any)
	if !isArr {
		return
	}
	arr = arrayop.Apply(arrayop.Pad(arr, n), op, nil)
	arr = pathstore.TrimTrailing(arr)
	if pathstore.IsEmpty(arr) {
		pathstore.Unset(tree, fa.path)
		return
	}
	pathstore.Set(tree, fa.path, arr)
}

// moveRegistrations follows op for every registration below the field.
// Registrations of removed or overwritten items are dropped and the leaves of
// inserted items are registered.
func (fa *FieldArray) moveRegistrations(op arrayop.Op, n int, next []any) {
	s := fa.store
	depth := len(fa.path)

	// Positions are stored one-based so the zero placeholder marks new items.
	order := make([]int, n)
	for i := range order {
		order[i] = i + 1
	}
	moved := arrayop.Apply(order, op, nil)
	newIndex := make(map[int]int, len(moved))
	for to, from := range moved {
		if from > 0 {
			newIndex[from-1] = to
		}
	}

	for _, reg := range s.registrationsUnder(fa.path) {
		seg := reg.path[depth]
		if !seg.IsNumeric() {
			continue
		}
		to, ok := newIndex[seg.Index]
		if !ok {
			reg.dropped = true
			delete(s.fields, reg.path.String())
			continue
		}
		if to == seg.Index {
			continue
		}
		p := make(pathstore.Path, len(reg.path))
		copy(p, reg.path)
		p[depth] = pathstore.Index(to)
		reg.path = p
	}
	s.rekey()

	for to, from := range moved {
		if from > 0 || to >= len(next) {
			continue
		}
		for _, leaf := range pathstore.Leaves(next[to], fa.path.At(to)) {
			key := leaf.String()
			if _, ok := s.fields[key]; !ok {
				s.fields[key] = &registration{path: leaf, refs: 1}
			}
		}
	}
}

// resync rebuilds entries when the stored array changed without going
// through the field array. Surviving positions keep their keys.
func (fa *FieldArray) resync(cur []any) {
	s := fa.store
	entries := make([]identity.Entry, len(cur))
	for i, v := range cur {
		if i < len(fa.entries) {
			entries[i] = identity.Entry{Key: fa.entries[i].Key, Value: pathstore.Clone(v)}
			continue
		}
		entries[i] = s.keyer.AppendID(v)
	}
	fa.entries = entries
}

// rebuild keys every item afresh.
func (fa *FieldArray) rebuild() {
	fa.entries = fa.store.keyer.MapIDs(fa.values())
}

func (fa *FieldArray) publish(ctx context.Context, reset bool) {
	fa.store.publishArray(ctx, ArrayEvent{Name: fa.name, Fields: fa.Fields(), IsReset: reset})
}

// syncArrays keeps field arrays in step with a value written at p. Writing
// the array itself or an ancestor rekeys every item; writing inside an item
// refreshes the entry values and keeps their keys.
func (s *Store) syncArrays(ctx context.Context, p pathstore.Path) {
	for _, name := range s.arrayNames() {
		fa := s.arrays[name]
		switch {
		case fa.path.HasPrefix(p):
			fa.rebuild()
		case p.HasPrefix(fa.path):
			fa.resync(fa.values())
		default:
			continue
		}
		fa.publish(ctx, false)
	}
}
