package pathstore

import (
	"reflect"
	"sort"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Clone returns a deep copy of v. Typed slices and string-keyed maps are
// normalized to []any and map[string]any so every tree is addressable by this
// package; other values are copied as-is.
func Clone(v any) any {
	switch c := v.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(c))
		for k, child := range c {
			out[k] = Clone(child)
		}
		return out
	case []any:
		out := make([]any, len(c))
		for i, child := range c {
			out[i] = Clone(child)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			// []byte is a leaf.
			return v
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Clone(rv.Index(i).Interface())
		}
		return out
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Clone(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = Clone(iter.Value().Interface())
		}
		return out
	}
	return v
}

// CloneMap deep-copies a root tree. A nil input yields an empty map.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return Clone(m).(map[string]any)
}

// IsEmpty reports whether v carries nothing meaningful: nil, a map with no
// keys, or an array whose every slot is nil.
func IsEmpty(v any) bool {
	switch c := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(c) == 0
	case []any:
		for _, e := range c {
			if e != nil {
				return false
			}
		}
		return true
	}
	return false
}

// Compact returns the non-nil elements of s in order.
func Compact(s []any) []any {
	out := make([]any, 0, len(s))
	for _, e := range s {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// TrimTrailing drops trailing nil slots from s.
func TrimTrailing(s []any) []any {
	n := len(s)
	for n > 0 && s[n-1] == nil {
		n--
	}
	return s[:n]
}

var equalOpts = cmp.Options{
	cmpopts.EquateEmpty(),
	cmp.FilterValues(looseComparable, cmp.Comparer(looseEqual)),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// Equal reports structural equality of two trees. Numbers compare by value
// regardless of their Go type, and nil equals an empty container, so trees
// decoded from different sources compare equal when they describe the same
// data.
func Equal(a, b any) bool {
	return cmp.Equal(a, b, equalOpts)
}

func looseComparable(x, y any) bool {
	if _, ok := toFloat(x); ok {
		_, ok = toFloat(y)
		return ok
	}
	if emptyish(x) && emptyish(y) {
		return reflect.TypeOf(x) != reflect.TypeOf(y)
	}
	return false
}

func looseEqual(x, y any) bool {
	fx, okx := toFloat(x)
	fy, oky := toFloat(y)
	if okx && oky {
		return fx == fy
	}
	return emptyish(x) && emptyish(y)
}

func emptyish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return rv.Len() == 0
	}
	return false
}

func toFloat(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// Diff returns a sparse tree holding true at every leaf where current differs
// from base, or nil when they are equal. Objects are compared key by key over
// the union of their keys and arrays index by index over the longer of the
// two, so a slot present only in base is marked true.
func Diff(current, base any) any {
	switch c := current.(type) {
	case map[string]any:
		bm, _ := base.(map[string]any)
		out := map[string]any{}
		for k, v := range c {
			if d := Diff(v, bm[k]); d != nil {
				out[k] = d
			}
		}
		for k, v := range bm {
			if _, ok := c[k]; ok {
				continue
			}
			if !Equal(nil, v) {
				out[k] = true
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []any:
		bs, _ := base.([]any)
		out := make([]any, max(len(c), len(bs)))
		for i := range out {
			switch {
			case i >= len(c):
				if !Equal(nil, bs[i]) {
					out[i] = true
				}
			case i >= len(bs):
				out[i] = Diff(c[i], nil)
			default:
				out[i] = Diff(c[i], bs[i])
			}
		}
		out = TrimTrailing(out)
		if len(out) == 0 {
			return nil
		}
		return out
	}
	if Equal(current, base) {
		return nil
	}
	return true
}

// Leaves returns the path of every non-nil leaf under tree, each prefixed by
// prefix. Object keys are visited in sorted order.
func Leaves(tree any, prefix Path) []Path {
	var out []Path
	collectLeaves(tree, prefix, &out)
	return out
}

func collectLeaves(node any, at Path, out *[]Path) {
	switch c := node.(type) {
	case nil:
		return
	case map[string]any:
		keys := make([]string, 0, len(c))
		for k := range c {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectLeaves(c[k], at.Child(k), out)
		}
	case []any:
		for i, e := range c {
			collectLeaves(e, at.At(i), out)
		}
	default:
		*out = append(*out, at)
	}
}

// Align rebuilds tree so its containers follow the shape of values. Every
// leaf is written at its path resolved against values, with number-like object
// keys treated as dotted numeric segments. Typed slices and maps are
// normalized by Clone first.
func Align(tree, values any) map[string]any {
	src := Clone(tree)
	out := map[string]any{}
	for _, leaf := range Leaves(src, nil) {
		v, _ := Lookup(src, leaf)
		Set(out, Resolve(values, numeric(leaf)), v)
	}
	return out
}

// numeric turns every segment whose text is a canonical index into a dotted
// numeric segment.
func numeric(p Path) Path {
	out := make(Path, len(p))
	for i, seg := range p {
		if n, ok := canonicalIndex(seg.Key); ok {
			seg = Segment{Kind: KindNumeric, Key: seg.Key, Index: n}
		}
		out[i] = seg
	}
	return out
}

// DeepMerge recursively merges src into dst. Values in src override values in
// dst; maps are merged recursively and everything else is replaced by a copy.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
			continue
		}
		dst[key] = Clone(srcVal)
	}
	return dst
}

// Sparse returns v with nil leaves and empty containers removed, recursively.
// Arrays keep their interior holes so indices stay aligned but lose trailing
// ones. The result is nil when nothing meaningful remains.
func Sparse(v any) any {
	switch c := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(c))
		for k, child := range c {
			if s := Sparse(child); s != nil {
				out[k] = s
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []any:
		out := make([]any, len(c))
		for i, child := range c {
			out[i] = Sparse(child)
		}
		out = TrimTrailing(out)
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return v
}
