package pathstore

// Lookup returns the value at path and whether it exists. Traversal stops at
// the first missing or non-container node; it never panics.
func Lookup(tree any, path Path) (any, bool) {
	cur := tree
	for _, seg := range path {
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[seg.Key]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			if !seg.IsNumeric() || seg.Index >= len(c) {
				return nil, false
			}
			cur = c[seg.Index]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Get returns the value at path, or fallback when the path is missing or
// holds nil.
func Get(tree any, path Path, fallback any) any {
	v, ok := Lookup(tree, path)
	if !ok || v == nil {
		return fallback
	}
	return v
}

// Has reports whether a non-nil value exists at path.
func Has(tree any, path Path) bool {
	v, ok := Lookup(tree, path)
	return ok && v != nil
}

// Set writes value at path, creating intermediate containers on demand. A
// bracketed index, or a dotted number below MaxImplicitIndex, with nothing
// beneath it creates an array; a larger dotted number creates an object key.
// Writing past the end of an array extends it with nil holes. Setting the root
// is a no-op.
func Set(tree map[string]any, path Path, value any) {
	if tree == nil || len(path) == 0 {
		return
	}
	setIn(tree, path, value)
}

func setIn(node any, path Path, value any) any {
	if len(path) == 0 {
		return value
	}
	seg := path[0]
	rest := path[1:]

	switch c := node.(type) {
	case map[string]any:
		c[seg.Key] = setIn(c[seg.Key], rest, value)
		return c
	case []any:
		if seg.IsNumeric() {
			if seg.Index >= len(c) {
				c = grow(c, seg.Index+1)
			}
			c[seg.Index] = setIn(c[seg.Index], rest, value)
			return c
		}
	}

	// Missing or leaf node: replace it with a fresh container.
	if createsArray(seg) {
		c := make([]any, seg.Index+1)
		c[seg.Index] = setIn(nil, rest, value)
		return c
	}
	return map[string]any{seg.Key: setIn(nil, rest, value)}
}

func createsArray(seg Segment) bool {
	switch seg.Kind {
	case KindIndex:
		return true
	case KindNumeric:
		return seg.Index < MaxImplicitIndex
	}
	return false
}

func grow(s []any, n int) []any {
	if n <= cap(s) {
		return s[:n]
	}
	out := make([]any, n)
	copy(out, s)
	return out
}

// Unset removes the value at path and prunes every ancestor container that
// became empty, stopping at the first non-empty ancestor. The root is never
// removed. Missing paths are a no-op. Removing an array slot leaves a nil hole
// so sibling indices are unchanged.
func Unset(tree map[string]any, path Path) {
	if tree == nil || len(path) == 0 {
		return
	}
	unsetIn(tree, path)
}

// unsetIn returns the possibly replaced node and whether anything was removed.
func unsetIn(node any, path Path) (any, bool) {
	seg := path[0]
	last := len(path) == 1

	switch c := node.(type) {
	case map[string]any:
		child, ok := c[seg.Key]
		if !ok {
			return c, false
		}
		if last {
			delete(c, seg.Key)
			return c, true
		}
		next, removed := unsetIn(child, path[1:])
		if !removed {
			return c, false
		}
		if IsEmpty(next) {
			delete(c, seg.Key)
		} else {
			c[seg.Key] = next
		}
		return c, true

	case []any:
		if !seg.IsNumeric() || seg.Index >= len(c) {
			return c, false
		}
		if last {
			c[seg.Index] = nil
			return c, true
		}
		next, removed := unsetIn(c[seg.Index], path[1:])
		if !removed {
			return c, false
		}
		if IsEmpty(next) {
			c[seg.Index] = nil
		} else {
			c[seg.Index] = next
		}
		return c, true
	}

	return node, false
}

// Prune removes the container at path if it is empty, then prunes emptied
// ancestors the same way Unset does.
func Prune(tree map[string]any, path Path) {
	v, ok := Lookup(tree, path)
	if ok && (v == nil || IsEmpty(v)) {
		Unset(tree, path)
	}
}

// Resolve pins every dotted numeric segment of path against tree: a segment
// that lands on an existing object, or on nothing with a number of at least
// MaxImplicitIndex, becomes a key; the others stay numeric.
// Writing the resolved path into a sparse tree then reproduces the container
// shape of tree.
func Resolve(tree any, path Path) Path {
	if len(path) == 0 {
		return nil
	}
	out := make(Path, len(path))
	cur := tree
	for i, seg := range path {
		if seg.Kind == KindNumeric {
			switch cur.(type) {
			case map[string]any:
				seg = Key(seg.Key)
			case []any:
			default:
				if !createsArray(seg) {
					seg = Key(seg.Key)
				}
			}
		}
		out[i] = seg
		cur = step(cur, seg)
	}
	return out
}

func step(node any, seg Segment) any {
	switch c := node.(type) {
	case map[string]any:
		return c[seg.Key]
	case []any:
		if seg.IsNumeric() && seg.Index < len(c) {
			return c[seg.Index]
		}
	}
	return nil
}
