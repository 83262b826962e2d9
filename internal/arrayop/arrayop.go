// Package arrayop implements the index-aware transformations applied to an
// array field and to every auxiliary array aligned with it.
//
// Every function is pure: it returns a new slice and never modifies its input.
// Index arguments are clamped into range instead of failing, and index-based
// operations on an empty sequence return it unchanged.
package arrayop

import "sort"

// Append returns seq with items added at the tail.
func Append[T any](seq []T, items ...T) []T {
	out := make([]T, 0, len(seq)+len(items))
	out = append(out, seq...)
	return append(out, items...)
}

// Prepend returns seq with items added at the head.
func Prepend[T any](seq []T, items ...T) []T {
	out := make([]T, 0, len(seq)+len(items))
	out = append(out, items...)
	return append(out, seq...)
}

// Insert returns seq with items spliced in before index. The index is clamped
// to [0, len(seq)].
func Insert[T any](seq []T, index int, items ...T) []T {
	index = clamp(index, 0, len(seq))
	out := make([]T, 0, len(seq)+len(items))
	out = append(out, seq[:index]...)
	out = append(out, items...)
	return append(out, seq[index:]...)
}

// Remove returns seq without the elements at indices, removed in a single pass
// so later indices refer to the original positions. With no indices every
// element is removed. Out-of-range and duplicate indices are ignored.
func Remove[T any](seq []T, indices ...int) []T {
	if len(indices) == 0 {
		return []T{}
	}
	drop := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(seq) {
			drop[i] = struct{}{}
		}
	}
	out := make([]T, 0, len(seq))
	for i, v := range seq {
		if _, ok := drop[i]; !ok {
			out = append(out, v)
		}
	}
	return out
}

// Swap returns seq with the elements at i and j exchanged.
func Swap[T any](seq []T, i, j int) []T {
	out := clone(seq)
	if len(out) == 0 {
		return out
	}
	i = clamp(i, 0, len(out)-1)
	j = clamp(j, 0, len(out)-1)
	out[i], out[j] = out[j], out[i]
	return out
}

// Move returns seq with the element at from removed and reinserted at to,
// where to is an index into the sequence after removal.
func Move[T any](seq []T, from, to int) []T {
	if len(seq) == 0 {
		return clone(seq)
	}
	from = clamp(from, 0, len(seq)-1)
	item := seq[from]
	rest := make([]T, 0, len(seq))
	rest = append(rest, seq[:from]...)
	rest = append(rest, seq[from+1:]...)
	return Insert(rest, to, item)
}

// Replace returns a sequence holding exactly items.
func Replace[T any](items ...T) []T {
	return clone(items)
}

// Update returns seq with the element at index replaced by item.
func Update[T any](seq []T, index int, item T) []T {
	out := clone(seq)
	if len(out) == 0 {
		return out
	}
	out[clamp(index, 0, len(out)-1)] = item
	return out
}

// Fill returns n zero values. Auxiliary arrays use it as the placeholder for
// freshly inserted items, which carry no state yet.
func Fill[T any](n int) []T {
	if n < 0 {
		n = 0
	}
	return make([]T, n)
}

// Pad returns seq extended with zero values to length n. Longer sequences are
// returned unchanged.
func Pad[T any](seq []T, n int) []T {
	if len(seq) >= n {
		return clone(seq)
	}
	out := make([]T, n)
	copy(out, seq)
	return out
}

// Normalize sorts indices, dropping negatives and duplicates.
func Normalize(indices []int) []int {
	out := make([]int, 0, len(indices))
	seen := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i < 0 || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func clone[T any](seq []T) []T {
	out := make([]T, len(seq))
	copy(out, seq)
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
