// Package pathstore addresses nested value trees by field path.
//
// A value tree is built from map[string]any (object containers), []any
// (array containers) and arbitrary leaf values. Every tree the form engine
// owns (values, defaults, errors, touched flags, dirty flags, validity cache)
// is manipulated exclusively through this package so that path addressing and
// pruning behave identically across all of them.
//
// # Paths
//
// Paths use dot notation with optional brackets:
//
//	items.0.name      - dotted numeric segment
//	items[0].name     - bracketed index
//	accounts["0042"]  - quoted key, never treated as an index
//
// A bracketed segment is always an array index and a quoted segment is always
// an object key. A bare dotted numeric segment is resolved against the tree:
// it indexes an existing array, names a key of an existing object, and creates
// an array when nothing exists at that position yet. A number of at least
// MaxImplicitIndex creates an object key instead, so "accounts.12345678" does
// not allocate twelve million slots.
//
// # Pruning
//
// Unset removes a leaf and then removes every ancestor container that became
// empty, so in a sparse tree the presence of a path implies that something
// meaningful lives below it.
package pathstore
