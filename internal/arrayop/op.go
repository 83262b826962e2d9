package arrayop

import (
	"fmt"
	"strings"
)

// Kind identifies an array operation.
type Kind uint8

const (
	KindAppend Kind = iota
	KindPrepend
	KindInsert
	KindRemove
	KindSwap
	KindMove
	KindReplace
	KindUpdate
)

var kindNames = [...]string{
	KindAppend:  "append",
	KindPrepend: "prepend",
	KindInsert:  "insert",
	KindRemove:  "remove",
	KindSwap:    "swap",
	KindMove:    "move",
	KindReplace: "replace",
	KindUpdate:  "update",
}

// String returns the operation name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Op describes one array operation independently of the element type, so the
// same Op can be applied to the value array and to each aligned auxiliary
// array.
type Op struct {
	Kind Kind

	// Index is the target for insert and update, the first operand of swap
	// and the source of move.
	Index int

	// To is the second operand of swap and the destination of move.
	To int

	// Indices lists the elements to remove. Empty removes everything.
	Indices []int

	// Count is the number of items an append, prepend, insert or replace
	// supplies. Update always supplies one.
	Count int
}

// AppendOp appends n items.
func AppendOp(n int) Op { return Op{Kind: KindAppend, Count: n} }

// PrependOp prepends n items.
func PrependOp(n int) Op { return Op{Kind: KindPrepend, Count: n} }

// InsertOp inserts n items at index.
func InsertOp(index, n int) Op { return Op{Kind: KindInsert, Index: index, Count: n} }

// RemoveOp removes the given indices, or everything when none are given.
func RemoveOp(indices ...int) Op {
	return Op{Kind: KindRemove, Indices: append([]int(nil), indices...)}
}

// SwapOp exchanges i and j.
func SwapOp(i, j int) Op { return Op{Kind: KindSwap, Index: i, To: j} }

// MoveOp moves from to to.
func MoveOp(from, to int) Op { return Op{Kind: KindMove, Index: from, To: to} }

// ReplaceOp replaces the sequence with n items.
func ReplaceOp(n int) Op { return Op{Kind: KindReplace, Count: n} }

// UpdateOp replaces the item at index.
func UpdateOp(index int) Op { return Op{Kind: KindUpdate, Index: index, Count: 1} }

// Inserts reports whether the operation introduces new items.
func (op Op) Inserts() bool {
	switch op.Kind {
	case KindAppend, KindPrepend, KindInsert, KindReplace, KindUpdate:
		return true
	}
	return false
}

// String renders the operation for logs.
func (op Op) String() string {
	var b strings.Builder
	b.WriteString(op.Kind.String())
	switch op.Kind {
	case KindAppend, KindPrepend, KindReplace:
		fmt.Fprintf(&b, "(n=%d)", op.Count)
	case KindInsert:
		fmt.Fprintf(&b, "(at=%d, n=%d)", op.Index, op.Count)
	case KindRemove:
		if len(op.Indices) == 0 {
			b.WriteString("(all)")
		} else {
			fmt.Fprintf(&b, "%v", op.Indices)
		}
	case KindSwap, KindMove:
		fmt.Fprintf(&b, "(%d, %d)", op.Index, op.To)
	case KindUpdate:
		fmt.Fprintf(&b, "(at=%d)", op.Index)
	}
	return b.String()
}

// Apply runs op on seq. items supplies the new elements for operations that
// insert; when it is shorter than op.Count it is padded with zero values, so
// auxiliary arrays can pass nil to get empty placeholders.
func Apply[T any](seq []T, op Op, items []T) []T {
	if op.Inserts() {
		items = Pad(items, op.Count)[:op.Count]
	}
	switch op.Kind {
	case KindAppend:
		return Append(seq, items...)
	case KindPrepend:
		return Prepend(seq, items...)
	case KindInsert:
		return Insert(seq, op.Index, items...)
	case KindRemove:
		return Remove(seq, op.Indices...)
	case KindSwap:
		return Swap(seq, op.Index, op.To)
	case KindMove:
		return Move(seq, op.Index, op.To)
	case KindReplace:
		return Replace(items...)
	case KindUpdate:
		if len(items) == 0 {
			break
		}
		return Update(seq, op.Index, items[0])
	}
	return clone(seq)
}
