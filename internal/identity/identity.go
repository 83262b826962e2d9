// Package identity mints synthetic keys for array-field items.
//
// A key identifies one logical item of an array field for as long as the item
// exists: it follows the item through swaps and moves, and a freshly inserted
// item always receives a key that has never been handed out before. Keys live
// beside the value in an Entry and never inside it, so a user field that
// happens to be called "id" or "key" can never collide with them.
package identity

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/formsync/internal/pathstore"
)

// Generator returns a new key on every call.
type Generator func() string

// UUID returns a generator producing random version 4 UUIDs.
func UUID() Generator {
	return func() string {
		return uuid.New().String()
	}
}

// Sequence returns a generator producing prefix1, prefix2, ... Keys are
// deterministic, which makes them convenient in tests and scripted runs.
func Sequence(prefix string) Generator {
	var n atomic.Uint64
	return func() string {
		return prefix + strconv.FormatUint(n.Add(1), 10)
	}
}

// Entry is an array item paired with its synthetic key.
type Entry struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Keyer attaches keys to array items.
type Keyer struct {
	gen Generator
}

// NewKeyer creates a Keyer. A nil generator falls back to UUID.
func NewKeyer(gen Generator) *Keyer {
	if gen == nil {
		gen = UUID()
	}
	return &Keyer{gen: gen}
}

// GenerateID returns a fresh key.
func (k *Keyer) GenerateID() string {
	return k.gen()
}

// AppendID wraps item in an Entry with a fresh key. The value is cloned so the
// entry never aliases the caller's data.
func (k *Keyer) AppendID(item any) Entry {
	return Entry{Key: k.gen(), Value: pathstore.Clone(item)}
}

// MapIDs wraps every item with a fresh key.
func (k *Keyer) MapIDs(items []any) []Entry {
	out := make([]Entry, len(items))
	for i, item := range items {
		out[i] = k.AppendID(item)
	}
	return out
}

// OmitKeys returns the plain values of entries, cloned.
func OmitKeys(entries []Entry) []any {
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = pathstore.Clone(e.Value)
	}
	return out
}

// Keys returns the keys of entries in order.
func Keys(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return out
}
