// Package formstate owns the state of one form instance.
//
// A Store keeps the value tree together with four sparse auxiliary trees
// addressed by the same field paths:
//
//	errors         FieldError leaves produced by the validator
//	touched        true where a field has lost focus at least once
//	dirty          true where the value differs from its default
//	validity       true/false where a field has been validated
//
// Every mutation runs to completion before it returns: the trees are updated,
// derived flags are recomputed and one event is published per affected
// subject. Observers registered with SubscribeState, Watch or
// FieldArray.Subscribe run synchronously inside the mutating call and read
// the post-mutation state through Snapshot, GetValues or FieldArray.Fields.
//
// # Opt-in Tracking
//
// Dirty, touched and validity bookkeeping costs work on every change, so the
// store only maintains them once someone declares an Interest, either through
// Declare, WithInterest or SubscribeState. Values are always written; Stats
// exposes counters that show which bookkeeping actually ran.
//
// # Array Fields
//
// FieldArray turns one array-valued path into a list of keyed entries. Each
// operation applies the same arrayop.Op to the value array, to every auxiliary
// array present at that path, to the entry keys and to the registrations
// below the path, so an auxiliary slot always describes the item at the same
// index of the value array.
//
// A Store is not safe for concurrent use.
package formstate
