package formstate

import (
	"strings"

	"github.com/dshills/formsync/internal/event/topic"
	"github.com/dshills/formsync/internal/identity"
)

// StateFlag marks which parts of the form state an event changed.
type StateFlag uint16

const (
	FlagValues StateFlag = 1 << iota
	FlagErrors
	FlagDirty
	FlagTouched
	FlagValid
	FlagSubmit
	FlagReset
)

var flagNames = []struct {
	flag StateFlag
	name string
}{
	{FlagValues, "values"},
	{FlagErrors, "errors"},
	{FlagDirty, "dirty"},
	{FlagTouched, "touched"},
	{FlagValid, "valid"},
	{FlagSubmit, "submit"},
	{FlagReset, "reset"},
}

// Has reports whether any bit of o is set.
func (f StateFlag) Has(o StateFlag) bool {
	return f&o != 0
}

// String lists the set flags joined by "|".
func (f StateFlag) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// StateEvent tells form-state observers what changed. Observers pull the new
// state with Store.Snapshot.
type StateEvent struct {
	// Name is the field path the change started from; empty for the whole form.
	Name string

	// Changed lists the parts of the state that changed.
	Changed StateFlag
}

// EventTopic implements event.TopicProvider.
func (e StateEvent) EventTopic() topic.Topic {
	return topic.Topic(e.Name)
}

// WatchKind classifies value changes.
type WatchKind uint8

const (
	// WatchChange is a value written through SetValue or Change.
	WatchChange WatchKind = iota

	// WatchArray is an array-field operation.
	WatchArray

	// WatchReset is a form reset.
	WatchReset

	// WatchRegister is a field registration that copied in a default value.
	WatchRegister

	// WatchUnregister is a field removal on unregister.
	WatchUnregister
)

var watchKindNames = [...]string{
	WatchChange:     "change",
	WatchArray:      "array",
	WatchReset:      "reset",
	WatchRegister:   "register",
	WatchUnregister: "unregister",
}

// String returns the kind name.
func (k WatchKind) String() string {
	if int(k) < len(watchKindNames) {
		return watchKindNames[k]
	}
	return "unknown"
}

// WatchEvent tells value watchers which path changed.
type WatchEvent struct {
	Name string
	Kind WatchKind
}

// EventTopic implements event.TopicProvider.
func (e WatchEvent) EventTopic() topic.Topic {
	return topic.Topic(e.Name)
}

// ArrayEvent carries the new entry list of one array field.
type ArrayEvent struct {
	Name    string
	Fields  []identity.Entry
	IsReset bool
}

// EventTopic implements event.TopicProvider.
func (e ArrayEvent) EventTopic() topic.Topic {
	return topic.Topic(e.Name)
}
