// Package formsync keeps the state of a structured form in sync.
//
// A Form holds parallel trees keyed by field path: current values, default
// values, validation errors, touched flags, dirty flags and a per-field
// validity cache. Field writes, registrations and whole-array operations
// update every tree together and then notify the observers interested in
// the change.
//
//	form := formsync.New(
//		formsync.WithDefaultValues(map[string]any{"items": []any{}}),
//		formsync.WithInterest(formsync.Interest{Dirty: true}),
//	)
//	items, _ := form.FieldArray("items")
//	_ = items.Append(ctx, map[string]any{"name": "first"})
//	state := form.Snapshot()
//
// Paths use dots and brackets: "items.0.name", "items[0].name" and
// `items["0"]` (a quoted bracket is always an object key). A dotted numeric
// segment indexes an array and names a key of an object.
//
// A Form is not safe for concurrent use. Observers run synchronously after
// the mutation that triggered them has completed.
package formsync

import (
	"log/slog"

	"github.com/dshills/formsync/internal/config"
	"github.com/dshills/formsync/internal/formstate"
	"github.com/dshills/formsync/internal/identity"
)

type (
	// Form is the form-state store.
	Form = formstate.Store
	// FieldArray manipulates one array field.
	FieldArray = formstate.FieldArray
	// Option configures a Form.
	Option = formstate.Option

	FormState         = formstate.FormState
	FieldState        = formstate.FieldState
	FieldError        = formstate.FieldError
	Interest          = formstate.Interest
	Mode              = formstate.Mode
	Stats             = formstate.Stats
	SetValueOptions   = formstate.SetValueOptions
	KeepStateOptions  = formstate.KeepStateOptions
	Validator         = formstate.Validator
	ValidatorFunc     = formstate.ValidatorFunc
	ValidationRequest = formstate.ValidationRequest
	SubmitFunc        = formstate.SubmitFunc
	StateEvent        = formstate.StateEvent
	StateFlag         = formstate.StateFlag
	WatchEvent        = formstate.WatchEvent
	WatchKind         = formstate.WatchKind
	ArrayEvent        = formstate.ArrayEvent
	Entry             = identity.Entry
	KeyGenerator      = identity.Generator
)

// Validation modes.
const (
	OnSubmit  = formstate.OnSubmit
	OnBlur    = formstate.OnBlur
	OnChange  = formstate.OnChange
	OnTouched = formstate.OnTouched
	All       = formstate.All
)

// Errors.
var (
	ErrClosed    = formstate.ErrClosed
	ErrRootValue = formstate.ErrRootValue
	ErrRootArray = formstate.ErrRootArray
)

// Options.
var (
	WithDefaultValues    = formstate.WithDefaultValues
	WithValidator        = formstate.WithValidator
	WithKeyGenerator     = formstate.WithKeyGenerator
	WithMode             = formstate.WithMode
	WithReValidateMode   = formstate.WithReValidateMode
	WithShouldUnregister = formstate.WithShouldUnregister
	WithInterest         = formstate.WithInterest
)

// WithLogger sets the logger. Mutations are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return formstate.WithLogger(l)
}

// UUIDKeys mints random item keys. It is the default.
func UUIDKeys() KeyGenerator {
	return identity.UUID()
}

// SequenceKeys mints predictable item keys: prefix1, prefix2 and so on.
func SequenceKeys(prefix string) KeyGenerator {
	return identity.Sequence(prefix)
}

// ParseMode parses a validation mode name such as "onBlur".
func ParseMode(s string) (Mode, error) {
	return formstate.ParseMode(s)
}

// New creates a form.
func New(opts ...Option) *Form {
	return formstate.New(opts...)
}

// NewFromFile creates a form whose default values are read from a TOML, YAML
// or JSON document. Options given after the file take precedence.
func NewFromFile(path string, opts ...Option) (*Form, error) {
	defaults, err := config.LoadDefaults(path)
	if err != nil {
		return nil, err
	}
	return New(append([]Option{WithDefaultValues(defaults)}, opts...)...), nil
}
