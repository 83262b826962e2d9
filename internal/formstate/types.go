package formstate

import (
	"fmt"
	"strings"
)

// FieldError is a validation error stored in the errors tree.
type FieldError struct {
	// Type names the failed rule, for example "required".
	Type string `json:"type"`

	// Message is the human-readable message.
	Message string `json:"message,omitempty"`

	// Params carries rule parameters such as a minimum length.
	Params map[string]any `json:"params,omitempty"`
}

// Error implements the error interface.
func (e FieldError) Error() string {
	if e.Message == "" {
		return e.Type
	}
	return e.Type + ": " + e.Message
}

// Mode selects when field input triggers validation.
type Mode uint8

const (
	// OnSubmit validates only on Submit and Trigger.
	OnSubmit Mode = iota

	// OnBlur validates a field when it loses focus.
	OnBlur

	// OnChange validates a field on every change.
	OnChange

	// OnTouched validates on the first blur and on every change after it.
	OnTouched

	// All validates on both blur and change.
	All
)

var modeNames = [...]string{
	OnSubmit:  "onSubmit",
	OnBlur:    "onBlur",
	OnChange:  "onChange",
	OnTouched: "onTouched",
	All:       "all",
}

// String returns the mode name.
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode parses a mode name as printed by String.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(name, s) {
			return Mode(i), nil
		}
	}
	return OnSubmit, fmt.Errorf("unknown validation mode %q", s)
}

// Interest declares which derived state a consumer reads. Undeclared state is
// not maintained.
type Interest struct {
	Dirty    bool
	Touched  bool
	Validity bool
}

// Merge returns the union of two interests.
func (i Interest) Merge(o Interest) Interest {
	return Interest{
		Dirty:    i.Dirty || o.Dirty,
		Touched:  i.Touched || o.Touched,
		Validity: i.Validity || o.Validity,
	}
}

// IsZero reports whether nothing is declared.
func (i Interest) IsZero() bool {
	return !i.Dirty && !i.Touched && !i.Validity
}

// SetValueOptions controls the side effects of SetValue.
type SetValueOptions struct {
	// ShouldValidate runs the validator for the path after writing.
	ShouldValidate bool

	// ShouldTouch marks the path touched.
	ShouldTouch bool
}

// KeepStateOptions selects which state survives Reset. Every flag left false
// resets that piece of state to its post-reset baseline.
type KeepStateOptions struct {
	KeepErrors        bool
	KeepDirty         bool
	KeepTouched       bool
	KeepIsValid       bool
	KeepIsSubmitted   bool
	KeepSubmitCount   bool
	KeepDefaultValues bool
	KeepValues        bool
}

// FieldState is the per-field view handed to field bindings.
type FieldState struct {
	Invalid     bool        `json:"invalid"`
	IsTouched   bool        `json:"isTouched"`
	IsDirty     bool        `json:"isDirty"`
	IsValidated bool        `json:"isValidated"`
	Error       *FieldError `json:"error,omitempty"`
}

// FormState is a snapshot of the whole form. Its trees are copies, so holding
// on to a snapshot is safe; changing it has no effect on the store.
type FormState struct {
	Values             map[string]any `json:"values"`
	DefaultValues      map[string]any `json:"defaultValues"`
	Errors             map[string]any `json:"errors"`
	TouchedFields      map[string]any `json:"touchedFields"`
	DirtyFields        map[string]any `json:"dirtyFields"`
	IsDirty            bool           `json:"isDirty"`
	IsValid            bool           `json:"isValid"`
	IsSubmitted        bool           `json:"isSubmitted"`
	IsSubmitSuccessful bool           `json:"isSubmitSuccessful"`
	SubmitCount        int            `json:"submitCount"`
}

// Stats reports how much bookkeeping the store has performed.
type Stats struct {
	// DirtyChecks counts deep comparisons against default values.
	DirtyChecks uint64

	// ValidityRuns counts whole-form validity recomputations.
	ValidityRuns uint64

	// Validations counts validator calls made for errors.
	Validations uint64

	// Publishes counts events published to observers.
	Publishes uint64
}
