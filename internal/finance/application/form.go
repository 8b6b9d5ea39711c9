// internal/finance/application/form.go
package application

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownField = errors.New("UNKNOWN_FIELD")
	ErrNotLastStep  = errors.New("NOT_LAST_STEP")
)

// Outcome is the result of a successful Advance.
type Outcome int

const (
	// Advanced means the form moved to the next step.
	Advanced Outcome = iota + 1
	// ReadyForConsent means the last step validated and the form can be submitted.
	ReadyForConsent
)

// Form is the four-step application form. It is not safe for concurrent use;
// the wizard controller serialises access.
type Form struct {
	record ApplicationRecord
	step   Step
}

// NewForm returns a form on the first step with default selections filled in.
func NewForm() *Form {
	return &Form{record: NewRecord(), step: FirstStep}
}

// NewFormFrom returns a form on the first step holding r.
func NewFormFrom(r ApplicationRecord) *Form {
	return &Form{record: r, step: FirstStep}
}

func (f *Form) Step() Step {
	return f.step
}

// UpdateField stores value without validating it.
func (f *Form) UpdateField(field Field, value string) error {
	if !f.record.Set(field, value) {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// Value returns the stored value of field.
func (f *Form) Value(field Field) (string, error) {
	v, ok := f.record.Get(field)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return v, nil
}

// Record returns a copy of the current record.
func (f *Form) Record() ApplicationRecord {
	return f.record
}

// Advance validates the current step. On failure the step is unchanged and the
// error is a *ValidationError.
func (f *Form) Advance() (Outcome, error) {
	if verr := ValidateStep(f.record, f.step); verr != nil {
		return 0, verr
	}
	if f.step == LastStep {
		return ReadyForConsent, nil
	}
	f.step++
	return Advanced, nil
}

// Retreat moves back one step and reports whether the step changed.
func (f *Form) Retreat() bool {
	if f.step <= FirstStep {
		return false
	}
	f.step--
	return true
}

// Submit returns the completed record. It requires the last step and a record
// that validates on every step.
func (f *Form) Submit() (ApplicationRecord, error) {
	if f.step != LastStep {
		return ApplicationRecord{}, fmt.Errorf("%w: on %s step", ErrNotLastStep, f.step)
	}
	if verr := ValidateRecord(f.record); verr != nil {
		return ApplicationRecord{}, verr
	}
	return f.record, nil
}
