// internal/finance/application/validators.go
package application

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation codes.
const (
	CodeMissingRequired = "MISSING_REQUIRED"
	CodeInvalidFormat   = "INVALID_FORMAT"
	CodeInvalidValue    = "INVALID_VALUE"
	CodeUnknownField    = "UNKNOWN_FIELD"
)

var (
	idNumberRegex = regexp.MustCompile(`^\d{13}$`)
	phoneRegex    = regexp.MustCompile(`^(\+27|0)[0-9]{9}$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	amountRegex   = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

	amountCleaner = strings.NewReplacer(" ", "", ",", "", "R", "")
)

// Result is the outcome of validating a single field value.
type Result struct {
	Valid   bool   `json:"valid"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

var ok = Result{Valid: true}

func invalid(code, message string) Result {
	return Result{Code: code, Message: message}
}

type rule func(value string) Result

func minLength(n int, message string) rule {
	return func(v string) Result {
		if utf8.RuneCountInString(strings.TrimSpace(v)) < n {
			return invalid(CodeInvalidFormat, message)
		}
		return ok
	}
}

func pattern(re *regexp.Regexp, message string) rule {
	return func(v string) Result {
		if !re.MatchString(strings.TrimSpace(v)) {
			return invalid(CodeInvalidFormat, message)
		}
		return ok
	}
}

func oneOf(valid func(string) bool, message string) rule {
	return func(v string) Result {
		if !valid(v) {
			return invalid(CodeInvalidValue, message)
		}
		return ok
	}
}

func amount(message string) rule {
	return func(v string) Result {
		if !amountRegex.MatchString(amountCleaner.Replace(strings.TrimSpace(v))) {
			return invalid(CodeInvalidFormat, message)
		}
		return ok
	}
}

func creditScore(v string) Result {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 300 || n > 850 {
		return invalid(CodeInvalidValue, "Credit score must be between 300 and 850")
	}
	return ok
}

type validator struct {
	requiredMessage string
	format          rule
}

var validators = map[Field]validator{
	FieldFirstName: {"First name is required", minLength(2, "First name is required")},
	FieldLastName:  {"Last name is required", minLength(2, "Last name is required")},
	FieldIDNumber:  {"ID number is required", pattern(idNumberRegex, "ID number must be 13 digits")},
	FieldEmail:     {"Email is required", pattern(emailRegex, "Invalid email address")},
	FieldPhone:     {"Phone number is required", pattern(phoneRegex, "Invalid South African phone number")},
	FieldAddress:   {"Complete address is required", minLength(10, "Complete address is required")},

	FieldEmploymentStatus: {"Employment status is required", oneOf(func(v string) bool { return EmploymentStatus(v).Valid() }, "Select a valid employment status")},
	FieldMonthlyIncome:    {"Monthly income is required", amount("Monthly income must be an amount in rands")},
	FieldWorkPhone:        {"", pattern(phoneRegex, "Invalid South African phone number")},

	FieldBankName:        {"Bank name is required", minLength(2, "Bank name is required")},
	FieldAccountType:     {"Account type is required", oneOf(func(v string) bool { return AccountType(v).Valid() }, "Select a valid account type")},
	FieldCreditScore:     {"", creditScore},
	FieldMonthlyExpenses: {"Monthly expenses estimate is required", amount("Monthly expenses must be an amount in rands")},

	FieldPreferredLoanTerm: {"Loan term is required", oneOf(func(v string) bool { return LoanTerm(v).Valid() }, "Select a loan term of 12 to 72 months")},
	FieldDepositAmount:     {"Deposit amount is required", amount("Deposit amount must be an amount in rands")},
	FieldIntendedUse:       {"Intended use is required", oneOf(func(v string) bool { return IntendedUse(v).Valid() }, "Select a valid intended use")},
}

// Validate checks a single field value. Blank optional fields are valid; non-blank
// optional fields are still format checked.
func Validate(field Field, value string) Result {
	def, known := fields[field]
	if !known {
		return invalid(CodeUnknownField, fmt.Sprintf("Unknown field %q", field))
	}

	v := validators[field]
	if strings.TrimSpace(value) == "" {
		if def.required {
			msg := v.requiredMessage
			if msg == "" {
				msg = "This field is required"
			}
			return invalid(CodeMissingRequired, msg)
		}
		return ok
	}

	if v.format == nil {
		return ok
	}
	return v.format(value)
}

// ValidateStep validates every field of step and returns nil when all pass.
func ValidateStep(r ApplicationRecord, step Step) *ValidationError {
	verr := &ValidationError{Step: step, Fields: map[Field]Result{}}
	for _, f := range FieldsFor(step) {
		value, _ := r.Get(f)
		if res := Validate(f, value); !res.Valid {
			verr.Fields[f] = res
		}
	}
	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

// ValidateRecord validates all four steps. The returned error's Step is the
// first step that failed.
func ValidateRecord(r ApplicationRecord) *ValidationError {
	var out *ValidationError
	for s := FirstStep; s <= LastStep; s++ {
		verr := ValidateStep(r, s)
		if verr == nil {
			continue
		}
		if out == nil {
			out = verr
			continue
		}
		for f, res := range verr.Fields {
			out.Fields[f] = res
		}
	}
	return out
}

// ParseAmount converts a validated rand amount such as "R 15,000.50" to a decimal.
func ParseAmount(value string) (decimal.Decimal, error) {
	cleaned := amountCleaner.Replace(strings.TrimSpace(value))
	if !amountRegex.MatchString(cleaned) {
		return decimal.Zero, fmt.Errorf("invalid amount %q", value)
	}
	return decimal.NewFromString(cleaned)
}

// ValidationError lists the invalid fields found when validating a step or record.
type ValidationError struct {
	Step   Step             `json:"step"`
	Fields map[Field]Result `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := e.FieldNames()
	parts := make([]string, len(names))
	for i, f := range names {
		parts[i] = string(f)
	}
	return fmt.Sprintf("validation failed on %s step: %s", e.Step, strings.Join(parts, ", "))
}

// Clone returns a copy that shares no state with e.
func (e *ValidationError) Clone() *ValidationError {
	out := &ValidationError{Step: e.Step, Fields: make(map[Field]Result, len(e.Fields))}
	for f, res := range e.Fields {
		out.Fields[f] = res
	}
	return out
}

// FieldNames returns the invalid fields in form order.
func (e *ValidationError) FieldNames() []Field {
	out := make([]Field, 0, len(e.Fields))
	for f := range e.Fields {
		out = append(out, f)
	}
	return sortFields(out)
}

// Messages maps each invalid field to its message.
func (e *ValidationError) Messages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for f, res := range e.Fields {
		out[string(f)] = res.Message
	}
	return out
}
