// internal/finance/application/record.go
package application

import "sort"

// Field names a single input of the finance application.
type Field string

const (
	FieldFirstName Field = "firstName"
	FieldLastName  Field = "lastName"
	FieldIDNumber  Field = "idNumber"
	FieldEmail     Field = "email"
	FieldPhone     Field = "phone"
	FieldAddress   Field = "address"

	FieldEmploymentStatus   Field = "employmentStatus"
	FieldEmployer           Field = "employer"
	FieldJobTitle           Field = "jobTitle"
	FieldMonthlyIncome      Field = "monthlyIncome"
	FieldWorkPhone          Field = "workPhone"
	FieldEmploymentDuration Field = "employmentDuration"

	FieldBankName        Field = "bankName"
	FieldAccountType     Field = "accountType"
	FieldCreditScore     Field = "creditScore"
	FieldExistingLoans   Field = "existingLoans"
	FieldMonthlyExpenses Field = "monthlyExpenses"

	FieldPreferredLoanTerm     Field = "preferredLoanTerm"
	FieldDepositAmount         Field = "depositAmount"
	FieldIntendedUse           Field = "intendedUse"
	FieldTradeInVehicle        Field = "tradeInVehicle"
	FieldAdditionalInformation Field = "additionalInformation"
)

// Step is a page of the application form, 1-based.
type Step int

const (
	StepPersonal Step = iota + 1
	StepEmployment
	StepFinancial
	StepLoan
)

// FirstStep and LastStep bound the form.
const (
	FirstStep = StepPersonal
	LastStep  = StepLoan
)

func (s Step) String() string {
	switch s {
	case StepPersonal:
		return "personal"
	case StepEmployment:
		return "employment"
	case StepFinancial:
		return "financial"
	case StepLoan:
		return "loan"
	default:
		return "unknown"
	}
}

type EmploymentStatus string

const (
	EmploymentEmployed     EmploymentStatus = "employed"
	EmploymentSelfEmployed EmploymentStatus = "self-employed"
	EmploymentPensioner    EmploymentStatus = "pensioner"
	EmploymentStudent      EmploymentStatus = "student"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
)

func (s EmploymentStatus) Valid() bool {
	switch s {
	case EmploymentEmployed, EmploymentSelfEmployed, EmploymentPensioner, EmploymentStudent, EmploymentUnemployed:
		return true
	}
	return false
}

type AccountType string

const (
	AccountCurrent AccountType = "current"
	AccountSavings AccountType = "savings"
)

func (a AccountType) Valid() bool {
	return a == AccountCurrent || a == AccountSavings
}

// LoanTerm is the repayment period in months, kept in its submitted text form.
type LoanTerm string

const (
	LoanTerm12 LoanTerm = "12"
	LoanTerm24 LoanTerm = "24"
	LoanTerm36 LoanTerm = "36"
	LoanTerm48 LoanTerm = "48"
	LoanTerm60 LoanTerm = "60"
	LoanTerm72 LoanTerm = "72"
)

var loanTermMonths = map[LoanTerm]int{
	LoanTerm12: 12, LoanTerm24: 24, LoanTerm36: 36,
	LoanTerm48: 48, LoanTerm60: 60, LoanTerm72: 72,
}

func (t LoanTerm) Valid() bool {
	_, ok := loanTermMonths[t]
	return ok
}

// Months returns the term length, or 0 for an invalid term.
func (t LoanTerm) Months() int {
	return loanTermMonths[t]
}

type IntendedUse string

const (
	UsePersonal IntendedUse = "personal"
	UseBusiness IntendedUse = "business"
	UseFamily   IntendedUse = "family"
)

func (u IntendedUse) Valid() bool {
	return u == UsePersonal || u == UseBusiness || u == UseFamily
}

// ApplicationRecord is the input accumulated across the four form steps.
// Values are stored exactly as entered; enum fields may hold invalid values
// until the step containing them is validated.
type ApplicationRecord struct {
	FirstName string `json:"firstName" yaml:"firstName"`
	LastName  string `json:"lastName" yaml:"lastName"`
	IDNumber  string `json:"idNumber" yaml:"idNumber"`
	Email     string `json:"email" yaml:"email"`
	Phone     string `json:"phone" yaml:"phone"`
	Address   string `json:"address" yaml:"address"`

	EmploymentStatus   EmploymentStatus `json:"employmentStatus" yaml:"employmentStatus"`
	Employer           string           `json:"employer,omitempty" yaml:"employer,omitempty"`
	JobTitle           string           `json:"jobTitle,omitempty" yaml:"jobTitle,omitempty"`
	MonthlyIncome      string           `json:"monthlyIncome" yaml:"monthlyIncome"`
	WorkPhone          string           `json:"workPhone,omitempty" yaml:"workPhone,omitempty"`
	EmploymentDuration string           `json:"employmentDuration,omitempty" yaml:"employmentDuration,omitempty"`

	BankName        string      `json:"bankName" yaml:"bankName"`
	AccountType     AccountType `json:"accountType" yaml:"accountType"`
	CreditScore     string      `json:"creditScore,omitempty" yaml:"creditScore,omitempty"`
	ExistingLoans   string      `json:"existingLoans,omitempty" yaml:"existingLoans,omitempty"`
	MonthlyExpenses string      `json:"monthlyExpenses" yaml:"monthlyExpenses"`

	PreferredLoanTerm     LoanTerm    `json:"preferredLoanTerm" yaml:"preferredLoanTerm"`
	DepositAmount         string      `json:"depositAmount" yaml:"depositAmount"`
	IntendedUse           IntendedUse `json:"intendedUse" yaml:"intendedUse"`
	TradeInVehicle        string      `json:"tradeInVehicle,omitempty" yaml:"tradeInVehicle,omitempty"`
	AdditionalInformation string      `json:"additionalInformation,omitempty" yaml:"additionalInformation,omitempty"`
}

// NewRecord returns a record with the form's default selections.
func NewRecord() ApplicationRecord {
	return ApplicationRecord{
		EmploymentStatus:  EmploymentEmployed,
		AccountType:       AccountCurrent,
		PreferredLoanTerm: LoanTerm60,
		IntendedUse:       UsePersonal,
		DepositAmount:     "0",
	}
}

type fieldSpec struct {
	step     Step
	required bool
	slot     func(r *ApplicationRecord) *string
}

var fields = map[Field]fieldSpec{
	FieldFirstName: {StepPersonal, true, func(r *ApplicationRecord) *string { return &r.FirstName }},
	FieldLastName:  {StepPersonal, true, func(r *ApplicationRecord) *string { return &r.LastName }},
	FieldIDNumber:  {StepPersonal, true, func(r *ApplicationRecord) *string { return &r.IDNumber }},
	FieldEmail:     {StepPersonal, true, func(r *ApplicationRecord) *string { return &r.Email }},
	FieldPhone:     {StepPersonal, true, func(r *ApplicationRecord) *string { return &r.Phone }},
	FieldAddress:   {StepPersonal, true, func(r *ApplicationRecord) *string { return &r.Address }},

	FieldEmploymentStatus:   {StepEmployment, true, func(r *ApplicationRecord) *string { return (*string)(&r.EmploymentStatus) }},
	FieldEmployer:           {StepEmployment, false, func(r *ApplicationRecord) *string { return &r.Employer }},
	FieldJobTitle:           {StepEmployment, false, func(r *ApplicationRecord) *string { return &r.JobTitle }},
	FieldMonthlyIncome:      {StepEmployment, true, func(r *ApplicationRecord) *string { return &r.MonthlyIncome }},
	FieldWorkPhone:          {StepEmployment, false, func(r *ApplicationRecord) *string { return &r.WorkPhone }},
	FieldEmploymentDuration: {StepEmployment, false, func(r *ApplicationRecord) *string { return &r.EmploymentDuration }},

	FieldBankName:        {StepFinancial, true, func(r *ApplicationRecord) *string { return &r.BankName }},
	FieldAccountType:     {StepFinancial, true, func(r *ApplicationRecord) *string { return (*string)(&r.AccountType) }},
	FieldCreditScore:     {StepFinancial, false, func(r *ApplicationRecord) *string { return &r.CreditScore }},
	FieldExistingLoans:   {StepFinancial, false, func(r *ApplicationRecord) *string { return &r.ExistingLoans }},
	FieldMonthlyExpenses: {StepFinancial, true, func(r *ApplicationRecord) *string { return &r.MonthlyExpenses }},

	FieldPreferredLoanTerm:     {StepLoan, true, func(r *ApplicationRecord) *string { return (*string)(&r.PreferredLoanTerm) }},
	FieldDepositAmount:         {StepLoan, true, func(r *ApplicationRecord) *string { return &r.DepositAmount }},
	FieldIntendedUse:           {StepLoan, true, func(r *ApplicationRecord) *string { return (*string)(&r.IntendedUse) }},
	FieldTradeInVehicle:        {StepLoan, false, func(r *ApplicationRecord) *string { return &r.TradeInVehicle }},
	FieldAdditionalInformation: {StepLoan, false, func(r *ApplicationRecord) *string { return &r.AdditionalInformation }},
}

// Known reports whether f is a field of the application.
func (f Field) Known() bool {
	_, ok := fields[f]
	return ok
}

// Required reports whether f must be filled in before its step can be left.
func (f Field) Required() bool {
	return fields[f].required
}

// Step returns the form step f belongs to, or 0 for unknown fields.
func (f Field) Step() Step {
	return fields[f].step
}

// FieldsFor lists the fields of a step in form order.
func FieldsFor(step Step) []Field {
	return stepFields[step]
}

// AllFields lists every field in form order.
func AllFields() []Field {
	out := make([]Field, 0, len(fields))
	for s := FirstStep; s <= LastStep; s++ {
		out = append(out, stepFields[s]...)
	}
	return out
}

var stepFields = map[Step][]Field{
	StepPersonal:   {FieldFirstName, FieldLastName, FieldIDNumber, FieldEmail, FieldPhone, FieldAddress},
	StepEmployment: {FieldEmploymentStatus, FieldEmployer, FieldJobTitle, FieldMonthlyIncome, FieldWorkPhone, FieldEmploymentDuration},
	StepFinancial:  {FieldBankName, FieldAccountType, FieldCreditScore, FieldExistingLoans, FieldMonthlyExpenses},
	StepLoan:       {FieldPreferredLoanTerm, FieldDepositAmount, FieldIntendedUse, FieldTradeInVehicle, FieldAdditionalInformation},
}

// Get returns the raw value of f. ok is false for unknown fields.
func (r *ApplicationRecord) Get(f Field) (value string, ok bool) {
	def, ok := fields[f]
	if !ok {
		return "", false
	}
	return *def.slot(r), true
}

// Set stores value for f unchanged. It returns false for unknown fields.
func (r *ApplicationRecord) Set(f Field, value string) bool {
	def, ok := fields[f]
	if !ok {
		return false
	}
	*def.slot(r) = value
	return true
}

// Values returns every field keyed by name.
func (r *ApplicationRecord) Values() map[Field]string {
	out := make(map[Field]string, len(fields))
	for f, def := range fields {
		out[f] = *def.slot(r)
	}
	return out
}

var fieldOrder = func() map[Field]int {
	order := make(map[Field]int, len(fields))
	for i, f := range AllFields() {
		order[f] = i
	}
	return order
}()

func sortFields(in []Field) []Field {
	sort.Slice(in, func(i, j int) bool {
		return fieldOrder[in[i]] < fieldOrder[in[j]]
	})
	return in
}
