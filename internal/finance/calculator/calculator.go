// Package calculator prices vehicle finance as a fixed-rate amortised loan.
package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	MinTermMonths = 12
	MaxTermMonths = 84
)

var maxAnnualRate = decimal.NewFromInt(25)

// Quote describes a loan request. AnnualRate is a percentage, e.g. 11.75.
type Quote struct {
	Price      decimal.Decimal `json:"price" yaml:"price"`
	Deposit    decimal.Decimal `json:"deposit" yaml:"deposit"`
	AnnualRate decimal.Decimal `json:"annualRate" yaml:"annualRate"`
	TermMonths int             `json:"termMonths" yaml:"termMonths"`
}

// Result is a priced quote. Amounts are rounded to cents.
type Result struct {
	Principal         decimal.Decimal `json:"principal"`
	MonthlyInstalment decimal.Decimal `json:"monthlyInstalment"`
	TotalRepayable    decimal.Decimal `json:"totalRepayable"`
	TotalInterest     decimal.Decimal `json:"totalInterest"`
	TermMonths        int             `json:"termMonths"`
	AnnualRatePercent decimal.Decimal `json:"annualRatePercent"`
}

// QuoteError lists every invalid input of a Quote.
type QuoteError struct {
	Problems []string
}

func (e *QuoteError) Error() string {
	return fmt.Sprintf("invalid quote: %v", e.Problems)
}

func (q Quote) Validate() error {
	var problems []string
	if !q.Price.IsPositive() {
		problems = append(problems, "price must be greater than zero")
	}
	if q.Deposit.IsNegative() {
		problems = append(problems, "deposit cannot be negative")
	} else if q.Price.IsPositive() && q.Deposit.GreaterThanOrEqual(q.Price) {
		problems = append(problems, "deposit must be less than the price")
	}
	if q.TermMonths < MinTermMonths || q.TermMonths > MaxTermMonths {
		problems = append(problems, fmt.Sprintf("term must be between %d and %d months", MinTermMonths, MaxTermMonths))
	}
	if q.AnnualRate.IsNegative() || q.AnnualRate.GreaterThan(maxAnnualRate) {
		problems = append(problems, "annual rate must be between 0% and 25%")
	}
	if len(problems) > 0 {
		return &QuoteError{Problems: problems}
	}
	return nil
}

// Calculate prices q using P·r(1+r)^n / ((1+r)^n − 1) with r the monthly rate.
func Calculate(q Quote) (Result, error) {
	if err := q.Validate(); err != nil {
		return Result{}, err
	}

	principal := q.Price.Sub(q.Deposit)
	n := int64(q.TermMonths)

	var instalment decimal.Decimal
	if q.AnnualRate.IsZero() {
		instalment = principal.DivRound(decimal.NewFromInt(n), 2)
	} else {
		r := q.AnnualRate.Div(decimal.NewFromInt(1200))
		growth := decimal.NewFromInt(1).Add(r).Pow(decimal.NewFromInt(n))
		instalment = principal.Mul(r).Mul(growth).
			Div(growth.Sub(decimal.NewFromInt(1))).
			Round(2)
	}

	total := instalment.Mul(decimal.NewFromInt(n))
	return Result{
		Principal:         principal.Round(2),
		MonthlyInstalment: instalment,
		TotalRepayable:    total,
		TotalInterest:     total.Sub(principal).Round(2),
		TermMonths:        q.TermMonths,
		AnnualRatePercent: q.AnnualRate,
	}, nil
}

// InstalmentRatio is the share of disposable income the instalment consumes.
// It returns false when disposable income is not positive.
func InstalmentRatio(instalment, income, expenses decimal.Decimal) (decimal.Decimal, bool) {
	disposable := income.Sub(expenses)
	if !disposable.IsPositive() {
		return decimal.Zero, false
	}
	return instalment.DivRound(disposable, 4), true
}
