package services

import (
	"quest-alumni/internal/core/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// isWholeCents reports whether d is representable in 2 decimal places
func isWholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// LoanCalculation is the flat-interest breakdown of a loan
type LoanCalculation struct {
	LoanAmount      decimal.Decimal `json:"loanAmount"`
	MonthlyInterest decimal.Decimal `json:"monthlyInterest"`
	TotalPayable    decimal.Decimal `json:"totalPayable"`
	EMIAmount       decimal.Decimal `json:"emiAmount"`
	RepaymentMonths int             `json:"repaymentMonths"`
}

// CalculateLoan computes flat monthly interest on the full principal:
//
//	monthlyInterest = principal * rate / 100
//	totalPayable    = principal + monthlyInterest * term
//	emi             = totalPayable / term
//
// Arithmetic is exact; each output is rounded once to 2 places, half away from zero.
func CalculateLoan(principal, monthlyRatePercent decimal.Decimal, termMonths int) (LoanCalculation, error) {
	if termMonths <= 0 {
		return LoanCalculation{}, domain.ErrInvalidLoanTerm
	}
	if !isWholeCents(principal) {
		return LoanCalculation{}, domain.ErrLoanAmountPrecision
	}
	principal = principal.Round(2)
	if !principal.IsPositive() {
		return LoanCalculation{}, domain.ErrInvalidLoanAmount
	}
	if monthlyRatePercent.IsNegative() {
		return LoanCalculation{}, domain.NewValidationError("interest rate must not be negative")
	}

	term := decimal.NewFromInt(int64(termMonths))
	monthlyInterest := principal.Mul(monthlyRatePercent).Div(hundred)
	totalPayable := principal.Add(monthlyInterest.Mul(term))
	emi := totalPayable.DivRound(term, 2)

	return LoanCalculation{
		LoanAmount:      principal,
		MonthlyInterest: monthlyInterest.Round(2),
		TotalPayable:    totalPayable.Round(2),
		EMIAmount:       emi,
		RepaymentMonths: termMonths,
	}, nil
}
