package services

import (
	"testing"
	"time"

	"quest-alumni/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateLoan(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		term      int
		interest  string
		total     string
		emi       string
	}{
		{"round numbers", "10000", "10", 10, "1000.00", "20000.00", "2000.00"},
		{"one percent over a year", "50000", "1", 12, "500.00", "56000.00", "4666.67"},
		{"zero rate", "1200", "0", 12, "0.00", "1200.00", "100.00"},
		{"fractional rate", "12500", "1.25", 7, "156.25", "13593.75", "1941.96"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, err := CalculateLoan(decimal.RequireFromString(tt.principal), decimal.RequireFromString(tt.rate), tt.term)
			require.NoError(t, err)

			assert.Equal(t, tt.interest, calc.MonthlyInterest.StringFixed(2))
			assert.Equal(t, tt.total, calc.TotalPayable.StringFixed(2))
			assert.Equal(t, tt.emi, calc.EMIAmount.StringFixed(2))
			assert.Equal(t, tt.term, calc.RepaymentMonths)

			drift := calc.EMIAmount.Mul(decimal.NewFromInt(int64(tt.term))).Sub(calc.TotalPayable).Abs()
			assert.True(t, drift.LessThanOrEqual(decimal.NewFromFloat(0.01).Mul(decimal.NewFromInt(int64(tt.term)))),
				"emi x term drifted %s from total", drift)
		})
	}
}

func TestCalculateLoan_InvalidInput(t *testing.T) {
	_, err := CalculateLoan(decimal.NewFromInt(1000), decimal.NewFromInt(1), 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = CalculateLoan(decimal.Zero, decimal.NewFromInt(1), 12)
	assert.ErrorIs(t, err, domain.ErrInvalidLoanAmount)

	_, err = CalculateLoan(decimal.NewFromInt(1000), decimal.NewFromInt(-1), 12)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = CalculateLoan(decimal.RequireFromString("0.001"), decimal.NewFromInt(1), 12)
	assert.ErrorIs(t, err, domain.ErrLoanAmountPrecision)

	calc, err := CalculateLoan(decimal.RequireFromString("1200.000"), decimal.Zero, 12)
	require.NoError(t, err)
	assert.Equal(t, "1200", calc.LoanAmount.String())
}

func TestBuildRepaymentSchedule(t *testing.T) {
	start := time.Date(2025, time.January, 31, 10, 0, 0, 0, time.UTC)
	rows := BuildRepaymentSchedule(7, decimal.RequireFromString("250.50"), 4, start)
	require.Len(t, rows, 4)

	expected := []time.Time{
		time.Date(2025, time.February, 28, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 31, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.April, 30, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.May, 31, 10, 0, 0, 0, time.UTC),
	}
	for i, row := range rows {
		assert.Equal(t, uint(7), row.LoanApplicationID)
		assert.Equal(t, i+1, row.RepaymentMonth)
		assert.True(t, expected[i].Equal(row.DueDate), "month %d due %s", i+1, row.DueDate)
		assert.Equal(t, "250.50", row.DueAmount.StringFixed(2))
		assert.True(t, row.PaidAmount.IsZero())
		assert.Equal(t, domain.PaymentStatusPending, row.PaymentStatus)
	}
}

func TestAddMonthsClamped_LeapYear(t *testing.T) {
	start := time.Date(2024, time.January, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), addMonthsClamped(start, 1))
	assert.Equal(t, time.Date(2025, time.January, 30, 0, 0, 0, 0, time.UTC), addMonthsClamped(start, 12))
}
