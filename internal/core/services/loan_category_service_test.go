package services

import (
	"context"
	"testing"

	"quest-alumni/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanCategoryService_CreateAndUpdate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLoanCategoryService(db, NewAuditService(db))
	ctx := context.Background()
	admin := seedAdmin(t, db)

	created, err := svc.Create(ctx, admin.Actor(), &CreateLoanCategoryInput{
		Name:                    "  Medical ",
		MaxLoanAmount:           decimal.RequireFromString("25000.456"),
		MonthlyInterestRate:     decimal.RequireFromString("0.75"),
		RepaymentDurationMonths: 6,
	})
	require.NoError(t, err)
	assert.Equal(t, "Medical", created.Name)
	assert.Equal(t, "25000.46", created.MaxLoanAmount.StringFixed(2))
	assert.Equal(t, defaultGuarantorLimit, created.GuarantorActiveLoanLimit)
	assert.True(t, created.IsEnabled)

	updated, err := svc.Update(ctx, admin.Actor(), created.ID, &UpdateLoanCategoryInput{
		GuarantorActiveLoanLimit: intPtr(1),
		IsEnabled:                boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.GuarantorActiveLoanLimit)
	assert.False(t, updated.IsEnabled)

	enabled, err := svc.ListEnabled(ctx)
	require.NoError(t, err)
	assert.Empty(t, enabled)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.Equal(t, []string{AuditCreateLoanCategory, AuditUpdateLoanCategory},
		auditActions(t, db, EntityLoanCategory, created.ID))
}

func TestLoanCategoryService_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLoanCategoryService(db, NewAuditService(db))
	ctx := context.Background()
	admin := seedAdmin(t, db)

	_, err := svc.Create(ctx, admin.Actor(), &CreateLoanCategoryInput{
		Name:                    "Zero",
		MaxLoanAmount:           decimal.Zero,
		MonthlyInterestRate:     decimal.NewFromInt(1),
		RepaymentDurationMonths: 6,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(ctx, admin.Actor(), &CreateLoanCategoryInput{
		Name:                    "Negative",
		MaxLoanAmount:           decimal.NewFromInt(1000),
		MonthlyInterestRate:     decimal.NewFromInt(-1),
		RepaymentDurationMonths: 6,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(ctx, admin.Actor(), &CreateLoanCategoryInput{
		Name:                    "No term",
		MaxLoanAmount:           decimal.NewFromInt(1000),
		MonthlyInterestRate:     decimal.NewFromInt(1),
		RepaymentDurationMonths: 0,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	category := seedCategory(t, db, 3)
	_, err = svc.Update(ctx, admin.Actor(), category.ID, &UpdateLoanCategoryInput{Name: strPtr("   ")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Update(ctx, admin.Actor(), 9999, &UpdateLoanCategoryInput{IsEnabled: boolPtr(true)})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestLoanCategoryService_Preview(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLoanCategoryService(db, NewAuditService(db))
	ctx := context.Background()
	admin := seedAdmin(t, db)
	category := seedCategory(t, db, 3)

	calc, err := svc.Preview(ctx, category.ID, decimal.NewFromInt(12000))
	require.NoError(t, err)
	assert.Equal(t, "120.00", calc.MonthlyInterest.StringFixed(2))
	assert.Equal(t, "13440.00", calc.TotalPayable.StringFixed(2))
	assert.Equal(t, "1120.00", calc.EMIAmount.StringFixed(2))
	assert.Equal(t, 12, calc.RepaymentMonths)

	_, err = svc.Preview(ctx, category.ID, decimal.NewFromInt(50001))
	assert.ErrorIs(t, err, domain.ErrLoanAmountExceedsMax)

	_, err = svc.Preview(ctx, category.ID, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidLoanAmount)

	_, err = svc.Update(ctx, admin.Actor(), category.ID, &UpdateLoanCategoryInput{IsEnabled: boolPtr(false)})
	require.NoError(t, err)
	_, err = svc.Preview(ctx, category.ID, decimal.NewFromInt(1000))
	assert.ErrorIs(t, err, domain.ErrCategoryDisabled)

	_, err = svc.Preview(ctx, 9999, decimal.NewFromInt(1000))
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}
