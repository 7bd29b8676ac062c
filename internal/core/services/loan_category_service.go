package services

import (
	"context"
	"errors"
	"strings"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/adapters/persistence/repositories"
	"quest-alumni/internal/core/domain"
	"quest-alumni/internal/pkg/validator"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Audit actions written for loan categories
const (
	AuditCreateLoanCategory = "CREATE_LOAN_CATEGORY"
	AuditUpdateLoanCategory = "UPDATE_LOAN_CATEGORY"
)

const defaultGuarantorLimit = 3

// LoanCategoryService manages loan products
type LoanCategoryService struct {
	db    *gorm.DB
	audit *AuditService
}

// NewLoanCategoryService creates a new loan category service
func NewLoanCategoryService(db *gorm.DB, audit *AuditService) *LoanCategoryService {
	return &LoanCategoryService{db: db, audit: audit}
}

// CreateLoanCategoryInput represents a new loan product
type CreateLoanCategoryInput struct {
	Name                     string          `json:"name" validate:"required,max=100"`
	Description              string          `json:"description" validate:"max=2000"`
	MaxLoanAmount            decimal.Decimal `json:"maxLoanAmount"`
	MonthlyInterestRate      decimal.Decimal `json:"monthlyInterestRate"`
	RepaymentDurationMonths  int             `json:"repaymentDurationMonths" validate:"required,gt=0,lte=120"`
	GuarantorActiveLoanLimit *int            `json:"guarantorActiveLoanLimit" validate:"omitempty,gt=0"`
	IsEnabled                *bool           `json:"isEnabled"`
}

// UpdateLoanCategoryInput is a partial update; nil fields are unchanged
type UpdateLoanCategoryInput struct {
	Name                     *string          `json:"name" validate:"omitempty,max=100"`
	Description              *string          `json:"description" validate:"omitempty,max=2000"`
	MaxLoanAmount            *decimal.Decimal `json:"maxLoanAmount"`
	MonthlyInterestRate      *decimal.Decimal `json:"monthlyInterestRate"`
	RepaymentDurationMonths  *int             `json:"repaymentDurationMonths" validate:"omitempty,gt=0,lte=120"`
	GuarantorActiveLoanLimit *int             `json:"guarantorActiveLoanLimit" validate:"omitempty,gt=0"`
	IsEnabled                *bool            `json:"isEnabled"`
}

// List returns all categories for admins
func (s *LoanCategoryService) List(ctx context.Context) ([]*models.LoanCategory, error) {
	return repositories.NewLoanCategoryRepository(s.db).List(ctx, false)
}

// ListEnabled returns the categories members may apply for
func (s *LoanCategoryService) ListEnabled(ctx context.Context) ([]*models.LoanCategory, error) {
	return repositories.NewLoanCategoryRepository(s.db).List(ctx, true)
}

// Create creates a loan category
func (s *LoanCategoryService) Create(ctx context.Context, actor domain.Actor, input *CreateLoanCategoryInput) (*models.LoanCategory, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validator.Validate(input); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if err := validateCategoryMoney(input.MaxLoanAmount, input.MonthlyInterestRate); err != nil {
		return nil, err
	}

	createdBy := actor.UserID
	category := &models.LoanCategory{
		Name:                     input.Name,
		Description:              strings.TrimSpace(input.Description),
		MaxLoanAmount:            input.MaxLoanAmount.Round(2),
		MonthlyInterestRate:      input.MonthlyInterestRate.Round(3),
		RepaymentDurationMonths:  input.RepaymentDurationMonths,
		GuarantorActiveLoanLimit: defaultGuarantorLimit,
		IsEnabled:                true,
		CreatedByID:              &createdBy,
	}
	if input.GuarantorActiveLoanLimit != nil {
		category.GuarantorActiveLoanLimit = *input.GuarantorActiveLoanLimit
	}
	if input.IsEnabled != nil {
		category.IsEnabled = *input.IsEnabled
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repositories.NewLoanCategoryRepository(tx).Create(ctx, category); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, AuditEntry{
			UserID:     actor.UserID,
			Action:     AuditCreateLoanCategory,
			EntityType: EntityLoanCategory,
			EntityID:   category.ID,
			NewValues:  category,
		})
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("✅ Loan category created", zap.Uint("category_id", category.ID), zap.String("name", category.Name))
	return category, nil
}

// Update changes a loan category. Existing applications keep the figures
// computed at submission.
func (s *LoanCategoryService) Update(ctx context.Context, actor domain.Actor, id uint, input *UpdateLoanCategoryInput) (*models.LoanCategory, error) {
	if err := validator.Validate(input); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	var category *models.LoanCategory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := repositories.NewLoanCategoryRepository(tx)
		current, err := categories.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCategoryNotFound
			}
			return err
		}
		before := *current

		if input.Name != nil {
			current.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			current.Description = strings.TrimSpace(*input.Description)
		}
		if input.MaxLoanAmount != nil {
			current.MaxLoanAmount = input.MaxLoanAmount.Round(2)
		}
		if input.MonthlyInterestRate != nil {
			current.MonthlyInterestRate = input.MonthlyInterestRate.Round(3)
		}
		if input.RepaymentDurationMonths != nil {
			current.RepaymentDurationMonths = *input.RepaymentDurationMonths
		}
		if input.GuarantorActiveLoanLimit != nil {
			current.GuarantorActiveLoanLimit = *input.GuarantorActiveLoanLimit
		}
		if input.IsEnabled != nil {
			current.IsEnabled = *input.IsEnabled
		}
		if current.Name == "" {
			return domain.NewValidationError("name is required")
		}
		if err := validateCategoryMoney(current.MaxLoanAmount, current.MonthlyInterestRate); err != nil {
			return err
		}

		if err := categories.Update(ctx, current); err != nil {
			return err
		}
		category = current

		return s.audit.Record(ctx, tx, AuditEntry{
			UserID:     actor.UserID,
			Action:     AuditUpdateLoanCategory,
			EntityType: EntityLoanCategory,
			EntityID:   current.ID,
			OldValues:  &before,
			NewValues:  current,
		})
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Preview computes the loan figures for amount under an enabled category
func (s *LoanCategoryService) Preview(ctx context.Context, id uint, amount decimal.Decimal) (*LoanCalculation, error) {
	category, err := repositories.NewLoanCategoryRepository(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	if !category.IsEnabled {
		return nil, domain.ErrCategoryDisabled
	}
	if amount.GreaterThan(category.MaxLoanAmount) {
		return nil, domain.ErrLoanAmountExceedsMax
	}

	calc, err := CalculateLoan(amount, category.MonthlyInterestRate, category.RepaymentDurationMonths)
	if err != nil {
		return nil, err
	}
	return &calc, nil
}

func validateCategoryMoney(maxAmount, rate decimal.Decimal) error {
	if !maxAmount.IsPositive() {
		return domain.NewValidationError("maxLoanAmount must be greater than 0")
	}
	if rate.IsNegative() {
		return domain.NewValidationError("monthlyInterestRate must not be negative")
	}
	return nil
}
