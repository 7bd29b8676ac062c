package services

import (
	"context"
	"errors"
	"fmt"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/adapters/persistence/repositories"
	"quest-alumni/internal/core/domain"

	"gorm.io/gorm"
)

// GuarantorChecker enforces guarantor eligibility and the per-category cap
// on simultaneous active guarantees
type GuarantorChecker struct{}

// NewGuarantorChecker creates a new guarantor checker
func NewGuarantorChecker() *GuarantorChecker {
	return &GuarantorChecker{}
}

// ActiveCount counts applications other than excludeAppID that userID
// guarantees and whose status is an active loan status
func (g *GuarantorChecker) ActiveCount(ctx context.Context, db *gorm.DB, userID, excludeAppID uint) (int64, error) {
	return repositories.NewLoanApplicationRepository(db).CountActiveGuarantees(ctx, userID, excludeAppID)
}

// Check verifies that guarantorID may guarantee one more loan of category
func (g *GuarantorChecker) Check(ctx context.Context, db *gorm.DB, guarantorID uint, category *models.LoanCategory, excludeAppID uint) error {
	user, err := repositories.NewUserRepository(db).GetByID(ctx, guarantorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w (id %d)", domain.ErrGuarantorNotFound, guarantorID)
		}
		return err
	}
	if user.Status != domain.UserStatusApproved || !user.IsLoanEligible {
		return fmt.Errorf("%w (id %d)", domain.ErrGuarantorNotEligible, guarantorID)
	}

	count, err := g.ActiveCount(ctx, db, guarantorID, excludeAppID)
	if err != nil {
		return err
	}
	if count >= int64(category.GuarantorActiveLoanLimit) {
		return fmt.Errorf("%w (id %d, %d of %d)", domain.ErrGuarantorLimitReached,
			guarantorID, count, category.GuarantorActiveLoanLimit)
	}
	return nil
}

// CheckPair validates both guarantors of an application
func (g *GuarantorChecker) CheckPair(ctx context.Context, db *gorm.DB, applicantID, guarantor1ID, guarantor2ID uint, category *models.LoanCategory, excludeAppID uint) error {
	if guarantor1ID == 0 || guarantor2ID == 0 ||
		guarantor1ID == guarantor2ID || guarantor1ID == applicantID || guarantor2ID == applicantID {
		return domain.ErrGuarantorNotDistinct
	}
	if err := g.Check(ctx, db, guarantor1ID, category, excludeAppID); err != nil {
		return err
	}
	return g.Check(ctx, db, guarantor2ID, category, excludeAppID)
}
