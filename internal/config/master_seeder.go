package config

import (
	"errors"

	"quest-alumni/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedMasterData seeds the initial Quest Care loan products
func SeedMasterData(db *gorm.DB) error {
	if err := seedLoanCategories(db); err != nil {
		return err
	}

	zap.L().Info("✅ Master data seeded")
	return nil
}

func seedLoanCategories(db *gorm.DB) error {
	categories := []models.LoanCategory{
		{
			Name:                     "Education Support",
			Description:              "Short-term support for course fees and study material",
			MaxLoanAmount:            decimal.NewFromInt(50000),
			MonthlyInterestRate:      decimal.NewFromFloat(0.5),
			RepaymentDurationMonths:  12,
			GuarantorActiveLoanLimit: 3,
			IsEnabled:                true,
		},
		{
			Name:                     "Medical Emergency",
			Description:              "Emergency assistance for medical expenses",
			MaxLoanAmount:            decimal.NewFromInt(100000),
			MonthlyInterestRate:      decimal.NewFromInt(1),
			RepaymentDurationMonths:  10,
			GuarantorActiveLoanLimit: 3,
			IsEnabled:                true,
		},
	}

	for _, category := range categories {
		var existing models.LoanCategory
		err := db.Where("name = ?", category.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&category).Error; err != nil {
			return err
		}
		zap.L().Info("   Created loan category", zap.String("name", category.Name))
	}
	return nil
}
