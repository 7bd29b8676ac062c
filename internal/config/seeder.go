package config

import (
	"time"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/core/domain"
	"quest-alumni/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg SeedConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg SeedConfig) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	zap.L().Info("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		zap.L().Warn("⚠️ Admin seeder skipped", zap.Error(err))
	}
	if err := SeedMasterData(s.db); err != nil {
		return err
	}

	zap.L().Info("✅ Database seeding completed")
	return nil
}

// seedAdminUser creates the bootstrap admin from SEED_ADMIN_EMAIL and
// SEED_ADMIN_PASSWORD when no admin exists yet
func (s *Seeder) seedAdminUser() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		zap.L().Warn("⚠️ No admin account exists and SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD are not set")
		return nil
	}
	if err := password.CheckStrength(s.cfg.AdminPassword); err != nil {
		return err
	}

	hashedPassword, err := password.Hash(s.cfg.AdminPassword)
	if err != nil {
		return err
	}

	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		admin := &models.User{
			Email:          s.cfg.AdminEmail,
			Password:       hashedPassword,
			Role:           domain.RoleAdmin,
			UserType:       domain.UserTypeStaff,
			Status:         domain.UserStatusApproved,
			IsLoanEligible: false,
			ApprovedAt:     &now,
		}
		if err := tx.Create(admin).Error; err != nil {
			return err
		}

		privacy := models.DefaultPrivacySettings()
		profile := &models.Profile{
			UserID:          admin.ID,
			FullName:        "Administrator",
			PrivacySettings: &privacy,
			ContactDetails:  &models.ContactDetails{},
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}

		zap.L().Info("✅ Admin user created", zap.String("email", admin.Email))
		return nil
	})
}
