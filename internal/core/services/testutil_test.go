package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/core/domain"
	"quest-alumni/internal/pkg/password"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	password.Cost = bcrypt.MinCost
}

// setupTestDB opens a migrated in-memory SQLite database. A single
// connection keeps every statement on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

// fixedClock returns a clock frozen at t
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type userSeed struct {
	name     string
	role     domain.Role
	userType domain.UserType
	status   domain.UserStatus
	eligible bool
}

func seedUser(t *testing.T, db *gorm.DB, seed userSeed) *models.User {
	t.Helper()

	if seed.userType == "" {
		seed.userType = domain.UserTypeAlumni
	}
	if seed.role == "" {
		seed.role = seed.userType.DefaultRole()
	}
	if seed.status == "" {
		seed.status = domain.UserStatusApproved
	}
	hash, err := password.Hash("secret123")
	require.NoError(t, err)

	privacy := models.DefaultPrivacySettings()
	user := &models.User{
		Email:          fmt.Sprintf("%s@quest.test", seed.name),
		Password:       hash,
		Role:           seed.role,
		UserType:       seed.userType,
		Status:         seed.status,
		IsLoanEligible: seed.eligible,
		Profile: &models.Profile{
			FullName:        seed.name,
			PrivacySettings: &privacy,
			ContactDetails:  &models.ContactDetails{},
		},
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedMember(t *testing.T, db *gorm.DB, name string) *models.User {
	return seedUser(t, db, userSeed{name: name, eligible: true})
}

func seedAdmin(t *testing.T, db *gorm.DB) *models.User {
	return seedUser(t, db, userSeed{name: "admin", role: domain.RoleAdmin, userType: domain.UserTypeStaff})
}

func seedManager(t *testing.T, db *gorm.DB, name string) *models.User {
	return seedUser(t, db, userSeed{name: name, role: domain.RoleLoanManager, userType: domain.UserTypeStaff})
}

func seedCategory(t *testing.T, db *gorm.DB, guarantorLimit int) *models.LoanCategory {
	t.Helper()

	category := &models.LoanCategory{
		Name:                     "Education",
		MaxLoanAmount:            decimal.NewFromInt(50000),
		MonthlyInterestRate:      decimal.NewFromInt(1),
		RepaymentDurationMonths:  12,
		GuarantorActiveLoanLimit: guarantorLimit,
		IsEnabled:                true,
	}
	require.NoError(t, db.Create(category).Error)
	return category
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }

func uintPtr(u uint) *uint { return &u }

func auditActions(t *testing.T, db *gorm.DB, entityType string, entityID uint) []string {
	t.Helper()

	logs, err := NewAuditService(db).History(context.Background(), entityType, entityID)
	require.NoError(t, err)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	return actions
}
