package services

import (
	"context"
	"testing"
	"time"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/adapters/persistence/repositories"
	"quest-alumni/internal/core/domain"
	"quest-alumni/internal/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_ApprovalIssuesAlumniID(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, NewAuditService(db))
	svc.now = fixedClock(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()
	admin := seedAdmin(t, db)

	existing := seedUser(t, db, userSeed{name: "existing"})
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", existing.ID).
		Updates(map[string]interface{}{"batch_year": 2015, "alumni_id": "QF20150001"}).Error)

	pending := seedUser(t, db, userSeed{name: "pending", status: domain.UserStatusPending})
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", pending.ID).Update("batch_year", 2015).Error)

	approved := domain.UserStatusApproved
	resp, err := svc.UpdateUser(ctx, admin.Actor(), pending.ID, &UpdateUserInput{
		Status:         &approved,
		IsLoanEligible: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusApproved, resp.Status)
	assert.True(t, resp.IsLoanEligible)
	require.NotNil(t, resp.AlumniID)
	assert.Equal(t, "QF20150002", *resp.AlumniID)
	require.NotNil(t, resp.ApprovedAt)

	assert.Equal(t, []string{AuditUpdateUser}, auditActions(t, db, EntityUser, pending.ID))
}

func TestUserService_StaffApprovalHasNoAlumniID(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, NewAuditService(db))
	admin := seedAdmin(t, db)
	staff := seedUser(t, db, userSeed{name: "staff", userType: domain.UserTypeStaff, status: domain.UserStatusPending})
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", staff.ID).Update("batch_year", 2010).Error)

	approved := domain.UserStatusApproved
	resp, err := svc.UpdateUser(context.Background(), admin.Actor(), staff.ID, &UpdateUserInput{Status: &approved})
	require.NoError(t, err)
	assert.Nil(t, resp.AlumniID)
}

func TestUserService_DisablingRevokesSessions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, NewAuditService(db))
	ctx := context.Background()
	admin := seedAdmin(t, db)
	member := seedMember(t, db, "member")

	tokens := repositories.NewRefreshTokenRepository(db)
	require.NoError(t, tokens.Create(ctx, &models.RefreshToken{UserID: member.ID, TokenHash: "h1", ExpiresAt: time.Now().Add(time.Hour)}))

	disabled := domain.UserStatusDisabled
	_, err := svc.UpdateUser(ctx, admin.Actor(), member.ID, &UpdateUserInput{Status: &disabled})
	require.NoError(t, err)

	stored, err := tokens.GetByTokenHash(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, stored.IsRevoked())
}

func TestUserService_UpdateUserGuards(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, NewAuditService(db))
	ctx := context.Background()
	admin := seedAdmin(t, db)

	role := domain.RoleAlumniMember
	_, err := svc.UpdateUser(ctx, admin.Actor(), admin.ID, &UpdateUserInput{Role: &role})
	assert.ErrorIs(t, err, domain.ErrCannotChangeSelf)

	bogus := domain.Role("OWNER")
	_, err = svc.UpdateUser(ctx, admin.Actor(), admin.ID+1, &UpdateUserInput{Role: &bogus})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	_, err = svc.UpdateUser(ctx, admin.Actor(), 9999, &UpdateUserInput{IsLoanEligible: boolPtr(true)})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_CreateUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, NewAuditService(db))
	ctx := context.Background()
	admin := seedAdmin(t, db)

	resp, err := svc.CreateUser(ctx, admin.Actor(), &CreateUserInput{
		Email:    "Manager@Quest.test",
		Password: "managerpass1",
		FullName: "Meera Nair",
		UserType: domain.UserTypeStaff,
		Role:     domain.RoleLoanManager,
	})
	require.NoError(t, err)
	assert.Equal(t, "manager@quest.test", resp.Email)
	assert.Equal(t, domain.RoleLoanManager, resp.Role)
	assert.Equal(t, domain.UserStatusApproved, resp.Status)
	assert.Equal(t, []string{AuditCreateUser}, auditActions(t, db, EntityUser, resp.ID))

	_, err = svc.CreateUser(ctx, admin.Actor(), &CreateUserInput{
		Email:    "manager@quest.test",
		Password: "managerpass1",
		FullName: "Duplicate",
		UserType: domain.UserTypeStaff,
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	users, total, err := svc.ListUsers(ctx, repositories.UserFilter{Role: domain.RoleLoanManager}, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Meera Nair", users[0].FullName)
}

func TestFormatAlumniID(t *testing.T) {
	assert.Equal(t, "QF20150007", FormatAlumniID(2015, 7))
	assert.Equal(t, "QF199912345", FormatAlumniID(1999, 12345))
}
