package services

import (
	"context"
	"testing"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/adapters/persistence/repositories"
	"quest-alumni/internal/config"
	"quest-alumni/internal/core/domain"
	"quest-alumni/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:           "access-secret-for-tests",
			RefreshSecret:    "refresh-secret-for-tests",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
}

func newAuthService(db *gorm.DB) *AuthService {
	return NewAuthService(repositories.NewUserRepository(db), repositories.NewRefreshTokenRepository(db), testConfig())
}

func TestAuthService_RegisterCreatesPendingAccount(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterInput{
		Email:    "  Asha@Quest.TEST ",
		Password: "longpass1",
		FullName: " Asha Rao ",
		UserType: domain.UserTypeNonAlumni,
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@quest.test", resp.Email)
	assert.Equal(t, domain.UserStatusPending, resp.Status)
	assert.Equal(t, domain.RoleNonAlumniMember, resp.Role)
	assert.False(t, resp.IsLoanEligible)
	assert.Equal(t, "Asha Rao", resp.FullName)

	var privacy models.PrivacySettings
	require.NoError(t, db.Joins("JOIN profiles ON profiles.id = privacy_settings.profile_id").
		Where("profiles.user_id = ?", resp.ID).First(&privacy).Error)
	assert.True(t, privacy.ContactDetailsVisible)
	assert.False(t, privacy.FamilyDetailsVisible)

	_, err = svc.Login(ctx, &LoginInput{Email: "asha@quest.test", Password: "longpass1"})
	assert.ErrorIs(t, err, domain.ErrAccountPending)

	_, err = svc.Register(ctx, &RegisterInput{
		Email:    "asha@quest.test",
		Password: "longpass1",
		FullName: "Someone Else",
		UserType: domain.UserTypeAlumni,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := newAuthService(setupTestDB(t))
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{Email: "a@quest.test", Password: "onlyletters", FullName: "Al", UserType: domain.UserTypeAlumni})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Register(ctx, &RegisterInput{Email: "a@quest.test", Password: "longpass1", FullName: "Al", UserType: "GUEST"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Register(ctx, &RegisterInput{Email: "not-an-email", Password: "longpass1", FullName: "Al", UserType: domain.UserTypeAlumni})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthService_LoginRefreshLogout(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()
	user := seedMember(t, db, "member")

	_, err := svc.Login(ctx, &LoginInput{Email: user.Email, Password: "wrongpass1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginInput{Email: "nobody@quest.test", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	session, err := svc.Login(ctx, &LoginInput{Email: user.Email, Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)
	assert.NotEmpty(t, session.AccessToken)

	claims, err := jwt.ValidateAccessToken(session.AccessToken, testConfig().JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	rotated, err := svc.RefreshToken(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	require.NoError(t, svc.Logout(ctx, rotated.RefreshToken))
	_, err = svc.RefreshToken(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.RefreshToken(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestAuthService_ResolveActorReadsLiveState(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()
	user := seedMember(t, db, "member")

	session, err := svc.Login(ctx, &LoginInput{Email: user.Email, Password: "secret123"})
	require.NoError(t, err)

	resolved, err := svc.ResolveActor(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.True(t, resolved.Actor().IsLoanEligible)

	require.NoError(t, db.Model(user).Updates(map[string]interface{}{
		"is_loan_eligible": false,
		"role":             domain.RoleNonAlumniMember,
	}).Error)
	resolved, err = svc.ResolveActor(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.False(t, resolved.Actor().IsLoanEligible)
	assert.True(t, resolved.Actor().IsNonAlumni())

	require.NoError(t, db.Model(user).Update("status", domain.UserStatusDisabled).Error)
	_, err = svc.ResolveActor(ctx, session.AccessToken)
	assert.ErrorIs(t, err, domain.ErrAccountDisabled)

	_, err = svc.ResolveActor(ctx, "not-a-token")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestAuthService_RefreshReplayRevokesAllSessions(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()
	user := seedMember(t, db, "member")

	session, err := svc.Login(ctx, &LoginInput{Email: user.Email, Password: "secret123"})
	require.NoError(t, err)
	other, err := svc.Login(ctx, &LoginInput{Email: user.Email, Password: "secret123"})
	require.NoError(t, err)
	rotated, err := svc.RefreshToken(ctx, session.RefreshToken)
	require.NoError(t, err)

	_, err = svc.RefreshToken(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)

	for _, token := range []string{rotated.RefreshToken, other.RefreshToken} {
		_, err := svc.RefreshToken(ctx, token)
		assert.ErrorIs(t, err, domain.ErrTokenRevoked)
	}
}

func TestAuthService_RefreshRevokesSessionsOfDisabledUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()
	user := seedMember(t, db, "member")

	session, err := svc.Login(ctx, &LoginInput{Email: user.Email, Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, db.Model(user).Update("status", domain.UserStatusRejected).Error)
	_, err = svc.RefreshToken(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrAccountRejected)

	var active int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Where("user_id = ? AND revoked_at IS NULL", user.ID).Count(&active).Error)
	assert.Zero(t, active)
}

func TestAuthService_LogoutAll(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()
	user := seedMember(t, db, "member")

	first, err := svc.Login(ctx, &LoginInput{Email: user.Email, Password: "secret123"})
	require.NoError(t, err)
	second, err := svc.Login(ctx, &LoginInput{Email: user.Email, Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(ctx, user.ID))

	for _, token := range []string{first.RefreshToken, second.RefreshToken} {
		_, err := svc.RefreshToken(ctx, token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	}
}
