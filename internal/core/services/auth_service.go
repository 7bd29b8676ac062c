package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/adapters/persistence/repositories"
	"quest-alumni/internal/config"
	"quest-alumni/internal/core/domain"
	"quest-alumni/internal/pkg/jwt"
	"quest-alumni/internal/pkg/metrics"
	"quest-alumni/internal/pkg/password"
	"quest-alumni/internal/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService handles registration and session tokens
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
	now              func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
		now:              time.Now,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8"`
	FullName string          `json:"fullName" validate:"required,min=2,max=150"`
	UserType domain.UserType `json:"userType" validate:"required,oneof=ALUMNI STAFF NON_ALUMNI"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
}

// Register creates a PENDING account with its profile and default privacy
// settings. No session is issued until an admin approves the account.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*models.UserResponse, error) {
	input.Email = normalizeEmail(input.Email)
	input.FullName = strings.TrimSpace(input.FullName)
	if err := validator.Validate(input); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if err := password.CheckStrength(input.Password); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailAlreadyExists
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	privacy := models.DefaultPrivacySettings()
	user := &models.User{
		Email:    input.Email,
		Password: hashedPassword,
		Role:     input.UserType.DefaultRole(),
		UserType: input.UserType,
		Status:   domain.UserStatusPending,
		Profile: &models.Profile{
			FullName:        input.FullName,
			PrivacySettings: &privacy,
			ContactDetails:  &models.ContactDetails{},
		},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	zap.L().Info("✅ User registered, awaiting approval",
		zap.Uint("user_id", user.ID),
		zap.String("user_type", string(user.UserType)),
	)
	return user.ToResponse(), nil
}

// Login authenticates an APPROVED user
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	resp, err := s.login(ctx, input)
	metrics.LoginAttemptsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	return resp, err
}

func (s *AuthService) login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validator.Validate(input); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}
	if err := StatusError(user.Status); err != nil {
		return nil, err
	}

	resp, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	zap.L().Info("✅ User logged in", zap.Uint("user_id", user.ID))
	return resp, nil
}

// RefreshToken rotates a refresh token and issues a new pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	if storedToken.IsRevoked() {
		// A rotated token came back: end every session of that user
		if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, storedToken.UserID, s.now()); err != nil {
			return nil, err
		}
		zap.L().Warn("⚠️ Refresh token replayed, sessions revoked", zap.Uint("user_id", storedToken.UserID))
		return nil, domain.ErrTokenRevoked
	}
	if s.now().After(storedToken.ExpiresAt) {
		return nil, domain.ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	if err := StatusError(user.Status); err != nil {
		_ = s.refreshTokenRepo.RevokeAllByUserID(ctx, user.ID, s.now())
		return nil, err
	}

	rotated, err := s.refreshTokenRepo.RevokeIfActive(ctx, storedToken.ID, s.now())
	if err != nil {
		return nil, err
	}
	if !rotated {
		return nil, domain.ErrTokenRevoked
	}

	return s.issueSession(ctx, user)
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken), s.now()); err != nil {
		return err
	}
	zap.L().Info("✅ User logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID, s.now()); err != nil {
		return err
	}
	zap.L().Info("✅ All sessions revoked", zap.Uint("user_id", userID))
	return nil
}

// ResolveActor validates an access token and re-reads its user. The token
// only names the user; role, type, eligibility and status come from the
// store so a demotion takes effect on the next request.
func (s *AuthService) ResolveActor(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	if err := StatusError(user.Status); err != nil {
		return nil, err
	}
	return user, nil
}

// Me returns the current user with profile
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByIDWithProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// StatusError maps a non-APPROVED account status to its login error
func StatusError(status domain.UserStatus) error {
	switch status {
	case domain.UserStatusApproved:
		return nil
	case domain.UserStatusPending:
		return domain.ErrAccountPending
	case domain.UserStatusRejected:
		return domain.ErrAccountRejected
	default:
		return domain.ErrAccountDisabled
	}
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User) (*AuthResponse, error) {
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	withProfile, err := s.userRepo.GetByIDWithProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         withProfile.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		uuid.New().String(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token hash in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}
	return s.refreshTokenRepo.Create(ctx, token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
