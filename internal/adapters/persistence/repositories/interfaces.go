package repositories

import (
	"context"
	"time"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/core/domain"
)

// UserFilter narrows admin user listings
type UserFilter struct {
	Status   domain.UserStatus
	Role     domain.Role
	UserType domain.UserType
	Search   string
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDWithProfile(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, filter UserFilter, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListApprovedWithProfiles(ctx context.Context) ([]*models.User, error)
	ListEligibleGuarantors(ctx context.Context, excludeUserID uint) ([]*models.User, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeIfActive(ctx context.Context, id uint, at time.Time) (bool, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string, at time.Time) error
	RevokeAllByUserID(ctx context.Context, userID uint, at time.Time) error
	PurgeStale(ctx context.Context, now, revokedBefore time.Time) (int64, error)
}

// ProfileRepository defines profile repository interface
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	SavePrivacy(ctx context.Context, settings *models.PrivacySettings) error
	SaveContact(ctx context.Context, contact *models.ContactDetails) error
	AddEducation(ctx context.Context, record *models.EducationRecord) error
	DeleteEducation(ctx context.Context, profileID, id uint) (bool, error)
	AddJob(ctx context.Context, job *models.JobExperience) error
	DeleteJob(ctx context.Context, profileID, id uint) (bool, error)
	CountAlumniIDsForBatch(ctx context.Context, batchYear int) (int64, error)
}

// AuditRepository is the append-only audit log sink
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*models.AuditLog, error)
}
