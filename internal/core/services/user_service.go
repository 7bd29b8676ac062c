package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/adapters/persistence/repositories"
	"quest-alumni/internal/core/domain"
	"quest-alumni/internal/pkg/pagination"
	"quest-alumni/internal/pkg/password"
	"quest-alumni/internal/pkg/validator"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Audit actions written by user management
const (
	AuditCreateUser = "CREATE_USER"
	AuditUpdateUser = "UPDATE_USER"
)

// UserService handles admin user management
type UserService struct {
	db       *gorm.DB
	userRepo repositories.UserRepository
	audit    *AuditService
	now      func() time.Time
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, audit *AuditService) *UserService {
	return &UserService{
		db:       db,
		userRepo: repositories.NewUserRepository(db),
		audit:    audit,
		now:      time.Now,
	}
}

// CreateUserInput represents an admin-created account
type CreateUserInput struct {
	Email          string          `json:"email" validate:"required,email"`
	Password       string          `json:"password" validate:"required,min=10"`
	FullName       string          `json:"fullName" validate:"required,min=2,max=150"`
	UserType       domain.UserType `json:"userType" validate:"required,oneof=ALUMNI STAFF NON_ALUMNI"`
	Role           domain.Role     `json:"role"`
	IsLoanEligible bool            `json:"isLoanEligible"`
}

// UpdateUserInput represents an admin change to an account
type UpdateUserInput struct {
	Status         *domain.UserStatus `json:"status"`
	Role           *domain.Role       `json:"role"`
	IsLoanEligible *bool              `json:"isLoanEligible"`
}

// ListUsers lists users for the admin console
func (s *UserService) ListUsers(ctx context.Context, filter repositories.UserFilter, params *pagination.Params) ([]*models.UserResponse, int64, error) {
	users, total, err := s.userRepo.List(ctx, filter, params.Offset, params.Limit)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*models.UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}
	return out, total, nil
}

// GetUser gets a user by ID
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByIDWithProfile(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// CreateUser creates an APPROVED account on behalf of an admin
func (s *UserService) CreateUser(ctx context.Context, actor domain.Actor, input *CreateUserInput) (*models.UserResponse, error) {
	input.Email = normalizeEmail(input.Email)
	input.FullName = strings.TrimSpace(input.FullName)
	if err := validator.Validate(input); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	role := input.Role
	if role == "" {
		role = input.UserType.DefaultRole()
	}
	if !role.IsValid() {
		return nil, domain.ErrInvalidRole
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

	now := s.now()
	approvedBy := actor.UserID
	privacy := models.DefaultPrivacySettings()
	user := &models.User{
		Email:          input.Email,
		Password:       hashedPassword,
		Role:           role,
		UserType:       input.UserType,
		Status:         domain.UserStatusApproved,
		IsLoanEligible: input.IsLoanEligible,
		ApprovedByID:   &approvedBy,
		ApprovedAt:     &now,
		Profile: &models.Profile{
			FullName:        input.FullName,
			PrivacySettings: &privacy,
			ContactDetails:  &models.ContactDetails{},
		},
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repositories.NewUserRepository(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, AuditEntry{
			UserID:     actor.UserID,
			Action:     AuditCreateUser,
			EntityType: EntityUser,
			EntityID:   user.ID,
			NewValues:  user.ToResponse(),
		})
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("✅ User created by admin",
		zap.Uint("user_id", user.ID),
		zap.Uint("admin_id", actor.UserID),
		zap.String("role", string(role)),
	)
	return user.ToResponse(), nil
}

// UpdateUser changes the status, role or loan eligibility of an account.
// Approving an alumnus with a batch year issues an alumni ID.
func (s *UserService) UpdateUser(ctx context.Context, actor domain.Actor, id uint, input *UpdateUserInput) (*models.UserResponse, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}
	if input.Role != nil && !input.Role.IsValid() {
		return nil, domain.ErrInvalidRole
	}
	if id == actor.UserID && (input.Status != nil || input.Role != nil) {
		return nil, domain.ErrCannotChangeSelf
	}

	var updated *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repositories.NewUserRepository(tx)
		user, err := users.GetByIDWithProfile(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrUserNotFound
			}
			return err
		}
		before := user.ToResponse()

		if input.Role != nil {
			user.Role = *input.Role
		}
		if input.IsLoanEligible != nil {
			user.IsLoanEligible = *input.IsLoanEligible
		}
		if input.Status != nil && *input.Status != user.Status {
			user.Status = *input.Status
			if user.Status == domain.UserStatusApproved {
				now := s.now()
				approvedBy := actor.UserID
				user.ApprovedByID = &approvedBy
				user.ApprovedAt = &now
				if err := s.assignAlumniID(ctx, tx, user); err != nil {
					return err
				}
			} else {
				if err := repositories.NewRefreshTokenRepository(tx).RevokeAllByUserID(ctx, user.ID, s.now()); err != nil {
					return err
				}
			}
		}

		if err := users.Update(ctx, user); err != nil {
			return err
		}
		updated = user

		return s.audit.Record(ctx, tx, AuditEntry{
			UserID:     actor.UserID,
			Action:     AuditUpdateUser,
			EntityType: EntityUser,
			EntityID:   user.ID,
			OldValues:  before,
			NewValues:  user.ToResponse(),
		})
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("✅ User updated by admin",
		zap.Uint("user_id", updated.ID),
		zap.Uint("admin_id", actor.UserID),
		zap.String("status", string(updated.Status)),
		zap.String("role", string(updated.Role)),
	)
	return updated.ToResponse(), nil
}

// assignAlumniID issues QF<batchYear><seq:4> to an alumnus who has none
func (s *UserService) assignAlumniID(ctx context.Context, tx *gorm.DB, user *models.User) error {
	p := user.Profile
	if user.UserType != domain.UserTypeAlumni || p == nil || p.BatchYear == nil || p.AlumniID != nil {
		return nil
	}

	profiles := repositories.NewProfileRepository(tx)
	issued, err := profiles.CountAlumniIDsForBatch(ctx, *p.BatchYear)
	if err != nil {
		return err
	}
	alumniID := FormatAlumniID(*p.BatchYear, issued+1)
	p.AlumniID = &alumniID
	return profiles.Update(ctx, p)
}

// FormatAlumniID renders an alumni ID from a batch year and sequence
func FormatAlumniID(batchYear int, seq int64) string {
	return fmt.Sprintf("QF%d%04d", batchYear, seq)
}
