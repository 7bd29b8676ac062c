package repositories

import (
	"context"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID gets a user by ID
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDWithProfile gets a user with the full profile tree
func (r *userRepository) GetByIDWithProfile(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := preloadProfileTree(r.db.WithContext(ctx), "Profile.").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail gets a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates a user
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit("Profile").Save(user).Error
}

// List lists users with pagination
func (r *userRepository) List(ctx context.Context, filter UserFilter, offset, limit int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.User{})
		if filter.Status != "" {
			query = query.Where("users.status = ?", filter.Status)
		}
		if filter.Role != "" {
			query = query.Where("users.role = ?", filter.Role)
		}
		if filter.UserType != "" {
			query = query.Where("users.user_type = ?", filter.UserType)
		}
		if filter.Search != "" {
			like := "%" + filter.Search + "%"
			query = query.
				Joins("LEFT JOIN profiles ON profiles.user_id = users.id").
				Where("users.email LIKE ? OR profiles.full_name LIKE ?", like, like)
		}
		return query
	}

	// Count total
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Get users with pagination
	if err := scoped().Preload("Profile").
		Order("users.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ExistsByEmail checks if email exists
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// ListApprovedWithProfiles loads every approved member with the full profile tree
func (r *userRepository) ListApprovedWithProfiles(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := preloadProfileTree(r.db.WithContext(ctx), "Profile.").
		Where("status = ?", domain.UserStatusApproved).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

// ListEligibleGuarantors lists approved, loan-eligible users other than excludeUserID
func (r *userRepository) ListEligibleGuarantors(ctx context.Context, excludeUserID uint) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Joins("Profile").
		Where("users.status = ?", domain.UserStatusApproved).
		Where("users.is_loan_eligible = ?", true).
		Where("users.id <> ?", excludeUserID).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "Profile", Name: "full_name"}}).
		Find(&users).Error
	return users, err
}

// preloadProfileTree preloads a profile and its nested records with the
// display ordering used everywhere: education by start year, jobs by start date.
func preloadProfileTree(db *gorm.DB, prefix string) *gorm.DB {
	if prefix != "" {
		db = db.Preload(prefix[:len(prefix)-1])
	}
	return db.
		Preload(prefix + "PrivacySettings").
		Preload(prefix + "ContactDetails").
		Preload(prefix+"Education", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_year DESC")
		}).
		Preload(prefix+"Jobs", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_date DESC")
		})
}
