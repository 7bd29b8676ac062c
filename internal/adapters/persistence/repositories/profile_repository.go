package repositories

import (
	"context"

	"quest-alumni/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// profileRepository implements ProfileRepository interface
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create creates a profile together with its privacy settings and contact details
func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// GetByUserID gets the full profile tree of a user
func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := preloadProfileTree(r.db.WithContext(ctx), "").
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update saves the scalar profile columns only
func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).
		Omit("PrivacySettings", "ContactDetails", "Education", "Jobs").
		Save(profile).Error
}

// SavePrivacy upserts privacy settings
func (r *profileRepository) SavePrivacy(ctx context.Context, settings *models.PrivacySettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}

// SaveContact upserts contact details
func (r *profileRepository) SaveContact(ctx context.Context, contact *models.ContactDetails) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

// AddEducation adds an education record
func (r *profileRepository) AddEducation(ctx context.Context, record *models.EducationRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// DeleteEducation deletes an education record owned by profileID
func (r *profileRepository) DeleteEducation(ctx context.Context, profileID, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", id, profileID).
		Delete(&models.EducationRecord{})
	return result.RowsAffected > 0, result.Error
}

// AddJob adds a job experience
func (r *profileRepository) AddJob(ctx context.Context, job *models.JobExperience) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// DeleteJob deletes a job experience owned by profileID
func (r *profileRepository) DeleteJob(ctx context.Context, profileID, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", id, profileID).
		Delete(&models.JobExperience{})
	return result.RowsAffected > 0, result.Error
}

// CountAlumniIDsForBatch counts alumni IDs already issued for a batch year
func (r *profileRepository) CountAlumniIDsForBatch(ctx context.Context, batchYear int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("batch_year = ? AND alumni_id IS NOT NULL", batchYear).
		Count(&count).Error
	return count, err
}
