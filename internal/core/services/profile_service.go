package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/adapters/persistence/repositories"
	"quest-alumni/internal/core/domain"
	"quest-alumni/internal/pkg/validator"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Photo upload limits
const (
	MaxPhotoBytes = 2 * 1024 * 1024
)

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// BlobStore is the external store for uploaded images
type BlobStore interface {
	Upload(ctx context.Context, prefix, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// ProfileService manages a member's own profile
type ProfileService struct {
	profileRepo repositories.ProfileRepository
	blobs       BlobStore
}

// NewProfileService creates a new profile service. blobs may be nil, which
// disables photo uploads.
func NewProfileService(db *gorm.DB, blobs BlobStore) *ProfileService {
	return &ProfileService{
		profileRepo: repositories.NewProfileRepository(db),
		blobs:       blobs,
	}
}

// UpdateProfileInput is a partial profile update; nil fields are unchanged
type UpdateProfileInput struct {
	FullName          *string `json:"fullName" validate:"omitempty,min=2,max=150"`
	BatchYear         *int    `json:"batchYear" validate:"omitempty,gte=1950,lte=2100"`
	Department        *string `json:"department" validate:"omitempty,max=100"`
	Course            *string `json:"course" validate:"omitempty,max=100"`
	CurrentlyWorking  *bool   `json:"currentlyWorking"`
	CurrentlyStudying *bool   `json:"currentlyStudying"`
	City              *string `json:"city" validate:"omitempty,max=100"`
	State             *string `json:"state" validate:"omitempty,max=100"`
	Country           *string `json:"country" validate:"omitempty,max=100"`
	MaritalStatus     *string `json:"maritalStatus" validate:"omitempty,max=30"`
	SpouseName        *string `json:"spouseName" validate:"omitempty,max=150"`
	ChildrenCount     *int    `json:"childrenCount" validate:"omitempty,gte=0,lte=50"`
}

// PrivacyInput is a partial privacy settings update
type PrivacyInput struct {
	FamilyDetailsVisible  *bool `json:"familyDetailsVisible"`
	EducationVisible      *bool `json:"educationVisible"`
	JobHistoryVisible     *bool `json:"jobHistoryVisible"`
	CurrentJobVisible     *bool `json:"currentJobVisible"`
	ContactDetailsVisible *bool `json:"contactDetailsVisible"`
}

// ContactInput replaces the contact block
type ContactInput struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	Whatsapp  *string `json:"whatsapp" validate:"omitempty,max=30"`
	LinkedIn  *string `json:"linkedin" validate:"omitempty,url"`
	Instagram *string `json:"instagram" validate:"omitempty,max=255"`
}

// EducationInput adds an education record
type EducationInput struct {
	Institution  string  `json:"institution" validate:"required,max=200"`
	Degree       string  `json:"degree" validate:"max=100"`
	FieldOfStudy *string `json:"fieldOfStudy" validate:"omitempty,max=100"`
	StartYear    int     `json:"startYear" validate:"required,gte=1950,lte=2100"`
	EndYear      *int    `json:"endYear" validate:"omitempty,gte=1950,lte=2100"`
}

// JobInput adds a job experience. Dates are YYYY-MM-DD or RFC 3339.
type JobInput struct {
	CompanyName      string  `json:"companyName" validate:"required,max=200"`
	JobTitle         string  `json:"jobTitle" validate:"required,max=150"`
	Industry         *string `json:"industry" validate:"omitempty,max=100"`
	JobLocation      *string `json:"jobLocation" validate:"omitempty,max=150"`
	StartDate        string  `json:"startDate" validate:"required"`
	EndDate          *string `json:"endDate"`
	CurrentlyWorking bool    `json:"currentlyWorking"`
}

// GetProfile returns the full profile tree of userID
func (s *ProfileService) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// UpdateProfile applies a partial update to the scalar profile fields
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.Profile, error) {
	if err := validator.Validate(input); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		profile.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.BatchYear != nil {
		profile.BatchYear = input.BatchYear
	}
	if input.CurrentlyWorking != nil {
		profile.CurrentlyWorking = *input.CurrentlyWorking
	}
	if input.CurrentlyStudying != nil {
		profile.CurrentlyStudying = *input.CurrentlyStudying
	}
	if input.ChildrenCount != nil {
		profile.ChildrenCount = input.ChildrenCount
	}
	setOptional(&profile.Department, input.Department)
	setOptional(&profile.Course, input.Course)
	setOptional(&profile.City, input.City)
	setOptional(&profile.State, input.State)
	setOptional(&profile.Country, input.Country)
	setOptional(&profile.MaritalStatus, input.MaritalStatus)
	setOptional(&profile.SpouseName, input.SpouseName)

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

// UpdatePrivacy changes the subject's visibility flags
func (s *ProfileService) UpdatePrivacy(ctx context.Context, userID uint, input *PrivacyInput) (*models.PrivacySettings, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	settings := profile.PrivacySettings
	if settings == nil {
		defaults := models.DefaultPrivacySettings()
		settings = &defaults
		settings.ProfileID = profile.ID
	}
	setFlag(&settings.FamilyDetailsVisible, input.FamilyDetailsVisible)
	setFlag(&settings.EducationVisible, input.EducationVisible)
	setFlag(&settings.JobHistoryVisible, input.JobHistoryVisible)
	setFlag(&settings.CurrentJobVisible, input.CurrentJobVisible)
	setFlag(&settings.ContactDetailsVisible, input.ContactDetailsVisible)

	if err := s.profileRepo.SavePrivacy(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateContact replaces the contact details
func (s *ProfileService) UpdateContact(ctx context.Context, userID uint, input *ContactInput) (*models.ContactDetails, error) {
	if err := validator.Validate(input); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	contact := profile.ContactDetails
	if contact == nil {
		contact = &models.ContactDetails{ProfileID: profile.ID}
	}
	contact.Email = trimmed(input.Email)
	contact.Phone = trimmed(input.Phone)
	contact.Whatsapp = trimmed(input.Whatsapp)
	contact.LinkedIn = trimmed(input.LinkedIn)
	contact.Instagram = trimmed(input.Instagram)

	if err := s.profileRepo.SaveContact(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// AddEducation appends an education record
func (s *ProfileService) AddEducation(ctx context.Context, userID uint, input *EducationInput) (*models.EducationRecord, error) {
	if err := validator.Validate(input); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if input.EndYear != nil && *input.EndYear < input.StartYear {
		return nil, domain.NewValidationError("endYear must not be before startYear")
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	record := &models.EducationRecord{
		ProfileID:    profile.ID,
		Institution:  strings.TrimSpace(input.Institution),
		Degree:       strings.TrimSpace(input.Degree),
		FieldOfStudy: trimmed(input.FieldOfStudy),
		StartYear:    input.StartYear,
		EndYear:      input.EndYear,
	}
	if err := s.profileRepo.AddEducation(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteEducation removes one of the user's education records
func (s *ProfileService) DeleteEducation(ctx context.Context, userID, id uint) error {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	deleted, err := s.profileRepo.DeleteEducation(ctx, profile.ID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrRecordNotFound
	}
	return nil
}

// AddJob appends a job experience
func (s *ProfileService) AddJob(ctx context.Context, userID uint, input *JobInput) (*models.JobExperience, error) {
	if err := validator.Validate(input); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	start, err := parseDate(input.StartDate)
	if err != nil {
		return nil, domain.NewValidationError("startDate must be a date (YYYY-MM-DD)")
	}
	var end *time.Time
	if input.EndDate != nil && strings.TrimSpace(*input.EndDate) != "" && !input.CurrentlyWorking {
		t, err := parseDate(*input.EndDate)
		if err != nil {
			return nil, domain.NewValidationError("endDate must be a date (YYYY-MM-DD)")
		}
		if t.Before(start) {
			return nil, domain.NewValidationError("endDate must not be before startDate")
		}
		end = &t
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	job := &models.JobExperience{
		ProfileID:        profile.ID,
		CompanyName:      strings.TrimSpace(input.CompanyName),
		JobTitle:         strings.TrimSpace(input.JobTitle),
		Industry:         trimmed(input.Industry),
		JobLocation:      trimmed(input.JobLocation),
		StartDate:        start,
		EndDate:          end,
		CurrentlyWorking: input.CurrentlyWorking,
	}
	if err := s.profileRepo.AddJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// DeleteJob removes one of the user's job experiences
func (s *ProfileService) DeleteJob(ctx context.Context, userID, id uint) error {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	deleted, err := s.profileRepo.DeleteJob(ctx, profile.ID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrRecordNotFound
	}
	return nil
}

// UploadPhoto stores a profile photo for targetUserID. Members may only
// upload their own photo; admins may upload for anyone.
func (s *ProfileService) UploadPhoto(ctx context.Context, actor domain.Actor, targetUserID uint, contentType string, size int64, body io.Reader) (*models.Profile, error) {
	if targetUserID == 0 {
		targetUserID = actor.UserID
	}
	if targetUserID != actor.UserID && !actor.IsAdmin() {
		return nil, domain.NewForbiddenError("you can only upload your own photo")
	}
	if s.blobs == nil {
		return nil, domain.ErrStorageDisabled
	}
	if err := checkImage(contentType, size); err != nil {
		return nil, err
	}

	profile, err := s.GetProfile(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	url, err := s.blobs.Upload(ctx, "profile-photos", contentType, body)
	if err != nil {
		return nil, err
	}

	previous := profile.ProfilePhotoURL
	profile.ProfilePhotoURL = &url
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	if previous != nil && *previous != "" {
		if err := s.blobs.Delete(ctx, *previous); err != nil {
			zap.L().Warn("⚠️ Failed to delete previous profile photo", zap.Error(err))
		}
	}
	return profile, nil
}

// checkImage enforces the upload type and size limits
func checkImage(contentType string, size int64) error {
	if !allowedPhotoTypes[contentType] {
		return domain.NewValidationError("invalid file type, only JPEG, PNG and WebP are allowed")
	}
	if size > MaxPhotoBytes {
		return domain.NewValidationError("file too large, maximum size is 2MB")
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func setOptional(dst **string, value *string) {
	if value != nil {
		*dst = trimmed(value)
	}
}

func setFlag(dst *bool, value *bool) {
	if value != nil {
		*dst = *value
	}
}

// trimmed returns nil for nil or blank input
func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
