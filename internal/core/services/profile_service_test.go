package services

import (
	"context"
	"strings"
	"testing"

	"quest-alumni/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_UpdateProfileAndPrivacy(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(db, nil)
	ctx := context.Background()
	member := seedMember(t, db, "member")

	profile, err := svc.UpdateProfile(ctx, member.ID, &UpdateProfileInput{
		FullName:  strPtr("  Member Name "),
		BatchYear: intPtr(2014),
		City:      strPtr(" Kochi "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Member Name", profile.FullName)
	require.NotNil(t, profile.BatchYear)
	assert.Equal(t, 2014, *profile.BatchYear)
	require.NotNil(t, profile.City)
	assert.Equal(t, "Kochi", *profile.City)

	_, err = svc.UpdateProfile(ctx, member.ID, &UpdateProfileInput{BatchYear: intPtr(1900)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	settings, err := svc.UpdatePrivacy(ctx, member.ID, &PrivacyInput{
		EducationVisible:      boolPtr(true),
		ContactDetailsVisible: boolPtr(false),
	})
	require.NoError(t, err)
	assert.True(t, settings.EducationVisible)
	assert.False(t, settings.ContactDetailsVisible)

	reloaded, err := svc.GetProfile(ctx, member.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.PrivacySettings)
	assert.True(t, reloaded.PrivacySettings.EducationVisible)
	assert.False(t, reloaded.PrivacySettings.ContactDetailsVisible)

	_, err = svc.GetProfile(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestProfileService_EducationAndJobs(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(db, nil)
	ctx := context.Background()
	member := seedMember(t, db, "member")
	other := seedMember(t, db, "other")

	record, err := svc.AddEducation(ctx, member.ID, &EducationInput{Institution: "Quest College", Degree: "BSc", StartYear: 2010, EndYear: intPtr(2013)})
	require.NoError(t, err)

	_, err = svc.AddEducation(ctx, member.ID, &EducationInput{Institution: "Quest College", StartYear: 2013, EndYear: intPtr(2010)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.ErrorIs(t, svc.DeleteEducation(ctx, other.ID, record.ID), domain.ErrRecordNotFound)
	require.NoError(t, svc.DeleteEducation(ctx, member.ID, record.ID))

	job, err := svc.AddJob(ctx, member.ID, &JobInput{
		CompanyName:      "Acme",
		JobTitle:         "Engineer",
		StartDate:        "2019-06-01",
		EndDate:          strPtr("2020-01-01"),
		CurrentlyWorking: true,
	})
	require.NoError(t, err)
	assert.Nil(t, job.EndDate)

	_, err = svc.AddJob(ctx, member.ID, &JobInput{CompanyName: "Acme", JobTitle: "Engineer", StartDate: "June 2019"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AddJob(ctx, member.ID, &JobInput{CompanyName: "Acme", JobTitle: "Engineer", StartDate: "2020-01-01", EndDate: strPtr("2019-01-01")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	profile, err := svc.GetProfile(ctx, member.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.Education)
	assert.Len(t, profile.Jobs, 1)

	require.NoError(t, svc.DeleteJob(ctx, member.ID, job.ID))
	assert.ErrorIs(t, svc.DeleteJob(ctx, member.ID, job.ID), domain.ErrRecordNotFound)
}

func TestProfileService_UpdateContact(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(db, nil)
	ctx := context.Background()
	member := seedMember(t, db, "member")

	contact, err := svc.UpdateContact(ctx, member.ID, &ContactInput{Phone: strPtr(" +91 98470 00000 "), Whatsapp: strPtr("  ")})
	require.NoError(t, err)
	require.NotNil(t, contact.Phone)
	assert.Equal(t, "+91 98470 00000", *contact.Phone)
	assert.Nil(t, contact.Whatsapp)

	_, err = svc.UpdateContact(ctx, member.ID, &ContactInput{Email: strPtr("not-an-email")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestProfileService_UploadPhoto(t *testing.T) {
	db := setupTestDB(t)
	blobs := &fakeBlobStore{}
	svc := NewProfileService(db, blobs)
	ctx := context.Background()
	member := seedMember(t, db, "member")
	other := seedMember(t, db, "other")
	admin := seedAdmin(t, db)

	profile, err := svc.UploadPhoto(ctx, member.Actor(), 0, "image/png", 100, strings.NewReader("png"))
	require.NoError(t, err)
	require.NotNil(t, profile.ProfilePhotoURL)
	assert.Equal(t, "https://blobs.quest.test/profile-photos/1", *profile.ProfilePhotoURL)

	_, err = svc.UploadPhoto(ctx, member.Actor(), member.ID, "image/webp", 100, strings.NewReader("webp"))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://blobs.quest.test/profile-photos/1"}, blobs.deleted)

	_, err = svc.UploadPhoto(ctx, member.Actor(), other.ID, "image/png", 100, strings.NewReader("png"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.UploadPhoto(ctx, admin.Actor(), other.ID, "image/png", 100, strings.NewReader("png"))
	assert.NoError(t, err)

	_, err = svc.UploadPhoto(ctx, member.Actor(), 0, "application/pdf", 100, strings.NewReader("pdf"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UploadPhoto(ctx, member.Actor(), 0, "image/png", MaxPhotoBytes+1, strings.NewReader("png"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewProfileService(db, nil).UploadPhoto(ctx, member.Actor(), 0, "image/png", 100, strings.NewReader("png"))
	assert.ErrorIs(t, err, domain.ErrStorageDisabled)
}
