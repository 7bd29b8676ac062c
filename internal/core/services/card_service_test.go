package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"quest-alumni/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBlobStore records uploads and deletes in memory
type fakeBlobStore struct {
	uploads []string
	deleted []string
}

func (f *fakeBlobStore) Upload(_ context.Context, prefix, _ string, body io.Reader) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	url := fmt.Sprintf("https://blobs.quest.test/%s/%d", prefix, len(f.uploads)+1)
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

func TestCardService_GetOrCreateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCardService(db, nil, NewAuditService(db), "https://alumni.quest.test/")
	ctx := context.Background()
	member := seedMember(t, db, "member")

	first, err := svc.GetOrCreate(ctx, member.Actor())
	require.NoError(t, err)
	assert.Equal(t, "https://alumni.quest.test/api/v1/public/members/"+first.PublicToken, first.PublicURL)
	assert.True(t, strings.HasPrefix(first.QRCodePNG, "data:image/png;base64,"))
	assert.Equal(t, "member", first.Holder.FullName)
	assert.Equal(t, domain.UserTypeAlumni, first.Holder.UserType)

	second, err := svc.GetOrCreate(ctx, member.Actor())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CardNumber, second.CardNumber)
	assert.Equal(t, first.PublicToken, second.PublicToken)
}

func TestCardService_NonAlumniHaveNoCard(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCardService(db, nil, NewAuditService(db), "https://alumni.quest.test")
	guest := seedUser(t, db, userSeed{name: "guest", role: domain.RoleNonAlumniMember, userType: domain.UserTypeNonAlumni})

	_, err := svc.GetOrCreate(context.Background(), guest.Actor())
	assert.ErrorIs(t, err, domain.ErrCardNotAllowed)

	_, err = svc.Regenerate(context.Background(), guest.Actor())
	assert.ErrorIs(t, err, domain.ErrCardNotAllowed)
}

func TestCardService_Regenerate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCardService(db, nil, NewAuditService(db), "https://alumni.quest.test")
	svc.now = fixedClock(time.Date(2025, time.April, 2, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()
	member := seedMember(t, db, "member")

	original, err := svc.GetOrCreate(ctx, member.Actor())
	require.NoError(t, err)
	oldToken, oldNumber := original.PublicToken, original.CardNumber

	fresh, err := svc.Regenerate(ctx, member.Actor())
	require.NoError(t, err)
	assert.Equal(t, original.ID, fresh.ID)
	assert.NotEqual(t, oldToken, fresh.PublicToken)
	assert.NotEqual(t, oldNumber, fresh.CardNumber)
	require.NotNil(t, fresh.LastRegeneratedAt)
	assert.True(t, fresh.LastRegeneratedAt.Equal(svc.now()))

	_, err = NewMemberService(db).PublicProfile(ctx, oldToken)
	assert.ErrorIs(t, err, domain.ErrCardNotFound)

	assert.Equal(t, []string{AuditRegenerateCard}, auditActions(t, db, EntityMembershipCard, fresh.ID))
}

func TestCardService_Template(t *testing.T) {
	db := setupTestDB(t)
	blobs := &fakeBlobStore{}
	svc := NewCardService(db, blobs, NewAuditService(db), "https://alumni.quest.test")
	ctx := context.Background()
	admin := seedAdmin(t, db)
	member := seedMember(t, db, "member")

	_, err := svc.UploadTemplate(ctx, member.Actor(), "image/png", 10, strings.NewReader("png"))
	assert.ErrorIs(t, err, domain.ErrAdminOnly)

	_, err = svc.UploadTemplate(ctx, admin.Actor(), "image/gif", 10, strings.NewReader("gif"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UploadTemplate(ctx, admin.Actor(), "image/png", MaxPhotoBytes+1, strings.NewReader("png"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	none, err := svc.GetTemplate(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)

	first, err := svc.UploadTemplate(ctx, admin.Actor(), "image/png", 10, strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://blobs.quest.test/card-templates/1", first.TemplateURL)

	second, err := svc.UploadTemplate(ctx, admin.Actor(), "image/jpeg", 10, strings.NewReader("jpg"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, []string{"https://blobs.quest.test/card-templates/1"}, blobs.deleted)

	require.NoError(t, svc.DeleteTemplate(ctx, admin.Actor()))
	assert.Contains(t, blobs.deleted, "https://blobs.quest.test/card-templates/2")

	current, err := svc.GetTemplate(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestCardService_TemplateWithoutStorage(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCardService(db, nil, NewAuditService(db), "https://alumni.quest.test")
	admin := seedAdmin(t, db)

	_, err := svc.UploadTemplate(context.Background(), admin.Actor(), "image/png", 10, strings.NewReader("png"))
	assert.ErrorIs(t, err, domain.ErrStorageDisabled)
}

func TestGenerateCardNumber(t *testing.T) {
	now := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	first := GenerateCardNumber(now)
	assert.Regexp(t, `^QF-[0-9A-Z]+-[0-9A-F]{6}$`, first)
	assert.NotEqual(t, first, GenerateCardNumber(now))
}
