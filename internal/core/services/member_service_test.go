package services

import (
	"context"
	"testing"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/core/domain"
	"quest-alumni/internal/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberService_Directory(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMemberService(db)
	ctx := context.Background()

	viewer := seedMember(t, db, "viewer")
	asha := seedMember(t, db, "asha")
	seedUser(t, db, userSeed{name: "pending", status: domain.UserStatusPending})
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", asha.ID).
		Updates(map[string]interface{}{"country": "India", "state": "Kerala", "city": "Kochi", "batch_year": 2012}).Error)

	dir, err := svc.Directory(ctx, viewer.Actor(), DirectoryQuery{}, pagination.New(1, 20))
	require.NoError(t, err)
	require.Len(t, dir.Members, 1)
	assert.Equal(t, asha.ID, dir.Members[0].ID)
	assert.Equal(t, []string{"India"}, dir.Filters.Countries)
	assert.Equal(t, []int{2012}, dir.Filters.BatchYears)

	dir, err = svc.Directory(ctx, viewer.Actor(), DirectoryQuery{City: "trivandrum"}, pagination.New(1, 20))
	require.NoError(t, err)
	assert.Empty(t, dir.Members)
	assert.Equal(t, []string{"India"}, dir.Filters.Countries)
	assert.Equal(t, int64(0), dir.Pagination.Total)
}

func TestMemberService_DirectoryPagination(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMemberService(db)
	ctx := context.Background()

	viewer := seedMember(t, db, "viewer")
	names := []string{"anil", "bina", "chitra", "deepa", "eshan"}
	for _, name := range names {
		seedMember(t, db, name)
	}
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id <> ?", viewer.ID).Update("country", "India").Error)

	first, err := svc.Directory(ctx, viewer.Actor(), DirectoryQuery{}, pagination.New(1, 2))
	require.NoError(t, err)
	require.Len(t, first.Members, 2)
	assert.Equal(t, "anil", first.Members[0].Profile.FullName)
	assert.Equal(t, int64(5), first.Pagination.Total)
	assert.Equal(t, 3, first.Pagination.TotalPages)
	assert.True(t, first.Pagination.HasNext)
	assert.False(t, first.Pagination.HasPrev)

	last, err := svc.Directory(ctx, viewer.Actor(), DirectoryQuery{}, pagination.New(3, 2))
	require.NoError(t, err)
	require.Len(t, last.Members, 1)
	assert.Equal(t, "eshan", last.Members[0].Profile.FullName)
	assert.False(t, last.Pagination.HasNext)
	assert.Equal(t, []string{"India"}, last.Filters.Countries)

	beyond, err := svc.Directory(ctx, viewer.Actor(), DirectoryQuery{}, pagination.New(9, 2))
	require.NoError(t, err)
	assert.Empty(t, beyond.Members)
	assert.Equal(t, int64(5), beyond.Pagination.Total)

	filtered, err := svc.Directory(ctx, viewer.Actor(), DirectoryQuery{Search: "DEE"}, pagination.New(1, 2))
	require.NoError(t, err)
	require.Len(t, filtered.Members, 1)
	assert.Equal(t, int64(1), filtered.Pagination.Total)
}

func TestMemberService_GetMember(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMemberService(db)
	ctx := context.Background()

	viewer := seedMember(t, db, "viewer")
	admin := seedAdmin(t, db)
	pending := seedUser(t, db, userSeed{name: "pending", status: domain.UserStatusPending})

	_, err := svc.GetMember(ctx, viewer.Actor(), pending.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	view, err := svc.GetMember(ctx, admin.Actor(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", view.Profile.FullName)

	self, err := svc.GetMember(ctx, pending.Actor(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, self.ID)

	_, err = svc.GetMember(ctx, viewer.Actor(), 9999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestMemberService_PublicProfile(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	members := NewMemberService(db)
	cards := NewCardService(db, nil, NewAuditService(db), "https://alumni.quest.test")

	owner := seedMember(t, db, "owner")
	card, err := cards.GetOrCreate(ctx, owner.Actor())
	require.NoError(t, err)

	view, err := members.PublicProfile(ctx, card.PublicToken)
	require.NoError(t, err)
	assert.Equal(t, "owner", view.FullName)
	assert.NotNil(t, view.ContactDetails)
	assert.Nil(t, view.EducationRecords)

	_, err = members.PublicProfile(ctx, "unknown-token")
	assert.ErrorIs(t, err, domain.ErrCardNotFound)

	require.NoError(t, db.Model(owner).Update("status", domain.UserStatusDisabled).Error)
	_, err = members.PublicProfile(ctx, card.PublicToken)
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
}
