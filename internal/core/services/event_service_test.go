package services

import (
	"context"
	"testing"
	"time"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eventClock = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func newEventService(t *testing.T) (*EventService, *models.User, *models.User, *models.User) {
	t.Helper()

	db := setupTestDB(t)
	svc := NewEventService(db, NewAuditService(db))
	svc.now = fixedClock(eventClock)
	return svc, seedAdmin(t, db), seedMember(t, db, "guest"), seedMember(t, db, "outsider")
}

func TestEventService_CreateAndVisibility(t *testing.T) {
	svc, admin, guest, outsider := newEventService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, admin.Actor(), &CreateEventInput{
		Name:      " Annual Reunion ",
		Location:  strPtr("Main Hall"),
		StartDate: eventClock.Add(24 * time.Hour),
		EndDate:   eventClock.Add(30 * time.Hour),
		MediaLinks: []MediaInput{
			{URL: "https://photos.quest.test/album"},
			{URL: "https://photos.quest.test/raw", Visibility: "admin_only"},
		},
		ParticipantIDs: []uint{guest.ID, guest.ID, 0},
	})
	require.NoError(t, err)
	assert.Equal(t, "Annual Reunion", created.Name)
	assert.Equal(t, models.EventPhaseUpcoming, created.Status)
	assert.Len(t, created.Media, 2)
	assert.Len(t, created.Participants, 1)

	asGuest, err := svc.Get(ctx, guest.Actor(), created.ID)
	require.NoError(t, err)
	require.Len(t, asGuest.Media, 1)
	assert.Equal(t, domain.MediaVisibilityPublic, asGuest.Media[0].Visibility)
	assert.Equal(t, "link", asGuest.Media[0].MediaType)

	_, err = svc.Get(ctx, outsider.Actor(), created.ID)
	assert.ErrorIs(t, err, domain.ErrEventForbidden)

	listed, err := svc.List(ctx, outsider.Actor(), "")
	require.NoError(t, err)
	assert.Empty(t, listed)

	listed, err = svc.List(ctx, guest.Actor(), models.EventPhaseUpcoming)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	listed, err = svc.List(ctx, admin.Actor(), models.EventPhaseCompleted)
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = svc.List(ctx, admin.Actor(), "archived")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEventService_CreateValidation(t *testing.T) {
	svc, admin, guest, _ := newEventService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, guest.Actor(), &CreateEventInput{Name: "x", StartDate: eventClock, EndDate: eventClock.Add(time.Hour)})
	assert.ErrorIs(t, err, domain.ErrAdminOnly)

	_, err = svc.Create(ctx, admin.Actor(), &CreateEventInput{Name: "Meetup", StartDate: eventClock, EndDate: eventClock})
	assert.ErrorIs(t, err, domain.ErrEventWindow)

	_, err = svc.Create(ctx, admin.Actor(), &CreateEventInput{
		Name:       "Meetup",
		StartDate:  eventClock,
		EndDate:    eventClock.Add(time.Hour),
		MediaLinks: []MediaInput{{URL: "https://quest.test/a", Visibility: "friends"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidVisibility)
}

func TestEventService_UpdateAndDelete(t *testing.T) {
	svc, admin, _, _ := newEventService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, admin.Actor(), &CreateEventInput{
		Name:      "Career Fair",
		StartDate: eventClock.Add(-time.Hour),
		EndDate:   eventClock.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, models.EventPhaseOngoing, created.Status)

	earlier := eventClock.Add(-2 * time.Hour)
	_, err = svc.Update(ctx, admin.Actor(), created.ID, &UpdateEventInput{EndDate: &earlier})
	assert.ErrorIs(t, err, domain.ErrEventWindow)

	updated, err := svc.Update(ctx, admin.Actor(), created.ID, &UpdateEventInput{
		Name:     strPtr("Career Fair 2025"),
		Location: strPtr("  "),
		EndDate:  &earlier,
		StartDate: func() *time.Time {
			s := eventClock.Add(-3 * time.Hour)
			return &s
		}(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Career Fair 2025", updated.Name)
	assert.Nil(t, updated.Location)
	assert.Equal(t, models.EventPhaseCompleted, updated.Status)

	require.NoError(t, svc.Delete(ctx, admin.Actor(), created.ID))
	_, err = svc.Get(ctx, admin.Actor(), created.ID)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, admin.Actor(), created.ID), domain.ErrEventNotFound)

	assert.Equal(t, []string{AuditCreateEvent, AuditUpdateEvent, AuditDeleteEvent},
		auditActions(t, svc.db, EntityEvent, created.ID))
}

func TestEventService_ParticipantsAndMedia(t *testing.T) {
	svc, admin, guest, outsider := newEventService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, admin.Actor(), &CreateEventInput{
		Name:      "Sports Day",
		StartDate: eventClock.Add(time.Hour),
		EndDate:   eventClock.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.AddParticipant(ctx, guest.Actor(), created.ID, outsider.ID)
	assert.ErrorIs(t, err, domain.ErrAdminOnly)

	_, err = svc.AddParticipant(ctx, admin.Actor(), created.ID, guest.ID)
	require.NoError(t, err)
	_, err = svc.AddParticipant(ctx, admin.Actor(), created.ID, guest.ID)
	assert.ErrorIs(t, err, domain.ErrParticipantExists)

	pending := seedUser(t, svc.db, userSeed{name: "pending", status: domain.UserStatusPending})
	_, err = svc.AddParticipant(ctx, admin.Actor(), created.ID, pending.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AddParticipant(ctx, admin.Actor(), 9999, guest.ID)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)

	participants, err := svc.ListParticipants(ctx, guest.Actor(), created.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, "guest", participants[0].User.Profile.FullName)

	media, err := svc.AddMedia(ctx, admin.Actor(), created.ID, &MediaInput{URL: "https://video.quest.test/1", Type: "video"})
	require.NoError(t, err)
	assert.Equal(t, "video", media.MediaType)

	_, err = svc.AddMedia(ctx, admin.Actor(), created.ID, &MediaInput{URL: "not a url"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, svc.DeleteMedia(ctx, admin.Actor(), created.ID, media.ID))
	assert.ErrorIs(t, svc.DeleteMedia(ctx, admin.Actor(), created.ID, media.ID), domain.ErrMediaNotFound)

	require.NoError(t, svc.RemoveParticipant(ctx, admin.Actor(), created.ID, guest.ID))
	assert.ErrorIs(t, svc.RemoveParticipant(ctx, admin.Actor(), created.ID, guest.ID), domain.ErrParticipantAbsent)

	_, err = svc.ListParticipants(ctx, guest.Actor(), created.ID)
	assert.ErrorIs(t, err, domain.ErrEventForbidden)
}
