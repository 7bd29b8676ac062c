package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/adapters/persistence/repositories"
	"quest-alumni/internal/core/domain"
	"quest-alumni/internal/pkg/validator"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Audit actions written for events
const (
	AuditCreateEvent = "CREATE_EVENT"
	AuditUpdateEvent = "UPDATE_EVENT"
	AuditDeleteEvent = "DELETE_EVENT"
)

// EventView is an event with its phase at read time
type EventView struct {
	*models.Event
	Status string `json:"status"`
}

// MediaInput describes a media link attached to an event
type MediaInput struct {
	URL        string `json:"url" validate:"required,url,max=500"`
	Type       string `json:"type" validate:"max=30"`
	Visibility string `json:"visibility"`
}

// CreateEventInput represents a new event
type CreateEventInput struct {
	Name           string       `json:"name" validate:"required,max=200"`
	Description    *string      `json:"description"`
	Location       *string      `json:"location" validate:"omitempty,max=255"`
	MapLink        *string      `json:"mapLink" validate:"omitempty,url,max=500"`
	StartDate      time.Time    `json:"startDate" validate:"required"`
	EndDate        time.Time    `json:"endDate" validate:"required"`
	MediaLinks     []MediaInput `json:"mediaLinks" validate:"dive"`
	ParticipantIDs []uint       `json:"participantIds"`
}

// UpdateEventInput is a partial update; nil fields are unchanged
type UpdateEventInput struct {
	Name        *string    `json:"name" validate:"omitempty,max=200"`
	Description *string    `json:"description"`
	Location    *string    `json:"location" validate:"omitempty,max=255"`
	MapLink     *string    `json:"mapLink" validate:"omitempty,max=500"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

// EventService manages events, participants and media
type EventService struct {
	db    *gorm.DB
	audit *AuditService
	now   func() time.Time
}

// NewEventService creates a new event service
func NewEventService(db *gorm.DB, audit *AuditService) *EventService {
	return &EventService{db: db, audit: audit, now: time.Now}
}

func (s *EventService) view(e *models.Event) EventView {
	return EventView{Event: e, Status: e.Phase(s.now())}
}

// List returns events for the actor. Admins see every event and all
// media; members see only events they take part in, with public media.
func (s *EventService) List(ctx context.Context, actor domain.Actor, phase string) ([]EventView, error) {
	switch phase {
	case "", models.EventPhaseUpcoming, models.EventPhaseOngoing, models.EventPhaseCompleted:
	default:
		return nil, domain.NewValidationError("status must be upcoming, ongoing or completed")
	}

	filter := repositories.EventFilter{Phase: phase, Now: s.now()}
	if !actor.IsAdmin() {
		filter.ParticipantID = actor.UserID
	}

	events, err := repositories.NewEventRepository(s.db).List(ctx, filter, actor.IsAdmin())
	if err != nil {
		return nil, err
	}

	out := make([]EventView, 0, len(events))
	for _, e := range events {
		out = append(out, s.view(e))
	}
	return out, nil
}

// Get returns one event the actor may see
func (s *EventService) Get(ctx context.Context, actor domain.Actor, id uint) (*EventView, error) {
	event, err := s.load(ctx, id, actor.IsAdmin())
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		ok, err := repositories.NewEventRepository(s.db).IsParticipant(ctx, id, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrEventForbidden
		}
	}
	v := s.view(event)
	return &v, nil
}

// Create creates an event with optional media and participants
func (s *EventService) Create(ctx context.Context, actor domain.Actor, input *CreateEventInput) (*EventView, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrAdminOnly
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := validator.Validate(input); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, domain.ErrEventWindow
	}

	createdBy := actor.UserID
	event := &models.Event{
		Name:        input.Name,
		Description: trimmed(input.Description),
		Location:    trimmed(input.Location),
		MapLink:     trimmed(input.MapLink),
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		CreatedByID: &createdBy,
	}
	for _, m := range input.MediaLinks {
		media, err := newMedia(m, actor.UserID)
		if err != nil {
			return nil, err
		}
		event.Media = append(event.Media, *media)
	}
	seen := map[uint]bool{}
	for _, userID := range input.ParticipantIDs {
		if userID == 0 || seen[userID] {
			continue
		}
		seen[userID] = true
		event.Participants = append(event.Participants, models.EventParticipant{UserID: userID})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repositories.NewEventRepository(tx).Create(ctx, event); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, AuditEntry{
			UserID:     actor.UserID,
			Action:     AuditCreateEvent,
			EntityType: EntityEvent,
			EntityID:   event.ID,
			NewValues:  map[string]interface{}{"name": event.Name, "startDate": event.StartDate, "endDate": event.EndDate},
		})
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("✅ Event created", zap.Uint("event_id", event.ID), zap.String("name", event.Name))
	return s.Get(ctx, actor, event.ID)
}

// Update changes the scalar fields of an event
func (s *EventService) Update(ctx context.Context, actor domain.Actor, id uint, input *UpdateEventInput) (*EventView, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrAdminOnly
	}
	if err := validator.Validate(input); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := repositories.NewEventRepository(tx)
		event, err := events.GetByID(ctx, id, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrEventNotFound
			}
			return err
		}
		before := *event
		before.Media, before.Participants = nil, nil

		if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
			event.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			event.Description = trimmed(input.Description)
		}
		if input.Location != nil {
			event.Location = trimmed(input.Location)
		}
		if input.MapLink != nil {
			event.MapLink = trimmed(input.MapLink)
		}
		if input.StartDate != nil {
			event.StartDate = *input.StartDate
		}
		if input.EndDate != nil {
			event.EndDate = *input.EndDate
		}
		if !event.EndDate.After(event.StartDate) {
			return domain.ErrEventWindow
		}

		if err := events.Update(ctx, event); err != nil {
			return err
		}
		after := *event
		after.Media, after.Participants = nil, nil
		return s.audit.Record(ctx, tx, AuditEntry{
			UserID:     actor.UserID,
			Action:     AuditUpdateEvent,
			EntityType: EntityEvent,
			EntityID:   event.ID,
			OldValues:  &before,
			NewValues:  &after,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Delete removes an event with its media and participants
func (s *EventService) Delete(ctx context.Context, actor domain.Actor, id uint) error {
	if !actor.IsAdmin() {
		return domain.ErrAdminOnly
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deleted, err := repositories.NewEventRepository(tx).Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrEventNotFound
		}
		return s.audit.Record(ctx, tx, AuditEntry{
			UserID:     actor.UserID,
			Action:     AuditDeleteEvent,
			EntityType: EntityEvent,
			EntityID:   id,
		})
	})
}

// ListParticipants lists the participants of an event the actor may see
func (s *EventService) ListParticipants(ctx context.Context, actor domain.Actor, eventID uint) ([]*models.EventParticipant, error) {
	if _, err := s.Get(ctx, actor, eventID); err != nil {
		return nil, err
	}
	return repositories.NewEventRepository(s.db).ListParticipants(ctx, eventID)
}

// AddParticipant adds an approved user to an event
func (s *EventService) AddParticipant(ctx context.Context, actor domain.Actor, eventID, userID uint) (*models.EventParticipant, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrAdminOnly
	}
	if userID == 0 {
		return nil, domain.NewValidationError("userId is required")
	}
	if _, err := s.load(ctx, eventID, true); err != nil {
		return nil, err
	}

	user, err := repositories.NewUserRepository(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if user.Status != domain.UserStatusApproved {
		return nil, domain.NewValidationError("only approved members can be added to events")
	}

	events := repositories.NewEventRepository(s.db)
	exists, err := events.IsParticipant(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrParticipantExists
	}

	participant := &models.EventParticipant{EventID: eventID, UserID: userID}
	if err := events.AddParticipant(ctx, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

// RemoveParticipant removes a user from an event
func (s *EventService) RemoveParticipant(ctx context.Context, actor domain.Actor, eventID, userID uint) error {
	if !actor.IsAdmin() {
		return domain.ErrAdminOnly
	}
	removed, err := repositories.NewEventRepository(s.db).RemoveParticipant(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrParticipantAbsent
	}
	return nil
}

// AddMedia attaches a media link to an event
func (s *EventService) AddMedia(ctx context.Context, actor domain.Actor, eventID uint, input *MediaInput) (*models.EventMedia, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrAdminOnly
	}
	if err := validator.Validate(input); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if _, err := s.load(ctx, eventID, true); err != nil {
		return nil, err
	}

	media, err := newMedia(*input, actor.UserID)
	if err != nil {
		return nil, err
	}
	media.EventID = eventID
	if err := repositories.NewEventRepository(s.db).AddMedia(ctx, media); err != nil {
		return nil, err
	}
	return media, nil
}

// DeleteMedia removes a media link from an event
func (s *EventService) DeleteMedia(ctx context.Context, actor domain.Actor, eventID, mediaID uint) error {
	if !actor.IsAdmin() {
		return domain.ErrAdminOnly
	}
	deleted, err := repositories.NewEventRepository(s.db).DeleteMedia(ctx, eventID, mediaID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrMediaNotFound
	}
	return nil
}

func (s *EventService) load(ctx context.Context, id uint, includeAdminMedia bool) (*models.Event, error) {
	event, err := repositories.NewEventRepository(s.db).GetByID(ctx, id, includeAdminMedia)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func newMedia(input MediaInput, uploadedBy uint) (*models.EventMedia, error) {
	visibility := domain.MediaVisibility(strings.ToUpper(strings.TrimSpace(input.Visibility)))
	switch visibility {
	case "":
		visibility = domain.MediaVisibilityPublic
	case domain.MediaVisibilityPublic, domain.MediaVisibilityAdminOnly:
	default:
		return nil, domain.ErrInvalidVisibility
	}

	mediaType := strings.TrimSpace(input.Type)
	if mediaType == "" {
		mediaType = "link"
	}
	return &models.EventMedia{
		MediaURL:     strings.TrimSpace(input.URL),
		MediaType:    mediaType,
		Visibility:   visibility,
		UploadedByID: &uploadedBy,
	}, nil
}
