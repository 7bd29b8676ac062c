package repositories

import (
	"context"
	"time"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Events
// ============================================================

// EventFilter narrows event listings
type EventFilter struct {
	Phase         string
	ParticipantID uint
	Now           time.Time
}

// EventRepository handles event data access
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func withEventRelations(db *gorm.DB, includeAdminMedia bool) *gorm.DB {
	return db.
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			if !includeAdminMedia {
				db = db.Where("visibility = ?", string(domain.MediaVisibilityPublic))
			}
			return db.Order("created_at DESC")
		}).
		Preload("Participants.User.Profile")
}

// Create creates an event with its initial media and participants
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// GetByID gets an event with media filtered by visibility
func (r *EventRepository) GetByID(ctx context.Context, id uint, includeAdminMedia bool) (*models.Event, error) {
	var event models.Event
	err := withEventRelations(r.db.WithContext(ctx), includeAdminMedia).First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// List lists events newest first
func (r *EventRepository) List(ctx context.Context, filter EventFilter, includeAdminMedia bool) ([]*models.Event, error) {
	var events []*models.Event
	query := withEventRelations(r.db.WithContext(ctx), includeAdminMedia)

	switch filter.Phase {
	case models.EventPhaseUpcoming:
		query = query.Where("start_date > ?", filter.Now)
	case models.EventPhaseOngoing:
		query = query.Where("start_date <= ? AND end_date >= ?", filter.Now, filter.Now)
	case models.EventPhaseCompleted:
		query = query.Where("end_date < ?", filter.Now)
	}
	if filter.ParticipantID != 0 {
		query = query.Where("id IN (?)",
			r.db.Model(&models.EventParticipant{}).Select("event_id").Where("user_id = ?", filter.ParticipantID))
	}

	err := query.Order("start_date DESC").Find(&events).Error
	return events, err
}

// Update updates the scalar columns of an event
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Omit("Media", "Participants").Save(event).Error
}

// Delete deletes an event and everything attached to it
func (r *EventRepository) Delete(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.EventMedia{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&models.EventParticipant{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Event{}, id)
		deleted = result.RowsAffected > 0
		return result.Error
	})
	return deleted, err
}

// IsParticipant reports whether userID takes part in eventID
func (r *EventRepository) IsParticipant(ctx context.Context, eventID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EventParticipant{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	return count > 0, err
}

// AddParticipant adds a participant
func (r *EventRepository) AddParticipant(ctx context.Context, participant *models.EventParticipant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

// RemoveParticipant removes a participant
func (r *EventRepository) RemoveParticipant(ctx context.Context, eventID, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.EventParticipant{})
	return result.RowsAffected > 0, result.Error
}

// ListParticipants lists participants of an event with profiles
func (r *EventRepository) ListParticipants(ctx context.Context, eventID uint) ([]*models.EventParticipant, error) {
	var participants []*models.EventParticipant
	err := r.db.WithContext(ctx).
		Preload("User.Profile").
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&participants).Error
	return participants, err
}

// AddMedia attaches media to an event
func (r *EventRepository) AddMedia(ctx context.Context, media *models.EventMedia) error {
	return r.db.WithContext(ctx).Create(media).Error
}

// DeleteMedia removes a media entry of an event
func (r *EventRepository) DeleteMedia(ctx context.Context, eventID, mediaID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND event_id = ?", mediaID, eventID).
		Delete(&models.EventMedia{})
	return result.RowsAffected > 0, result.Error
}

// ============================================================
// Membership cards
// ============================================================

// CardRepository handles membership card and template data access
type CardRepository struct {
	db *gorm.DB
}

// NewCardRepository creates a new card repository
func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

// GetByUserID gets the card of a user
func (r *CardRepository) GetByUserID(ctx context.Context, userID uint) (*models.MembershipCard, error) {
	var card models.MembershipCard
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// GetByPublicToken gets a card by the token encoded in its QR code
func (r *CardRepository) GetByPublicToken(ctx context.Context, token string) (*models.MembershipCard, error) {
	var card models.MembershipCard
	if err := r.db.WithContext(ctx).Where("public_token = ?", token).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// Create creates a card
func (r *CardRepository) Create(ctx context.Context, card *models.MembershipCard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

// Update saves a card
func (r *CardRepository) Update(ctx context.Context, card *models.MembershipCard) error {
	return r.db.WithContext(ctx).Save(card).Error
}

// GetTemplate gets the current card template
func (r *CardRepository) GetTemplate(ctx context.Context) (*models.CardTemplate, error) {
	var template models.CardTemplate
	if err := r.db.WithContext(ctx).Order("id ASC").First(&template).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// SaveTemplate upserts the card template
func (r *CardRepository) SaveTemplate(ctx context.Context, template *models.CardTemplate) error {
	return r.db.WithContext(ctx).Save(template).Error
}

// DeleteTemplates removes every card template
func (r *CardRepository) DeleteTemplates(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.CardTemplate{}).Error
}
