package models

import (
	"time"

	"quest-alumni/internal/core/domain"
)

// ============================================================
// Events & Membership Cards
// ============================================================

// Event is an alumni event managed by admins
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	Location    *string   `gorm:"size:255" json:"location"`
	MapLink     *string   `gorm:"size:500" json:"mapLink"`
	StartDate   time.Time `gorm:"not null;index" json:"startDate"`
	EndDate     time.Time `gorm:"not null;index" json:"endDate"`
	CreatedByID *uint     `json:"createdById"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Media        []EventMedia       `gorm:"foreignKey:EventID" json:"media,omitempty"`
	Participants []EventParticipant `gorm:"foreignKey:EventID" json:"participants,omitempty"`
}

func (Event) TableName() string {
	return "events"
}

// Event phases derived from the event window
const (
	EventPhaseUpcoming  = "upcoming"
	EventPhaseOngoing   = "ongoing"
	EventPhaseCompleted = "completed"
)

// Phase returns the event phase at time now
func (e *Event) Phase(now time.Time) string {
	switch {
	case now.Before(e.StartDate):
		return EventPhaseUpcoming
	case !now.After(e.EndDate):
		return EventPhaseOngoing
	default:
		return EventPhaseCompleted
	}
}

// EventParticipant links a user to an event
type EventParticipant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"not null;uniqueIndex:idx_event_user" json:"eventId"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_event_user" json:"userId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (EventParticipant) TableName() string {
	return "event_participants"
}

// EventMedia is a media link attached to an event
type EventMedia struct {
	ID           uint                   `gorm:"primaryKey" json:"id"`
	EventID      uint                   `gorm:"not null;index" json:"eventId"`
	MediaURL     string                 `gorm:"size:500;not null" json:"mediaUrl"`
	MediaType    string                 `gorm:"size:30;not null;default:'link'" json:"mediaType"`
	Visibility   domain.MediaVisibility `gorm:"size:20;not null;default:'PUBLIC'" json:"visibility"`
	UploadedByID *uint                  `json:"uploadedById"`
	CreatedAt    time.Time              `gorm:"autoCreateTime" json:"createdAt"`
}

func (EventMedia) TableName() string {
	return "event_media"
}

// MembershipCard is the digital card of an alumni or staff member
type MembershipCard struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"uniqueIndex;not null" json:"userId"`
	CardNumber        string     `gorm:"size:50;uniqueIndex;not null" json:"cardNumber"`
	PublicToken       string     `gorm:"size:36;uniqueIndex;not null" json:"publicToken"`
	QRCodeData        string     `gorm:"size:500;not null" json:"qrCodeData"`
	QRCodePNG         string     `gorm:"type:text" json:"qrCodeImage"`
	CardStatus        string     `gorm:"size:20;not null;default:'ACTIVE'" json:"cardStatus"`
	LastRegeneratedAt *time.Time `json:"lastRegeneratedAt"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (MembershipCard) TableName() string {
	return "membership_cards"
}

// CardStatusActive is the only status assigned by the service
const CardStatusActive = "ACTIVE"

// CardTemplate is the singleton background image used to render cards
type CardTemplate struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TemplateURL  string    `gorm:"size:500;not null" json:"templateUrl"`
	UploadedByID *uint     `json:"uploadedById"`
	UploadedAt   time.Time `json:"uploadedAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (CardTemplate) TableName() string {
	return "card_templates"
}
