package models

import (
	"time"

	"quest-alumni/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	Email          string            `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Password       string            `gorm:"size:255;not null" json:"-"`
	Role           domain.Role       `gorm:"size:30;not null;index" json:"role"`
	UserType       domain.UserType   `gorm:"size:20;not null" json:"userType"`
	Status         domain.UserStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	IsLoanEligible bool              `gorm:"default:false" json:"isLoanEligible"`
	ApprovedByID   *uint             `json:"approvedById"`
	ApprovedAt     *time.Time        `json:"approvedAt"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt      gorm.DeletedAt    `gorm:"index" json:"-"`

	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Actor builds the live request identity from the stored user
func (u *User) Actor() domain.Actor {
	return domain.Actor{
		UserID:         u.ID,
		Role:           u.Role,
		UserType:       u.UserType,
		IsLoanEligible: u.IsLoanEligible,
	}
}

// UserResponse DTO
type UserResponse struct {
	ID             uint              `json:"id"`
	Email          string            `json:"email"`
	Role           domain.Role       `json:"role"`
	UserType       domain.UserType   `json:"userType"`
	Status         domain.UserStatus `json:"status"`
	IsLoanEligible bool              `json:"isLoanEligible"`
	FullName       string            `json:"fullName,omitempty"`
	AlumniID       *string           `json:"alumniId,omitempty"`
	ApprovedAt     *time.Time        `json:"approvedAt,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Role:           u.Role,
		UserType:       u.UserType,
		Status:         u.Status,
		IsLoanEligible: u.IsLoanEligible,
		ApprovedAt:     u.ApprovedAt,
		CreatedAt:      u.CreatedAt,
	}
	if u.Profile != nil {
		resp.FullName = u.Profile.FullName
		resp.AlumniID = u.Profile.AlumniID
	}
	return resp
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"userId"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expiresAt"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	RevokedAt *time.Time `gorm:"index" json:"revokedAt"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

// AuditLog is the append-only record of state-changing actions.
// OldValues and NewValues hold JSON snapshots.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     *uint     `gorm:"index" json:"userId"`
	Action     string    `gorm:"size:50;not null;index" json:"action"`
	EntityType string    `gorm:"size:50;not null;index:idx_audit_entity" json:"entityType"`
	EntityID   string    `gorm:"size:50;not null;index:idx_audit_entity" json:"entityId"`
	OldValues  string    `gorm:"type:text" json:"oldValues,omitempty"`
	NewValues  string    `gorm:"type:text" json:"newValues,omitempty"`
	IPAddress  string    `gorm:"size:64" json:"ipAddress,omitempty"`
	UserAgent  string    `gorm:"size:255" json:"userAgent,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Auth & users
		&User{},
		&RefreshToken{},
		&AuditLog{},
		// Profiles
		&Profile{},
		&PrivacySettings{},
		&ContactDetails{},
		&EducationRecord{},
		&JobExperience{},
		// Quest Care
		&LoanCategory{},
		&LoanApplication{},
		&LoanRepayment{},
		// Community
		&Event{},
		&EventParticipant{},
		&EventMedia{},
		&MembershipCard{},
		&CardTemplate{},
	)
}
