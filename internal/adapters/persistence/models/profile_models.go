package models

import (
	"time"
)

// Profile holds the display attributes of a member (1:1 with User)
type Profile struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"uniqueIndex;not null" json:"userId"`
	FullName          string    `gorm:"size:150;not null;index" json:"fullName"`
	ProfilePhotoURL   *string   `gorm:"size:500" json:"profilePhotoUrl"`
	AlumniID          *string   `gorm:"size:20;uniqueIndex" json:"alumniId"`
	BatchYear         *int      `gorm:"index" json:"batchYear"`
	Department        *string   `gorm:"size:100" json:"department"`
	Course            *string   `gorm:"size:100" json:"course"`
	CurrentlyStudying bool      `gorm:"default:false" json:"currentlyStudying"`
	CurrentlyWorking  bool      `gorm:"default:false" json:"currentlyWorking"`
	City              *string   `gorm:"size:100" json:"city"`
	State             *string   `gorm:"size:100" json:"state"`
	Country           *string   `gorm:"size:100" json:"country"`
	MaritalStatus     *string   `gorm:"size:30" json:"maritalStatus"`
	SpouseName        *string   `gorm:"size:150" json:"spouseName"`
	ChildrenCount     *int      `json:"childrenCount"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	PrivacySettings *PrivacySettings  `gorm:"foreignKey:ProfileID" json:"privacySettings,omitempty"`
	ContactDetails  *ContactDetails   `gorm:"foreignKey:ProfileID" json:"contactDetails,omitempty"`
	Education       []EducationRecord `gorm:"foreignKey:ProfileID" json:"education,omitempty"`
	Jobs            []JobExperience   `gorm:"foreignKey:ProfileID" json:"jobs,omitempty"`
}

func (Profile) TableName() string {
	return "profiles"
}

// PrivacySettings are the subject-chosen visibility flags (1:1 with Profile)
type PrivacySettings struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	ProfileID             uint      `gorm:"uniqueIndex;not null" json:"profileId"`
	FamilyDetailsVisible  bool      `json:"familyDetailsVisible"`
	EducationVisible      bool      `json:"educationVisible"`
	JobHistoryVisible     bool      `json:"jobHistoryVisible"`
	CurrentJobVisible     bool      `json:"currentJobVisible"`
	ContactDetailsVisible bool      `json:"contactDetailsVisible"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (PrivacySettings) TableName() string {
	return "privacy_settings"
}

// DefaultPrivacySettings returns the settings written at profile creation
func DefaultPrivacySettings() PrivacySettings {
	return PrivacySettings{
		FamilyDetailsVisible:  false,
		EducationVisible:      false,
		JobHistoryVisible:     false,
		CurrentJobVisible:     true,
		ContactDetailsVisible: true,
	}
}

// ContactDetails (1:1 with Profile)
type ContactDetails struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProfileID uint      `gorm:"uniqueIndex;not null" json:"profileId"`
	Email     *string   `gorm:"size:191" json:"email"`
	Phone     *string   `gorm:"size:30" json:"phone"`
	Whatsapp  *string   `gorm:"size:30" json:"whatsapp"`
	LinkedIn  *string   `gorm:"size:255" json:"linkedin"`
	Instagram *string   `gorm:"size:255" json:"instagram"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ContactDetails) TableName() string {
	return "contact_details"
}

// EducationRecord is one entry of a member's education history
type EducationRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProfileID    uint      `gorm:"index;not null" json:"profileId"`
	Institution  string    `gorm:"size:200;not null" json:"institution"`
	Degree       string    `gorm:"size:100" json:"degree"`
	FieldOfStudy *string   `gorm:"size:100" json:"fieldOfStudy"`
	StartYear    int       `json:"startYear"`
	EndYear      *int      `json:"endYear"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (EducationRecord) TableName() string {
	return "education_records"
}

// JobExperience is one entry of a member's job history
type JobExperience struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	ProfileID        uint       `gorm:"index;not null" json:"profileId"`
	CompanyName      string     `gorm:"size:200;not null" json:"companyName"`
	JobTitle         string     `gorm:"size:150;not null" json:"jobTitle"`
	Industry         *string    `gorm:"size:100" json:"industry"`
	JobLocation      *string    `gorm:"size:150" json:"jobLocation"`
	StartDate        time.Time  `gorm:"not null" json:"startDate"`
	EndDate          *time.Time `json:"endDate"`
	CurrentlyWorking bool       `gorm:"default:false" json:"currentlyWorking"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

func (JobExperience) TableName() string {
	return "job_experiences"
}
