package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityStatus represents the lifecycle status of an activity.
// Transitions are not enforced: any update may set any status.
type ActivityStatus string

const (
	ActivityStatusPlanning  ActivityStatus = "planning"
	ActivityStatusActive    ActivityStatus = "active"
	ActivityStatusCompleted ActivityStatus = "completed"
	ActivityStatusCancelled ActivityStatus = "cancelled"
)

// Activity represents a single philanthropic initiative with budget,
// dates, status and location.
type Activity struct {
	ID                 string         `gorm:"type:uuid;primaryKey" json:"id"`
	Title              string         `gorm:"not null" json:"title"`
	Description        string         `gorm:"type:text" json:"description,omitempty"`
	Category           string         `gorm:"type:varchar(100);not null" json:"category"`
	StartDate          time.Time      `gorm:"not null" json:"start_date"`
	EndDate            *time.Time     `json:"end_date,omitempty"`
	Budget             *float64       `json:"budget,omitempty"`
	Status             ActivityStatus `gorm:"type:varchar(20);not null;default:'planning'" json:"status"`
	Location           string         `gorm:"type:varchar(255)" json:"location,omitempty"`
	Latitude           *float64       `json:"latitude,omitempty"`
	Longitude          *float64       `json:"longitude,omitempty"`
	BeneficiariesCount *int           `json:"beneficiaries_count,omitempty"`
	InstitutionID      string         `gorm:"type:uuid;index;not null" json:"institution_id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Institution *Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
	Metrics     []Metric     `gorm:"foreignKey:ActivityID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName specifies the table name for Activity
func (Activity) TableName() string {
	return "philanthropic_activities"
}

// BeforeCreate assigns a uuid primary key and the default status
func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = ActivityStatusPlanning
	}
	return nil
}
