package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Institution represents an organization registered on the platform
// that runs philanthropic activities.
type Institution struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Email       string         `gorm:"not null" json:"email"`
	Phone       string         `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Address     string         `gorm:"type:varchar(255)" json:"address,omitempty"`
	Latitude    *float64       `json:"latitude,omitempty"`
	Longitude   *float64       `json:"longitude,omitempty"`
	Website     string         `gorm:"type:varchar(255)" json:"website,omitempty"`
	LogoURL     string         `gorm:"type:varchar(512)" json:"logo_url,omitempty"`
	Category    string         `gorm:"type:varchar(100)" json:"category,omitempty"`
	FoundedYear *int           `json:"founded_year,omitempty"`
	UserID      uint           `gorm:"index;not null" json:"user_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User       User       `gorm:"foreignKey:UserID" json:"-"`
	Activities []Activity `gorm:"foreignKey:InstitutionID;constraint:OnDelete:CASCADE" json:"activities,omitempty"`
	Metrics    []Metric   `gorm:"foreignKey:InstitutionID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Institution
func (Institution) TableName() string {
	return "institutions"
}

// BeforeCreate assigns a uuid primary key when none was supplied
func (i *Institution) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
