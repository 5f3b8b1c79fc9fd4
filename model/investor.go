package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Investor represents a funding contact registered by a user.
type Investor struct {
	ID              string         `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string         `gorm:"not null" json:"name"`
	Email           string         `gorm:"not null" json:"email"`
	Phone           string         `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Company         string         `gorm:"type:varchar(255)" json:"company,omitempty"`
	InvestmentFocus string         `gorm:"type:varchar(255)" json:"investment_focus,omitempty"`
	UserID          uint           `gorm:"index;not null" json:"user_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for Investor
func (Investor) TableName() string {
	return "investors"
}

// BeforeCreate assigns a uuid primary key when none was supplied
func (i *Investor) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
