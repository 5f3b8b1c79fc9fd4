package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MetricTypeBeneficiaries is the metric_type label for beneficiary counts;
// the dashboard summary sums the value of metrics carrying it.
const MetricTypeBeneficiaries = "beneficiaries"

// Metric represents a measured outcome tied to an activity and/or institution.
type Metric struct {
	ID              string         `gorm:"type:uuid;primaryKey" json:"id"`
	MetricType      string         `gorm:"type:varchar(100);not null" json:"metric_type"`
	Value           float64        `gorm:"not null" json:"value"`
	Unit            string         `gorm:"type:varchar(50)" json:"unit,omitempty"`
	Description     string         `gorm:"type:text" json:"description,omitempty"`
	MeasurementDate time.Time      `gorm:"not null" json:"measurement_date"`
	ActivityID      *string        `gorm:"type:uuid;index" json:"activity_id,omitempty"`
	InstitutionID   string         `gorm:"type:uuid;index;not null" json:"institution_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Activity    *Activity    `gorm:"foreignKey:ActivityID" json:"activity,omitempty"`
	Institution *Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
}

// TableName specifies the table name for Metric
func (Metric) TableName() string {
	return "metrics"
}

// BeforeCreate assigns a uuid primary key when none was supplied
func (m *Metric) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
