package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User represents a registered user in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`
	Role         string         `gorm:"type:varchar(20);default:'member'" json:"role"` // member, admin
	TokenVersion int            `gorm:"default:0" json:"-"`                            // Increment to invalidate all user tokens
	Metadata     datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`          // full_name, avatar_url, institution_id

	// Relationships
	Institutions   []Institution       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"institutions,omitempty"`
	Investors      []Investor          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserMetadata is the typed shape of the metadata JSONB column
type UserMetadata struct {
	FullName      string `json:"full_name,omitempty"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	InstitutionID string `json:"institution_id,omitempty"`
}

// ParsedMetadata decodes the metadata column. A missing or malformed
// column yields the zero value rather than an error.
func (u *User) ParsedMetadata() UserMetadata {
	var meta UserMetadata
	if len(u.Metadata) > 0 {
		_ = json.Unmarshal(u.Metadata, &meta)
	}
	return meta
}

// SetMetadata encodes and stores the metadata column
func (u *User) SetMetadata(meta UserMetadata) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	u.Metadata = datatypes.JSON(raw)
	return nil
}
