package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnitCategory classifies a participant's declared unit.
type UnitCategory string

const (
	UnitVeterans       UnitCategory = "veterans"
	UnitGovernment     UnitCategory = "government"
	UnitMilitaryFamily UnitCategory = "military_family"
	UnitCivilian       UnitCategory = "civilian"
	UnitOther          UnitCategory = "other"
)

func (u UnitCategory) Valid() bool {
	switch u {
	case UnitVeterans, UnitGovernment, UnitMilitaryFamily, UnitCivilian, UnitOther:
		return true
	}
	return false
}

// DeliveryMode controls how verification emails reach a participant.
type DeliveryMode string

const (
	DeliveryImmediate DeliveryMode = "immediate"
	DeliveryDigest    DeliveryMode = "digest"
	DeliveryNone      DeliveryMode = "none"
)

func (d DeliveryMode) Valid() bool {
	switch d {
	case DeliveryImmediate, DeliveryDigest, DeliveryNone:
		return true
	}
	return false
}

// NotificationPreferences is embedded in the user row (1:1).
type NotificationPreferences struct {
	EmailNotifications bool         `gorm:"not null;default:true" json:"email_notifications"`
	NotifyOnVerified   bool         `gorm:"not null;default:true" json:"notify_on_verified"`
	NotifyOnFlagged    bool         `gorm:"not null;default:true" json:"notify_on_flagged"`
	DeliveryMode       DeliveryMode `gorm:"size:20;not null;default:'immediate'" json:"delivery_mode"`
}

func DefaultPreferences() NotificationPreferences {
	return NotificationPreferences{
		EmailNotifications: true,
		NotifyOnVerified:   true,
		NotifyOnFlagged:    true,
		DeliveryMode:       DeliveryImmediate,
	}
}

// WantsEmail reports whether a transition into status should produce any email traffic.
func (p NotificationPreferences) WantsEmail(status VerificationStatus) bool {
	if !p.EmailNotifications || p.DeliveryMode == DeliveryNone {
		return false
	}
	switch status {
	case StatusVerified:
		return p.NotifyOnVerified
	case StatusFlagged:
		return p.NotifyOnFlagged
	}
	return false
}

// User is the participant profile. Credentials live with the identity provider.
type User struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string       `gorm:"size:255;index" json:"email"`
	DisplayName  string       `gorm:"size:120" json:"display_name"`
	Role         string       `gorm:"size:20;default:'user'" json:"role"`
	UnitName     *string      `gorm:"size:120;index" json:"unit_name,omitempty"`
	UnitCategory UnitCategory `gorm:"size:30;default:'other'" json:"unit_category"`

	NotificationPreferences `gorm:"embedded"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
