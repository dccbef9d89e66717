package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is append-only: one row per verification action, never updated or deleted.
type AuditLog struct {
	ID             uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AdminID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"admin_id"`
	Action         string             `gorm:"size:20;not null" json:"action"`
	LogID          uuid.UUID          `gorm:"type:uuid;not null;index" json:"log_id"`
	LogCategory    Category           `gorm:"size:20;not null" json:"log_category"`
	PreviousStatus VerificationStatus `gorm:"size:20;not null" json:"previous_status"`
	NewStatus      VerificationStatus `gorm:"size:20;not null" json:"new_status"`
	Comment        *string            `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt      time.Time          `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "verification_audit_logs"
}
