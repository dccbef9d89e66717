package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationVerified NotificationType = "verified"
	NotificationFlagged  NotificationType = "flagged"
	NotificationOther    NotificationType = "other"
)

// Notification is the in-app bell entry. Only the recipient toggles or deletes it.
type Notification struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type        NotificationType `gorm:"size:20;not null" json:"type"`
	Title       string           `gorm:"size:200;not null" json:"title"`
	Message     string           `gorm:"type:text;not null" json:"message"`
	LogID       *uuid.UUID       `gorm:"type:uuid" json:"log_id,omitempty"`
	LogCategory *Category        `gorm:"size:20" json:"log_category,omitempty"`
	IsRead      bool             `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
}

// DigestQueueEntry snapshots a transition for later batched email delivery.
type DigestQueueEntry struct {
	ID             uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	LogID          uuid.UUID          `gorm:"type:uuid;not null" json:"log_id"`
	LogCategory    Category           `gorm:"size:20;not null" json:"log_category"`
	ActivityDate   time.Time          `gorm:"type:date" json:"activity_date"`
	Details        string             `gorm:"type:text" json:"details"`
	PreviousStatus VerificationStatus `gorm:"size:20;not null" json:"previous_status"`
	NewStatus      VerificationStatus `gorm:"size:20;not null" json:"new_status"`
	Comment        *string            `gorm:"type:text" json:"comment,omitempty"`
	Processed      bool               `gorm:"not null;default:false;index" json:"processed"`
	ProcessedAt    *time.Time         `json:"processed_at,omitempty"`
	ClaimToken     *uuid.UUID         `gorm:"type:uuid;index" json:"-"`
	ClaimedAt      *time.Time         `json:"-"`
	CreatedAt      time.Time          `gorm:"index" json:"created_at"`
}

func (DigestQueueEntry) TableName() string {
	return "digest_queue"
}

type EmailKind string

const (
	EmailImmediate EmailKind = "immediate"
	EmailDigest    EmailKind = "digest"
)

// EmailLog is the durable record of every send attempt.
type EmailLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Recipient string         `gorm:"size:255" json:"recipient"`
	Kind      EmailKind      `gorm:"size:20;not null" json:"kind"`
	Subject   string         `gorm:"size:255" json:"subject"`
	Status    string         `gorm:"size:20;not null;index" json:"status"` // sent, failed
	Error     string         `gorm:"type:text" json:"error,omitempty"`
	Metadata  datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}
