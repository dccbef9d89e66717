// Package repository is the durable record store behind the challenge engine.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned for lookups by identifier that match no row.
var ErrNotFound = errors.New("record not found")

// Repository groups every store used by the services.
type Repository struct {
	Workouts      WorkoutRepository
	Users         UserRepository
	Audits        AuditRepository
	Notifications NotificationRepository
	Digests       DigestRepository
	EmailLogs     EmailLogRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Workouts:      NewWorkoutRepo(db),
		Users:         NewUserRepo(db),
		Audits:        NewAuditRepo(db),
		Notifications: NewNotificationRepo(db),
		Digests:       NewDigestRepo(db),
		EmailLogs:     NewEmailLogRepo(db),
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
