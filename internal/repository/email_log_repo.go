package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitchallenge/challenge-backend/internal/models"
)

// EmailLogRepository is the durable sink for send outcomes.
type EmailLogRepository interface {
	Create(ctx context.Context, entry *models.EmailLog) error
}

type emailLogRepo struct {
	db *gorm.DB
}

func NewEmailLogRepo(db *gorm.DB) EmailLogRepository {
	return &emailLogRepo{db: db}
}

func (r *emailLogRepo) Create(ctx context.Context, entry *models.EmailLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}
