package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitchallenge/challenge-backend/internal/models"
)

// AuditRepository reads the append-only verification history.
// Rows are written only through WorkoutRepository.ApplyVerification.
type AuditRepository interface {
	ListByLog(ctx context.Context, logID uuid.UUID) ([]models.AuditLog, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) ListByLog(ctx context.Context, logID uuid.UUID) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := r.db.WithContext(ctx).
		Where("log_id = ?", logID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
