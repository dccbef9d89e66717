package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fitchallenge/challenge-backend/internal/models"
)

// DigestRepository is the queue drained by the digest sweep.
type DigestRepository interface {
	Enqueue(ctx context.Context, entry *models.DigestQueueEntry) error
	// Claim atomically tags every unprocessed, unclaimed entry with token and
	// returns them oldest first. Claims older than staleBefore are taken over.
	Claim(ctx context.Context, token uuid.UUID, now, staleBefore time.Time) ([]models.DigestQueueEntry, error)
	MarkProcessed(ctx context.Context, ids []uuid.UUID, at time.Time) error
	PurgeProcessed(ctx context.Context, before time.Time) (int64, error)
}

type digestRepo struct {
	db *gorm.DB
}

func NewDigestRepo(db *gorm.DB) DigestRepository {
	return &digestRepo{db: db}
}

func (r *digestRepo) Enqueue(ctx context.Context, entry *models.DigestQueueEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *digestRepo) Claim(ctx context.Context, token uuid.UUID, now, staleBefore time.Time) ([]models.DigestQueueEntry, error) {
	var claimed []models.DigestQueueEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		err := tx.Model(&models.DigestQueueEntry{}).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("processed = ? AND (claim_token IS NULL OR claimed_at < ?)", false, staleBefore).
			Order("created_at ASC").
			Pluck("id", &ids).Error
		if err != nil || len(ids) == 0 {
			return err
		}
		err = tx.Model(&models.DigestQueueEntry{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{"claim_token": token, "claimed_at": now}).Error
		if err != nil {
			return err
		}
		return tx.Where("claim_token = ?", token).Order("created_at ASC").Find(&claimed).Error
	})
	return claimed, err
}

func (r *digestRepo) MarkProcessed(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.DigestQueueEntry{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"processed": true, "processed_at": at}).Error
}

func (r *digestRepo) PurgeProcessed(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("processed = ? AND processed_at < ?", true, before).
		Delete(&models.DigestQueueEntry{})
	return result.RowsAffected, result.Error
}
