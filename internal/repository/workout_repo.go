package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitchallenge/challenge-backend/internal/models"
)

// LogFilter narrows the admin review queue.
type LogFilter struct {
	Status   models.VerificationStatus // empty = all
	Category models.Category           // empty = all
	UserID   *uuid.UUID
	Offset   int
	Limit    int
}

// StatusCounts is keyed by category, then status.
type StatusCounts map[models.Category]map[models.VerificationStatus]int64

// WorkoutRepository is the Log Store.
type WorkoutRepository interface {
	Create(ctx context.Context, log *models.WorkoutLog) error
	GetByID(ctx context.Context, category models.Category, id uuid.UUID) (*models.WorkoutLog, error)
	ListByUser(ctx context.Context, userID uuid.UUID, category models.Category) ([]models.WorkoutLog, error)
	ListAll(ctx context.Context) ([]models.WorkoutLog, error)
	Search(ctx context.Context, filter LogFilter) ([]models.WorkoutLog, int64, error)
	CountByStatus(ctx context.Context) (StatusCounts, error)
	Delete(ctx context.Context, userID uuid.UUID, category models.Category, id uuid.UUID) error
	// ApplyVerification writes the verification fields and appends the audit row together.
	ApplyVerification(ctx context.Context, logID uuid.UUID, v models.Verification, audit *models.AuditLog) error
}

type workoutRepo struct {
	db *gorm.DB
}

func NewWorkoutRepo(db *gorm.DB) WorkoutRepository {
	return &workoutRepo{db: db}
}

func (r *workoutRepo) Create(ctx context.Context, log *models.WorkoutLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *workoutRepo) GetByID(ctx context.Context, category models.Category, id uuid.UUID) (*models.WorkoutLog, error) {
	var log models.WorkoutLog
	err := r.db.WithContext(ctx).
		Where("id = ? AND category = ?", id, category).
		First(&log).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &log, nil
}

func (r *workoutRepo) ListByUser(ctx context.Context, userID uuid.UUID, category models.Category) ([]models.WorkoutLog, error) {
	var logs []models.WorkoutLog
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Order("activity_date DESC, created_at DESC").Find(&logs).Error
	return logs, err
}

func (r *workoutRepo) ListAll(ctx context.Context) ([]models.WorkoutLog, error) {
	var logs []models.WorkoutLog
	err := r.db.WithContext(ctx).Find(&logs).Error
	return logs, err
}

// StatusScope applies the derived-status predicate: verified = flag set,
// flagged = unverified with a comment, pending = unverified without one.
func StatusScope(status models.VerificationStatus) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch status {
		case models.StatusVerified:
			return db.Where("verified = ?", true)
		case models.StatusFlagged:
			return db.Where("verified = ? AND admin_comment IS NOT NULL AND admin_comment <> ''", false)
		case models.StatusPending:
			return db.Where("verified = ? AND (admin_comment IS NULL OR admin_comment = '')", false)
		}
		return db
	}
}

func (r *workoutRepo) Search(ctx context.Context, filter LogFilter) ([]models.WorkoutLog, int64, error) {
	var logs []models.WorkoutLog
	var total int64

	query := r.db.WithContext(ctx).Model(&models.WorkoutLog{}).Scopes(StatusScope(filter.Status))
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	err := query.Order("created_at DESC").Limit(limit).Offset(filter.Offset).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *workoutRepo) CountByStatus(ctx context.Context) (StatusCounts, error) {
	counts := make(StatusCounts, len(models.Categories))
	for _, c := range models.Categories {
		counts[c] = make(map[models.VerificationStatus]int64, 3)
		for _, s := range []models.VerificationStatus{models.StatusPending, models.StatusVerified, models.StatusFlagged} {
			var n int64
			err := r.db.WithContext(ctx).Model(&models.WorkoutLog{}).
				Scopes(StatusScope(s)).
				Where("category = ?", c).
				Count(&n).Error
			if err != nil {
				return nil, fmt.Errorf("count %s/%s: %w", c, s, err)
			}
			counts[c][s] = n
		}
	}
	return counts, nil
}

func (r *workoutRepo) Delete(ctx context.Context, userID uuid.UUID, category models.Category, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND category = ?", id, userID, category).
		Delete(&models.WorkoutLog{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *workoutRepo) ApplyVerification(ctx context.Context, logID uuid.UUID, v models.Verification, audit *models.AuditLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.WorkoutLog{}).
			Where("id = ?", logID).
			Updates(map[string]interface{}{
				"verified":      v.Verified,
				"admin_comment": v.AdminComment,
				"verified_by":   v.VerifiedBy,
				"verified_at":   v.VerifiedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if audit.ID == uuid.Nil {
			audit.ID = uuid.New()
		}
		return tx.Create(audit).Error
	})
}
