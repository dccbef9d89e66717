package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fitchallenge/challenge-backend/internal/models"
)

// UserRepository stores participant profiles and notification preferences.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
	// Ensure creates the profile on first sight and returns the stored row.
	Ensure(ctx context.Context, user *models.User) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	UpdatePreferences(ctx context.Context, id uuid.UUID, prefs models.NotificationPreferences) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *userRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	out := make(map[uuid.UUID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r *userRepo) ListAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Find(&users).Error
	return users, err
}

func (r *userRepo) Ensure(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(user).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, user.ID)
}

func (r *userRepo) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) UpdatePreferences(ctx context.Context, id uuid.UUID, prefs models.NotificationPreferences) error {
	// map form so false values are written
	return r.UpdateProfile(ctx, id, map[string]interface{}{
		"email_notifications": prefs.EmailNotifications,
		"notify_on_verified":  prefs.NotifyOnVerified,
		"notify_on_flagged":   prefs.NotifyOnFlagged,
		"delivery_mode":       prefs.DeliveryMode,
	})
}
