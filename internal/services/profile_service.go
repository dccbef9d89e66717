package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/fitchallenge/challenge-backend/internal/dto"
	"github.com/fitchallenge/challenge-backend/internal/models"
	"github.com/fitchallenge/challenge-backend/internal/repository"
)

// NameRejectedError carries the content filter's message for the caller.
type NameRejectedError struct {
	Field  string
	Reason string
	Msg    string
}

func (e *NameRejectedError) Error() string {
	return e.Field + ": " + e.Msg
}

type ProfileService struct {
	users  repository.UserRepository
	filter *ContentFilter
	boards BoardCache
}

func NewProfileService(users repository.UserRepository, filter *ContentFilter) *ProfileService {
	if filter == nil {
		filter = NewContentFilter()
	}
	return &ProfileService{users: users, filter: filter}
}

// Ensure creates the profile the first time an identity is seen, with default preferences.
func (s *ProfileService) Ensure(ctx context.Context, id uuid.UUID, email, name string) (*models.User, error) {
	if name == "" {
		if at := strings.Index(email, "@"); at > 0 {
			name = email[:at]
		}
	}
	return s.users.Ensure(ctx, &models.User{
		ID:                      id,
		Email:                   email,
		DisplayName:             name,
		Role:                    "user",
		UnitCategory:            models.UnitOther,
		NotificationPreferences: models.DefaultPreferences(),
	})
}

// WithCache drops cached leaderboards when a name or unit changes.
func (s *ProfileService) WithCache(boards BoardCache) *ProfileService {
	s.boards = boards
	return s
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *ProfileService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	fields := make(map[string]interface{})

	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" || utf8.RuneCountInString(name) > 120 {
			return nil, ErrInvalidDisplayName
		}
		if err := s.checkName("display_name", name); err != nil {
			return nil, err
		}
		fields["display_name"] = name
	}
	if req.UnitName != nil {
		unit := strings.TrimSpace(*req.UnitName)
		if utf8.RuneCountInString(unit) > 120 {
			return nil, ErrInvalidDisplayName
		}
		if unit == "" {
			fields["unit_name"] = (*string)(nil)
		} else {
			if err := s.checkName("unit_name", unit); err != nil {
				return nil, err
			}
			fields["unit_name"] = &unit
		}
	}
	if req.UnitCategory != nil {
		c := models.UnitCategory(strings.ToLower(strings.TrimSpace(*req.UnitCategory)))
		if !c.Valid() {
			return nil, ErrInvalidUnitCategory
		}
		fields["unit_category"] = c
	}

	if len(fields) > 0 {
		if err := s.users.UpdateProfile(ctx, id, fields); err != nil {
			return nil, err
		}
		invalidateBoards(ctx, s.boards, "profile_updated")
	}
	return s.users.GetByID(ctx, id)
}

func (s *ProfileService) Preferences(ctx context.Context, id uuid.UUID) (models.NotificationPreferences, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.NotificationPreferences{}, err
	}
	return u.NotificationPreferences, nil
}

// UpdatePreferences applies a partial update on top of the stored preferences.
func (s *ProfileService) UpdatePreferences(ctx context.Context, id uuid.UUID, req *dto.UpdatePreferencesRequest) (models.NotificationPreferences, error) {
	prefs, err := s.Preferences(ctx, id)
	if err != nil {
		return prefs, err
	}
	if req.EmailNotifications != nil {
		prefs.EmailNotifications = *req.EmailNotifications
	}
	if req.NotifyOnVerified != nil {
		prefs.NotifyOnVerified = *req.NotifyOnVerified
	}
	if req.NotifyOnFlagged != nil {
		prefs.NotifyOnFlagged = *req.NotifyOnFlagged
	}
	if req.DeliveryMode != nil {
		mode := models.DeliveryMode(strings.ToLower(strings.TrimSpace(*req.DeliveryMode)))
		if !mode.Valid() {
			return prefs, ErrInvalidDeliveryMode
		}
		prefs.DeliveryMode = mode
	}
	if err := s.users.UpdatePreferences(ctx, id, prefs); err != nil {
		return prefs, err
	}
	return prefs, nil
}

func (s *ProfileService) checkName(field, value string) error {
	if ok, reason := s.filter.Check(value); !ok {
		return &NameRejectedError{Field: field, Reason: reason, Msg: s.filter.RejectionMessage(reason)}
	}
	return nil
}

// IsNameRejected reports whether err came from the content filter.
func IsNameRejected(err error) bool {
	var target *NameRejectedError
	return errors.As(err, &target)
}
