package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/fitchallenge/challenge-backend/internal/dto"
	"github.com/fitchallenge/challenge-backend/internal/repository"
)

// InboxService exposes a participant's in-app notifications. Every operation is
// scoped to the recipient; other users' notifications read as not found.
type InboxService struct {
	notifications repository.NotificationRepository
}

func NewInboxService(notifications repository.NotificationRepository) *InboxService {
	return &InboxService{notifications: notifications}
}

func (s *InboxService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) (*dto.NotificationListResponse, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	items, total, err := s.notifications.ListByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	unread, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.NotificationListResponse{Items: items, Total: total, Unread: unread}, nil
}

func (s *InboxService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifications.CountUnread(ctx, userID)
}

func (s *InboxService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return mapNotificationErr(s.notifications.MarkRead(ctx, userID, id))
}

func (s *InboxService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID)
}

func (s *InboxService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return mapNotificationErr(s.notifications.Delete(ctx, userID, id))
}

func mapNotificationErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}
