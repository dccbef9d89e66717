package dto

import "github.com/fitchallenge/challenge-backend/internal/models"

type NotificationListResponse struct {
	Items  []models.Notification `json:"items"`
	Total  int64                 `json:"total"`
	Unread int64                 `json:"unread"`
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
