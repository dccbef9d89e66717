package dto

import (
	"github.com/google/uuid"

	"github.com/fitchallenge/challenge-backend/internal/models"
)

type VerifyLogRequest struct {
	LogID   uuid.UUID `json:"logId"`
	LogType string    `json:"logType"`
	Action  string    `json:"action"`
	Comment string    `json:"comment"`
}

type VerifyLogResponse struct {
	Success        bool                      `json:"success"`
	LogID          uuid.UUID                 `json:"log_id"`
	PreviousStatus models.VerificationStatus `json:"previous_status"`
	NewStatus      models.VerificationStatus `json:"new_status"`
	AuditID        uuid.UUID                 `json:"audit_id"`
}

// ReviewItem is a log enriched with its owner's profile for the admin queue.
type ReviewItem struct {
	WorkoutResponse
	UserID       uuid.UUID           `json:"user_id"`
	DisplayName  string              `json:"display_name"`
	Email        string              `json:"email,omitempty"`
	UnitName     string              `json:"unit_name,omitempty"`
	UnitCategory models.UnitCategory `json:"unit_category,omitempty"`
}

type ReviewQueueResponse struct {
	Items []ReviewItem `json:"items"`
	Pagination
}

type AuditHistoryResponse struct {
	LogID   uuid.UUID         `json:"log_id"`
	Entries []models.AuditLog `json:"entries"`
}

type StatsResponse struct {
	Categories map[models.Category]map[models.VerificationStatus]int64 `json:"categories"`
	Totals     map[models.VerificationStatus]int64                     `json:"totals"`
}
