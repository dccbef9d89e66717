package dto

import "github.com/fitchallenge/challenge-backend/internal/models"

// UpdateProfileRequest uses pointers so omitted fields are left unchanged.
// An empty unit_name clears the unit.
type UpdateProfileRequest struct {
	DisplayName  *string `json:"display_name"`
	UnitName     *string `json:"unit_name"`
	UnitCategory *string `json:"unit_category"`
}

type UpdatePreferencesRequest struct {
	EmailNotifications *bool   `json:"email_notifications"`
	NotifyOnVerified   *bool   `json:"notify_on_verified"`
	NotifyOnFlagged    *bool   `json:"notify_on_flagged"`
	DeliveryMode       *string `json:"delivery_mode"`
}

type ProfileResponse struct {
	User models.User `json:"user"`
}
