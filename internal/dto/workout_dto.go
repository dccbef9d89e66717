package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/fitchallenge/challenge-backend/internal/models"
	"github.com/fitchallenge/challenge-backend/internal/scoring"
)

// LogWorkoutRequest carries the fields of every variant; only those matching
// the path's workout type are read.
type LogWorkoutRequest struct {
	ActivityDate string `json:"activity_date"` // YYYY-MM-DD, defaults to today (UTC)

	ActivityType string  `json:"activity_type"`
	Distance     float64 `json:"distance"`
	DistanceUnit string  `json:"distance_unit"` // miles, km, meters
	Notes        string  `json:"notes"`

	ExerciseName string  `json:"exercise_name"`
	Sets         int     `json:"sets"`
	RepsPerSet   int     `json:"reps_per_set"`
	WeightPerRep float64 `json:"weight_per_rep"`

	DurationMinutes float64 `json:"duration_minutes"`
	Description     string  `json:"description"`
}

type WorkoutResponse struct {
	ID           uuid.UUID                 `json:"id"`
	Type         models.Category           `json:"type"`
	ActivityDate string                    `json:"activity_date"`
	Details      string                    `json:"details"`
	Quantity     float64                   `json:"quantity"`
	Status       models.VerificationStatus `json:"status"`
	AdminComment *string                   `json:"admin_comment,omitempty"`
	VerifiedAt   *time.Time                `json:"verified_at,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
	Log          models.WorkoutLog         `json:"log"`
}

func NewWorkoutResponse(w models.WorkoutLog) WorkoutResponse {
	return WorkoutResponse{
		ID:           w.ID,
		Type:         w.Category,
		ActivityDate: w.ActivityDate.Format("2006-01-02"),
		Details:      w.Details(),
		Quantity:     w.Quantity(),
		Status:       w.Status(),
		AdminComment: w.AdminComment,
		VerifiedAt:   w.VerifiedAt,
		CreatedAt:    w.CreatedAt,
		Log:          w,
	}
}

type CategoryProgress struct {
	Total      float64 `json:"total"`
	Minimum    float64 `json:"minimum"`
	Percentage float64 `json:"percentage"`
	Remaining  float64 `json:"remaining"`
	IsComplete bool    `json:"is_complete"`
}

// ProgressResponse exposes both overall formulas under distinct names:
// dashboard_overall is the plain mean, leaderboard_overall the weighted sum used for ranking.
type ProgressResponse struct {
	Totals             scoring.Totals                       `json:"totals"`
	Categories         map[models.Category]CategoryProgress `json:"categories"`
	DashboardOverall   float64                              `json:"dashboard_overall"`
	LeaderboardOverall float64                              `json:"leaderboard_overall"`
	LogCount           int                                  `json:"log_count"`
}
