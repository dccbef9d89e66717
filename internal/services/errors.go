package services

import (
	"errors"

	"github.com/fitchallenge/challenge-backend/internal/scoring"
)

var (
	ErrInvalidCategory     = errors.New("invalid workout type: must be cardio, strength, hiit, or tmarm")
	ErrInvalidDistanceUnit = scoring.ErrInvalidDistanceUnit
	ErrInvalidQuantity     = errors.New("workout quantity must be greater than zero")
	ErrInvalidActivity     = errors.New("invalid cardio activity type")
	ErrInvalidDate         = errors.New("activity_date must be YYYY-MM-DD and not in the future")
	ErrExerciseRequired    = errors.New("exercise name is required")
	ErrLogNotFound         = errors.New("workout log not found")
	ErrNotOwner            = errors.New("workout log belongs to another participant")

	ErrInvalidUnitCategory  = errors.New("invalid unit category")
	ErrInvalidDeliveryMode  = errors.New("delivery mode must be immediate, digest, or none")
	ErrInvalidDisplayName   = errors.New("display name must be 1-120 characters")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidStatusFilter  = errors.New("status must be all, pending, verified, or flagged")
)
