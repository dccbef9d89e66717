package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category discriminates the four workout log variants stored in workout_logs.
type Category string

const (
	CategoryCardio   Category = "cardio"
	CategoryStrength Category = "strength"
	CategoryHIIT     Category = "hiit"
	CategoryTMARM    Category = "tmarm"
)

var Categories = []Category{CategoryCardio, CategoryStrength, CategoryHIIT, CategoryTMARM}

func (c Category) Valid() bool {
	switch c {
	case CategoryCardio, CategoryStrength, CategoryHIIT, CategoryTMARM:
		return true
	}
	return false
}

func (c Category) Label() string {
	switch c {
	case CategoryCardio:
		return "Cardio"
	case CategoryStrength:
		return "Strength"
	case CategoryHIIT:
		return "HIIT"
	case CategoryTMARM:
		return "TMAR-M"
	}
	return string(c)
}

// CardioActivity is the cardio subtype.
type CardioActivity string

const (
	CardioRunWalkRuck   CardioActivity = "run_walk_ruck"
	CardioBike          CardioActivity = "bike"
	CardioSwim          CardioActivity = "swim"
	CardioRowElliptical CardioActivity = "row_elliptical"
)

func (a CardioActivity) Valid() bool {
	switch a {
	case CardioRunWalkRuck, CardioBike, CardioSwim, CardioRowElliptical:
		return true
	}
	return false
}

func (a CardioActivity) Label() string {
	switch a {
	case CardioRunWalkRuck:
		return "Run/Walk/Ruck"
	case CardioBike:
		return "Bike"
	case CardioSwim:
		return "Swim"
	case CardioRowElliptical:
		return "Row/Elliptical"
	}
	return string(a)
}

// VerificationStatus is derived from the stored verification fields, never stored itself.
type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusVerified VerificationStatus = "verified"
	StatusFlagged  VerificationStatus = "flagged"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusFlagged:
		return true
	}
	return false
}

// Verification is the review state shared by every workout variant.
type Verification struct {
	Verified     bool       `gorm:"not null;default:false;index" json:"verified"`
	AdminComment *string    `gorm:"type:text" json:"admin_comment,omitempty"`
	VerifiedBy   *uuid.UUID `gorm:"type:uuid" json:"verified_by,omitempty"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
}

// Status reports verified when the flag is set, flagged when an unverified
// record carries a comment, and pending otherwise.
func (v Verification) Status() VerificationStatus {
	if v.Verified {
		return StatusVerified
	}
	if v.AdminComment != nil && *v.AdminComment != "" {
		return StatusFlagged
	}
	return StatusPending
}

// WorkoutLog is one logged activity. Variant fields are populated according to Category.
type WorkoutLog struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Category     Category  `gorm:"size:20;not null;index" json:"category"`
	ActivityDate time.Time `gorm:"type:date;not null;index" json:"activity_date"`

	// Cardio
	ActivityType  CardioActivity `gorm:"size:30" json:"activity_type,omitempty"`
	DistanceMiles float64        `json:"distance_miles,omitempty"`
	Notes         string         `gorm:"type:text" json:"notes,omitempty"`

	// Strength; TotalWeight is fixed at write time.
	ExerciseName string  `gorm:"size:120" json:"exercise_name,omitempty"`
	Sets         int     `json:"sets,omitempty"`
	RepsPerSet   int     `json:"reps_per_set,omitempty"`
	WeightPerRep float64 `json:"weight_per_rep,omitempty"`
	TotalWeight  float64 `json:"total_weight,omitempty"`

	// HIIT and TMAR-M
	DurationMinutes float64 `json:"duration_minutes,omitempty"`
	Description     string  `gorm:"type:text" json:"description,omitempty"`

	Verification `gorm:"embedded"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WorkoutLog) TableName() string {
	return "workout_logs"
}

// Quantity returns the measured amount that counts toward the category minimum.
func (w *WorkoutLog) Quantity() float64 {
	switch w.Category {
	case CategoryCardio:
		return w.DistanceMiles
	case CategoryStrength:
		return w.TotalWeight
	case CategoryHIIT, CategoryTMARM:
		return w.DurationMinutes
	}
	return 0
}

// Details renders the one-line human readable summary used in notifications and digests.
func (w *WorkoutLog) Details() string {
	switch w.Category {
	case CategoryCardio:
		return fmt.Sprintf("%s: %.2f miles", w.ActivityType.Label(), w.DistanceMiles)
	case CategoryStrength:
		return fmt.Sprintf("%s: %d x %d @ %s lbs (%s lbs total)",
			strings.TrimSpace(w.ExerciseName), w.Sets, w.RepsPerSet,
			trimFloat(w.WeightPerRep), trimFloat(w.TotalWeight))
	case CategoryHIIT, CategoryTMARM:
		return fmt.Sprintf("%s: %s minutes", w.Category.Label(), trimFloat(w.DurationMinutes))
	}
	return w.Category.Label()
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
