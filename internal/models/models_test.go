package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerificationStatus(t *testing.T) {
	empty := ""
	note := "needs proof"
	tests := []struct {
		name string
		v    Verification
		want VerificationStatus
	}{
		{"fresh log", Verification{}, StatusPending},
		{"empty comment is pending", Verification{AdminComment: &empty}, StatusPending},
		{"comment without verify", Verification{AdminComment: &note}, StatusFlagged},
		{"verified wins over comment", Verification{Verified: true, AdminComment: &note}, StatusVerified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Status())
		})
	}
}

func TestWantsEmail(t *testing.T) {
	p := DefaultPreferences()
	assert.True(t, p.WantsEmail(StatusVerified))
	assert.True(t, p.WantsEmail(StatusFlagged))
	assert.False(t, p.WantsEmail(StatusPending))

	p.NotifyOnVerified = false
	assert.False(t, p.WantsEmail(StatusVerified))
	assert.True(t, p.WantsEmail(StatusFlagged))

	p.DeliveryMode = DeliveryNone
	assert.False(t, p.WantsEmail(StatusFlagged))

	p = DefaultPreferences()
	p.EmailNotifications = false
	assert.False(t, p.WantsEmail(StatusFlagged))
}

func TestWorkoutLogDetails(t *testing.T) {
	cardio := WorkoutLog{Category: CategoryCardio, ActivityType: CardioRunWalkRuck, DistanceMiles: 6.2137}
	assert.Equal(t, "Run/Walk/Ruck: 6.21 miles", cardio.Details())
	assert.InDelta(t, 6.2137, cardio.Quantity(), 1e-9)

	strength := WorkoutLog{Category: CategoryStrength, ExerciseName: " Deadlift ", Sets: 5, RepsPerSet: 5, WeightPerRep: 225, TotalWeight: 5625}
	assert.Equal(t, "Deadlift: 5 x 5 @ 225 lbs (5625 lbs total)", strength.Details())
	assert.Equal(t, 5625.0, strength.Quantity())

	tmarm := WorkoutLog{Category: CategoryTMARM, DurationMinutes: 42.5}
	assert.Equal(t, "TMAR-M: 42.5 minutes", tmarm.Details())
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, CategoryHIIT.Valid())
	assert.False(t, Category("yoga").Valid())
	assert.True(t, UnitMilitaryFamily.Valid())
	assert.False(t, UnitCategory("Veterans").Valid())
	assert.True(t, DeliveryDigest.Valid())
	assert.False(t, CardioActivity("skate").Valid())
}
