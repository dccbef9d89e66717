package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitchallenge/challenge-backend/internal/dto"
	"github.com/fitchallenge/challenge-backend/internal/models"
	"github.com/fitchallenge/challenge-backend/internal/repository/memory"
)

func ptr[T any](v T) *T { return &v }

func TestEnsureCreatesOnceWithDefaults(t *testing.T) {
	repo, _ := memory.NewRepository()
	svc := NewProfileService(repo.Users, nil)
	ctx := context.Background()
	id := uuid.New()

	u, err := svc.Ensure(ctx, id, "casey@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "casey", u.DisplayName)
	assert.Equal(t, models.DefaultPreferences(), u.NotificationPreferences)

	again, err := svc.Ensure(ctx, id, "casey@example.com", "Someone Else")
	require.NoError(t, err)
	assert.Equal(t, "casey", again.DisplayName)
}

func TestUpdateProfile(t *testing.T) {
	repo, _ := memory.NewRepository()
	svc := NewProfileService(repo.Users, nil)
	ctx := context.Background()
	id := uuid.New()
	_, err := svc.Ensure(ctx, id, "pat@example.com", "Pat")
	require.NoError(t, err)

	u, err := svc.Update(ctx, id, &dto.UpdateProfileRequest{UnitName: ptr(" Bravo Co "), UnitCategory: ptr("Veterans")})
	require.NoError(t, err)
	require.NotNil(t, u.UnitName)
	assert.Equal(t, "Bravo Co", *u.UnitName)
	assert.Equal(t, models.UnitVeterans, u.UnitCategory)
	assert.Equal(t, "Pat", u.DisplayName)

	u, err = svc.Update(ctx, id, &dto.UpdateProfileRequest{UnitName: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, u.UnitName)

	_, err = svc.Update(ctx, id, &dto.UpdateProfileRequest{UnitCategory: ptr("navy")})
	require.ErrorIs(t, err, ErrInvalidUnitCategory)
	_, err = svc.Update(ctx, id, &dto.UpdateProfileRequest{DisplayName: ptr("  ")})
	require.ErrorIs(t, err, ErrInvalidDisplayName)

	_, err = svc.Update(ctx, id, &dto.UpdateProfileRequest{DisplayName: ptr("visit www.spam.example.com")})
	require.Error(t, err)
	assert.True(t, IsNameRejected(err))
}

func TestUpdatePreferencesIsPartial(t *testing.T) {
	repo, _ := memory.NewRepository()
	svc := NewProfileService(repo.Users, nil)
	ctx := context.Background()
	id := uuid.New()
	_, err := svc.Ensure(ctx, id, "pat@example.com", "Pat")
	require.NoError(t, err)

	prefs, err := svc.UpdatePreferences(ctx, id, &dto.UpdatePreferencesRequest{DeliveryMode: ptr("digest"), NotifyOnVerified: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryDigest, prefs.DeliveryMode)
	assert.False(t, prefs.NotifyOnVerified)
	assert.True(t, prefs.NotifyOnFlagged)
	assert.True(t, prefs.EmailNotifications)

	stored, err := svc.Preferences(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, prefs, stored)

	_, err = svc.UpdatePreferences(ctx, id, &dto.UpdatePreferencesRequest{DeliveryMode: ptr("weekly")})
	require.ErrorIs(t, err, ErrInvalidDeliveryMode)
}

func TestContentFilter(t *testing.T) {
	f := NewContentFilter()
	tests := []struct {
		in     string
		ok     bool
		reason string
	}{
		{"Bravo Company", true, ""},
		{"", true, ""},
		{"http://example.com", false, "url_not_allowed"},
		{"me@example.com", false, "contact_info_not_allowed"},
		{"Shit Squad", false, "inappropriate_language"},
		{"Classic Assassins", true, ""},
	}
	for _, tt := range tests {
		ok, reason := f.Check(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.reason, reason, tt.in)
	}
}
