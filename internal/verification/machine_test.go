package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitchallenge/challenge-backend/internal/models"
	"github.com/fitchallenge/challenge-backend/internal/repository/memory"
)

type recordingStep struct {
	name  string
	calls []Transition
	err   error
}

func (s *recordingStep) Name() string { return s.name }

func (s *recordingStep) Handle(_ context.Context, t Transition) error {
	s.calls = append(s.calls, t)
	return s.err
}

func seedLog(t *testing.T, category models.Category) (*Machine, *memory.Store, models.WorkoutLog, *recordingStep) {
	t.Helper()
	repo, store := memory.NewRepository()
	log := models.WorkoutLog{
		UserID:       uuid.New(),
		Category:     category,
		ActivityDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Sets:         3, RepsPerSet: 10, WeightPerRep: 135, TotalWeight: 4050,
		ExerciseName: "Bench",
	}
	require.NoError(t, repo.Workouts.Create(context.Background(), &log))

	step := &recordingStep{name: "record"}
	return NewMachine(repo.Workouts, NewPipeline(step)), store, log, step
}

func admin() Actor { return Actor{ID: uuid.New(), IsAdmin: true} }

func TestApplyVerifyFromPending(t *testing.T) {
	m, store, log, step := seedLog(t, models.CategoryStrength)
	actor := admin()

	tr, err := m.Apply(context.Background(), actor, Request{LogID: log.ID, Category: models.CategoryStrength, Action: ActionVerify})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, tr.Previous)
	assert.Equal(t, models.StatusVerified, tr.Next)
	assert.Equal(t, models.StatusVerified, tr.Log.Status())
	require.NotNil(t, tr.Log.VerifiedBy)
	assert.Equal(t, actor.ID, *tr.Log.VerifiedBy)
	assert.NotNil(t, tr.Log.VerifiedAt)

	audits := store.AuditLogs()
	require.Len(t, audits, 1)
	assert.Equal(t, tr.AuditID, audits[0].ID)
	assert.Equal(t, models.StatusPending, audits[0].PreviousStatus)
	assert.Equal(t, models.StatusVerified, audits[0].NewStatus)
	assert.Equal(t, "verify", audits[0].Action)

	require.Len(t, step.calls, 1)
	assert.Equal(t, log.ID, step.calls[0].Log.ID)
}

func TestFlagRequiresComment(t *testing.T) {
	m, store, log, step := seedLog(t, models.CategoryCardio)

	for _, comment := range []string{"", "   "} {
		_, err := m.Apply(context.Background(), admin(), Request{LogID: log.ID, Category: models.CategoryCardio, Action: ActionFlag, Comment: comment})
		require.ErrorIs(t, err, ErrCommentRequired)
	}
	assert.Empty(t, store.AuditLogs())
	assert.Empty(t, step.calls)
}

func TestVerifyAfterFlagClearsComment(t *testing.T) {
	m, store, log, _ := seedLog(t, models.CategoryHIIT)
	ctx := context.Background()

	flagged, err := m.Apply(ctx, admin(), Request{LogID: log.ID, Category: models.CategoryHIIT, Action: ActionFlag, Comment: "  photo missing "})
	require.NoError(t, err)
	require.NotNil(t, flagged.Log.AdminComment)
	assert.Equal(t, "photo missing", *flagged.Log.AdminComment)
	assert.Equal(t, models.StatusFlagged, flagged.Log.Status())

	verified, err := m.Apply(ctx, admin(), Request{LogID: log.ID, Category: models.CategoryHIIT, Action: ActionVerify})
	require.NoError(t, err)
	assert.Nil(t, verified.Log.AdminComment)
	assert.Equal(t, models.StatusFlagged, verified.Previous)

	reflagged, err := m.Apply(ctx, admin(), Request{LogID: log.ID, Category: models.CategoryHIIT, Action: ActionFlag, Comment: "duplicate"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, reflagged.Previous)

	audits := store.AuditLogs()
	require.Len(t, audits, 3)
	assert.Equal(t, []models.VerificationStatus{models.StatusPending, models.StatusFlagged, models.StatusVerified},
		[]models.VerificationStatus{audits[0].PreviousStatus, audits[1].PreviousStatus, audits[2].PreviousStatus})
}

func TestApplyRejectsBeforeMutation(t *testing.T) {
	m, store, log, _ := seedLog(t, models.CategoryTMARM)

	tests := []struct {
		name  string
		actor Actor
		req   Request
		want  error
	}{
		{"non admin", Actor{ID: uuid.New()}, Request{LogID: log.ID, Category: models.CategoryTMARM, Action: ActionVerify}, ErrForbidden},
		{"non admin with bad input", Actor{ID: uuid.New()}, Request{}, ErrForbidden},
		{"missing id", admin(), Request{Category: models.CategoryTMARM, Action: ActionVerify}, ErrMissingLogID},
		{"bad type", admin(), Request{LogID: log.ID, Category: "yoga", Action: ActionVerify}, ErrInvalidLogType},
		{"bad action", admin(), Request{LogID: log.ID, Category: models.CategoryTMARM, Action: "approve"}, ErrInvalidAction},
		{"unknown log", admin(), Request{LogID: uuid.New(), Category: models.CategoryTMARM, Action: ActionVerify}, ErrLogNotFound},
		{"wrong category", admin(), Request{LogID: log.ID, Category: models.CategoryCardio, Action: ActionVerify}, ErrLogNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Apply(context.Background(), tt.actor, tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, store.AuditLogs())
}

func TestSideEffectFailureDoesNotFailTransition(t *testing.T) {
	repo, store := memory.NewRepository()
	log := models.WorkoutLog{UserID: uuid.New(), Category: models.CategoryCardio, DistanceMiles: 3}
	require.NoError(t, repo.Workouts.Create(context.Background(), &log))

	failing := &recordingStep{name: "email", err: errors.New("smtp down")}
	after := &recordingStep{name: "after"}
	m := NewMachine(repo.Workouts, NewPipeline(failing, after).WithRetry(2, 0))

	tr, err := m.Apply(context.Background(), admin(), Request{LogID: log.ID, Category: models.CategoryCardio, Action: ActionVerify})
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, tr.Next)

	assert.Len(t, failing.calls, 2)
	assert.Len(t, after.calls, 1)
	assert.Len(t, store.AuditLogs(), 1)

	stored, err := repo.Workouts.GetByID(context.Background(), models.CategoryCardio, log.ID)
	require.NoError(t, err)
	assert.True(t, stored.Verified)
}

func TestPipelineResults(t *testing.T) {
	ok := SideEffectFunc{StepName: "ok", Fn: func(context.Context, Transition) error { return nil }}
	bad := SideEffectFunc{StepName: "bad", Fn: func(context.Context, Transition) error { return errors.New("nope") }}

	p := NewPipeline(ok)
	p.Use(bad)
	assert.Equal(t, []string{"ok", "bad"}, p.Steps())

	results := p.WithRetry(3, 0).Run(context.Background(), Transition{})
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 1, results[0].Attempts)
	assert.Error(t, results[1].Err)
	assert.Equal(t, 3, results[1].Attempts)
}

func TestPipelineStopsOnPermanentError(t *testing.T) {
	calls := 0
	sent := SideEffectFunc{StepName: "email", Fn: func(context.Context, Transition) error {
		calls++
		return Permanent(errors.New("deadline exceeded after write"))
	}}

	results := NewPipeline(sent).WithRetry(3, 0).Run(context.Background(), Transition{})
	require.Len(t, results, 1)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, results[0].Attempts)
	assert.True(t, IsPermanent(results[0].Err))
	assert.EqualError(t, results[0].Err, "deadline exceeded after write")

	assert.Nil(t, Permanent(nil))
	assert.False(t, IsPermanent(errors.New("plain")))
}
