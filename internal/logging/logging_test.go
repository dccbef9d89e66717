package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitchallenge/challenge-backend/internal/models"
	"github.com/fitchallenge/challenge-backend/internal/repository/memory"
)

func TestToSystemLogExtractsKnownAttrs(t *testing.T) {
	rec := slog.NewRecord(time.Now(), slog.LevelError, "verification side effect failed", 0)
	rec.AddAttrs(
		slog.String("step", "email_notification"),
		slog.String("log_id", "abc"),
		slog.String("user_id", "u-1"),
		slog.String("action", "flag"),
		slog.String("error", "smtp down"),
		slog.Int("attempts", 3),
	)

	entry := toSystemLog(rec)
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "email_notification", entry.Action)
	require.NotNil(t, entry.LogID)
	assert.Equal(t, "abc", *entry.LogID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-1", *entry.UserID)
	assert.Equal(t, "smtp down", entry.Error)

	var extra map[string]any
	require.NoError(t, json.Unmarshal(entry.Extra, &extra))
	assert.Equal(t, "flag", extra["action"])
	assert.EqualValues(t, 3, extra["attempts"])
}

func TestMultiHandlerRespectsLevels(t *testing.T) {
	var info, errs bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	))

	logger.Info("sweep done")
	logger.Error("sweep failed")

	assert.Contains(t, info.String(), "sweep done")
	assert.Contains(t, info.String(), "sweep failed")
	assert.NotContains(t, errs.String(), "sweep done")
	assert.Contains(t, errs.String(), "sweep failed")
}

func TestRunCleanupPurgesProcessedDigestEntries(t *testing.T) {
	repo, store := memory.NewRepository()
	ctx := context.Background()
	user := uuid.New()

	old := &models.DigestQueueEntry{UserID: user, LogID: uuid.New(), LogCategory: models.CategoryCardio}
	fresh := &models.DigestQueueEntry{UserID: user, LogID: uuid.New(), LogCategory: models.CategoryHIIT}
	pending := &models.DigestQueueEntry{UserID: user, LogID: uuid.New(), LogCategory: models.CategoryTMARM}
	for _, e := range []*models.DigestQueueEntry{old, fresh, pending} {
		require.NoError(t, repo.Digests.Enqueue(ctx, e))
	}

	now := time.Now().UTC()
	require.NoError(t, repo.Digests.MarkProcessed(ctx, []uuid.UUID{old.ID}, now.Add(-40*24*time.Hour)))
	require.NoError(t, repo.Digests.MarkProcessed(ctx, []uuid.UUID{fresh.ID}, now.Add(-time.Hour)))

	RunCleanup(ctx, nil, repo.Digests, 30*24*time.Hour, now)

	left := store.DigestEntries(user)
	require.Len(t, left, 2)
	for _, e := range left {
		assert.NotEqual(t, old.ID, e.ID)
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandlerKeepsWritingAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(failingHandler{}, slog.NewJSONHandler(&buf, nil))

	rec := slog.NewRecord(time.Now(), slog.LevelError, "digest send failed", 0)
	err := h.Handle(context.Background(), rec)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink down")
	assert.Contains(t, buf.String(), "digest send failed")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestPGHandlerWithAttrsCarriesContext(t *testing.T) {
	sink := &pgSink{}
	var h slog.Handler = &PGHandler{sink: sink}
	h = h.WithAttrs([]slog.Attr{slog.String("request_id", "req-7")})

	rec := slog.NewRecord(time.Now(), slog.LevelError, "leaderboard build failed", 0)
	require.NoError(t, h.Handle(context.Background(), rec))

	require.Len(t, sink.buffer, 1)
	assert.Equal(t, "req-7", sink.buffer[0].RequestID)
	assert.Equal(t, "leaderboard build failed", sink.buffer[0].Message)
}
