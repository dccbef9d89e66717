package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitchallenge/challenge-backend/internal/config"
	"github.com/fitchallenge/challenge-backend/internal/dto"
	"github.com/fitchallenge/challenge-backend/internal/handlers"
	"github.com/fitchallenge/challenge-backend/internal/mailer"
	"github.com/fitchallenge/challenge-backend/internal/models"
	"github.com/fitchallenge/challenge-backend/internal/notify"
	"github.com/fitchallenge/challenge-backend/internal/repository/memory"
	"github.com/fitchallenge/challenge-backend/internal/scoring"
	"github.com/fitchallenge/challenge-backend/internal/services"
	"github.com/fitchallenge/challenge-backend/internal/verification"
)

const testSecret = "test-secret"

type testApp struct {
	app   *fiber.App
	store *memory.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:   testSecret,
		AdminEmails: "coach@example.com",
		CORSOrigins: "*",
		AppBaseURL:  "http://localhost:3000",
		MailFrom:    "Challenge HQ <noreply@example.com>",
		MailTimeout: time.Second,
		Challenge:   config.DefaultChallenge(),
	}
	repo, store := memory.NewRepository()

	engine := scoring.NewEngine(cfg.Challenge)
	composer := notify.NewComposer(cfg.MailFrom, cfg.AppBaseURL)
	dispatcher := notify.NewDispatcher(repo, mailer.LogSender{}, composer, cfg.MailTimeout)
	batcher := notify.NewBatcher(repo, mailer.LogSender{}, composer, cfg.MailTimeout)
	machine := verification.NewMachine(repo.Workouts, verification.NewPipeline(dispatcher.Steps()...))

	profileService := services.NewProfileService(repo.Users, services.NewContentFilter())
	h := Handlers{
		Health:        handlers.NewHealthHandler(nil, "memory"),
		Workouts:      handlers.NewWorkoutHandler(services.NewWorkoutService(repo.Workouts, engine)),
		Leaderboard:   handlers.NewLeaderboardHandler(services.NewLeaderboardService(repo, engine)),
		Notifications: handlers.NewNotificationHandler(services.NewInboxService(repo.Notifications)),
		Profile:       handlers.NewProfileHandler(profileService),
		Admin:         handlers.NewAdminHandler(services.NewReviewService(repo, machine), batcher),
	}

	app := fiber.New()
	Setup(app, cfg, repo.Users, profileService, h)
	return &testApp{app: app, store: store}
}

func token(t *testing.T, sub uuid.UUID, email string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub.String(),
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (ta *testApp) do(t *testing.T, method, path, bearer string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func TestHealthIsPublic(t *testing.T) {
	ta := newTestApp(t)
	status, body := ta.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)

	var res dto.HealthResponse
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, "memory", res.Store)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ta := newTestApp(t)

	status, _ := ta.do(t, http.MethodGet, "/api/leaderboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	bad := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "not-a-uuid", "exp": time.Now().Add(time.Hour).Unix()})
	signed, err := bad.SignedString([]byte(testSecret))
	require.NoError(t, err)
	status, _ = ta.do(t, http.MethodGet, "/api/leaderboard", signed, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminRoutesRejectParticipants(t *testing.T) {
	ta := newTestApp(t)
	participant := token(t, uuid.New(), "pat@example.com")

	status, _ := ta.do(t, http.MethodGet, "/api/admin/verification", participant, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = ta.do(t, http.MethodPost, "/api/admin/verification", participant, dto.VerifyLogRequest{
		LogID: uuid.New(), LogType: "cardio", Action: "verify",
	})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestLogFlagVerifyFlow(t *testing.T) {
	ta := newTestApp(t)
	patID := uuid.New()
	pat := token(t, patID, "pat@example.com")
	coach := token(t, uuid.New(), "Coach@Example.com")

	status, body := ta.do(t, http.MethodPost, "/api/workouts/cardio", pat, dto.LogWorkoutRequest{
		ActivityType: "run_walk_ruck", Distance: 10, DistanceUnit: "km",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var logged dto.WorkoutResponse
	require.NoError(t, json.Unmarshal(body, &logged))
	assert.Equal(t, models.StatusPending, logged.Status)

	// flag without a comment is rejected
	status, _ = ta.do(t, http.MethodPost, "/api/admin/verification", coach, dto.VerifyLogRequest{
		LogID: logged.ID, LogType: "cardio", Action: "flag",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = ta.do(t, http.MethodPost, "/api/admin/verification", coach, dto.VerifyLogRequest{
		LogID: logged.ID, LogType: "cardio", Action: "flag", Comment: "Please attach a GPS screenshot",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	var flagged dto.VerifyLogResponse
	require.NoError(t, json.Unmarshal(body, &flagged))
	assert.Equal(t, models.StatusPending, flagged.PreviousStatus)
	assert.Equal(t, models.StatusFlagged, flagged.NewStatus)

	status, body = ta.do(t, http.MethodGet, "/api/notifications/unread-count", pat, nil)
	require.Equal(t, http.StatusOK, status)
	var unread dto.UnreadCountResponse
	require.NoError(t, json.Unmarshal(body, &unread))
	assert.Equal(t, int64(1), unread.Unread)

	status, body = ta.do(t, http.MethodPost, "/api/admin/verification", coach, dto.VerifyLogRequest{
		LogID: logged.ID, LogType: "cardio", Action: "verify",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	var verified dto.VerifyLogResponse
	require.NoError(t, json.Unmarshal(body, &verified))
	assert.Equal(t, models.StatusFlagged, verified.PreviousStatus)
	assert.Equal(t, models.StatusVerified, verified.NewStatus)

	status, body = ta.do(t, http.MethodGet, "/api/admin/verification/cardio/"+logged.ID.String()+"/audit", coach, nil)
	require.Equal(t, http.StatusOK, status)
	var history dto.AuditHistoryResponse
	require.NoError(t, json.Unmarshal(body, &history))
	assert.Len(t, history.Entries, 2)

	// wrong type for the id is a 404, not a silent match
	status, _ = ta.do(t, http.MethodPost, "/api/admin/verification", coach, dto.VerifyLogRequest{
		LogID: logged.ID, LogType: "hiit", Action: "verify",
	})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLeaderboardRanksLoggedWork(t *testing.T) {
	ta := newTestApp(t)
	alex, sam := uuid.New(), uuid.New()
	alexTok := token(t, alex, "alex@example.com")
	samTok := token(t, sam, "sam@example.com")

	status, _ := ta.do(t, http.MethodPost, "/api/workouts/cardio", alexTok, dto.LogWorkoutRequest{
		ActivityType: "bike", Distance: 60, DistanceUnit: "miles",
	})
	require.Equal(t, http.StatusCreated, status)
	status, _ = ta.do(t, http.MethodPost, "/api/workouts/hiit", samTok, dto.LogWorkoutRequest{DurationMinutes: 30})
	require.Equal(t, http.StatusCreated, status)

	status, body := ta.do(t, http.MethodGet, "/api/leaderboard", samTok, nil)
	require.Equal(t, http.StatusOK, status)
	var board dto.LeaderboardResponse
	require.NoError(t, json.Unmarshal(body, &board))
	require.Len(t, board.Entries, 2)
	assert.Equal(t, alex, board.Entries[0].UserID)
	assert.Equal(t, "alex", board.Entries[0].DisplayName)
	assert.InDelta(t, 15, board.Entries[0].Overall, 1e-9)
	assert.Equal(t, 2, board.Entries[1].Rank)

	status, _ = ta.do(t, http.MethodGet, "/api/leaderboard?sort=members", samTok, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWorkoutValidationErrors(t *testing.T) {
	ta := newTestApp(t)
	tok := token(t, uuid.New(), "pat@example.com")

	status, _ := ta.do(t, http.MethodPost, "/api/workouts/yoga", tok, dto.LogWorkoutRequest{DurationMinutes: 10})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ta.do(t, http.MethodPost, "/api/workouts/cardio", tok, dto.LogWorkoutRequest{
		ActivityType: "bike", Distance: 5, DistanceUnit: "furlongs",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ta.do(t, http.MethodPost, "/api/workouts/strength", tok, dto.LogWorkoutRequest{Sets: 3, RepsPerSet: 10, WeightPerRep: 100})
	assert.Equal(t, http.StatusBadRequest, status)
}
