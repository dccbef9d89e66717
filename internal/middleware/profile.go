package middleware

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fitchallenge/challenge-backend/internal/models"
	"github.com/fitchallenge/challenge-backend/internal/session"
)

type ProfileEnsurer interface {
	Ensure(ctx context.Context, id uuid.UUID, email, name string) (*models.User, error)
}

// EnsureProfile creates the participant profile on first authenticated request,
// seeded from the token's email and name claims. Failures are logged, not fatal.
func EnsureProfile(profiles ProfileEnsurer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := session.GetUserID(c)
		if err != nil {
			return c.Next()
		}
		if _, err := profiles.Ensure(c.UserContext(), userID, session.GetEmail(c), session.GetName(c)); err != nil {
			slog.Error("failed to ensure profile", "user_id", userID.String(), "error", err.Error())
		}
		return c.Next()
	}
}
