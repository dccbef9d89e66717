package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fitchallenge/challenge-backend/internal/config"
	"github.com/fitchallenge/challenge-backend/internal/dto"
	"github.com/fitchallenge/challenge-backend/internal/repository"
	"github.com/fitchallenge/challenge-backend/internal/session"
)

// ResolveAdmin marks the request as admin when the caller is listed in config
// (emails or IDs) or has the admin role on their profile. It never rejects.
func ResolveAdmin(users repository.UserRepository, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)
	adminUserIDs := parseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		userID, err := session.GetUserID(c)
		if err != nil {
			session.SetAdmin(c, false)
			return c.Next()
		}

		email := session.GetEmail(c)
		if (email != "" && contains(adminEmails, strings.ToLower(email))) || contains(adminUserIDs, userID.String()) {
			session.SetAdmin(c, true)
			return c.Next()
		}

		user, err := users.GetByID(c.UserContext(), userID)
		session.SetAdmin(c, err == nil && user.IsAdmin())
		return c.Next()
	}
}

// AdminRequired rejects callers that ResolveAdmin did not mark as admin.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := session.GetUserID(c); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		if !session.IsAdmin(c) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Admin access required",
			})
		}
		return c.Next()
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
