package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fitchallenge/challenge-backend/internal/config"
	"github.com/fitchallenge/challenge-backend/internal/handlers"
	"github.com/fitchallenge/challenge-backend/internal/middleware"
	"github.com/fitchallenge/challenge-backend/internal/repository"
)

type Handlers struct {
	Health        *handlers.HealthHandler
	Workouts      *handlers.WorkoutHandler
	Leaderboard   *handlers.LeaderboardHandler
	Notifications *handlers.NotificationHandler
	Profile       *handlers.ProfileHandler
	Admin         *handlers.AdminHandler
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	users repository.UserRepository,
	profiles middleware.ProfileEnsurer,
	h Handlers,
) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	protected := api.Group("",
		middleware.JWTProtected(cfg),
		middleware.EnsureProfile(profiles),
		middleware.ResolveAdmin(users, cfg),
	)

	// Workouts and progress
	protected.Post("/workouts/:type", h.Workouts.Create)
	protected.Get("/workouts", h.Workouts.List)
	protected.Delete("/workouts/:type/:id", h.Workouts.Delete)
	protected.Get("/progress", h.Workouts.Progress)

	// Leaderboards
	protected.Get("/leaderboard", h.Leaderboard.Individuals)
	protected.Get("/leaderboard/units", h.Leaderboard.Units)

	// In-app notifications
	protected.Get("/notifications", h.Notifications.List)
	protected.Get("/notifications/unread-count", h.Notifications.UnreadCount)
	protected.Post("/notifications/read-all", h.Notifications.MarkAllRead)
	protected.Patch("/notifications/:id/read", h.Notifications.MarkRead)
	protected.Delete("/notifications/:id", h.Notifications.Delete)

	// Profile
	protected.Get("/profile", h.Profile.Get)
	protected.Put("/profile", h.Profile.Update)
	protected.Get("/profile/preferences", h.Profile.GetPreferences)
	protected.Put("/profile/preferences", h.Profile.UpdatePreferences)

	// Admin verification panel (protected + admin required)
	admin := protected.Group("/admin", middleware.AdminRequired())
	admin.Get("/verification", h.Admin.ListLogs)
	admin.Post("/verification", h.Admin.VerifyLog)
	admin.Get("/verification/:type/:id/audit", h.Admin.AuditHistory)
	admin.Get("/stats", h.Admin.Stats)
	admin.Post("/digest/run", h.Admin.RunDigest)
}
