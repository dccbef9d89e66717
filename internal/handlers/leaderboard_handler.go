package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fitchallenge/challenge-backend/internal/dto"
	"github.com/fitchallenge/challenge-backend/internal/leaderboard"
	"github.com/fitchallenge/challenge-backend/internal/services"
)

type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

func (h *LeaderboardHandler) Individuals(c *fiber.Ctx) error {
	metric, err := leaderboard.ParseMetric(c.Query("sort"))
	if err != nil || metric == leaderboard.MetricMembers {
		return badRequest(c, "sort must be overall, cardio, strength, hiit, or tmarm")
	}
	entries, err := h.leaderboardService.Individuals(c.UserContext(), metric)
	if err != nil {
		return respondError(c, err, "Failed to build leaderboard")
	}
	return c.JSON(dto.LeaderboardResponse{Sort: metric, Entries: entries})
}

func (h *LeaderboardHandler) Units(c *fiber.Ctx) error {
	metric, err := leaderboard.ParseMetric(c.Query("sort"))
	if err != nil {
		return badRequest(c, "sort must be overall, cardio, strength, hiit, tmarm, or members")
	}
	category := strings.ToLower(c.Query("category", "all"))
	minMembers := c.QueryInt("min_members", 0)
	if minMembers <= 0 {
		minMembers = h.leaderboardService.DefaultUnitMinMembers()
	}

	units, err := h.leaderboardService.Units(c.UserContext(), metric, category, minMembers)
	if err != nil {
		return respondError(c, err, "Failed to build unit leaderboard")
	}
	return c.JSON(dto.UnitLeaderboardResponse{
		Sort:       metric,
		Category:   category,
		MinMembers: minMembers,
		Units:      units,
	})
}
