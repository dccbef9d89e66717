package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fitchallenge/challenge-backend/internal/dto"
	"github.com/fitchallenge/challenge-backend/internal/notify"
	"github.com/fitchallenge/challenge-backend/internal/services"
	"github.com/fitchallenge/challenge-backend/internal/session"
	"github.com/fitchallenge/challenge-backend/internal/verification"
)

// DigestSweeper runs one digest sweep on demand.
type DigestSweeper interface {
	Sweep(ctx context.Context) (notify.SweepResult, error)
}

type AdminHandler struct {
	reviewService *services.ReviewService
	digest        DigestSweeper
}

func NewAdminHandler(reviewService *services.ReviewService, digest DigestSweeper) *AdminHandler {
	return &AdminHandler{reviewService: reviewService, digest: digest}
}

func (h *AdminHandler) ListLogs(c *fiber.Ctx) error {
	res, err := h.reviewService.Queue(c.UserContext(), services.ReviewQuery{
		Status:   c.Query("status", "all"),
		Type:     c.Query("type", "all"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", services.DefaultPageSize),
	})
	if err != nil {
		return respondError(c, err, "Failed to fetch logs")
	}
	return c.JSON(res)
}

// VerifyLog applies verify or flag. The admin flag is re-checked by the state machine.
func (h *AdminHandler) VerifyLog(c *fiber.Ctx) error {
	adminID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.VerifyLogRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	actor := verification.Actor{ID: adminID, IsAdmin: session.IsAdmin(c)}
	t, err := h.reviewService.Apply(c.UserContext(), actor, &req)
	if err != nil {
		return respondError(c, err, "Failed to update verification")
	}
	return c.JSON(dto.VerifyLogResponse{
		Success:        true,
		LogID:          t.Log.ID,
		PreviousStatus: t.Previous,
		NewStatus:      t.Next,
		AuditID:        t.AuditID,
	})
}

func (h *AdminHandler) AuditHistory(c *fiber.Ctx) error {
	category, err := services.ParseCategory(c.Params("type"))
	if err != nil {
		return respondError(c, verification.ErrInvalidLogType, "Failed to fetch audit history")
	}
	logID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid log ID")
	}
	entries, err := h.reviewService.History(c.UserContext(), category, logID)
	if err != nil {
		return respondError(c, err, "Failed to fetch audit history")
	}
	return c.JSON(dto.AuditHistoryResponse{LogID: logID, Entries: entries})
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.reviewService.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to fetch stats")
	}
	return c.JSON(stats)
}

func (h *AdminHandler) RunDigest(c *fiber.Ctx) error {
	res, err := h.digest.Sweep(c.UserContext())
	if err != nil {
		return respondError(c, err, "Digest sweep failed")
	}
	return c.JSON(res)
}
