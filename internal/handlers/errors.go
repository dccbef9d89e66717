package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/fitchallenge/challenge-backend/internal/dto"
	"github.com/fitchallenge/challenge-backend/internal/leaderboard"
	"github.com/fitchallenge/challenge-backend/internal/repository"
	"github.com/fitchallenge/challenge-backend/internal/services"
	"github.com/fitchallenge/challenge-backend/internal/verification"
)

// respondError maps domain errors onto status codes; anything unrecognized is
// logged and returned as a generic 500 with fallback as the message.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	status := fiber.StatusInternalServerError
	msg := fallback

	switch {
	case errors.Is(err, verification.ErrForbidden):
		status, msg = fiber.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrNotOwner):
		status, msg = fiber.StatusForbidden, err.Error()
	case errors.Is(err, verification.ErrLogNotFound),
		errors.Is(err, services.ErrLogNotFound),
		errors.Is(err, services.ErrNotificationNotFound),
		errors.Is(err, repository.ErrNotFound):
		status, msg = fiber.StatusNotFound, err.Error()
	case errors.Is(err, verification.ErrCommentRequired),
		errors.Is(err, verification.ErrInvalidAction),
		errors.Is(err, verification.ErrInvalidLogType),
		errors.Is(err, verification.ErrMissingLogID),
		errors.Is(err, services.ErrInvalidCategory),
		errors.Is(err, services.ErrInvalidDistanceUnit),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidActivity),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrExerciseRequired),
		errors.Is(err, services.ErrInvalidUnitCategory),
		errors.Is(err, services.ErrInvalidDeliveryMode),
		errors.Is(err, services.ErrInvalidDisplayName),
		errors.Is(err, services.ErrInvalidStatusFilter),
		errors.Is(err, leaderboard.ErrInvalidMetric),
		services.IsNameRejected(err):
		status, msg = fiber.StatusBadRequest, err.Error()
	}

	if status == fiber.StatusInternalServerError {
		slog.Error(fallback,
			"request_id", requestID(c),
			"action", c.Method()+" "+c.Route().Path,
			"error", err.Error(),
		)
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "Unauthorized"})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}
