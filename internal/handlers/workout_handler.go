package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fitchallenge/challenge-backend/internal/dto"
	"github.com/fitchallenge/challenge-backend/internal/services"
	"github.com/fitchallenge/challenge-backend/internal/session"
)

type WorkoutHandler struct {
	workoutService *services.WorkoutService
}

func NewWorkoutHandler(workoutService *services.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

func (h *WorkoutHandler) Create(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	category, err := services.ParseCategory(c.Params("type"))
	if err != nil {
		return respondError(c, err, "Failed to log workout")
	}

	var req dto.LogWorkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	log, err := h.workoutService.Log(c.UserContext(), userID, category, &req)
	if err != nil {
		return respondError(c, err, "Failed to log workout")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewWorkoutResponse(*log))
}

func (h *WorkoutHandler) List(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	logs, err := h.workoutService.ListMine(c.UserContext(), userID, c.Query("type", "all"))
	if err != nil {
		return respondError(c, err, "Failed to fetch workouts")
	}
	out := make([]dto.WorkoutResponse, len(logs))
	for i, l := range logs {
		out[i] = dto.NewWorkoutResponse(l)
	}
	return c.JSON(fiber.Map{"items": out, "total": len(out)})
}

func (h *WorkoutHandler) Delete(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	category, err := services.ParseCategory(c.Params("type"))
	if err != nil {
		return respondError(c, err, "Failed to delete workout")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid log ID")
	}
	if err := h.workoutService.Delete(c.UserContext(), userID, category, id); err != nil {
		return respondError(c, err, "Failed to delete workout")
	}
	return c.JSON(dto.MessageResponse{Message: "Workout deleted"})
}

func (h *WorkoutHandler) Progress(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	progress, err := h.workoutService.Progress(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to compute progress")
	}
	return c.JSON(progress)
}
