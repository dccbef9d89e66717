package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fitchallenge/challenge-backend/internal/dto"
	"github.com/fitchallenge/challenge-backend/internal/services"
	"github.com/fitchallenge/challenge-backend/internal/session"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	user, err := h.profileService.Get(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to fetch profile")
	}
	return c.JSON(dto.ProfileResponse{User: *user})
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	user, err := h.profileService.Update(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err, "Failed to update profile")
	}
	return c.JSON(dto.ProfileResponse{User: *user})
}

func (h *ProfileHandler) GetPreferences(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	prefs, err := h.profileService.Preferences(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to fetch preferences")
	}
	return c.JSON(prefs)
}

func (h *ProfileHandler) UpdatePreferences(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.UpdatePreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	prefs, err := h.profileService.UpdatePreferences(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err, "Failed to update preferences")
	}
	return c.JSON(prefs)
}
