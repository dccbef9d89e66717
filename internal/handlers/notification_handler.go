package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fitchallenge/challenge-backend/internal/dto"
	"github.com/fitchallenge/challenge-backend/internal/services"
	"github.com/fitchallenge/challenge-backend/internal/session"
)

type NotificationHandler struct {
	inboxService *services.InboxService
}

func NewNotificationHandler(inboxService *services.InboxService) *NotificationHandler {
	return &NotificationHandler{inboxService: inboxService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	res, err := h.inboxService.List(c.UserContext(), userID,
		c.QueryBool("unread", false),
		c.QueryInt("limit", services.DefaultPageSize),
		c.QueryInt("offset", 0),
	)
	if err != nil {
		return respondError(c, err, "Failed to fetch notifications")
	}
	return c.JSON(res)
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	n, err := h.inboxService.UnreadCount(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to count notifications")
	}
	return c.JSON(dto.UnreadCountResponse{Unread: n})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid notification ID")
	}
	if err := h.inboxService.MarkRead(c.UserContext(), userID, id); err != nil {
		return respondError(c, err, "Failed to update notification")
	}
	return c.JSON(dto.MessageResponse{Message: "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	n, err := h.inboxService.MarkAllRead(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to update notifications")
	}
	return c.JSON(fiber.Map{"updated": n})
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid notification ID")
	}
	if err := h.inboxService.Delete(c.UserContext(), userID, id); err != nil {
		return respondError(c, err, "Failed to delete notification")
	}
	return c.JSON(dto.MessageResponse{Message: "Notification deleted"})
}
