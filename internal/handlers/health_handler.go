package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fitchallenge/challenge-backend/internal/dto"
)

type HealthHandler struct {
	ping  func() error
	store string
}

// NewHealthHandler takes the store's ping; nil means there is no database to check.
func NewHealthHandler(ping func() error, store string) *HealthHandler {
	return &HealthHandler{ping: ping, store: store}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if h.ping == nil {
		dbStatus = "not configured"
	} else if err := h.ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Store:     h.store,
	})
}
