// Package session reads the caller identity that the auth middleware stored on the request.
package session

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	userKey    = "user"
	isAdminKey = "is_admin"
)

func claims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals(userKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, errors.New("invalid token in context")
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return mc, nil
}

// GetUserID extracts the user UUID from the JWT sub claim.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	mc, err := claims(c)
	if err != nil {
		return uuid.Nil, err
	}
	sub, ok := mc["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}
	return uuid.Parse(sub)
}

func GetEmail(c *fiber.Ctx) string {
	mc, err := claims(c)
	if err != nil {
		return ""
	}
	email, _ := mc["email"].(string)
	return email
}

// GetName returns the name claim, if the identity provider sent one.
func GetName(c *fiber.Ctx) string {
	mc, err := claims(c)
	if err != nil {
		return ""
	}
	name, _ := mc["name"].(string)
	return name
}

func SetAdmin(c *fiber.Ctx, admin bool) {
	c.Locals(isAdminKey, admin)
}

// IsAdmin is false unless the admin middleware resolved the caller as an admin.
func IsAdmin(c *fiber.Ctx) bool {
	admin, _ := c.Locals(isAdminKey).(bool)
	return admin
}
