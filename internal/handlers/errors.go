package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/trentd187/matchplay-league/internal/middleware"
	"github.com/trentd187/matchplay-league/internal/services"
)

// serviceError maps a service error onto a response.
// Not-found and validation errors are the caller's fault and are reported as such;
// anything else is logged and hidden behind a generic message.
func serviceError(c *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, services.ErrInvalidInput):
		// "invalid input: hole_number must be ..." -> "hole_number must be ..."
		msg := strings.TrimPrefix(err.Error(), services.ErrInvalidInput.Error()+": ")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	default:
		slog.ErrorContext(c.UserContext(), "request failed",
			"action", action,
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to " + action})
	}
}

// paramID parses a UUID route parameter, writing a 400 response when it is malformed.
// The returned error is the response error; callers return it as is.
func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid " + name,
		})
	}
	return id, true, nil
}

// currentUser reads the caller set by middleware.Auth.
func currentUser(c *fiber.Ctx) (uuid.UUID, bool, error) {
	id, err := middleware.UserID(c)
	if err != nil {
		return uuid.Nil, false, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid user ID",
		})
	}
	return id, true, nil
}
