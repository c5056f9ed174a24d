// Package handlers contains the HTTP route handler functions for the league API.
// Each handler corresponds to one API endpoint and is responsible for reading the
// request, calling the service layer, and writing a response.
//
// Each exported function follows the "handler factory" pattern: it takes its
// dependencies (the service, the websocket hub) and returns a fiber.Handler.
// This lets us inject them without using global variables.
package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck handles GET /health.
// It returns a simple JSON response indicating the server is alive and reachable.
// No database queries and no authentication, so load balancers can call it freely.
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Readiness handles GET /ready: 200 once the database answers, 503 otherwise.
func Readiness(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"error":  "database unreachable",
			})
		}
		return c.JSON(fiber.Map{"status": "ready"})
	}
}
