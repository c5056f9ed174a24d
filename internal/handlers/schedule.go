package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/trentd187/matchplay-league/internal/services"
)

// GenerateSchedule returns a handler for POST /api/v1/seasons/:seasonID/schedule.
// Safe to call repeatedly: rounds that already have matches are left alone.
// League organizers only (enforced by RequireLeagueOrganizer on the route).
func GenerateSchedule(svc *services.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		seasonID, ok, err := paramID(c, "seasonID")
		if !ok {
			return err
		}

		res, err := svc.GenerateSchedule(c.UserContext(), seasonID)
		if err != nil {
			return serviceError(c, err, "generate schedule")
		}

		status := fiber.StatusOK
		if res.MatchesCreated > 0 {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(res)
	}
}
