package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/trentd187/matchplay-league/internal/services"
)

// GetStandings returns a handler for GET /api/v1/seasons/:seasonID/standings.
// The table is rebuilt from the season's completed rounds on every request.
func GetStandings(svc *services.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		seasonID, ok, err := paramID(c, "seasonID")
		if !ok {
			return err
		}

		table, err := svc.Standings(c.UserContext(), seasonID)
		if err != nil {
			return serviceError(c, err, "build standings")
		}
		return c.JSON(table)
	}
}
