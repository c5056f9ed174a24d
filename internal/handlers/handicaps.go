package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/trentd187/matchplay-league/internal/services"
)

// GetHandicaps returns a handler for GET /api/v1/leagues/:leagueID/handicaps.
// It reports the stored indexes without recalculating anything.
func GetHandicaps(svc *services.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		leagueID, ok, err := paramID(c, "leagueID")
		if !ok {
			return err
		}

		results, err := svc.Handicaps(c.UserContext(), leagueID)
		if err != nil {
			return serviceError(c, err, "fetch handicaps")
		}
		return c.JSON(results)
	}
}

// RecalculateHandicaps returns a handler for POST /api/v1/leagues/:leagueID/handicaps/recalculate.
// League organizers only (enforced by RequireLeagueOrganizer on the route).
func RecalculateHandicaps(svc *services.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		leagueID, ok, err := paramID(c, "leagueID")
		if !ok {
			return err
		}

		results, err := svc.RecalculateHandicaps(c.UserContext(), leagueID)
		if err != nil {
			return serviceError(c, err, "recalculate handicaps")
		}
		return c.JSON(results)
	}
}
