package middleware

// roles.go: role-based access control.
// Global roles (admin, manager, user) come from the token; league roles (organizer,
// player) come from league membership.

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/trentd187/matchplay-league/internal/models"
	"github.com/trentd187/matchplay-league/internal/services"
)

// RequireRole returns a middleware handler that allows only users whose global role
// matches one of the provided roles. Returns HTTP 403 Forbidden otherwise.
//
//	api.Post("/leagues", middleware.RequireRole("admin", "manager"), handlers.CreateLeague(svc))
//
// RequireRole must be used AFTER Auth, which populates the role in c.Locals.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userRole, ok := c.Locals(LocalUserRole).(string)
		if !ok || userRole == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden",
			})
		}

		for _, role := range roles {
			if userRole == role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "insufficient permissions",
		})
	}
}

// OrganizerChecker decides whether a user may manage a league.
type OrganizerChecker interface {
	IsLeagueOrganizer(ctx context.Context, leagueID, userID uuid.UUID, role models.UserRole) (bool, error)
}

// LeagueResolver finds the league a request is about.
type LeagueResolver func(c *fiber.Ctx) (uuid.UUID, error)

// LeagueFromParam reads the league ID straight from a route parameter.
func LeagueFromParam(name string) LeagueResolver {
	return func(c *fiber.Ctx) (uuid.UUID, error) {
		return uuid.Parse(c.Params(name))
	}
}

// LeagueFromSeasonParam reads a season ID from a route parameter and looks up its league.
func LeagueFromSeasonParam(name string, seasonLeague func(ctx context.Context, seasonID uuid.UUID) (uuid.UUID, error)) LeagueResolver {
	return func(c *fiber.Ctx) (uuid.UUID, error) {
		seasonID, err := uuid.Parse(c.Params(name))
		if err != nil {
			return uuid.Nil, err
		}
		return seasonLeague(c.UserContext(), seasonID)
	}
}

// RequireLeagueOrganizer allows global admins and organizers of the resolved league.
// Must be used after Auth.
func RequireLeagueOrganizer(checker OrganizerChecker, resolve LeagueResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := UserID(c)
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		}

		leagueID, err := resolve(c)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
		}

		ok, err := checker.IsLeagueOrganizer(c.UserContext(), leagueID, userID, UserRole(c))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to check permissions"})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "league organizer role required"})
		}
		return c.Next()
	}
}
