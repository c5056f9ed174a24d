package handlers

// leagues.go handles the /api/v1/leagues routes: listing and creating leagues.
//
// --- Permission model ---
// Two layers of access control are used:
//
//  1. Route-level (middleware.RequireRole): only "admin" and "manager" global roles
//     can create leagues. All authenticated users can list the leagues they belong to.
//
//  2. League-level (middleware.RequireLeagueOrganizer): recalculating handicaps and
//     generating schedules need the "organizer" role in that league, or global admin.
//     The creator of a league is made its organizer automatically.

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/trentd187/matchplay-league/internal/middleware"
	"github.com/trentd187/matchplay-league/internal/models"
	"github.com/trentd187/matchplay-league/internal/services"
)

// LeagueResponse is what we send back to clients.
// A dedicated response struct (instead of the raw GORM model) controls exactly which
// fields are serialised and lets us add computed fields like MemberCount.
type LeagueResponse struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Description        *string `json:"description"`
	HandicapPercentage float64 `json:"handicap_percentage"`
	MinimumScores      int     `json:"minimum_scores"`
	ScoreWindow        int     `json:"score_window"`
	NetMatchPlay       bool    `json:"net_match_play"`
	CreatorName        string  `json:"creator_name"`
	MemberCount        int64   `json:"member_count"`
	CreatedAt          string  `json:"created_at"` // RFC 3339
}

// CreateLeagueRequest is the JSON body we expect on POST /api/v1/leagues.
// Omitted handicap settings take the league defaults (100%, 3 scores, last 20 rounds).
type CreateLeagueRequest struct {
	Name               string   `json:"name"`
	Description        *string  `json:"description"`
	HandicapPercentage *float64 `json:"handicap_percentage"`
	MinimumScores      *int     `json:"minimum_scores"`
	ScoreWindow        *int     `json:"score_window"`
	NetMatchPlay       bool     `json:"net_match_play"`
}

func leagueResponse(l models.League, creatorName string, members int64) LeagueResponse {
	return LeagueResponse{
		ID:                 l.ID.String(),
		Name:               l.Name,
		Description:        l.Description,
		HandicapPercentage: l.HandicapPercentage,
		MinimumScores:      l.MinimumScores,
		ScoreWindow:        l.ScoreWindow,
		NetMatchPlay:       l.NetMatchPlay,
		CreatorName:        creatorName,
		MemberCount:        members,
		CreatedAt:          l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// GetLeagues returns a handler for GET /api/v1/leagues.
// Admins see every league; everyone else sees only the leagues they are a member of.
func GetLeagues(svc *services.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := currentUser(c)
		if !ok {
			return err
		}

		leagues, err := svc.ListLeagues(c.UserContext(), userID, middleware.UserRole(c) == models.UserRoleAdmin)
		if err != nil {
			return serviceError(c, err, "fetch leagues")
		}

		response := make([]LeagueResponse, 0, len(leagues))
		for _, l := range leagues {
			response = append(response, leagueResponse(l.League, l.League.Creator.DisplayName, l.MemberCount))
		}
		return c.JSON(response)
	}
}

// CreateLeague returns a handler for POST /api/v1/leagues.
// Requires "admin" or "manager" (enforced by RequireRole on the route).
func CreateLeague(svc *services.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := currentUser(c)
		if !ok {
			return err
		}

		var req CreateLeagueRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		in := services.CreateLeagueInput{
			Name:         req.Name,
			Description:  req.Description,
			NetMatchPlay: req.NetMatchPlay,
			CreatedBy:    userID,
		}
		if req.HandicapPercentage != nil {
			if *req.HandicapPercentage <= 0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "handicap_percentage must be greater than 0",
				})
			}
			in.HandicapPercentage = *req.HandicapPercentage
		}
		if req.MinimumScores != nil {
			in.MinimumScores = *req.MinimumScores
		}
		if req.ScoreWindow != nil {
			in.ScoreWindow = *req.ScoreWindow
		}

		league, err := svc.CreateLeague(c.UserContext(), in)
		if err != nil {
			return serviceError(c, err, "create league")
		}

		// Just the creator so far
		return c.Status(fiber.StatusCreated).JSON(leagueResponse(*league, "", 1))
	}
}
