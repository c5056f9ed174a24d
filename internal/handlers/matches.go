package handlers

import (
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/trentd187/matchplay-league/internal/services"
)

// Broadcaster pushes a match's new status to whoever is watching it live.
type Broadcaster interface {
	BroadcastToMatch(matchID string, data []byte)
}

// SubmitScoreRequest is the JSON body for POST /api/v1/matches/:matchID/scores.
// UserID defaults to the caller, so players entering their own card can leave it out.
type SubmitScoreRequest struct {
	UserID     *string `json:"user_id"`
	HoleNumber int     `json:"hole_number"`
	GrossScore int     `json:"gross_score"`
}

// GetMatch returns a handler for GET /api/v1/matches/:matchID.
// The status is computed from the hole scores as they are right now.
func GetMatch(svc *services.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		matchID, ok, err := paramID(c, "matchID")
		if !ok {
			return err
		}

		status, err := svc.MatchStatus(c.UserContext(), matchID)
		if err != nil {
			return serviceError(c, err, "fetch match")
		}
		return c.JSON(status)
	}
}

// SubmitScore returns a handler for POST /api/v1/matches/:matchID/scores.
// It stores the score, returns the new match status, and pushes the same status to
// every live client watching the match.
func SubmitScore(svc *services.Service, hub Broadcaster) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, ok, err := currentUser(c)
		if !ok {
			return err
		}
		matchID, ok, err := paramID(c, "matchID")
		if !ok {
			return err
		}

		var req SubmitScoreRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		playerID := callerID
		if req.UserID != nil {
			playerID, err = uuid.Parse(*req.UserID)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "user_id must be a UUID",
				})
			}
		}

		status, err := svc.RecordScore(c.UserContext(), matchID, services.ScoreInput{
			UserID:     playerID,
			HoleNumber: req.HoleNumber,
			GrossScore: req.GrossScore,
			EnteredBy:  callerID,
		})
		if err != nil {
			return serviceError(c, err, "record score")
		}

		if data, err := json.Marshal(status); err == nil {
			hub.BroadcastToMatch(matchID.String(), data)
		} else {
			slog.WarnContext(c.UserContext(), "could not encode live update", "match_id", matchID, "error", err)
		}
		return c.JSON(status)
	}
}
