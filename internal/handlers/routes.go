package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/trentd187/matchplay-league/internal/config"
	"github.com/trentd187/matchplay-league/internal/middleware"
	"github.com/trentd187/matchplay-league/internal/services"
	live "github.com/trentd187/matchplay-league/internal/websocket"
	"gorm.io/gorm"
)

// Deps is everything the routes need.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Service *services.Service
	Hub     *live.Hub
	Log     *slog.Logger
}

// Register mounts every route on app.
//
//	GET  /health                                        liveness
//	GET  /ready                                         database reachable
//	GET  /ws/matches/:matchID                           live match status (websocket)
//	GET  /api/v1/leagues                                leagues the caller belongs to
//	POST /api/v1/leagues                                admin, manager
//	GET  /api/v1/leagues/:leagueID/handicaps
//	POST /api/v1/leagues/:leagueID/handicaps/recalculate league organizer
//	GET  /api/v1/matches/:matchID
//	POST /api/v1/matches/:matchID/scores
//	GET  /api/v1/seasons/:seasonID/standings
//	POST /api/v1/seasons/:seasonID/schedule             league organizer
func Register(app *fiber.App, d Deps) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}

	// --- Public routes (no auth required) ---
	app.Get("/health", HealthCheck)
	app.Get("/ready", Readiness(sqlDB))

	// Browsers cannot set an Authorization header on a websocket handshake, and the feed
	// only carries match status that any league member can already read.
	app.Get("/ws/matches/:matchID", RequireUpgrade, LiveMatch(d.Service, d.Hub))

	// --- Authenticated API routes ---
	api := app.Group("/api/v1", middleware.Auth(d.Config, d.DB, d.Log))

	leagueOrganizer := middleware.RequireLeagueOrganizer(d.Service, middleware.LeagueFromParam("leagueID"))
	seasonOrganizer := middleware.RequireLeagueOrganizer(d.Service, middleware.LeagueFromSeasonParam("seasonID", d.Service.SeasonLeague))

	api.Get("/leagues", GetLeagues(d.Service))
	api.Post("/leagues", middleware.RequireRole("admin", "manager"), CreateLeague(d.Service))
	api.Get("/leagues/:leagueID/handicaps", GetHandicaps(d.Service))
	api.Post("/leagues/:leagueID/handicaps/recalculate", leagueOrganizer, RecalculateHandicaps(d.Service))

	api.Get("/matches/:matchID", GetMatch(d.Service))
	api.Post("/matches/:matchID/scores", SubmitScore(d.Service, d.Hub))

	api.Get("/seasons/:seasonID/standings", GetStandings(d.Service))
	api.Post("/seasons/:seasonID/schedule", seasonOrganizer, GenerateSchedule(d.Service))
	return nil
}
