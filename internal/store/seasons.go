package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trentd187/matchplay-league/internal/matchplay"
	"github.com/trentd187/matchplay-league/internal/models"
	"github.com/trentd187/matchplay-league/internal/schedule"
)

// Season loads a season by ID.
func (s *Store) Season(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	var season models.Season
	if err := s.db.WithContext(ctx).First(&season, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &season, nil
}

// Teams returns the season's teams in the order they were created.
// That order is the seat order used by the round-robin generator, so it must be stable.
func (s *Store) Teams(ctx context.Context, seasonID uuid.UUID) ([]models.Team, error) {
	var teams []models.Team
	err := s.db.WithContext(ctx).
		Preload("Members").
		Where("season_id = ?", seasonID).
		Order("created_at, id").
		Find(&teams).Error
	if err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	return teams, nil
}

// TeamIDs returns the season's team IDs as strings, in Teams order.
func TeamIDs(teams []models.Team) []string {
	ids := make([]string, len(teams))
	for i, t := range teams {
		ids[i] = t.ID.String()
	}
	return ids
}

// CompletedMatches loads every match from the season's completed rounds, oldest round first.
// Matches that don't form two sides are left out; the standings would skip them anyway.
func (s *Store) CompletedMatches(ctx context.Context, seasonID uuid.UUID) ([]matchplay.CompletedMatch, error) {
	var matches []models.Match
	err := withScorecards(s.db.WithContext(ctx)).
		Joins("JOIN rounds ON rounds.id = matches.round_id").
		Where("rounds.season_id = ? AND rounds.status = ?", seasonID, models.RoundStatusCompleted).
		Order("rounds.scheduled_date, matches.created_at").
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("load completed matches: %w", err)
	}

	out := make([]matchplay.CompletedMatch, 0, len(matches))
	for i := range matches {
		a, b, err := MatchSides(&matches[i], nil)
		if err != nil {
			continue
		}
		out = append(out, matchplay.CompletedMatch{A: a, B: b, HoleCount: matches[i].Round.HoleCount})
	}
	return out, nil
}

// calendarRow is a round plus whether any matches exist for it yet.
type calendarRow struct {
	ID            uuid.UUID
	ScheduledDate time.Time
	HasMatches    bool
}

// CalendarRounds returns the season's rounds in date order, flagging those that already have matches.
func (s *Store) CalendarRounds(ctx context.Context, seasonID uuid.UUID) ([]schedule.CalendarRound, error) {
	var rows []calendarRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT r.id AS id,
		       r.scheduled_date AS scheduled_date,
		       EXISTS (SELECT 1 FROM matches m WHERE m.round_id = r.id) AS has_matches
		FROM rounds r
		WHERE r.season_id = ?
		ORDER BY r.scheduled_date, r.created_at, r.id`,
		seasonID,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load calendar: %w", err)
	}

	out := make([]schedule.CalendarRound, len(rows))
	for i, r := range rows {
		out[i] = schedule.CalendarRound{ID: r.ID.String(), Date: r.ScheduledDate, HasMatches: r.HasMatches}
	}
	return out, nil
}

// CreateScheduledMatches turns assignments into Match rows, with a MatchPlayer for every
// member of both teams. It returns the number of matches created. Run it inside
// Transaction together with CalendarRounds so the "already has matches" check and the
// inserts can't interleave with another generator.
func (s *Store) CreateScheduledMatches(ctx context.Context, teams []models.Team, assignments []schedule.Assignment) (int, error) {
	byID := make(map[string]models.Team, len(teams))
	for _, t := range teams {
		byID[t.ID.String()] = t
	}

	db := s.db.WithContext(ctx)
	created := 0
	for _, a := range assignments {
		roundID, err := uuid.Parse(a.RoundID)
		if err != nil {
			return created, fmt.Errorf("round id %q: %w", a.RoundID, err)
		}

		for _, p := range a.Pairings {
			teamA, okA := byID[p.TeamA]
			teamB, okB := byID[p.TeamB]
			if !okA || !okB {
				return created, fmt.Errorf("pairing %s v %s: unknown team", p.TeamA, p.TeamB)
			}

			match := models.Match{RoundID: roundID, TeamAID: &teamA.ID, TeamBID: &teamB.ID}
			for _, team := range []models.Team{teamA, teamB} {
				for _, m := range team.Members {
					teamID := team.ID
					match.Players = append(match.Players, models.MatchPlayer{UserID: m.UserID, TeamID: &teamID})
				}
			}

			// Create inserts the match and, through the has-many association, its players
			if err := db.Create(&match).Error; err != nil {
				return created, fmt.Errorf("create match: %w", err)
			}
			created++
		}
	}
	return created, nil
}
