package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/trentd187/matchplay-league/internal/matchplay"
	"github.com/trentd187/matchplay-league/internal/store"
)

// StandingsEntry is a standings row with the team's name attached.
type StandingsEntry struct {
	Rank int `json:"rank"`
	matchplay.StandingsRow
	TeamName string `json:"team_name"`
}

// Standings builds the season table from every match in its completed rounds.
// Standings are always computed on gross scores.
func (s *Service) Standings(ctx context.Context, seasonID uuid.UUID) ([]StandingsEntry, error) {
	if _, err := s.store.Season(ctx, seasonID); err != nil {
		return nil, err
	}
	teams, err := s.store.Teams(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	matches, err := s.store.CompletedMatches(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID.String()] = t.Name
	}

	rows := matchplay.Aggregate(matches, store.TeamIDs(teams))
	out := make([]StandingsEntry, len(rows))
	for i, r := range rows {
		out[i] = StandingsEntry{Rank: i + 1, StandingsRow: r, TeamName: names[r.TeamID]}
	}
	return out, nil
}
