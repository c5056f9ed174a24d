package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/trentd187/matchplay-league/internal/matchplay"
	"github.com/trentd187/matchplay-league/internal/models"
	"github.com/trentd187/matchplay-league/internal/store"
)

// MatchStatus is a match's live state as shown to players and spectators.
type MatchStatus struct {
	matchplay.MatchState
	MatchID   uuid.UUID `json:"match_id"`
	SideA     string    `json:"side_a"`
	SideB     string    `json:"side_b"`
	Net       bool      `json:"net"`
	HoleCount int       `json:"hole_count"`
}

// MatchStatus scores a match from its current hole scores.
//
// When the league plays net match play, each player's strokes come from the stored handicap
// indexes: the lowest handicap in the match plays off scratch and everyone else receives the
// difference.
func (s *Service) MatchStatus(ctx context.Context, matchID uuid.UUID) (*MatchStatus, error) {
	match, err := s.store.Match(ctx, matchID)
	if err != nil {
		return nil, err
	}
	league, err := s.store.League(ctx, match.Round.Season.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("load league: %w", err)
	}

	var strokes map[string]int
	var opts []matchplay.Option
	if league.NetMatchPlay {
		strokes, err = s.matchStrokes(ctx, league.ID, match)
		if err != nil {
			return nil, err
		}
		opts = append(opts, matchplay.WithNetScoring())
	}

	a, b, err := store.MatchSides(match, strokes)
	if err != nil {
		if errors.Is(err, matchplay.ErrInvalidFormat) {
			return &MatchStatus{
				MatchState: matchplay.MatchState{Label: matchplay.LabelInvalidFormat},
				MatchID:    match.ID,
				Net:        league.NetMatchPlay,
				HoleCount:  match.Round.HoleCount,
			}, nil
		}
		return nil, err
	}

	state, err := matchplay.Score(a, b, match.Round.HoleCount, opts...)
	if err != nil {
		return nil, fmt.Errorf("score match %s: %w", match.ID, err)
	}

	return &MatchStatus{
		MatchState: state,
		MatchID:    match.ID,
		SideA:      a.Side.String(),
		SideB:      b.Side.String(),
		Net:        league.NetMatchPlay,
		HoleCount:  match.Round.HoleCount,
	}, nil
}

func (s *Service) matchStrokes(ctx context.Context, leagueID uuid.UUID, match *models.Match) (map[string]int, error) {
	userIDs := make([]uuid.UUID, len(match.Players))
	for i, p := range match.Players {
		userIDs[i] = p.UserID
	}
	indexes, err := s.store.Handicaps(ctx, leagueID, userIDs)
	if err != nil {
		return nil, err
	}
	// Players without an index play off scratch
	for _, id := range userIDs {
		if _, ok := indexes[id.String()]; !ok {
			indexes[id.String()] = 0
		}
	}
	return matchplay.AllocateStrokes(indexes), nil
}

func resultLabel(l matchplay.Leader) string {
	switch l {
	case matchplay.LeaderA:
		return "a"
	case matchplay.LeaderB:
		return "b"
	case matchplay.LeaderAllSquare:
		return "all_square"
	default:
		return "not_started"
	}
}

// ScoreInput is one hole score submitted for a player.
type ScoreInput struct {
	UserID     uuid.UUID
	HoleNumber int
	GrossScore int
	EnteredBy  uuid.UUID
}

// RecordScore stores a hole score and returns the match's new status.
func (s *Service) RecordScore(ctx context.Context, matchID uuid.UUID, in ScoreInput) (*MatchStatus, error) {
	match, err := s.store.Match(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if in.HoleNumber < 1 || in.HoleNumber > match.Round.HoleCount {
		return nil, fmt.Errorf("%w: hole_number must be between 1 and %d", ErrInvalidInput, match.Round.HoleCount)
	}
	if in.GrossScore < 1 {
		return nil, fmt.Errorf("%w: gross_score must be positive", ErrInvalidInput)
	}

	player, err := s.store.MatchPlayer(ctx, matchID, in.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: user is not playing in this match", ErrInvalidInput)
		}
		return nil, err
	}

	score := &models.HoleScore{
		MatchPlayerID: player.ID,
		HoleNumber:    in.HoleNumber,
		GrossScore:    in.GrossScore,
		EnteredBy:     in.EnteredBy,
	}
	if err := s.store.UpsertHoleScore(ctx, score); err != nil {
		return nil, err
	}
	s.metrics.ScoresRecorded.Inc()
	s.log.Debug("hole score recorded",
		"match_id", matchID, "user_id", in.UserID, "hole", in.HoleNumber, "gross", in.GrossScore)

	status, err := s.MatchStatus(ctx, matchID)
	if err != nil {
		return nil, err
	}
	s.metrics.MatchesScored.WithLabelValues(resultLabel(status.Leader)).Inc()
	return status, nil
}
