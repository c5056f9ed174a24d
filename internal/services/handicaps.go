package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trentd187/matchplay-league/internal/handicap"
	"github.com/trentd187/matchplay-league/internal/models"
	"golang.org/x/sync/errgroup"
)

// HandicapResult is one member's handicap after a recalculation (or as currently stored).
type HandicapResult struct {
	MemberID    uuid.UUID  `json:"member_id"`
	UserID      uuid.UUID  `json:"user_id"`
	DisplayName string     `json:"display_name"`
	Rounds      int        `json:"rounds"`         // usable rounds in the window; 0 when reading stored values
	Index       *float64   `json:"handicap_index"` // nil until the member has enough scores
	UpdatedAt   *time.Time `json:"updated_at"`
}

// RecalculateHandicaps recomputes every member's index in the league from their recent
// completed rounds and stores the new values.
//
// Members with fewer usable rounds than League.MinimumScores are left as they are. Each
// member is independent, so they are processed concurrently; the first database error
// cancels the rest and is returned.
func (s *Service) RecalculateHandicaps(ctx context.Context, leagueID uuid.UUID) ([]HandicapResult, error) {
	start := s.now()

	league, err := s.store.League(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	members, err := s.store.LeagueMembers(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	results := make([]HandicapResult, len(members))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range members {
		i := i
		member := members[i]
		g.Go(func() error {
			res, err := s.recalculateMember(gctx, league, member, start)
			if err != nil {
				return fmt.Errorf("member %s: %w", member.UserID, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("handicap recalculation failed", "league_id", leagueID, "error", err)
		return nil, err
	}

	updated := 0
	for _, r := range results {
		if r.Index != nil {
			updated++
		}
	}
	s.metrics.HandicapRecalculations.Inc()
	s.metrics.HandicapsUpdated.Add(float64(updated))
	s.metrics.HandicapsSkipped.Add(float64(len(results) - updated))
	s.metrics.RecalculationDuration.Observe(s.now().Sub(start).Seconds())

	s.log.Info("handicaps recalculated",
		"league_id", leagueID,
		"members", len(results),
		"updated", updated,
	)
	return results, nil
}

func (s *Service) recalculateMember(ctx context.Context, league *models.League, member models.LeagueMember, at time.Time) (HandicapResult, error) {
	res := HandicapResult{
		MemberID:    member.ID,
		UserID:      member.UserID,
		DisplayName: member.User.DisplayName,
	}

	records, err := s.store.ScoreRecords(ctx, league.ID, member.UserID, league.ScoreWindow)
	if err != nil {
		return res, err
	}
	res.Rounds = len(handicap.Differentials(records))

	// Below the league minimum the index is not published; the stored value is left untouched
	if res.Rounds == 0 || res.Rounds < league.MinimumScores {
		res.Index = member.HandicapIndex
		res.UpdatedAt = member.HandicapUpdatedAt
		if member.HandicapIndex == nil {
			s.log.Debug("not enough scores for a handicap",
				"league_id", league.ID, "user_id", member.UserID, "rounds", res.Rounds)
		}
		return res, nil
	}

	index := handicap.IndexFromRecords(records, league.HandicapPercentage)
	if err := s.store.SaveHandicap(ctx, member.ID, index, at); err != nil {
		return res, err
	}
	res.Index = &index
	res.UpdatedAt = &at
	return res, nil
}

// Handicaps returns the stored index of every member of the league.
func (s *Service) Handicaps(ctx context.Context, leagueID uuid.UUID) ([]HandicapResult, error) {
	if _, err := s.store.League(ctx, leagueID); err != nil {
		return nil, err
	}
	members, err := s.store.LeagueMembers(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	out := make([]HandicapResult, len(members))
	for i, m := range members {
		out[i] = HandicapResult{
			MemberID:    m.ID,
			UserID:      m.UserID,
			DisplayName: m.User.DisplayName,
			Index:       m.HandicapIndex,
			UpdatedAt:   m.HandicapUpdatedAt,
		}
	}
	return out, nil
}
