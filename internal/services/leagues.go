package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/trentd187/matchplay-league/internal/models"
)

// CreateLeagueInput is what it takes to start a league.
// Zero values for the handicap settings fall back to the column defaults.
type CreateLeagueInput struct {
	Name               string
	Description        *string
	HandicapPercentage float64
	MinimumScores      int
	ScoreWindow        int
	NetMatchPlay       bool
	CreatedBy          uuid.UUID
}

// CreateLeague validates and stores a new league with its creator as organizer.
func (s *Service) CreateLeague(ctx context.Context, in CreateLeagueInput) (*models.League, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.HandicapPercentage < 0 || in.HandicapPercentage > 1 {
		return nil, fmt.Errorf("%w: handicap_percentage must be greater than 0 and at most 1", ErrInvalidInput)
	}
	if in.MinimumScores < 0 || in.ScoreWindow < 0 {
		return nil, fmt.Errorf("%w: minimum_scores and score_window cannot be negative", ErrInvalidInput)
	}

	league := &models.League{
		Name:               name,
		Description:        in.Description,
		HandicapPercentage: in.HandicapPercentage,
		MinimumScores:      in.MinimumScores,
		ScoreWindow:        in.ScoreWindow,
		NetMatchPlay:       in.NetMatchPlay,
		CreatedBy:          in.CreatedBy,
	}
	if league.HandicapPercentage == 0 {
		league.HandicapPercentage = 1
	}
	if league.MinimumScores == 0 {
		league.MinimumScores = 3
	}
	if league.ScoreWindow == 0 {
		league.ScoreWindow = 20
	}

	if err := s.store.CreateLeague(ctx, league); err != nil {
		return nil, err
	}
	s.log.Info("league created", "league_id", league.ID, "name", league.Name)
	return league, nil
}

// LeagueSummary is a league plus its member count.
type LeagueSummary struct {
	League      models.League
	MemberCount int64
}

// ListLeagues returns the leagues a user can see: all of them for admins.
func (s *Service) ListLeagues(ctx context.Context, userID uuid.UUID, isAdmin bool) ([]LeagueSummary, error) {
	leagues, err := s.store.ListLeagues(ctx, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	out := make([]LeagueSummary, 0, len(leagues))
	for _, l := range leagues {
		n, err := s.store.CountMembers(ctx, l.ID)
		if err != nil {
			return nil, fmt.Errorf("count members: %w", err)
		}
		out = append(out, LeagueSummary{League: l, MemberCount: n})
	}
	return out, nil
}

// IsLeagueOrganizer reports whether the user may manage the league.
// Global admins can manage any league; everybody else needs the organizer role in it.
func (s *Service) IsLeagueOrganizer(ctx context.Context, leagueID, userID uuid.UUID, role models.UserRole) (bool, error) {
	if role == models.UserRoleAdmin {
		return true, nil
	}
	memberRole, err := s.store.MemberRole(ctx, leagueID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return memberRole == models.MemberRoleOrganizer, nil
}

// SeasonLeague returns the ID of the league a season belongs to.
func (s *Service) SeasonLeague(ctx context.Context, seasonID uuid.UUID) (uuid.UUID, error) {
	season, err := s.store.Season(ctx, seasonID)
	if err != nil {
		return uuid.Nil, err
	}
	return season.LeagueID, nil
}
