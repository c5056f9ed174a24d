package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/trentd187/matchplay-league/internal/schedule"
	"github.com/trentd187/matchplay-league/internal/store"
)

// ScheduleResult summarizes one schedule generation run.
type ScheduleResult struct {
	SeasonID       uuid.UUID `json:"season_id"`
	Teams          int       `json:"teams"`
	Weeks          int       `json:"weeks"`
	RoundsFilled   int       `json:"rounds_filled"`
	MatchesCreated int       `json:"matches_created"`
}

// GenerateSchedule fills the season's calendar with round-robin matches.
//
// A season with fewer than two teams has nothing to schedule yet; the run succeeds and
// creates no matches. Rounds that already have matches are left alone, so running it
// again only fills rounds added since. The whole run happens in one transaction holding the season lock: two
// concurrent calls for the same season cannot both see a round as empty.
func (s *Service) GenerateSchedule(ctx context.Context, seasonID uuid.UUID) (*ScheduleResult, error) {
	res := &ScheduleResult{SeasonID: seasonID}

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.Season(ctx, seasonID); err != nil {
			return err
		}
		if err := tx.LockSeason(ctx, seasonID); err != nil {
			return fmt.Errorf("lock season: %w", err)
		}

		teams, err := tx.Teams(ctx, seasonID)
		if err != nil {
			return err
		}
		// With fewer than two teams the plan is empty and the run creates nothing
		rounds, err := tx.CalendarRounds(ctx, seasonID)
		if err != nil {
			return err
		}

		teamIDs := store.TeamIDs(teams)
		assignments := schedule.Plan(teamIDs, rounds)

		created, err := tx.CreateScheduledMatches(ctx, teams, assignments)
		if err != nil {
			return err
		}

		res.Teams = len(teams)
		res.Weeks = len(schedule.GeneratePairings(teamIDs))
		res.RoundsFilled = len(assignments)
		res.MatchesCreated = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SchedulesGenerated.Inc()
	s.metrics.MatchesScheduled.Add(float64(res.MatchesCreated))
	s.log.Info("schedule generated",
		"season_id", seasonID,
		"rounds_filled", res.RoundsFilled,
		"matches_created", res.MatchesCreated,
	)
	return res, nil
}
