package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trentd187/matchplay-league/internal/handicap"
	"github.com/trentd187/matchplay-league/internal/models"
	"gorm.io/gorm"
)

// League loads a league by ID.
func (s *Store) League(ctx context.Context, id uuid.UUID) (*models.League, error) {
	var league models.League
	if err := s.db.WithContext(ctx).First(&league, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &league, nil
}

// ListLeagues returns every league for admins, otherwise only the leagues the user belongs to.
func (s *Store) ListLeagues(ctx context.Context, userID uuid.UUID, all bool) ([]models.League, error) {
	var leagues []models.League
	query := s.db.WithContext(ctx).Preload("Creator").Order("leagues.created_at")
	if !all {
		query = query.
			Joins("JOIN league_members ON league_members.league_id = leagues.id").
			Where("league_members.user_id = ?", userID)
	}
	if err := query.Find(&leagues).Error; err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	return leagues, nil
}

// CreateLeague inserts the league and makes its creator an organizer, atomically.
func (s *Store) CreateLeague(ctx context.Context, league *models.League) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(league).Error; err != nil {
			return fmt.Errorf("create league: %w", err)
		}
		member := models.LeagueMember{
			LeagueID: league.ID,
			UserID:   league.CreatedBy,
			Role:     models.MemberRoleOrganizer,
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("add organizer: %w", err)
		}
		return nil
	})
}

// CountMembers returns how many members a league has.
func (s *Store) CountMembers(ctx context.Context, leagueID uuid.UUID) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.LeagueMember{}).Where("league_id = ?", leagueID).Count(&n).Error
	return n, err
}

// LeagueMembers loads a league's members with their user records, ordered by name.
func (s *Store) LeagueMembers(ctx context.Context, leagueID uuid.UUID) ([]models.LeagueMember, error) {
	var members []models.LeagueMember
	err := s.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = league_members.user_id").
		Where("league_members.league_id = ?", leagueID).
		Order("users.display_name").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("load league members: %w", err)
	}
	return members, nil
}

// MemberRole returns the user's role in the league, or ErrNotFound if they are not a member.
func (s *Store) MemberRole(ctx context.Context, leagueID, userID uuid.UUID) (models.MemberRole, error) {
	var member models.LeagueMember
	err := s.db.WithContext(ctx).
		Where("league_id = ? AND user_id = ?", leagueID, userID).
		First(&member).Error
	if err != nil {
		return "", notFound(err)
	}
	return member.Role, nil
}

// scoreRow is one completed card as returned by the score window query.
// Rating and slope are pointers because a card whose tee cannot be resolved comes back NULL.
type scoreRow struct {
	GrossScore    int
	OverrideScore *int
	CourseRating  *float64
	SlopeRating   *int
}

// ScoreRecords loads a member's most recent completed rounds in the league, newest first.
//
// A card counts once every hole of the round has a score, or an organizer has entered an
// override score. The tee is the player's override tee, falling back to the round's tee.
// Cards whose tee is missing or unrated are left out before the limit is applied, so
// the window holds only rounds that can produce a differential.
func (s *Store) ScoreRecords(ctx context.Context, leagueID, userID uuid.UUID, limit int) ([]handicap.ScoreRecord, error) {
	var rows []scoreRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(hs.gross_score), 0) AS gross_score,
		       mp.override_score AS override_score,
		       t.course_rating AS course_rating,
		       t.slope_rating AS slope_rating
		FROM match_players mp
		JOIN matches m ON m.id = mp.match_id
		JOIN rounds r ON r.id = m.round_id
		JOIN seasons s ON s.id = r.season_id
		LEFT JOIN tees t ON t.id = COALESCE(mp.tee_id, r.tee_id)
		LEFT JOIN hole_scores hs ON hs.match_player_id = mp.id
		WHERE s.league_id = ? AND mp.user_id = ? AND r.status = ?
		  AND t.id IS NOT NULL AND t.course_rating > 0 AND t.slope_rating > 0
		GROUP BY mp.id, mp.override_score, r.hole_count, r.scheduled_date, t.course_rating, t.slope_rating
		HAVING COUNT(hs.id) >= r.hole_count OR mp.override_score IS NOT NULL
		ORDER BY r.scheduled_date DESC
		LIMIT ?`,
		leagueID, userID, models.RoundStatusCompleted, limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load score window: %w", err)
	}

	records := make([]handicap.ScoreRecord, 0, len(rows))
	for _, row := range rows {
		rec := handicap.ScoreRecord{
			GrossScore:    row.GrossScore,
			OverrideScore: row.OverrideScore,
		}
		if row.CourseRating != nil {
			rec.CourseRating = *row.CourseRating
		}
		if row.SlopeRating != nil {
			rec.Slope = *row.SlopeRating
		}
		records = append(records, rec)
	}
	return records, nil
}

// SaveHandicap stores a member's newly computed index.
func (s *Store) SaveHandicap(ctx context.Context, memberID uuid.UUID, index float64, at time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&models.LeagueMember{}).
		Where("id = ?", memberID).
		Updates(map[string]any{
			"handicap_index":      index,
			"handicap_updated_at": at,
		})
	if res.Error != nil {
		return fmt.Errorf("save handicap: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Handicaps returns the current index of each given user in the league, keyed by user ID.
// Members without an index yet are left out.
func (s *Store) Handicaps(ctx context.Context, leagueID uuid.UUID, userIDs []uuid.UUID) (map[string]float64, error) {
	var members []models.LeagueMember
	err := s.db.WithContext(ctx).
		Where("league_id = ? AND user_id IN ? AND handicap_index IS NOT NULL", leagueID, userIDs).
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("load handicaps: %w", err)
	}

	out := make(map[string]float64, len(members))
	for _, m := range members {
		out[m.UserID.String()] = *m.HandicapIndex
	}
	return out, nil
}
