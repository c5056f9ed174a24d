package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/trentd187/matchplay-league/internal/matchplay"
	"github.com/trentd187/matchplay-league/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// withScorecards preloads everything needed to turn a match into player cards:
// the round (for hole count and default tee holes), the season (to find the league),
// and each player's scores and override tee.
func withScorecards(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Round.Season").
		Preload("Round.Tee.Holes").
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("match_players.created_at, match_players.id") }).
		Preload("Players.Scores").
		Preload("Players.Tee.Holes")
}

// Match loads a match with its round and every player's scorecard.
func (s *Store) Match(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	var match models.Match
	if err := withScorecards(s.db.WithContext(ctx)).First(&match, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &match, nil
}

// MatchPlayer finds a user's card in a match.
func (s *Store) MatchPlayer(ctx context.Context, matchID, userID uuid.UUID) (*models.MatchPlayer, error) {
	var player models.MatchPlayer
	err := s.db.WithContext(ctx).
		Where("match_id = ? AND user_id = ?", matchID, userID).
		First(&player).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &player, nil
}

// UpsertHoleScore records a hole score, replacing any earlier entry for the same hole.
func (s *Store) UpsertHoleScore(ctx context.Context, score *models.HoleScore) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "match_player_id"}, {Name: "hole_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"gross_score", "entered_by", "updated_at"}),
	}).Create(score).Error
	if err != nil {
		return fmt.Errorf("save hole score: %w", err)
	}
	return nil
}

// PlayerCards converts a loaded match into scorer input.
//
// Players with a team play for that team's side; players without one play as themselves.
// Every hole from 1 to the round's hole count gets an entry, with par and stroke index
// taken from the player's tee (or the round's tee when the player has no override).
// strokes maps user IDs to handicap strokes received and may be nil for gross scoring.
func PlayerCards(match *models.Match, strokes map[string]int) []matchplay.PlayerCard {
	cards := make([]matchplay.PlayerCard, 0, len(match.Players))
	for _, p := range match.Players {
		holes := match.Round.Tee.Holes
		if p.Tee != nil {
			holes = p.Tee.Holes
		}
		layout := make(map[int]models.Hole, len(holes))
		for _, h := range holes {
			layout[h.HoleNumber] = h
		}

		gross := make(map[int]int, len(p.Scores))
		for _, sc := range p.Scores {
			gross[sc.HoleNumber] = sc.GrossScore
		}

		side := matchplay.IndividualSide(p.UserID.String())
		if p.TeamID != nil {
			side = matchplay.TeamSide(p.TeamID.String())
		}

		card := matchplay.PlayerCard{
			PlayerID:        p.UserID.String(),
			Side:            side,
			StrokesReceived: strokes[p.UserID.String()],
			Holes:           make([]matchplay.HoleScore, 0, match.Round.HoleCount),
		}
		for n := 1; n <= match.Round.HoleCount; n++ {
			hs := matchplay.HoleScore{
				HoleNumber:  n,
				Par:         layout[n].Par,
				StrokeIndex: layout[n].StrokeIndex,
			}
			if g, ok := gross[n]; ok {
				g := g
				hs.GrossScore = &g
			}
			card.Holes = append(card.Holes, hs)
		}
		cards = append(cards, card)
	}
	return cards
}

// MatchSides groups a match's cards into its two sides. For team matches side A is always
// the match's TeamA, whatever order the players were added in.
func MatchSides(match *models.Match, strokes map[string]int) (matchplay.Sideup, matchplay.Sideup, error) {
	a, b, err := matchplay.GroupSides(PlayerCards(match, strokes))
	if err != nil {
		return a, b, err
	}
	if match.TeamAID != nil && b.Side == matchplay.TeamSide(match.TeamAID.String()) {
		a, b = b, a
	}
	return a, b, nil
}
