// Package matchplay scores best-ball match play between two sides and folds finished
// matches into season standings.
//
// A "side" is either a team (two players sharing a team ID) or a single player who has no
// team assignment for the round. On every hole the side's best ball is the lowest valid
// score any of its players made; the lower best ball wins the hole.
//
// Like the handicap package, nothing here keeps state between calls. A live match is
// re-scored from its full set of hole scores every time somebody looks at it.
package matchplay

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat means the cards handed to the scorer do not form exactly two sides.
var ErrInvalidFormat = errors.New("match does not have exactly two sides")

// Status labels shown on the live scoreboard.
const (
	LabelAllSquare     = "All Square"
	LabelNotStarted    = "Not Started"
	LabelInvalidFormat = "Invalid Format"
)

// SideKind distinguishes team sides from individual sides.
type SideKind int

const (
	TeamSideKind SideKind = iota + 1
	IndividualSideKind
)

// Side identifies one side of a match.
// Build it with TeamSide or IndividualSide; the zero value is not a valid side.
type Side struct {
	Kind SideKind
	ID   string // team ID for TeamSideKind, player ID for IndividualSideKind
}

// TeamSide is the side made up of a team's players.
func TeamSide(teamID string) Side { return Side{Kind: TeamSideKind, ID: teamID} }

// IndividualSide is a player playing on their own because they have no team this round.
func IndividualSide(playerID string) Side { return Side{Kind: IndividualSideKind, ID: playerID} }

// IsTeam reports whether the side is a team side.
func (s Side) IsTeam() bool { return s.Kind == TeamSideKind }

func (s Side) String() string {
	switch s.Kind {
	case TeamSideKind:
		return "team:" + s.ID
	case IndividualSideKind:
		return "player:" + s.ID
	default:
		return "invalid"
	}
}

// HoleScore is one player's result on one hole.
type HoleScore struct {
	HoleNumber  int
	Par         int
	StrokeIndex int  // 1 = hardest hole
	GrossScore  *int // nil until the score is entered
}

// valid reports whether the hole has a usable score. Zero and negative entries count as missing.
func (h HoleScore) valid() bool {
	return h.GrossScore != nil && *h.GrossScore > 0
}

// PlayerCard is a player's scorecard for the match.
type PlayerCard struct {
	PlayerID        string
	Side            Side
	Holes           []HoleScore
	StrokesReceived int // only used with WithNetScoring
}

// Sideup is one side of a match and the cards of the players on it.
type Sideup struct {
	Side    Side
	Players []PlayerCard
}

// Leader says who is ahead in a match.
type Leader string

const (
	LeaderNone      Leader = ""
	LeaderA         Leader = "A"
	LeaderB         Leader = "B"
	LeaderAllSquare Leader = "AS"
)

// HoleResult is the best-ball comparison for one hole. Winner is LeaderA, LeaderB,
// LeaderAllSquare for a halved hole, or LeaderNone when the hole has not been played by both sides.
type HoleResult struct {
	HoleNumber int    `json:"hole_number"`
	BestA      *int   `json:"best_a"`
	BestB      *int   `json:"best_b"`
	Winner     Leader `json:"winner"`
}

// MatchState is the derived state of a match at the moment it was scored.
type MatchState struct {
	HolesWonA   int          `json:"holes_won_a"`
	HolesWonB   int          `json:"holes_won_b"`
	HolesPlayed int          `json:"holes_played"` // "thru": the furthest hole both sides have a score on
	Label       string       `json:"status"`
	Leader      Leader       `json:"leader"`
	Holes       []HoleResult `json:"holes"`
}

type scoreConfig struct {
	net bool
}

// Option tweaks how Score compares holes.
type Option func(*scoreConfig)

// WithNetScoring subtracts each player's handicap strokes on a hole before finding the best ball.
// Strokes come from PlayerCard.StrokesReceived and the hole's stroke index.
func WithNetScoring() Option {
	return func(c *scoreConfig) { c.net = true }
}

// GroupSides splits a match's player cards into its two sides, in the order the sides
// first appear. Anything other than exactly two sides returns ErrInvalidFormat.
func GroupSides(cards []PlayerCard) (Sideup, Sideup, error) {
	var sides []Sideup
	index := make(map[Side]int)

	for _, card := range cards {
		i, ok := index[card.Side]
		if !ok {
			i = len(sides)
			index[card.Side] = i
			sides = append(sides, Sideup{Side: card.Side})
		}
		sides[i].Players = append(sides[i].Players, card)
	}

	if len(sides) != 2 {
		return Sideup{}, Sideup{}, ErrInvalidFormat
	}
	return sides[0], sides[1], nil
}

// Score plays through holes 1..holeCount and reports the running match state.
//
// A hole only counts once both sides have at least one valid score on it. Holes where one
// side is still missing a score are skipped entirely: they are not halved and do not move
// HolesPlayed. Every available hole is always evaluated; a match is never closed out early.
func Score(a, b Sideup, holeCount int, opts ...Option) (MatchState, error) {
	if len(a.Players) == 0 || len(b.Players) == 0 || a.Side == b.Side {
		return MatchState{Label: LabelInvalidFormat}, ErrInvalidFormat
	}

	cfg := scoreConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	bestA, err := bestBall(a.Players, cfg)
	if err != nil {
		return MatchState{Label: LabelInvalidFormat}, err
	}
	bestB, err := bestBall(b.Players, cfg)
	if err != nil {
		return MatchState{Label: LabelInvalidFormat}, err
	}

	state := MatchState{Holes: make([]HoleResult, 0, holeCount)}
	for h := 1; h <= holeCount; h++ {
		result := HoleResult{HoleNumber: h}
		scoreA, okA := bestA[h]
		scoreB, okB := bestB[h]
		if okA {
			result.BestA = &scoreA
		}
		if okB {
			result.BestB = &scoreB
		}

		if okA && okB {
			state.HolesPlayed = h
			switch {
			case scoreA < scoreB:
				state.HolesWonA++
				result.Winner = LeaderA
			case scoreB < scoreA:
				state.HolesWonB++
				result.Winner = LeaderB
			default:
				result.Winner = LeaderAllSquare
			}
		}
		state.Holes = append(state.Holes, result)
	}

	state.Leader, state.Label = status(state.HolesWonA, state.HolesWonB, state.HolesPlayed)
	return state, nil
}

// ScoreCards groups the cards into sides and scores them.
func ScoreCards(cards []PlayerCard, holeCount int, opts ...Option) (MatchState, error) {
	a, b, err := GroupSides(cards)
	if err != nil {
		return MatchState{Label: LabelInvalidFormat}, err
	}
	return Score(a, b, holeCount, opts...)
}

func status(wonA, wonB, played int) (Leader, string) {
	switch {
	case wonA > wonB:
		return LeaderA, fmt.Sprintf("%d UP", wonA-wonB)
	case wonB > wonA:
		return LeaderB, fmt.Sprintf("%d UP", wonB-wonA)
	case played > 0:
		return LeaderAllSquare, LabelAllSquare
	default:
		return LeaderNone, LabelNotStarted
	}
}

// bestBall returns the side's lowest score on every hole where at least one player has a
// valid score. With net scoring the player's strokes for the hole are taken off first.
func bestBall(players []PlayerCard, cfg scoreConfig) (map[int]int, error) {
	best := make(map[int]int)
	for _, p := range players {
		for _, hole := range p.Holes {
			if !hole.valid() {
				continue
			}

			score := *hole.GrossScore
			if cfg.net {
				strokes, err := StrokesOnHole(p.StrokesReceived, hole.StrokeIndex)
				if err != nil {
					return nil, fmt.Errorf("player %s hole %d: %w", p.PlayerID, hole.HoleNumber, err)
				}
				score -= strokes
			}

			if current, ok := best[hole.HoleNumber]; !ok || score < current {
				best[hole.HoleNumber] = score
			}
		}
	}
	return best, nil
}
