package matchplay

import "sort"

// Points awarded per match result.
const (
	PointsWin  = 1.0
	PointsTie  = 0.5
	PointsLoss = 0.0
)

// CompletedMatch is a match from a completed round, ready to be counted in the standings.
// The store only loads matches from rounds whose status is "completed".
type CompletedMatch struct {
	A         Sideup
	B         Sideup
	HoleCount int
}

// StandingsRow is one team's season record.
type StandingsRow struct {
	TeamID string  `json:"team_id"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	Ties   int     `json:"ties"`
	Points float64 `json:"points"`
}

// Aggregate folds completed matches into one row per team.
//
// Every team in teamIDs gets a row even if it has not played. Each match is re-scored
// hole by hole with the same best-ball comparison as Score; the side that won more holes
// wins the match. Matches that are not between two known teams are skipped. Rows are
// sorted by points, highest first, keeping teamIDs order among equal points.
func Aggregate(matches []CompletedMatch, teamIDs []string) []StandingsRow {
	rows := make([]StandingsRow, len(teamIDs))
	index := make(map[string]int, len(teamIDs))
	for i, id := range teamIDs {
		rows[i] = StandingsRow{TeamID: id}
		index[id] = i
	}

	for _, m := range matches {
		if !m.A.Side.IsTeam() || !m.B.Side.IsTeam() {
			continue
		}
		ia, okA := index[m.A.Side.ID]
		ib, okB := index[m.B.Side.ID]
		if !okA || !okB {
			continue
		}

		state, err := Score(m.A, m.B, m.HoleCount)
		if err != nil {
			continue
		}

		switch {
		case state.HolesWonA > state.HolesWonB:
			rows[ia].Wins++
			rows[ia].Points += PointsWin
			rows[ib].Losses++
			rows[ib].Points += PointsLoss
		case state.HolesWonB > state.HolesWonA:
			rows[ib].Wins++
			rows[ib].Points += PointsWin
			rows[ia].Losses++
			rows[ia].Points += PointsLoss
		default:
			rows[ia].Ties++
			rows[ia].Points += PointsTie
			rows[ib].Ties++
			rows[ib].Points += PointsTie
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Points > rows[j].Points
	})
	return rows
}
