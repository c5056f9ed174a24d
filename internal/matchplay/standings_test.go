package matchplay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completed(teamA, teamB string, scoresA, scoresB []int) CompletedMatch {
	return CompletedMatch{
		A:         side(TeamSide(teamA), card(teamA+"-1", TeamSide(teamA), scoresA...)),
		B:         side(TeamSide(teamB), card(teamB+"-1", TeamSide(teamB), scoresB...)),
		HoleCount: len(scoresA),
	}
}

func TestAggregateNoMatches(t *testing.T) {
	rows := Aggregate(nil, []string{"a", "b", "c"})
	require.Len(t, rows, 3)
	for i, id := range []string{"a", "b", "c"} {
		assert.Equal(t, StandingsRow{TeamID: id}, rows[i])
	}
}

func TestAggregate(t *testing.T) {
	matches := []CompletedMatch{
		// c beats a
		completed("a", "c", []int{5, 5, 5}, []int{4, 4, 5}),
		// b and d halve
		completed("b", "d", []int{4, 5, 4}, []int{5, 4, 4}),
		// c beats b
		completed("c", "b", []int{3, 4, 4}, []int{4, 4, 4}),
	}

	rows := Aggregate(matches, []string{"a", "b", "c", "d"})
	require.Len(t, rows, 4)

	assert.Equal(t, StandingsRow{TeamID: "c", Wins: 2, Points: 2}, rows[0])
	// b and d both have 0.5; b comes first because it was listed first
	assert.Equal(t, StandingsRow{TeamID: "b", Losses: 1, Ties: 1, Points: 0.5}, rows[1])
	assert.Equal(t, StandingsRow{TeamID: "d", Ties: 1, Points: 0.5}, rows[2])
	assert.Equal(t, StandingsRow{TeamID: "a", Losses: 1}, rows[3])
}

func TestAggregateSkipsUnidentifiableSides(t *testing.T) {
	individual := CompletedMatch{
		A:         side(IndividualSide("p1"), card("p1", IndividualSide("p1"), 3)),
		B:         side(TeamSide("b"), card("b1", TeamSide("b"), 4)),
		HoleCount: 1,
	}
	unknown := completed("a", "zzz", []int{3}, []int{4})
	empty := CompletedMatch{A: side(TeamSide("a")), B: side(TeamSide("b")), HoleCount: 1}

	rows := Aggregate([]CompletedMatch{individual, unknown, empty}, []string{"a", "b"})
	assert.Equal(t, []StandingsRow{{TeamID: "a"}, {TeamID: "b"}}, rows)
}

func TestAggregateUsesFullHoleRange(t *testing.T) {
	// a is ahead early, b wins the back half
	m := completed("a", "b",
		[]int{3, 3, 5, 5, 5, 5},
		[]int{4, 4, 4, 4, 4, 4},
	)
	rows := Aggregate([]CompletedMatch{m}, []string{"a", "b"})
	assert.Equal(t, "b", rows[0].TeamID)
	assert.Equal(t, 1, rows[0].Wins)
}
