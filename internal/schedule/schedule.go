// Package schedule builds a season's round-robin pairings and lays them onto the calendar.
//
// Pairings use the circle method: one team stays fixed while everyone else rotates one seat
// per week, so after n-1 weeks every team has met every other team exactly once. With an
// odd number of teams a "bye" seat is added and whoever sits opposite it has the week off.
package schedule

import (
	"sort"
	"time"
)

// bye marks the empty seat added for an odd team count.
const bye = -1

// Pairing is one match-up for a week.
type Pairing struct {
	TeamA string `json:"team_a"`
	TeamB string `json:"team_b"`
}

// GeneratePairings returns one slice of pairings per week.
// Fewer than two teams produces no weeks.
func GeneratePairings(teamIDs []string) [][]Pairing {
	if len(teamIDs) < 2 {
		return nil
	}

	// Rotate seat numbers rather than team IDs so the bye can never collide with a real ID
	seats := make([]int, len(teamIDs))
	for i := range seats {
		seats[i] = i
	}
	if len(seats)%2 != 0 {
		seats = append(seats, bye)
	}
	n := len(seats)

	weeks := make([][]Pairing, 0, n-1)
	for w := 0; w < n-1; w++ {
		week := make([]Pairing, 0, n/2)
		for i := 0; i < n/2; i++ {
			home, away := seats[i], seats[n-1-i]
			if home == bye || away == bye {
				continue
			}
			week = append(week, Pairing{TeamA: teamIDs[home], TeamB: teamIDs[away]})
		}
		weeks = append(weeks, week)

		// Seat 0 stays put; the last seat moves to index 1 and the rest shift right
		last := seats[n-1]
		copy(seats[2:], seats[1:n-1])
		seats[1] = last
	}

	return weeks
}

// CalendarRound is a dated round in the season that pairings can be assigned to.
type CalendarRound struct {
	ID         string
	Date       time.Time
	HasMatches bool // true once any match has been created for the round
}

// Assignment places one week of pairings onto a calendar round.
type Assignment struct {
	RoundID  string    `json:"round_id"`
	Date     time.Time `json:"date"`
	Week     int       `json:"week"` // zero-based index into the pairing weeks
	Pairings []Pairing `json:"pairings"`
}

// AssignRounds maps rounds, in date order, onto pairing weeks.
//
// Round i gets week i mod len(weeks), so a season with more rounds than weeks repeats the
// rotation from the start. Rounds that already have matches are skipped but still hold
// their position, which is what makes running this twice safe: a second run yields only
// the rounds that are still empty, with the same weeks they would have had the first time.
func AssignRounds(rounds []CalendarRound, weeks [][]Pairing) []Assignment {
	if len(rounds) == 0 || len(weeks) == 0 {
		return nil
	}

	ordered := make([]CalendarRound, len(rounds))
	copy(ordered, rounds)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	var out []Assignment
	for i, r := range ordered {
		if r.HasMatches {
			continue
		}
		week := i % len(weeks)
		out = append(out, Assignment{
			RoundID:  r.ID,
			Date:     r.Date,
			Week:     week,
			Pairings: weeks[week],
		})
	}
	return out
}

// Plan generates the pairings for teamIDs and assigns them to rounds.
func Plan(teamIDs []string, rounds []CalendarRound) []Assignment {
	return AssignRounds(rounds, GeneratePairings(teamIDs))
}
