// Package handicap turns played rounds into a player's handicap index.
//
// The calculation happens in two steps:
//  1. Each round becomes a "differential": how far above the course rating the player
//     scored, scaled by the slope so that rounds on harder and easier tees are comparable.
//  2. The best few differentials from the player's recent window are averaged, scaled by the
//     league's adjustment percentage and rounded to one decimal place.
//
// Everything here is a pure function. Nothing reads from or writes to the database; callers
// load the score window, call Index, and persist the result themselves.
package handicap

import (
	"math"
	"sort"
)

// StandardSlope is the slope rating of a course of "average" difficulty.
// A differential on a 113-slope tee is simply score minus course rating.
const StandardSlope = 113.0

// RecentWindow is the number of most recent rounds a handicap is drawn from.
const RecentWindow = 20

// FullHandicap is the adjustment percentage for a league that plays off 100% of the index.
const FullHandicap = 1.0

// ScoreRecord is one completed round as seen by the handicap calculator.
type ScoreRecord struct {
	GrossScore    int     // Total strokes for the round
	OverrideScore *int    // Adjusted gross entered by an organizer; nil means "use GrossScore"
	CourseRating  float64 // Rating of the tee the round was played from (e.g. 71.3)
	Slope         int     // Slope rating of the same tee (legal range 55–155)
}

// EffectiveScore is the score that counts for handicap purposes.
func (r ScoreRecord) EffectiveScore() int {
	if r.OverrideScore != nil {
		return *r.OverrideScore
	}
	return r.GrossScore
}

// Resolvable reports whether the round has a usable rating and slope.
// Rounds played from a tee with no rating data cannot produce a differential.
func (r ScoreRecord) Resolvable() bool {
	return r.CourseRating > 0 && r.Slope > 0
}

// Differential returns the round's differential. See Differential.
func (r ScoreRecord) Differential() float64 {
	return Differential(r.EffectiveScore(), r.CourseRating, r.Slope)
}

// Differential computes (score - rating) * (113 / slope).
//
// The value is not rounded; rounding only happens once, on the final index.
// Slope is not range-checked: an out-of-range slope produces an unusual differential,
// and keeping slopes in 55–155 is the job of whoever stored the tee.
func Differential(effectiveScore int, courseRating float64, slope int) float64 {
	return (float64(effectiveScore) - courseRating) * (StandardSlope / float64(slope))
}

// Differentials converts a window of rounds into differentials, dropping any round
// that has no resolvable rating/slope. The order of the input is preserved.
func Differentials(records []ScoreRecord) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if !r.Resolvable() {
			continue
		}
		out = append(out, r.Differential())
	}
	return out
}

// ScoresToAverage returns how many of the lowest differentials count toward the index
// for a sample of n differentials.
//
//	1–5 → 1, 6–8 → 2, 9–11 → 3, 12–14 → 4, 15–16 → 5, 17–18 → 6, 19 → 7, 20+ → 8
func ScoresToAverage(n int) int {
	switch {
	case n <= 0:
		return 0
	case n <= 5:
		return 1
	case n <= 8:
		return 2
	case n <= 11:
		return 3
	case n <= 14:
		return 4
	case n <= 16:
		return 5
	case n <= 18:
		return 6
	case n == 19:
		return 7
	default:
		return 8
	}
}

// Index averages the best differentials and applies the league adjustment.
//
// An empty sample yields 0. The input slice is not reordered. The result is rounded to
// one decimal place with halves rounded away from zero (10.25 → 10.3, -0.25 → -0.3).
// NaN differentials propagate into a NaN index; callers are expected to hand in clean data.
func Index(differentials []float64, adjustment float64) float64 {
	if len(differentials) == 0 {
		return 0
	}

	// Work on a copy so the caller's slice keeps its order (usually newest-first)
	sorted := make([]float64, len(differentials))
	copy(sorted, differentials)
	sort.Float64s(sorted)

	count := ScoresToAverage(len(sorted))
	var sum float64
	for _, d := range sorted[:count] {
		sum += d
	}

	return RoundToTenth(sum / float64(count) * adjustment)
}

// IndexFromRecords is the usual entry point: records are given newest first, unresolvable
// rounds are dropped, and only the most recent RecentWindow rounds are used.
func IndexFromRecords(records []ScoreRecord, adjustment float64) float64 {
	diffs := Differentials(records)
	if len(diffs) > RecentWindow {
		diffs = diffs[:RecentWindow]
	}
	return Index(diffs, adjustment)
}

// RoundToTenth rounds to one decimal place, halves away from zero.
func RoundToTenth(x float64) float64 {
	return math.Round(x*10) / 10
}
