package matchplay

import (
	"errors"
	"math"
)

// HolesPerCycle is the number of stroke indexes on a card.
// Handicaps above this wrap around: 20 strokes is one on every hole plus a second
// on stroke indexes 1 and 2.
const HolesPerCycle = 18

var (
	// ErrInvalidStrokeIndex is returned for a stroke index outside 1–18.
	ErrInvalidStrokeIndex = errors.New("stroke index must be between 1 and 18")
	// ErrNegativeStrokes is returned when a negative stroke allowance is allocated.
	ErrNegativeStrokes = errors.New("strokes received cannot be negative")
)

// MatchStrokes is the number of strokes the higher handicap receives from the lower one.
// It is symmetric: MatchStrokes(a, b) == MatchStrokes(b, a).
func MatchStrokes(handicapA, handicapB float64) float64 {
	return math.Abs(handicapB - handicapA)
}

// StrokesOnHole returns how many of totalStrokes land on the hole with the given stroke index.
func StrokesOnHole(totalStrokes, strokeIndex int) (int, error) {
	if strokeIndex < 1 || strokeIndex > HolesPerCycle {
		return 0, ErrInvalidStrokeIndex
	}
	if totalStrokes < 0 {
		return 0, ErrNegativeStrokes
	}

	strokes := totalStrokes / HolesPerCycle
	if strokeIndex <= totalStrokes%HolesPerCycle {
		strokes++
	}
	return strokes, nil
}

// AllocateStrokes plays every player off the lowest handicap in the group.
// The lowest player receives 0; everyone else receives their difference from it,
// rounded to the nearest whole stroke. Keys are player IDs.
func AllocateStrokes(handicaps map[string]float64) map[string]int {
	if len(handicaps) == 0 {
		return nil
	}

	low := math.Inf(1)
	for _, h := range handicaps {
		low = math.Min(low, h)
	}

	strokes := make(map[string]int, len(handicaps))
	for id, h := range handicaps {
		strokes[id] = int(math.Round(MatchStrokes(low, h)))
	}
	return strokes
}
