package models

import "math"

// Interval is a contiguous slice of time, identified by the
// millisecond timestamp at which it starts. Intervals in a sequence
// must be given in ascending StartTimeMs order; the builder derives
// time boundaries from consecutive interval starts plus the ±∞
// sentinels.
type Interval struct {
	StartTimeMs float64 `json:"startTimeMs"`
}

// NegativeInfinity and PositiveInfinity bound every interval
// sequence: the first and last entries of TimeBoundaries.
var (
	NegativeInfinity = math.Inf(-1)
	PositiveInfinity = math.Inf(1)
)

// TimeBoundaries computes [-∞] ∪ {interval.StartTimeMs} ∪ [+∞] from a
// sequence of intervals already in ascending order.
func TimeBoundaries(intervals []Interval) []float64 {
	boundaries := make([]float64, 0, len(intervals)+2)
	boundaries = append(boundaries, NegativeInfinity)
	for _, iv := range intervals {
		boundaries = append(boundaries, iv.StartTimeMs)
	}
	boundaries = append(boundaries, PositiveInfinity)
	return boundaries
}

// FiniteBoundaries strips the ±∞ sentinels, for serialization.
func FiniteBoundaries(boundaries []float64) []float64 {
	if len(boundaries) <= 2 {
		return []float64{}
	}
	return append([]float64{}, boundaries[1:len(boundaries)-1]...)
}

// BoundariesFromFinite is the inverse of FiniteBoundaries: it
// reconstructs the full boundary list (with ±∞ sentinels) from the
// finite boundaries stored in a serialized document.
func BoundariesFromFinite(finite []float64) []float64 {
	boundaries := make([]float64, 0, len(finite)+2)
	boundaries = append(boundaries, NegativeInfinity)
	boundaries = append(boundaries, finite...)
	boundaries = append(boundaries, PositiveInfinity)
	return boundaries
}
