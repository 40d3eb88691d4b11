package embedding

import "math"

// CosineDistance returns 1 - cosine similarity of a and b. The result is NaN
// when either vector has zero magnitude or the lengths differ.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.NaN()
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return math.NaN()
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// Direction selects which side of the threshold a match must fall on.
type Direction string

const (
	// AtLeast keeps distances >= threshold.
	AtLeast Direction = "at_least"
	// AtMost keeps distances <= threshold.
	AtMost Direction = "at_most"
)

// DefaultThreshold is the cosine distance cut-off used by recipe search.
const DefaultThreshold = 0.25

// DistanceFilter decides which candidate distances survive a search.
type DistanceFilter struct {
	Threshold float64
	Direction Direction
}

// Keep reports whether distance passes the filter. NaN never passes.
func (f DistanceFilter) Keep(distance float64) bool {
	if math.IsNaN(distance) {
		return false
	}
	if f.Direction == AtMost {
		return distance <= f.Threshold
	}
	return distance >= f.Threshold
}

// ParseDirection maps a config value to a Direction, defaulting to AtLeast.
func ParseDirection(s string) Direction {
	if Direction(s) == AtMost {
		return AtMost
	}
	return AtLeast
}
