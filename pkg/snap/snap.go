// Package snap finds the nearest known surface point to a picked location.
//
// A snap only succeeds when the nearest candidate lies strictly closer than the
// threshold; there is no fallback to a distant "closest anyway" point.
package snap

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"point2ct/pkg/geometry"
)

const (
	// DefaultThreshold is the snap radius used by the viewer, in mm.
	DefaultThreshold = 15.0

	// StrictThreshold is the tighter radius used for trajectory picking.
	StrictThreshold = 5.0
)

// Hit is a successful snap.
type Hit struct {
	// Point is the candidate that was snapped to
	Point geometry.OrientedPoint

	// Index is the position of Point in the candidate slice
	Index int

	// Distance is the Euclidean distance from the query to Point
	Distance float64
}

// Snap returns the candidate nearest to query if it lies strictly within
// threshold. Ties go to the earliest candidate.
func Snap(query r3.Vec, candidates []geometry.OrientedPoint, threshold float64) (Hit, bool) {
	best := -1
	bestDist := math.Inf(1)

	for i, c := range candidates {
		d := geometry.Distance(query, c.Position)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}

	if best < 0 || !(bestDist < threshold) {
		return Hit{}, false
	}

	return Hit{Point: candidates[best], Index: best, Distance: bestDist}, true
}
