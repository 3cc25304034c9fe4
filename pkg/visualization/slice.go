package visualization

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"point2ct/pkg/geometry"
	"point2ct/pkg/plane"
)

// Viewer previews what a plane extraction will cut through by intersecting
// the current square with the surface point cloud.
type Viewer struct {
	// points is the surface point cloud
	points []geometry.OrientedPoint
}

// NewViewer creates a viewer over a point cloud
func NewViewer(points []geometry.OrientedPoint) *Viewer {
	return &Viewer{points: points}
}

// SectionPoint is a cloud point near the plane, expressed in plane coordinates.
type SectionPoint struct {
	// Index is the point's position in the cloud
	Index int

	// U and V are the coordinates along the square's first and last edges,
	// measured from corner 0
	U, V float64

	// Offset is the signed distance from the plane along the face normal
	Offset float64
}

// ExtractSection returns the cloud points lying within thickness/2 of the
// square's plane and inside its outline.
func (v *Viewer) ExtractSection(sq plane.Square, thickness float64) ([]SectionPoint, error) {
	if !(thickness > 0) {
		return nil, errors.New("thickness must be positive")
	}

	n, ok := sq.FaceNormal()
	if !ok {
		return nil, errors.New("square is degenerate")
	}

	// The square stays a square under rotation, so edges 0-1 and 0-3 span it
	origin := sq.Corners[0]
	uEdge := r3.Sub(sq.Corners[1], origin)
	vEdge := r3.Sub(sq.Corners[3], origin)
	uLen, vLen := r3.Norm(uEdge), r3.Norm(vEdge)
	uDir, okU := geometry.Unit(uEdge)
	vDir, okV := geometry.Unit(vEdge)
	if !okU || !okV {
		return nil, errors.New("square is degenerate")
	}

	half := thickness / 2
	var out []SectionPoint
	for i, p := range v.points {
		rel := r3.Sub(p.Position, origin)

		offset := r3.Dot(rel, n)
		if math.Abs(offset) > half {
			continue
		}

		u, w := r3.Dot(rel, uDir), r3.Dot(rel, vDir)
		if u < 0 || u > uLen || w < 0 || w > vLen {
			continue
		}

		out = append(out, SectionPoint{Index: i, U: u, V: w, Offset: offset})
	}

	return out, nil
}
