package plane

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"point2ct/pkg/geometry"
)

const (
	// MinAngle and MaxAngle bound every rotation angle in degrees.
	MinAngle = 0.0
	MaxAngle = 180.0
)

// ClampAngle limits deg to [MinAngle, MaxAngle]. NaN becomes MinAngle.
func ClampAngle(deg float64) float64 {
	if math.IsNaN(deg) || deg < MinAngle {
		return MinAngle
	}
	if deg > MaxAngle {
		return MaxAngle
	}
	return deg
}

// rotationMatrix is the right-handed rotation of rad radians about the unit
// vector k (Rodrigues' formula).
func rotationMatrix(k r3.Vec, rad float64) *mat.Dense {
	c, s := math.Cos(rad), math.Sin(rad)
	t := 1 - c

	return mat.NewDense(3, 3, []float64{
		t*k.X*k.X + c, t*k.X*k.Y - s*k.Z, t*k.X*k.Z + s*k.Y,
		t*k.X*k.Y + s*k.Z, t*k.Y*k.Y + c, t*k.Y*k.Z - s*k.X,
		t*k.X*k.Z - s*k.Y, t*k.Y*k.Z + s*k.X, t*k.Z*k.Z + c,
	})
}

// RotateAboutAxis rotates points by deg degrees about the line through pivot
// along axis. The input is not modified; a zero axis returns a copy.
func RotateAboutAxis(points []r3.Vec, pivot, axis r3.Vec, deg float64) []r3.Vec {
	out := make([]r3.Vec, len(points))
	copy(out, points)

	k, ok := geometry.Unit(axis)
	if !ok || deg == 0 {
		return out
	}

	rot := rotationMatrix(k, deg*math.Pi/180)

	var rotated mat.VecDense
	for i, p := range points {
		// Translate to the pivot, rotate, translate back
		rel := r3.Sub(p, pivot)
		rotated.MulVec(rot, mat.NewVecDense(3, []float64{rel.X, rel.Y, rel.Z}))
		out[i] = r3.Add(pivot, r3.Vec{X: rotated.AtVec(0), Y: rotated.AtVec(1), Z: rotated.AtVec(2)})
	}

	return out
}

// RotateAboutNormal rotates corners about the surface normal through center.
func RotateAboutNormal(corners []r3.Vec, center, normal r3.Vec, deg float64) []r3.Vec {
	return RotateAboutAxis(corners, center, normal, deg)
}

// tieTolerance is the relative distance difference below which two corners
// count as equally near.
const tieTolerance = 1e-9

// nearestTwo returns the indices of the two corners closest to p. Distances
// within tieTolerance are ties and keep corner index order.
func nearestTwo(corners []r3.Vec, p r3.Vec) (int, int) {
	dist := make([]float64, len(corners))
	for k, c := range corners {
		dist[k] = geometry.Distance(c, p)
	}

	first := pickNearest(dist, -1)
	return first, pickNearest(dist, first)
}

// pickNearest returns the lowest index whose distance ties the minimum,
// ignoring skip.
func pickNearest(dist []float64, skip int) int {
	least := math.Inf(1)
	for k, d := range dist {
		if k != skip && d < least {
			least = d
		}
	}

	tol := tieTolerance * math.Max(1, least)
	for k, d := range dist {
		if k != skip && d <= least+tol {
			return k
		}
	}
	return -1
}

// RotateAboutNearestEdge tilts corners about the edge formed by the two
// corners closest to selected, pivoting on that edge's midpoint. With fewer
// than two corners the input is returned unchanged.
func RotateAboutNearestEdge(corners []r3.Vec, selected r3.Vec, deg float64) []r3.Vec {
	if len(corners) < 2 {
		out := make([]r3.Vec, len(corners))
		copy(out, corners)
		return out
	}

	i, j := nearestTwo(corners, selected)
	if i < 0 || j < 0 {
		out := make([]r3.Vec, len(corners))
		copy(out, corners)
		return out
	}
	axis := r3.Sub(corners[j], corners[i])
	pivot := geometry.Midpoint(corners[i], corners[j])

	return RotateAboutAxis(corners, pivot, axis, deg)
}

func faceNormal(corners []r3.Vec) (r3.Vec, bool) {
	if len(corners) < 3 {
		return r3.Vec{}, false
	}
	return geometry.Unit(r3.Cross(r3.Sub(corners[1], corners[0]), r3.Sub(corners[2], corners[0])))
}

// RotateAboutFaceNormal rotates corners about their own current face normal
// through center. Degenerate faces are returned unchanged.
func RotateAboutFaceNormal(corners []r3.Vec, center r3.Vec, deg float64) []r3.Vec {
	n, ok := faceNormal(corners)
	if !ok {
		out := make([]r3.Vec, len(corners))
		copy(out, corners)
		return out
	}
	return RotateAboutAxis(corners, center, n, deg)
}

// ApplyAll applies the three rotations in order: angle1 about the surface
// normal, angle2 about the nearest edge, angle3 about the recomputed face
// normal. Angles are clamped to [0, 180].
func ApplyAll(initial Square, selected, surfaceNormal r3.Vec, angle1, angle2, angle3 float64) Square {
	corners := RotateAboutNormal(initial.Corners[:], selected, surfaceNormal, ClampAngle(angle1))
	corners = RotateAboutNearestEdge(corners, selected, ClampAngle(angle2))
	corners = RotateAboutFaceNormal(corners, selected, ClampAngle(angle3))

	out := initial
	copy(out.Corners[:], corners)
	return out
}
