package models

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"point2ct/pkg/geometry"
)

// TrajectorySize is the number of points in a trajectory file:
// one target followed by the four face corners.
const TrajectorySize = 5

// ErrTrajectorySize is returned when a trajectory file does not hold exactly
// TrajectorySize points.
var ErrTrajectorySize = errors.New("trajectory must have 1 target and 4 face corners")

// Trajectory represents a planned needle trajectory exported by the backend
type Trajectory struct {
	// Target is the point the trajectory aims at
	Target r3.Vec

	// Face holds the four corners of the entry face, in file order
	Face [4]r3.Vec
}

// TrajectoryFromPoints builds a trajectory from parsed PLY points
func TrajectoryFromPoints(points []geometry.OrientedPoint) (Trajectory, error) {
	if len(points) != TrajectorySize {
		return Trajectory{}, errors.Wrapf(ErrTrajectorySize, "got %d points", len(points))
	}

	tr := Trajectory{Target: points[0].Position}
	for i := range tr.Face {
		tr.Face[i] = points[i+1].Position
	}
	return tr, nil
}

// FaceCenter is the centroid of the entry face
func (tr Trajectory) FaceCenter() r3.Vec {
	var sum r3.Vec
	for _, c := range tr.Face {
		sum = r3.Add(sum, c)
	}
	return r3.Scale(0.25, sum)
}

// FaceNormal is the unit normal of the entry face from its first three
// corners, or false for a degenerate face
func (tr Trajectory) FaceNormal() (r3.Vec, bool) {
	f := tr.Face
	return geometry.Unit(r3.Cross(r3.Sub(f[1], f[0]), r3.Sub(f[2], f[0])))
}

// Direction is the unit vector from the face center to the target
func (tr Trajectory) Direction() (r3.Vec, bool) {
	return geometry.Unit(r3.Sub(tr.Target, tr.FaceCenter()))
}

// Length is the distance from the face center to the target
func (tr Trajectory) Length() float64 {
	return geometry.Distance(tr.Target, tr.FaceCenter())
}
