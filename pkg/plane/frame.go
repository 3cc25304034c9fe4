// Package plane builds and orients the square imaging plane used for
// point-to-CT extraction.
//
// A square is centered on a picked surface point and spans the plane
// perpendicular to the surface normal. It is then tilted by up to three
// successive rotations, each defined relative to the geometry produced by the
// previous one.
package plane

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"point2ct/pkg/geometry"
)

// DefaultSideLength is the side of the extraction square in mm.
const DefaultSideLength = 85.0

// ErrDegenerateFrame is returned when the surface normal is zero or parallel
// to the chosen reference axis, so no tangent can be derived.
var ErrDegenerateFrame = errors.New("degenerate frame: normal is parallel to the reference axis")

// Frame is a right-handed orthonormal frame {Normal, Tangent, Binormal}.
type Frame struct {
	Normal   r3.Vec
	Tangent  r3.Vec
	Binormal r3.Vec
}

// Square is the extraction plane: four ordered corners around a center.
//
// Corners are wound so that triangles {0,1,2} and {0,2,3} cover the quad
// without overlap.
type Square struct {
	// Center is the picked point the square was built around
	Center r3.Vec

	// Corners are the current corner positions
	Corners [4]r3.Vec

	// Frame is the frame at construction time; rotations do not update it
	Frame Frame

	// SideLength is the edge length at construction time
	SideLength float64
}

// NewFrame derives the frame for a surface normal and reference axis.
// tangent = normal x axis, binormal = normal x tangent.
func NewFrame(normal r3.Vec, axis geometry.Axis) (Frame, error) {
	n, ok := geometry.Unit(normal)
	if !ok {
		return Frame{}, errors.Wrap(ErrDegenerateFrame, "zero normal")
	}

	t, ok := geometry.Unit(r3.Cross(n, axis.Unit()))
	if !ok {
		return Frame{}, errors.Wrapf(ErrDegenerateFrame, "axis %s", axis)
	}

	b, _ := geometry.Unit(r3.Cross(n, t))

	return Frame{Normal: n, Tangent: t, Binormal: b}, nil
}

// BuildInitialSquare builds an axis-aligned (in frame terms) square of the
// given side length centered on center.
func BuildInitialSquare(center, normal r3.Vec, axis geometry.Axis, sideLength float64) (Square, error) {
	if !(sideLength > 0) || math.IsInf(sideLength, 0) {
		return Square{}, errors.Errorf("invalid side length %v", sideLength)
	}

	frame, err := NewFrame(normal, axis)
	if err != nil {
		return Square{}, err
	}

	half := sideLength / 2
	t := r3.Scale(half, frame.Tangent)
	b := r3.Scale(half, frame.Binormal)

	sq := Square{
		Center:     center,
		Frame:      frame,
		SideLength: sideLength,
	}
	sq.Corners[0] = r3.Sub(r3.Sub(center, t), b)
	sq.Corners[1] = r3.Sub(r3.Add(center, t), b)
	sq.Corners[2] = r3.Add(r3.Add(center, t), b)
	sq.Corners[3] = r3.Add(r3.Sub(center, t), b)

	return sq, nil
}

// Triangles returns the two triangles covering the square.
func (s Square) Triangles() [2][3]r3.Vec {
	c := s.Corners
	return [2][3]r3.Vec{
		{c[0], c[1], c[2]},
		{c[0], c[2], c[3]},
	}
}

// FaceNormal is the unit normal of the current corners, or false when the
// corners are degenerate.
func (s Square) FaceNormal() (r3.Vec, bool) {
	return faceNormal(s.Corners[:])
}
