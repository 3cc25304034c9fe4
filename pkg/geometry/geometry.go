// Package geometry holds the shared point and axis types used by the point-to-CT
// plane tooling. Positions and normals are gonum r3 vectors in scanner space (mm).
package geometry

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-9

// ErrInvalidAxis is returned by ParseAxis for anything other than x, y or z.
var ErrInvalidAxis = errors.New("invalid axis (must be x, y, or z)")

// OrientedPoint is a position with an optional surface normal.
type OrientedPoint struct {
	// Position is the point location
	Position r3.Vec

	// Normal is the surface normal as read from the source; it is not
	// guaranteed to be unit length
	Normal r3.Vec

	// HasNormal reports whether Normal was present in the source
	HasNormal bool
}

// UnitNormal returns the normalized normal, or false when the point carries
// no usable normal.
func (p OrientedPoint) UnitNormal() (r3.Vec, bool) {
	if !p.HasNormal {
		return r3.Vec{}, false
	}
	return Unit(p.Normal)
}

// Axis selects one of the standard basis directions.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// ParseAxis converts "x", "y" or "z" (any case) into an Axis.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return AxisX, errors.Wrapf(ErrInvalidAxis, "axis %q", s)
}

// Unit returns the basis vector for the axis.
func (a Axis) Unit() r3.Vec {
	switch a {
	case AxisY:
		return r3.Vec{Y: 1}
	case AxisZ:
		return r3.Vec{Z: 1}
	default:
		return r3.Vec{X: 1}
	}
}

// Char returns the lower case axis letter used on the wire.
func (a Axis) Char() string {
	switch a {
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "x"
	}
}

func (a Axis) String() string { return strings.ToUpper(a.Char()) }

// Unit normalizes v. It returns false when v is (numerically) zero or not finite.
func Unit(v r3.Vec) (r3.Vec, bool) {
	n := r3.Norm(v)
	if n < Epsilon || math.IsNaN(n) || math.IsInf(n, 0) {
		return r3.Vec{}, false
	}
	return r3.Scale(1/n, v), true
}

// Distance is the Euclidean distance between a and b.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b r3.Vec) r3.Vec {
	return r3.Scale(0.5, r3.Add(a, b))
}

// ToArray returns v as an [x, y, z] array.
func ToArray(v r3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// FromArray builds a vector from an [x, y, z] array.
func FromArray(a [3]float64) r3.Vec {
	return r3.Vec{X: a[0], Y: a[1], Z: a[2]}
}

// ParseVec parses "x,y,z" into a vector.
func ParseVec(s string) (r3.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return r3.Vec{}, errors.Errorf("vector %q: expected x,y,z", s)
	}
	var out [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return r3.Vec{}, errors.Wrapf(err, "vector %q", s)
		}
		out[i] = f
	}
	return FromArray(out), nil
}
