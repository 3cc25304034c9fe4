// Package session holds the state of one point-to-CT operation: the picked
// point and normal, the reference axis, the three plane angles and the
// backend batch the point belongs to.
//
// Sessions are plain values owned by a single viewer; create one per viewer
// (or test) with New.
package session

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"point2ct/pkg/geometry"
	"point2ct/pkg/plane"
	"point2ct/pkg/snap"
)

// ErrNoSelection is returned when a square is requested before a point and
// normal have been picked.
var ErrNoSelection = errors.New("no point and normal selected")

// Angle names one of the three rotation angles.
type Angle int

const (
	Angle1 Angle = iota // about the surface normal
	Angle2              // about the nearest square edge
	Angle3              // about the tilted face normal
)

// Options configures a new session.
type Options struct {
	Axis          geometry.Axis
	SideLength    float64
	SnapThreshold float64
}

// DefaultOptions returns the viewer defaults.
func DefaultOptions() Options {
	return Options{
		Axis:          geometry.AxisX,
		SideLength:    plane.DefaultSideLength,
		SnapThreshold: snap.DefaultThreshold,
	}
}

// Selection is a picked point with its surface normal.
type Selection struct {
	Point     r3.Vec
	Normal    r3.Vec
	HasNormal bool
}

// State is a snapshot of a session.
type State struct {
	Point      *r3.Vec
	Normal     *r3.Vec
	Axis       geometry.Axis
	Angles     [3]float64
	BatchID    string
	SideLength float64
}

// Session is the mutable state of one point-to-CT operation.
type Session struct {
	opts Options

	point  *r3.Vec
	normal *r3.Vec
	axis   geometry.Axis
	angles [3]float64

	batchID    string
	sideLength float64
}

// New creates an empty session.
func New(opts Options) *Session {
	if !(opts.SideLength > 0) {
		opts.SideLength = plane.DefaultSideLength
	}
	if !(opts.SnapThreshold > 0) {
		opts.SnapThreshold = snap.DefaultThreshold
	}
	return &Session{
		opts:       opts,
		axis:       opts.Axis,
		sideLength: opts.SideLength,
	}
}

// SetSelection replaces the picked point. The normal is cleared when the
// selection carries none. Angles restart at zero for a new point.
func (s *Session) SetSelection(sel Selection) {
	p := sel.Point
	s.point = &p
	s.normal = nil
	if sel.HasNormal {
		n := sel.Normal
		s.normal = &n
	}
	s.angles = [3]float64{}
}

// SetNormal sets or replaces the surface normal of the current point.
func (s *Session) SetNormal(n r3.Vec) {
	s.normal = &n
}

// Pick snaps query against the surface index and selects the result. The
// snapped point's own normal is preferred over the raycast normal. A miss
// leaves the session untouched, as does a nil index.
func (s *Session) Pick(query r3.Vec, rayNormal *r3.Vec, ix *snap.Index) (snap.Hit, bool) {
	hit, ok := ix.Snap(query, s.opts.SnapThreshold)
	if !ok {
		return snap.Hit{}, false
	}

	sel := Selection{Point: hit.Point.Position}
	switch {
	case hit.Point.HasNormal:
		sel.Normal, sel.HasNormal = hit.Point.Normal, true
	case rayNormal != nil:
		sel.Normal, sel.HasNormal = *rayNormal, true
	}
	s.SetSelection(sel)

	return hit, true
}

// SetBatchID records the backend batch the picked point belongs to.
func (s *Session) SetBatchID(id string) { s.batchID = id }

// SetAxis selects the reference axis for the square's tangent.
func (s *Session) SetAxis(a geometry.Axis) { s.axis = a }

// SetSideLength changes the square size. Non-positive values are ignored.
func (s *Session) SetSideLength(l float64) {
	if l > 0 {
		s.sideLength = l
	}
}

// SetAngle stores deg for the given angle, clamped to [0, 180].
func (s *Session) SetAngle(which Angle, deg float64) {
	if which < Angle1 || which > Angle3 {
		return
	}
	s.angles[which] = plane.ClampAngle(deg)
}

// Angles returns angle1, angle2 and angle3.
func (s *Session) Angles() [3]float64 { return s.angles }

// Reset clears the selection, angles and batch, keeping the configured
// defaults for axis and side length.
func (s *Session) Reset() {
	*s = *New(s.opts)
}

// Square builds the initial square for the current selection and applies
// the three rotations.
func (s *Session) Square() (plane.Square, error) {
	if s.point == nil || s.normal == nil {
		return plane.Square{}, ErrNoSelection
	}

	sq, err := plane.BuildInitialSquare(*s.point, *s.normal, s.axis, s.sideLength)
	if err != nil {
		return plane.Square{}, errors.Wrap(err, "failed to build square")
	}

	a := s.angles
	return plane.ApplyAll(sq, *s.point, *s.normal, a[Angle1], a[Angle2], a[Angle3]), nil
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	st := State{
		Axis:       s.axis,
		Angles:     s.angles,
		BatchID:    s.batchID,
		SideLength: s.sideLength,
	}
	if s.point != nil {
		p := *s.point
		st.Point = &p
	}
	if s.normal != nil {
		n := *s.normal
		st.Normal = &n
	}
	return st
}
