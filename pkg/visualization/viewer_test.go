package visualization

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"point2ct/internal/models"
	"point2ct/pkg/geometry"
	"point2ct/pkg/plane"
)

func squareZ(t *testing.T) plane.Square {
	sq, err := plane.BuildInitialSquare(r3.Vec{}, r3.Vec{Z: 1}, geometry.AxisX, 10)
	if err != nil {
		t.Fatalf("BuildInitialSquare failed: %v", err)
	}
	return sq
}

// TestSummarize verifies bounds, centroid and spread
func TestSummarize(t *testing.T) {
	points := []geometry.OrientedPoint{
		{Position: r3.Vec{X: -1, Y: 0, Z: 2}, Normal: r3.Vec{Z: 1}, HasNormal: true},
		{Position: r3.Vec{X: 1, Y: 4, Z: 2}},
	}

	s := Summarize(points)
	if s.Count != 2 || s.WithNormals != 1 {
		t.Errorf("Unexpected counts: %+v", s)
	}
	if s.Min != (r3.Vec{X: -1, Y: 0, Z: 2}) || s.Max != (r3.Vec{X: 1, Y: 4, Z: 2}) {
		t.Errorf("Unexpected bounds: %v - %v", s.Min, s.Max)
	}
	if s.Centroid != (r3.Vec{X: 0, Y: 2, Z: 2}) {
		t.Errorf("Unexpected centroid: %v", s.Centroid)
	}
	if math.Abs(s.StdDev.X-1) > 1e-9 || math.Abs(s.StdDev.Y-2) > 1e-9 || s.StdDev.Z != 0 {
		t.Errorf("Unexpected spread: %v", s.StdDev)
	}
	if !strings.Contains(s.String(), "2 points (1 with normals)") {
		t.Errorf("Unexpected summary text: %s", s)
	}

	if empty := Summarize(nil); empty.Count != 0 {
		t.Errorf("Expected empty summary, got %+v", empty)
	}
}

// TestWriteOBJ verifies the mesh layout
func TestWriteOBJ(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, squareZ(t)); err != nil {
		t.Fatalf("WriteOBJ failed: %v", err)
	}

	out := buf.String()
	if n := strings.Count(out, "\nv "); n != 4 {
		t.Errorf("Expected 4 vertices, got %d:\n%s", n, out)
	}
	if !strings.Contains(out, "vn 0.000000 0.000000 1.000000") {
		t.Errorf("Expected +z normal:\n%s", out)
	}
	if strings.Contains(out, "-0.000000") {
		t.Errorf("Negative zero in output:\n%s", out)
	}
	if !strings.Contains(out, "f 1//1 2//1 3//1\nf 1//1 3//1 4//1\n") {
		t.Errorf("Expected two faces:\n%s", out)
	}
}

// TestWriteTrajectoryOBJ verifies that the face and path are written
func TestWriteTrajectoryOBJ(t *testing.T) {
	tr := models.Trajectory{
		Target: r3.Vec{Z: -5},
		Face:   [4]r3.Vec{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}},
	}

	var buf bytes.Buffer
	if err := WriteTrajectoryOBJ(&buf, tr); err != nil {
		t.Fatalf("WriteTrajectoryOBJ failed: %v", err)
	}

	out := buf.String()
	if n := strings.Count(out, "\nv "); n != 6 {
		t.Errorf("Expected 6 vertices, got %d", n)
	}
	if !strings.HasSuffix(out, "l 5 6\n") {
		t.Errorf("Expected a closing path line:\n%s", out)
	}
}

// TestExtractSection verifies the slab and outline tests
func TestExtractSection(t *testing.T) {
	points := []geometry.OrientedPoint{
		{Position: r3.Vec{X: 0, Y: 0, Z: 0.4}},    // inside
		{Position: r3.Vec{X: 0, Y: 0, Z: 2}},      // above the slab
		{Position: r3.Vec{X: 20, Y: 0, Z: 0}},     // outside the outline
		{Position: r3.Vec{X: 4.9, Y: -4.9, Z: 0}}, // near corner 0
	}

	viewer := NewViewer(points)
	section, err := viewer.ExtractSection(squareZ(t), 1)
	if err != nil {
		t.Fatalf("ExtractSection failed: %v", err)
	}

	if len(section) != 2 {
		t.Fatalf("Expected 2 section points, got %d: %+v", len(section), section)
	}
	if section[0].Index != 0 || math.Abs(section[0].Offset-0.4) > 1e-9 {
		t.Errorf("Unexpected first section point: %+v", section[0])
	}
	if section[0].U != 5 || section[0].V != 5 {
		t.Errorf("Expected center at (5,5) in plane coordinates, got (%f,%f)", section[0].U, section[0].V)
	}
	if section[1].Index != 3 {
		t.Errorf("Expected corner point, got %+v", section[1])
	}

	if _, err := viewer.ExtractSection(squareZ(t), 0); err == nil {
		t.Error("Expected error for zero thickness")
	}
}
