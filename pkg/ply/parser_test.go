package ply

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

const cloudHeader = `ply
format ascii 1.0
element vertex 5
property float x
property float y
property float z
property float nx
property float ny
property float nz
end_header
`

// TestParseWithNormals verifies that every row of a full cloud is read with its normal
func TestParseWithNormals(t *testing.T) {
	text := cloudHeader +
		"0 0 0 0 0 1\n" +
		"1 2 3 0 1 0\n" +
		"4.5 -5 6 1 0 0\n" +
		"7 8 9 0 0 2\n" +
		"-1 -2 -3 0.5 0.5 0\n"

	points, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(points) != 5 {
		t.Fatalf("Expected 5 points, got %d", len(points))
	}

	p := points[2]
	if p.Position.X != 4.5 || p.Position.Y != -5 || p.Position.Z != 6 {
		t.Errorf("Unexpected position for point 2: %+v", p.Position)
	}
	if !p.HasNormal || p.Normal.X != 1 || p.Normal.Y != 0 || p.Normal.Z != 0 {
		t.Errorf("Unexpected normal for point 2: %+v", p.Normal)
	}

	// Normals are passed through unnormalized
	if points[3].Normal.Z != 2 {
		t.Errorf("Expected raw normal z 2, got %f", points[3].Normal.Z)
	}
}

// TestParseSkipsShortRows verifies that a row with only two tokens is dropped
func TestParseSkipsShortRows(t *testing.T) {
	text := cloudHeader +
		"0 0 0 0 0 1\n" +
		"1 2\n" +
		"4 5 6 1 0 0\n" +
		"7 8 9 0 0 1\n" +
		"1 1 1 0 1 0\n"

	points, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(points) != 4 {
		t.Fatalf("Expected 4 points, got %d", len(points))
	}
}

// TestParseSkipsNaNRows verifies that non-numeric and infinite coordinates are dropped
func TestParseSkipsNaNRows(t *testing.T) {
	text := "ply\nelement vertex 6\nend_header\n" +
		"nan 0 0\n" +
		"a b c\n" +
		"inf 0 0\n" +
		"0 -Infinity 0\n" +
		"1 2 3 inf 0 1\n" +
		"1 2 3\n"

	points, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d: %+v", len(points), points)
	}
	for i, p := range points {
		if p.Position != (r3.Vec{X: 1, Y: 2, Z: 3}) {
			t.Errorf("Point %d: unexpected position %v", i, p.Position)
		}
		if p.HasNormal {
			t.Errorf("Point %d: an infinite or missing normal should not be kept", i)
		}
	}
}

// TestParseVertexCountLimit verifies that rows beyond the declared count are ignored
func TestParseVertexCountLimit(t *testing.T) {
	text := "ply\nelement vertex 2\nend_header\n1 1 1\n2 2 2\n3 3 3\n"

	points, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}

	// A short file yields fewer points than declared
	points, err = Parse("ply\nelement vertex 10\nend_header\n1 1 1\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(points) != 1 {
		t.Errorf("Expected 1 point from short file, got %d", len(points))
	}
}

// TestParseWithoutVertexCount verifies that an undeclared count reads every row
func TestParseWithoutVertexCount(t *testing.T) {
	points, err := Parse("ply\r\nend_header\r\n1 1 1\r\n2 2 2\r\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}
}

// TestParseFormatErrors verifies the fatal header failures
func TestParseFormatErrors(t *testing.T) {
	cases := map[string]string{
		"missing end_header": "ply\nelement vertex 1\n1 2 3\n",
		"binary format":      "ply\nformat binary_little_endian 1.0\nend_header\n",
		"bad vertex count":   "ply\nelement vertex many\nend_header\n",
		"negative count":     "ply\nelement vertex -1\nend_header\n",
	}

	for name, text := range cases {
		points, err := Parse(text)
		if !errors.Is(err, ErrFormat) {
			t.Errorf("%s: expected ErrFormat, got %v", name, err)
		}
		if points != nil {
			t.Errorf("%s: expected no partial result, got %d points", name, len(points))
		}
	}
}

// TestParseFile verifies reading from disk and from a reader
func TestParseFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "point2ct-ply-*")
	if err != nil {
		t.Fatalf("Failed to create temporary directory: %v", err)
	}
	defer os.RemoveAll(dir)

	text := "ply\nelement vertex 1\nend_header\n1 2 3 0 0 1\n"
	path := filepath.Join(dir, "cloud.ply")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	points, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(points) != 1 || !points[0].HasNormal {
		t.Errorf("Unexpected result from ParseFile: %+v", points)
	}

	points, err = ParseReader(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	if len(points) != 1 {
		t.Errorf("Expected 1 point from reader, got %d", len(points))
	}

	if _, err := ParseFile(filepath.Join(dir, "missing.ply")); err == nil {
		t.Error("Expected error for missing file")
	}
}
