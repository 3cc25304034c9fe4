// Package ply reads ASCII PLY point clouds produced by the segmentation backend.
//
// The same reader serves full surface clouds (positions with normals, used for
// snapping) and the small 5-point trajectory files; callers impose their own
// count expectations on the result.
package ply

import (
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"point2ct/pkg/geometry"
)

// ErrFormat reports text that cannot be read as a PLY point cloud.
var ErrFormat = errors.New("malformed point cloud")

const endHeader = "end_header"

// header holds the parts of the PLY header the reader cares about.
type header struct {
	// vertexCount is the declared number of vertex rows, -1 when undeclared
	vertexCount int

	// dataStart is the index of the first line after end_header
	dataStart int
}

// Parse reads PLY text into oriented points.
//
// Up to the declared vertex count of lines after end_header are read. Rows with
// at least three numeric tokens yield a position, rows with at least six also
// yield a normal. Short or non-numeric rows are skipped.
func Parse(text string) ([]geometry.OrientedPoint, error) {
	lines := strings.Split(text, "\n")

	h, err := readHeader(lines)
	if err != nil {
		return nil, err
	}

	end := len(lines)
	if h.vertexCount >= 0 && h.dataStart+h.vertexCount < end {
		end = h.dataStart + h.vertexCount
	}

	points := make([]geometry.OrientedPoint, 0, end-h.dataStart)
	for _, line := range lines[h.dataStart:end] {
		p, ok := parseRow(line)
		if !ok {
			continue
		}
		points = append(points, p)
	}

	return points, nil
}

// ParseReader reads all of r and parses it as PLY text.
func ParseReader(r io.Reader) ([]geometry.OrientedPoint, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "error reading point cloud")
	}
	return Parse(string(data))
}

// ParseFile parses the PLY file at path.
func ParseFile(path string) ([]geometry.OrientedPoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading point cloud %s", path)
	}
	points, err := Parse(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing point cloud %s", path)
	}
	return points, nil
}

func readHeader(lines []string) (header, error) {
	h := header{vertexCount: -1}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == endHeader {
			h.dataStart = i + 1
			return h, nil
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		switch {
		case fields[0] == "format" && strings.HasPrefix(fields[1], "binary"):
			return h, errors.Wrapf(ErrFormat, "unsupported format %s", fields[1])

		case fields[0] == "element" && fields[1] == "vertex":
			if len(fields) < 3 {
				return h, errors.Wrap(ErrFormat, "vertex element without count")
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 0 {
				return h, errors.Wrapf(ErrFormat, "invalid vertex count %q", fields[2])
			}
			h.vertexCount = n
		}
	}

	return h, errors.Wrap(ErrFormat, "no end_header marker")
}

// parseRow reads one data row. Only x, y and z must be numeric; a normal is
// attached when tokens 3..5 are present and numeric.
func parseRow(line string) (geometry.OrientedPoint, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 3 {
		return geometry.OrientedPoint{}, false
	}

	xyz, ok := parseTriple(tokens[0:3])
	if !ok {
		return geometry.OrientedPoint{}, false
	}

	p := geometry.OrientedPoint{Position: xyz}
	if len(tokens) >= 6 {
		if n, ok := parseTriple(tokens[3:6]); ok {
			p.Normal = n
			p.HasNormal = true
		}
	}
	return p, true
}

func parseTriple(tokens []string) (r3.Vec, bool) {
	var v [3]float64
	for i, tok := range tokens {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return r3.Vec{}, false
		}
		v[i] = f
	}
	return geometry.FromArray(v), true
}
