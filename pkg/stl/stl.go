// Package stl writes the extraction square as an STL mesh so it can be
// overlaid on the segmented surface in external viewers.
package stl

import (
	hstl "github.com/hschendel/stl"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"point2ct/pkg/geometry"
	"point2ct/pkg/plane"
)

// Triangle is a single facet with its unit normal.
type Triangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
}

func toFloat32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

// NewTriangle builds a facet from three vertices, deriving the normal from
// their winding. Degenerate facets get a zero normal.
func NewTriangle(a, b, c r3.Vec) Triangle {
	n, _ := geometry.Unit(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
	return Triangle{
		Normal:  toFloat32(n),
		Vertex1: toFloat32(a),
		Vertex2: toFloat32(b),
		Vertex3: toFloat32(c),
	}
}

// FromSquare returns the two facets {0,1,2} and {0,2,3} of the square.
func FromSquare(sq plane.Square) []Triangle {
	tris := sq.Triangles()
	out := make([]Triangle, 0, len(tris))
	for _, t := range tris {
		out = append(out, NewTriangle(t[0], t[1], t[2]))
	}
	return out
}

// SaveToSTL writes triangles to filename as binary STL.
func SaveToSTL(filename string, triangles []Triangle) error {
	solid := &hstl.Solid{Triangles: make([]hstl.Triangle, len(triangles))}
	for i, t := range triangles {
		solid.Triangles[i] = hstl.Triangle{
			Normal:   hstl.Vec3(t.Normal),
			Vertices: [3]hstl.Vec3{hstl.Vec3(t.Vertex1), hstl.Vec3(t.Vertex2), hstl.Vec3(t.Vertex3)},
		}
	}

	if err := solid.WriteFile(filename); err != nil {
		return errors.Wrapf(err, "failed to write STL file %s", filename)
	}
	return nil
}

// LoadSTL reads the facets of an STL file.
func LoadSTL(filename string) ([]Triangle, error) {
	solid, err := hstl.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read STL file %s", filename)
	}

	out := make([]Triangle, len(solid.Triangles))
	for i, t := range solid.Triangles {
		out[i] = Triangle{
			Normal:  [3]float32(t.Normal),
			Vertex1: [3]float32(t.Vertices[0]),
			Vertex2: [3]float32(t.Vertices[1]),
			Vertex3: [3]float32(t.Vertices[2]),
		}
	}
	return out, nil
}
