// Package visualization prepares the extraction plane and point clouds for
// display: mesh export, cloud statistics and plane cross-sections.
package visualization

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"point2ct/internal/models"
	"point2ct/pkg/geometry"
	"point2ct/pkg/plane"
)

// CloudSummary describes a point cloud for display.
type CloudSummary struct {
	// Count is the number of points
	Count int

	// WithNormals is the number of points carrying a normal
	WithNormals int

	// Min and Max bound the cloud
	Min, Max r3.Vec

	// Centroid is the mean position
	Centroid r3.Vec

	// StdDev is the per-axis standard deviation of the positions
	StdDev r3.Vec
}

// Summarize computes the bounds and spread of points.
func Summarize(points []geometry.OrientedPoint) CloudSummary {
	s := CloudSummary{Count: len(points)}
	if len(points) == 0 {
		return s
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	zs := make([]float64, len(points))
	s.Min = points[0].Position
	s.Max = points[0].Position

	for i, p := range points {
		xs[i], ys[i], zs[i] = p.Position.X, p.Position.Y, p.Position.Z
		if p.HasNormal {
			s.WithNormals++
		}
		s.Min = r3.Vec{X: math.Min(s.Min.X, p.Position.X), Y: math.Min(s.Min.Y, p.Position.Y), Z: math.Min(s.Min.Z, p.Position.Z)}
		s.Max = r3.Vec{X: math.Max(s.Max.X, p.Position.X), Y: math.Max(s.Max.Y, p.Position.Y), Z: math.Max(s.Max.Z, p.Position.Z)}
	}

	mx, sx := stat.PopMeanStdDev(xs, nil)
	my, sy := stat.PopMeanStdDev(ys, nil)
	mz, sz := stat.PopMeanStdDev(zs, nil)
	s.Centroid = r3.Vec{X: mx, Y: my, Z: mz}
	s.StdDev = r3.Vec{X: sx, Y: sy, Z: sz}

	return s
}

func (s CloudSummary) String() string {
	return fmt.Sprintf("%d points (%d with normals)\nbounds: (%.2f, %.2f, %.2f) - (%.2f, %.2f, %.2f)\ncentroid: (%.2f, %.2f, %.2f)\nstd dev: (%.2f, %.2f, %.2f)",
		s.Count, s.WithNormals,
		s.Min.X, s.Min.Y, s.Min.Z, s.Max.X, s.Max.Y, s.Max.Z,
		s.Centroid.X, s.Centroid.Y, s.Centroid.Z,
		s.StdDev.X, s.StdDev.Y, s.StdDev.Z)
}

// WriteOBJ writes the square as a two-face OBJ mesh.
func WriteOBJ(w io.Writer, sq plane.Square) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# point2ct extraction plane")
	fmt.Fprintln(bw, "o plane")
	for _, c := range sq.Corners {
		writeVec(bw, "v", c)
	}
	if n, ok := sq.FaceNormal(); ok {
		writeVec(bw, "vn", n)
		fmt.Fprintln(bw, "f 1//1 2//1 3//1")
		fmt.Fprintln(bw, "f 1//1 3//1 4//1")
	} else {
		fmt.Fprintln(bw, "f 1 2 3")
		fmt.Fprintln(bw, "f 1 3 4")
	}

	return bw.Flush()
}

// WriteTrajectoryOBJ writes the trajectory face as a quad and the path from
// the face center to the target as a line.
func WriteTrajectoryOBJ(w io.Writer, tr models.Trajectory) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# point2ct trajectory")
	fmt.Fprintln(bw, "o trajectory")
	for _, c := range tr.Face {
		writeVec(bw, "v", c)
	}
	writeVec(bw, "v", tr.FaceCenter())
	writeVec(bw, "v", tr.Target)
	fmt.Fprintln(bw, "f 1 2 3")
	fmt.Fprintln(bw, "f 1 3 4")
	fmt.Fprintln(bw, "l 5 6")

	return bw.Flush()
}

// writeVec writes one OBJ vector record. Negative zeros are printed as 0.
func writeVec(w io.Writer, kind string, v r3.Vec) {
	fmt.Fprintf(w, "%s %f %f %f\n", kind, unsigned(v.X), unsigned(v.Y), unsigned(v.Z))
}

func unsigned(f float64) float64 {
	if f == 0 {
		return 0
	}
	return f
}

// SaveOBJ writes the square to filename.
func SaveOBJ(filename string, sq plane.Square) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create OBJ file %s", filename)
	}
	defer file.Close()

	return WriteOBJ(file, sq)
}
