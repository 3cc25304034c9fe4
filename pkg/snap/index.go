package snap

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	"point2ct/pkg/geometry"
)

// Index is a kd-tree over a point cloud. It answers the same queries as Snap
// without a linear scan and is safe for concurrent reads.
type Index struct {
	points []geometry.OrientedPoint
	tree   *kdtree.Tree
}

// NewIndex builds an index over points. The slice is copied.
func NewIndex(points []geometry.OrientedPoint) *Index {
	ix := &Index{points: make([]geometry.OrientedPoint, len(points))}
	copy(ix.points, points)

	nodes := make(cloud, len(points))
	for i, p := range points {
		nodes[i] = &node{pos: p.Position, index: i}
	}
	ix.tree = kdtree.New(nodes, false)

	return ix
}

// Len returns the number of indexed points.
func (ix *Index) Len() int { return len(ix.Points()) }

// Points returns the indexed points. The slice must not be modified.
func (ix *Index) Points() []geometry.OrientedPoint {
	if ix == nil {
		return nil
	}
	return ix.points
}

// Snap behaves like the package level Snap over the indexed points. A nil
// index never hits.
func (ix *Index) Snap(query r3.Vec, threshold float64) (Hit, bool) {
	if ix.Len() == 0 || !(threshold > 0) {
		return Hit{}, false
	}

	// Distances are squared inside the tree
	keep := kdtree.NewDistKeeper(threshold * threshold)
	ix.tree.NearestSet(keep, &node{pos: query, index: -1})

	best := -1
	bestDist := math.Inf(1)
	for _, c := range keep.Heap {
		n, ok := c.Comparable.(*node)
		if !ok || n == nil {
			continue
		}
		d := geometry.Distance(query, n.pos)
		if d < bestDist || (d == bestDist && n.index < best) {
			best = n.index
			bestDist = d
		}
	}

	if best < 0 || !(bestDist < threshold) {
		return Hit{}, false
	}

	return Hit{Point: ix.points[best], Index: best, Distance: bestDist}, true
}

// Result is the outcome of one query in SnapAll.
type Result struct {
	Hit Hit
	OK  bool
}

// SnapAll snaps every query against the index using up to workers goroutines.
// Results are returned in query order.
func SnapAll(ix *Index, queries []r3.Vec, threshold float64, workers int) []Result {
	results := make([]Result, len(queries))
	if len(queries) == 0 {
		return results
	}

	if workers < 1 {
		workers = 1
	}
	if workers > len(queries) {
		workers = len(queries)
	}

	// Split the queries into contiguous chunks, one per worker
	chunk := (len(queries) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < len(queries); start += chunk {
		end := start + chunk
		if end > len(queries) {
			end = len(queries)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				hit, ok := ix.Snap(queries[i], threshold)
				results[i] = Result{Hit: hit, OK: ok}
			}
		}(start, end)
	}
	wg.Wait()

	return results
}

// node is a kd-tree entry carrying the source index of its point.
type node struct {
	pos   r3.Vec
	index int
}

func (n *node) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(*node)
	return coord(n.pos, d) - coord(q.pos, d)
}

func (n *node) Dims() int { return 3 }

func (n *node) Distance(c kdtree.Comparable) float64 {
	q := c.(*node)
	return r3.Norm2(r3.Sub(n.pos, q.pos))
}

func coord(v r3.Vec, d kdtree.Dim) float64 {
	switch d {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

// cloud implements kdtree.Interface.
type cloud []*node

func (c cloud) Index(i int) kdtree.Comparable { return c[i] }
func (c cloud) Len() int                      { return len(c) }
func (c cloud) Slice(start, end int) kdtree.Interface {
	return c[start:end]
}
func (c cloud) Pivot(d kdtree.Dim) int {
	return plane{cloud: c, dim: d}.pivot()
}

// plane sorts a cloud along one dimension for pivot selection.
type plane struct {
	cloud
	dim kdtree.Dim
}

func (p plane) Less(i, j int) bool {
	return coord(p.cloud[i].pos, p.dim) < coord(p.cloud[j].pos, p.dim)
}
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.cloud = p.cloud[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.cloud[i], p.cloud[j] = p.cloud[j], p.cloud[i]
}
func (p plane) pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}
