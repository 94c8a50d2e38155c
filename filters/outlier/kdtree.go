package outlier

import (
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/kbukum/pointflow/point"
)

// indexed is a point of a view, carrying its id through the tree.
type indexed struct {
	id  point.PointID
	pos [3]float64
}

var _ kdtree.Comparable = indexed{}

func (p indexed) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.pos[d] - c.(indexed).pos[d]
}

func (p indexed) Dims() int { return 3 }

// Distance returns the squared euclidean distance.
func (p indexed) Distance(c kdtree.Comparable) float64 {
	q := c.(indexed)
	var sum float64
	for d := range p.pos {
		diff := p.pos[d] - q.pos[d]
		sum += diff * diff
	}
	return sum
}

// cloud is the kd-tree input built from a view.
type cloud []indexed

var _ kdtree.Interface = cloud(nil)

func (c cloud) Index(i int) kdtree.Comparable         { return c[i] }
func (c cloud) Len() int                              { return len(c) }
func (c cloud) Pivot(d kdtree.Dim) int                { return plane{cloud: c, Dim: d}.pivot() }
func (c cloud) Slice(start, end int) kdtree.Interface { return c[start:end] }

type plane struct {
	kdtree.Dim
	cloud
}

func (p plane) Less(i, j int) bool { return p.cloud[i].pos[p.Dim] < p.cloud[j].pos[p.Dim] }
func (p plane) Swap(i, j int)      { p.cloud[i], p.cloud[j] = p.cloud[j], p.cloud[i] }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.cloud = p.cloud[start:end]
	return p
}
func (p plane) pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

// index is a neighbor index over one view.
type index struct {
	points []indexed
	tree   *kdtree.Tree
}

func newIndex(v *point.View) *index {
	pts := make([]indexed, v.Size())
	for i := range pts {
		x, y, z := v.XYZ(point.PointID(i))
		pts[i] = indexed{id: point.PointID(i), pos: [3]float64{x, y, z}}
	}
	// The tree reorders its input; keep pts in view order for queries.
	c := make(cloud, len(pts))
	copy(c, pts)
	return &index{points: pts, tree: kdtree.New(c, false)}
}

// knn returns the squared distances to the k nearest points other than id,
// nearest first.
func (ix *index) knn(id point.PointID, k int) []float64 {
	keep := kdtree.NewNKeeper(k + 1)
	ix.tree.NearestSet(keep, ix.points[id])
	return others(keep.Heap, id, k)
}

// within returns the squared distances to every point other than id lying
// within radius.
func (ix *index) within(id point.PointID, radius float64) []float64 {
	keep := kdtree.NewDistKeeper(radius * radius)
	ix.tree.NearestSet(keep, ix.points[id])
	return others(keep.Heap, id, -1)
}

func others(h kdtree.Heap, id point.PointID, limit int) []float64 {
	out := make([]float64, 0, len(h))
	for _, cd := range h {
		if cd.Comparable == nil || cd.Comparable.(indexed).id == id {
			continue
		}
		if limit >= 0 && len(out) == limit {
			break
		}
		out = append(out, cd.Dist)
	}
	return out
}
