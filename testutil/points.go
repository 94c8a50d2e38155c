package testutil

import (
	"github.com/kbukum/pointflow/point"
)

// NewTable returns a table with X, Y and Z registered.
func NewTable() *point.Table {
	return point.NewTable(point.XYZ()...)
}

// View returns a view on table holding one point per coordinate triple.
func View(table *point.Table, coords ...[3]float64) *point.View {
	v := point.NewView(table)
	for _, c := range coords {
		id := v.NewPoint()
		v.SetField(point.DimX, id, c[0])
		v.SetField(point.DimY, id, c[1])
		v.SetField(point.DimZ, id, c[2])
	}
	return v
}

// Grid returns a view of nx*ny points spaced step apart on the z=0 plane,
// starting at (x0, y0).
func Grid(table *point.Table, x0, y0, step float64, nx, ny int) *point.View {
	coords := make([][3]float64, 0, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			coords = append(coords, [3]float64{x0 + float64(i)*step, y0 + float64(j)*step, 0})
		}
	}
	return View(table, coords...)
}

// Coords returns the coordinates of every point of v in view order.
func Coords(v *point.View) [][3]float64 {
	out := make([][3]float64, v.Size())
	for i := range out {
		x, y, z := v.XYZ(point.PointID(i))
		out[i] = [3]float64{x, y, z}
	}
	return out
}

// Sizes returns the sizes of the views of set in view-id order.
func Sizes(set *point.ViewSet) []int {
	views := set.Views()
	out := make([]int, len(views))
	for i, v := range views {
		out[i] = v.Size()
	}
	return out
}
