package point

import (
	"sync"
	"sync/atomic"
)

// PointID is the position of a point within a view.
type PointID int

var lastViewID atomic.Uint64

// View is an ordered sequence of table rows. Appending links rows; it never
// moves a point out of another view.
type View struct {
	id    uint64
	table *Table

	mu     sync.RWMutex
	rows   []int
	bounds *Bounds
}

// NewView creates an empty view over t.
func NewView(t *Table) *View {
	return &View{id: lastViewID.Add(1), table: t}
}

// ID returns the view's identity. Ids increase with creation order.
func (v *View) ID() uint64 { return v.id }

// Table returns the backing table.
func (v *View) Table() *Table { return v.table }

// Size returns the number of points.
func (v *View) Size() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.rows)
}

// Empty reports whether the view holds no points.
func (v *View) Empty() bool { return v.Size() == 0 }

// Rows returns a copy of the table rows referenced by the view.
func (v *View) Rows() []int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]int, len(v.rows))
	copy(out, v.rows)
	return out
}

// MakeNew returns an empty view over the same table.
func (v *View) MakeNew() *View { return NewView(v.table) }

// NewPoint appends a fresh zeroed row to the table and to the view.
func (v *View) NewPoint() PointID {
	row := v.table.AddRow()
	return v.appendRow(row)
}

// Append adds point id of src to v. When both views share a table the row
// is linked; otherwise it is copied into v's table.
func (v *View) Append(src *View, id PointID) PointID {
	row := src.row(id)
	if src.table != v.table {
		row = v.table.copyRow(src.table, row)
	}
	return v.appendRow(row)
}

// AppendAll adds every point of src to v.
func (v *View) AppendAll(src *View) {
	for i := range src.Size() {
		v.Append(src, PointID(i))
	}
}

// Field returns the value of d for point id.
func (v *View) Field(d Dim, id PointID) float64 {
	return v.table.Get(d, v.row(id))
}

// SetField writes the value of d for point id in the backing table. Every
// view referencing the same row observes the change.
func (v *View) SetField(d Dim, id PointID, value float64) {
	v.table.Set(d, v.row(id), value)
	if d == DimX || d == DimY || d == DimZ {
		v.mu.Lock()
		v.bounds = nil
		v.mu.Unlock()
	}
}

// XYZ returns the coordinates of point id.
func (v *View) XYZ(id PointID) (x, y, z float64) {
	row := v.row(id)
	return v.table.Get(DimX, row), v.table.Get(DimY, row), v.table.Get(DimZ, row)
}

// Bounds returns the bounding box of the view, computing it on first use
// after any append.
func (v *View) Bounds() Bounds {
	v.mu.RLock()
	if v.bounds != nil {
		b := *v.bounds
		v.mu.RUnlock()
		return b
	}
	rows := make([]int, len(v.rows))
	copy(rows, v.rows)
	v.mu.RUnlock()

	b := EmptyBounds()
	for _, row := range rows {
		b.Grow(v.table.Get(DimX, row), v.table.Get(DimY, row), v.table.Get(DimZ, row))
	}

	v.mu.Lock()
	if len(v.rows) == len(rows) {
		v.bounds = &b
	}
	v.mu.Unlock()
	return b
}

func (v *View) row(id PointID) int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.rows[id]
}

func (v *View) appendRow(row int) PointID {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rows = append(v.rows, row)
	v.bounds = nil
	return PointID(len(v.rows) - 1)
}
