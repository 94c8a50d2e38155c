package point

import "sync"

// Table is the backing field store shared by views. Fields are stored
// column-wise as float64; unregistered dimensions read as zero.
type Table struct {
	mu     sync.RWMutex
	layout *Layout
	cols   map[Dim][]float64
	rows   int
}

// NewTable creates a table with dims registered.
func NewTable(dims ...Dim) *Table {
	t := &Table{layout: NewLayout(), cols: make(map[Dim][]float64)}
	t.Register(dims...)
	return t
}

// Layout returns the table's dimension layout.
func (t *Table) Layout() *Layout { return t.layout }

// Register adds dims to the layout, allocating zeroed columns for them. The
// layout entry and its column appear together under the table lock.
func (t *Table) Register(dims ...Dim) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.layout.Register(dims...)
	for _, d := range dims {
		t.ensureColumn(d)
	}
}

// RegisterName registers a dimension by name and returns its id.
func (t *Table) RegisterName(name string) Dim {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := t.layout.RegisterName(name)
	t.ensureColumn(d)
	return d
}

// Len returns the number of rows.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rows
}

// AddRow appends a zeroed row and returns its index.
func (t *Table) AddRow() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.addRowLocked()
}

// Get returns the value of d at row.
func (t *Table) Get(d Dim, row int) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	col, ok := t.cols[d]
	if !ok || row < 0 || row >= len(col) {
		return 0
	}
	return col[row]
}

// Set writes the value of d at row, registering d if needed.
func (t *Table) Set(d Dim, row int, v float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.cols[d]; !ok {
		if d == DimUnknown {
			return
		}
		t.layout.Register(d)
		t.ensureColumn(d)
	}
	if row < 0 || row >= t.rows {
		return
	}
	t.cols[d][row] = v
}

// copyRow appends a row to t holding the fields of row in src. Dimensions of
// src are registered on t by name.
func (t *Table) copyRow(src *Table, row int) int {
	dims := src.layout.Dims()
	mapped := make([]Dim, len(dims))
	for i, d := range dims {
		if d.Builtin() {
			t.Register(d)
			mapped[i] = d
		} else {
			mapped[i] = t.RegisterName(src.layout.DimName(d))
		}
	}

	values := make([]float64, len(dims))
	src.mu.RLock()
	for i, d := range dims {
		if col := src.cols[d]; row < len(col) {
			values[i] = col[row]
		}
	}
	src.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	dst := t.addRowLocked()
	for i, d := range mapped {
		t.cols[d][dst] = values[i]
	}
	return dst
}

func (t *Table) addRowLocked() int {
	row := t.rows
	t.rows++
	for d, col := range t.cols {
		t.cols[d] = append(col, 0)
	}
	return row
}

func (t *Table) ensureColumn(d Dim) {
	if d == DimUnknown {
		return
	}
	if _, ok := t.cols[d]; !ok {
		t.cols[d] = make([]float64, t.rows)
	}
}
