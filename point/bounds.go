package point

import (
	"fmt"
	"math"
)

// Bounds is an axis-aligned bounding box. The zero value is not empty; use
// EmptyBounds for an accumulator.
type Bounds struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
}

// EmptyBounds returns a box that contains nothing and grows to fit any point.
func EmptyBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{MinX: inf, MinY: inf, MinZ: inf, MaxX: -inf, MaxY: -inf, MaxZ: -inf}
}

// Empty reports whether the box contains no point.
func (b Bounds) Empty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Grow extends the box to include (x, y, z).
func (b *Bounds) Grow(x, y, z float64) {
	b.MinX = math.Min(b.MinX, x)
	b.MinY = math.Min(b.MinY, y)
	b.MinZ = math.Min(b.MinZ, z)
	b.MaxX = math.Max(b.MaxX, x)
	b.MaxY = math.Max(b.MaxY, y)
	b.MaxZ = math.Max(b.MaxZ, z)
}

// Contains2D reports whether (x, y) lies inside the box, edges included.
func (b Bounds) Contains2D(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

func (b Bounds) String() string {
	if b.Empty() {
		return "()"
	}
	return fmt.Sprintf("([%g, %g], [%g, %g], [%g, %g])", b.MinX, b.MaxX, b.MinY, b.MaxY, b.MinZ, b.MaxZ)
}
