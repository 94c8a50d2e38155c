// Package splitter implements filters.splitter, which partitions a view into
// square grid cells in the XY plane.
//
// Each point is assigned to the cell containing it. With a positive buffer a
// point is also added to every neighboring cell whose buffered footprint it
// falls in, so adjacent tiles overlap. Cells are clipped to the data extent
// and emitted in (x, y) order.
package splitter
