package splitter

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/rs/zerolog"

	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/point"
	"github.com/kbukum/pointflow/stage"
	"github.com/kbukum/pointflow/validation"
)

// DriverName is the registered stage type.
const DriverName = "filters.splitter"

// Args are the splitter options.
type Args struct {
	// Length is the cell edge length.
	Length float64 `mapstructure:"length" validate:"gt=0"`
	// Buffer grows each cell by this distance on every side.
	Buffer float64 `mapstructure:"buffer" validate:"gte=0"`
	// OriginX and OriginY anchor the grid. NaN means the data minimum.
	OriginX float64 `mapstructure:"origin_x"`
	OriginY float64 `mapstructure:"origin_y"`
}

// DefaultArgs returns the splitter defaults.
func DefaultArgs() Args {
	return Args{Length: 1000, OriginX: math.NaN(), OriginY: math.NaN()}
}

// Cell is a grid coordinate relative to the resolved origin.
type Cell struct {
	X, Y int
}

func (c Cell) compare(o Cell) int {
	if c.X != o.X {
		return cmp.Compare(c.X, o.X)
	}
	return cmp.Compare(c.Y, o.Y)
}

// Tile is one populated cell.
type Tile struct {
	Cell Cell
	View *point.View
}

// Filter is the filters.splitter driver.
type Filter struct {
	args Args
	log  *logger.Logger
}

var _ stage.Driver = (*Filter)(nil)

// New returns a splitter with default arguments.
func New() *Filter {
	return &Filter{args: DefaultArgs(), log: logger.Nop()}
}

// Info describes the driver for a registry.
func Info() stage.DriverInfo {
	return stage.DriverInfo{
		Name:        DriverName,
		Description: "Split data based on a X/Y box length.",
		New:         func() stage.Driver { return New() },
	}
}

func (f *Filter) Args() any { return &f.args }

func (f *Filter) Prepare(_ context.Context, env stage.Env) error {
	if env.Log != nil {
		f.log = env.Log
	}
	return validation.Validate(&f.args)
}

func (f *Filter) Run(_ context.Context, in *point.View) (*point.ViewSet, error) {
	tiles := Split(in, f.args)
	if f.log.Enabled(zerolog.DebugLevel) {
		f.log.Debug("view split", map[string]any{
			logger.FieldPoints: in.Size(),
			"cells":            len(tiles),
		})
	}
	out := point.NewViewSet()
	for _, t := range tiles {
		out.Insert(t.View)
	}
	return out, nil
}

// ResolveOrigin returns the grid origin on one axis. A NaN origin becomes
// min. An origin past min is moved back by whole cells until it is at or
// below min, so every local offset is non-negative. Resolving an already
// resolved origin returns it unchanged.
func ResolveOrigin(origin, min, length float64) float64 {
	if math.IsNaN(origin) {
		return min
	}
	if origin > min {
		origin -= math.Ceil((origin-min)/length) * length
		if origin > min {
			origin -= length
		}
	}
	return origin
}

// Split partitions in into grid cells. Output views share in's table and
// are returned, and created, in (x, y) cell order. An empty input yields no
// tiles.
func Split(in *point.View, args Args) []Tile {
	if in.Empty() {
		return nil
	}

	b := in.Bounds()
	originX := ResolveOrigin(args.OriginX, b.MinX, args.Length)
	originY := ResolveOrigin(args.OriginY, b.MinY, args.Length)
	maxX := int((b.MaxX - originX) / args.Length)
	maxY := int((b.MaxY - originY) / args.Length)

	g := grid{length: args.Length, buffer: args.Buffer, maxX: maxX, maxY: maxY}
	if g.buffer > 0 {
		g.span = int(math.Floor(g.buffer / g.length))
		g.resid = math.Mod(g.buffer, g.length)
	}

	members := make(map[Cell][]point.PointID)
	for i := 0; i < in.Size(); i++ {
		id := point.PointID(i)
		x, y, _ := in.XYZ(id)
		for _, c := range g.cells(x-originX, y-originY) {
			members[c] = append(members[c], id)
		}
	}

	cells := make([]Cell, 0, len(members))
	for c := range members {
		cells = append(cells, c)
	}
	slices.SortFunc(cells, Cell.compare)

	tiles := make([]Tile, len(cells))
	for i, c := range cells {
		v := in.MakeNew()
		for _, id := range members[c] {
			v.Append(in, id)
		}
		tiles[i] = Tile{Cell: c, View: v}
	}
	return tiles
}

type grid struct {
	length, buffer float64
	span           int
	resid          float64
	maxX, maxY     int
}

// cells returns the primary cell of a point at local offset (lx, ly)
// followed by every buffered neighbor within the data extent.
func (g grid) cells(lx, ly float64) []Cell {
	bx, by := int(lx/g.length), int(ly/g.length)
	out := []Cell{{bx, by}}
	if g.buffer <= 0 {
		return out
	}

	nx0, nx1 := g.neighbors(lx, bx)
	ny0, ny1 := g.neighbors(ly, by)
	for ix := nx0; ix <= nx1; ix++ {
		if bx+ix < 0 || bx+ix > g.maxX {
			continue
		}
		for iy := ny0; iy <= ny1; iy++ {
			if by+iy < 0 || by+iy > g.maxY {
				continue
			}
			if ix == 0 && iy == 0 {
				continue
			}
			out = append(out, Cell{bx + ix, by + iy})
		}
	}
	return out
}

// neighbors returns the relative cell range a buffered point spans on one
// axis. The near edge extends when the distance to it is less than the
// buffer remainder, the far edge when the distance is at least the
// remainder.
func (g grid) neighbors(local float64, bin int) (lo, hi int) {
	lo, hi = -g.span, g.span
	near := local - float64(bin)*g.length
	far := float64(bin+1)*g.length - local
	if near < g.resid {
		lo--
	}
	if far >= g.resid {
		hi++
	}
	return lo, hi
}
