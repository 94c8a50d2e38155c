// Package faux implements readers.faux, which synthesizes points inside a
// bounding box. It feeds pipelines in tests and benchmarks.
package faux

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/kbukum/pointflow/errors"
	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/point"
	"github.com/kbukum/pointflow/stage"
)

// DriverName is the registered stage type.
const DriverName = "readers.faux"

// Modes.
const (
	ModeConstant = "constant"
	ModeRamp     = "ramp"
	ModeRandom   = "random"
)

// Args are the reader options.
type Args struct {
	Count int    `mapstructure:"count" validate:"gte=0"`
	Mode  string `mapstructure:"mode" validate:"oneof=constant ramp random"`
	// Bounds is "([minx, maxx], [miny, maxy], [minz, maxz])". The z range
	// may be omitted.
	Bounds string `mapstructure:"bounds" validate:"required"`
	Seed   uint64 `mapstructure:"seed"`
}

// DefaultArgs returns the reader defaults.
func DefaultArgs() Args {
	return Args{Count: 10, Mode: ModeRandom, Bounds: "([0, 1], [0, 1], [0, 1])"}
}

// Box is a parsed bounds option.
type Box struct {
	Min, Max [3]float64
}

// Reader is the readers.faux driver.
type Reader struct {
	args  Args
	box   Box
	table *point.Table
	log   *logger.Logger
}

var _ stage.Driver = (*Reader)(nil)

// New returns a faux reader with default arguments.
func New() *Reader {
	return &Reader{args: DefaultArgs(), log: logger.Nop()}
}

// Info describes the driver for a registry.
func Info() stage.DriverInfo {
	return stage.DriverInfo{
		Name:        DriverName,
		Description: "Faux Reader",
		New:         func() stage.Driver { return New() },
	}
}

func (r *Reader) Args() any { return &r.args }

func (r *Reader) Prepare(_ context.Context, env stage.Env) error {
	r.table = env.Table
	if env.Log != nil {
		r.log = env.Log
	}
	box, err := ParseBounds(r.args.Bounds)
	if err != nil {
		return errors.InvalidOption("bounds", err.Error())
	}
	r.box = box
	return nil
}

func (r *Reader) Run(_ context.Context, _ *point.View) (*point.ViewSet, error) {
	r.table.Register(point.XYZ()...)
	v := point.NewView(r.table)
	rng := rand.New(rand.NewPCG(r.args.Seed, r.args.Seed^0x9e3779b97f4a7c15))
	for i := 0; i < r.args.Count; i++ {
		id := v.NewPoint()
		for axis, d := range point.XYZ() {
			v.SetField(d, id, r.value(axis, i, rng))
		}
	}
	r.log.Debug("points generated", map[string]any{
		"mode":             r.args.Mode,
		logger.FieldPoints: v.Size(),
	})
	return point.NewViewSet(v), nil
}

func (r *Reader) value(axis, i int, rng *rand.Rand) float64 {
	lo, hi := r.box.Min[axis], r.box.Max[axis]
	switch r.args.Mode {
	case ModeRamp:
		if r.args.Count < 2 {
			return lo
		}
		return lo + (hi-lo)*float64(i)/float64(r.args.Count-1)
	case ModeRandom:
		return lo + (hi-lo)*rng.Float64()
	default:
		return lo
	}
}

// ParseBounds parses "([minx, maxx], [miny, maxy])" with an optional third
// z range.
func ParseBounds(s string) (Box, error) {
	var box Box
	body := strings.TrimSpace(s)
	body = strings.TrimPrefix(body, "(")
	body = strings.TrimSuffix(body, ")")

	var ranges [][2]float64
	for body = strings.TrimSpace(body); body != ""; {
		if body[0] != '[' {
			return box, fmt.Errorf("invalid bounds %q: expected '['", s)
		}
		end := strings.IndexByte(body, ']')
		if end < 0 {
			return box, fmt.Errorf("invalid bounds %q: missing ']'", s)
		}
		parts := strings.Split(body[1:end], ",")
		if len(parts) != 2 {
			return box, fmt.Errorf("invalid bounds %q: each range needs a min and a max", s)
		}
		var rg [2]float64
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return box, fmt.Errorf("invalid bounds %q: %w", s, err)
			}
			rg[i] = f
		}
		if rg[0] > rg[1] {
			return box, fmt.Errorf("invalid bounds %q: min %g exceeds max %g", s, rg[0], rg[1])
		}
		ranges = append(ranges, rg)
		body = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(body[end+1:]), ","))
	}
	if len(ranges) < 2 || len(ranges) > 3 {
		return box, fmt.Errorf("invalid bounds %q: expected 2 or 3 ranges, got %d", s, len(ranges))
	}
	for i, rg := range ranges {
		box.Min[i], box.Max[i] = rg[0], rg[1]
	}
	return box, nil
}
