// Package stats implements filters.stats, a pass-through filter that
// summarizes dimensions of the points flowing through it.
package stats

import (
	"context"
	"math"
	"slices"
	"strings"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/kbukum/pointflow/errors"
	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/point"
	"github.com/kbukum/pointflow/stage"
)

// DriverName is the registered stage type.
const DriverName = "filters.stats"

// Args are the stats filter options.
type Args struct {
	// Dimensions are the dimension names summarized.
	Dimensions []string `mapstructure:"dimensions" validate:"min=1"`
	// Enumerate lists dimensions whose distinct values are counted.
	Enumerate []string `mapstructure:"enumerate"`
}

// DefaultArgs returns the stats defaults.
func DefaultArgs() Args {
	return Args{Dimensions: []string{"X", "Y", "Z"}}
}

// Summary describes one dimension.
type Summary struct {
	Name     string
	Count    int
	Minimum  float64
	Maximum  float64
	Average  float64
	Variance float64
	StdDev   float64
	Skewness float64
	Kurtosis float64
	// Values counts each distinct value, for enumerated dimensions only.
	Values map[float64]int
}

// Filter is the filters.stats driver. Values are accumulated across every
// view the stage runs on.
type Filter struct {
	args Args
	log  *logger.Logger

	mu     sync.Mutex
	values map[string][]float64
}

var (
	_ stage.Driver           = (*Filter)(nil)
	_ stage.MetadataProvider = (*Filter)(nil)
)

// New returns a stats filter with default arguments.
func New() *Filter {
	return &Filter{args: DefaultArgs(), log: logger.Nop(), values: make(map[string][]float64)}
}

// Info describes the driver for a registry.
func Info() stage.DriverInfo {
	return stage.DriverInfo{
		Name:        DriverName,
		Description: "Compute statistics about each dimension (mean, min, max, etc.)",
		New:         func() stage.Driver { return New() },
	}
}

func (f *Filter) Args() any { return &f.args }

func (f *Filter) Prepare(_ context.Context, env stage.Env) error {
	if env.Log != nil {
		f.log = env.Log
	}
	for _, name := range f.args.Enumerate {
		if !slices.ContainsFunc(f.args.Dimensions, func(d string) bool { return strings.EqualFold(d, name) }) {
			f.args.Dimensions = append(f.args.Dimensions, name)
		}
	}
	return nil
}

func (f *Filter) Run(_ context.Context, in *point.View) (*point.ViewSet, error) {
	layout := in.Table().Layout()
	cols := make(map[string][]float64, len(f.args.Dimensions))
	for _, name := range f.args.Dimensions {
		d, ok := layout.Find(name)
		if !ok {
			return nil, errors.InvalidOption("dimensions", "dimension "+name+" is not present")
		}
		col := make([]float64, in.Size())
		for i := range col {
			col[i] = in.Field(d, point.PointID(i))
		}
		cols[name] = col
	}

	f.mu.Lock()
	for name, col := range cols {
		f.values[name] = append(f.values[name], col...)
	}
	f.mu.Unlock()
	return point.NewViewSet(in), nil
}

// Summaries returns the summary of every configured dimension, in option
// order.
func (f *Filter) Summaries() []Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Summary, 0, len(f.args.Dimensions))
	for _, name := range f.args.Dimensions {
		s := Summarize(name, f.values[name])
		if slices.ContainsFunc(f.args.Enumerate, func(e string) bool { return strings.EqualFold(e, name) }) {
			s.Values = enumerate(f.values[name])
		}
		out = append(out, s)
	}
	return out
}

// Metadata reports the summaries under "statistic".
func (f *Filter) Metadata() map[string]any {
	summaries := f.Summaries()
	list := make([]map[string]any, len(summaries))
	for i, s := range summaries {
		m := map[string]any{
			"name":     s.Name,
			"count":    s.Count,
			"minimum":  s.Minimum,
			"maximum":  s.Maximum,
			"average":  s.Average,
			"variance": s.Variance,
			"stddev":   s.StdDev,
			"skewness": s.Skewness,
			"kurtosis": s.Kurtosis,
		}
		if s.Values != nil {
			m["values"] = s.Values
		}
		list[i] = m
	}
	return map[string]any{"statistic": list}
}

// Summarize computes the summary of values.
func Summarize(name string, values []float64) Summary {
	s := Summary{Name: name, Count: len(values)}
	if len(values) == 0 {
		return s
	}
	s.Minimum, s.Maximum = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		s.Minimum = math.Min(s.Minimum, v)
		s.Maximum = math.Max(s.Maximum, v)
	}
	s.Average = stat.Mean(values, nil)
	if len(values) > 1 {
		s.Variance = stat.Variance(values, nil)
		s.StdDev = math.Sqrt(s.Variance)
	}
	if s.StdDev > 0 {
		s.Skewness = stat.Skew(values, nil)
		s.Kurtosis = stat.ExKurtosis(values, nil)
	}
	return s
}

func enumerate(values []float64) map[float64]int {
	out := make(map[float64]int)
	for _, v := range values {
		out[v]++
	}
	return out
}
