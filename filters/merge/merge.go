// Package merge implements filters.merge, which concatenates every input
// view into one.
package merge

import (
	"context"

	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/point"
	"github.com/kbukum/pointflow/stage"
)

// DriverName is the registered stage type.
const DriverName = "filters.merge"

// Filter is the filters.merge driver.
type Filter struct {
	log *logger.Logger
}

var (
	_ stage.Driver    = (*Filter)(nil)
	_ stage.SetRunner = (*Filter)(nil)
)

// New returns a merge filter.
func New() *Filter {
	return &Filter{log: logger.Nop()}
}

// Info describes the driver for a registry.
func Info() stage.DriverInfo {
	return stage.DriverInfo{
		Name:        DriverName,
		Description: "Merge data from two different readers into a single stream.",
		Inputs:      stage.CardinalityMany,
		New:         func() stage.Driver { return New() },
	}
}

func (f *Filter) Args() any { return nil }

func (f *Filter) Prepare(_ context.Context, env stage.Env) error {
	if env.Log != nil {
		f.log = env.Log
	}
	return nil
}

// Run merges a single view, which is a copy of it.
func (f *Filter) Run(ctx context.Context, in *point.View) (*point.ViewSet, error) {
	return f.RunSet(ctx, point.NewViewSet(in))
}

// RunSet appends every point of every view of in, in view id order, to one
// new view. An empty set yields an empty set.
func (f *Filter) RunSet(_ context.Context, in *point.ViewSet) (*point.ViewSet, error) {
	views := in.Views()
	if len(views) == 0 {
		return point.NewViewSet(), nil
	}
	out := views[0].MakeNew()
	for _, v := range views {
		out.AppendAll(v)
	}
	f.log.Debug("views merged", map[string]any{
		logger.FieldViews:  len(views),
		logger.FieldPoints: out.Size(),
	})
	return point.NewViewSet(out), nil
}
