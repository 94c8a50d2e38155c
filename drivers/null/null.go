// Package null implements writers.null, which writes nothing and passes
// its input through.
package null

import (
	"context"

	"github.com/kbukum/pointflow/point"
	"github.com/kbukum/pointflow/stage"
)

// DriverName is the registered stage type.
const DriverName = "writers.null"

// Info describes the driver for a registry.
func Info() stage.DriverInfo {
	return stage.DriverInfo{
		Name:        DriverName,
		Description: "Pipeline termination without output",
		New:         func() stage.Driver { return stage.DriverFunc(run) },
	}
}

func run(_ context.Context, in *point.View) (*point.ViewSet, error) {
	return point.NewViewSet(in), nil
}
