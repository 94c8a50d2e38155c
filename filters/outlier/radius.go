package outlier

import (
	"context"

	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/point"
	"github.com/kbukum/pointflow/stage"
	"github.com/kbukum/pointflow/validation"
)

// RadiusName is the registered type of the radius filter.
const RadiusName = "filters.outlier.radius"

// RadiusArgs are the radius filter options.
type RadiusArgs struct {
	Radius float64 `mapstructure:"radius" validate:"gt=0"`
	// MinNeighbors is the number of other points that must lie within
	// Radius for a point to be kept.
	MinNeighbors int `mapstructure:"min_neighbors" validate:"gte=0"`
	Policy       `mapstructure:",squash"`
}

// DefaultRadiusArgs returns the radius filter defaults.
func DefaultRadiusArgs() RadiusArgs {
	return RadiusArgs{Radius: 1, MinNeighbors: 2, Policy: Policy{Classify: true}}
}

// Radius flags points with too few neighbors within a fixed radius.
type Radius struct {
	args RadiusArgs
	log  *logger.Logger
}

// NewRadius returns a radius filter with default arguments.
func NewRadius() *Radius {
	return &Radius{args: DefaultRadiusArgs(), log: logger.Nop()}
}

// RadiusInfo describes the radius filter for a registry.
func RadiusInfo() stage.DriverInfo {
	return stage.DriverInfo{
		Name:        RadiusName,
		Description: "Label or remove points with few neighbors within a radius.",
		Inputs:      stage.CardinalityOne,
		New:         func() stage.Driver { return NewRadius() },
	}
}

func (f *Radius) Args() any { return &f.args }

func (f *Radius) Prepare(_ context.Context, env stage.Env) error {
	if env.Log != nil {
		f.log = env.Log
	}
	return validation.Validate(&f.args)
}

func (f *Radius) Run(_ context.Context, in *point.View) (*point.ViewSet, error) {
	if in.Empty() {
		return point.NewViewSet(in), nil
	}
	return f.args.Policy.Apply(in, RadiusOutliers(in, f.args.Radius, f.args.MinNeighbors), f.log), nil
}

// RadiusOutliers returns the outlier flag of every point of in.
func RadiusOutliers(in *point.View, radius float64, minNeighbors int) []bool {
	ix := newIndex(in)
	outliers := make([]bool, in.Size())
	for i := range outliers {
		outliers[i] = len(ix.within(point.PointID(i), radius)) < minNeighbors
	}
	return outliers
}
