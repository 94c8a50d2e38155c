package outlier

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/point"
	"github.com/kbukum/pointflow/stage"
	"github.com/kbukum/pointflow/validation"
)

// StatisticalName is the registered type of the statistical filter.
const StatisticalName = "filters.outlier.statistical"

// StatisticalArgs are the statistical filter options.
type StatisticalArgs struct {
	// MeanK is the number of neighbors averaged per point.
	MeanK int `mapstructure:"mean_k" validate:"gte=1"`
	// Multiplier scales the standard deviation in the threshold.
	Multiplier float64 `mapstructure:"multiplier" validate:"gte=0"`
	Policy     `mapstructure:",squash"`
}

// DefaultStatisticalArgs returns the statistical filter defaults.
func DefaultStatisticalArgs() StatisticalArgs {
	return StatisticalArgs{MeanK: 8, Multiplier: 2, Policy: Policy{Classify: true}}
}

// Statistical flags points whose mean distance to their k nearest neighbors
// exceeds the global mean by more than multiplier standard deviations.
type Statistical struct {
	args StatisticalArgs
	log  *logger.Logger
}

// NewStatistical returns a statistical filter with default arguments.
func NewStatistical() *Statistical {
	return &Statistical{args: DefaultStatisticalArgs(), log: logger.Nop()}
}

// StatisticalInfo describes the statistical filter for a registry.
func StatisticalInfo() stage.DriverInfo {
	return stage.DriverInfo{
		Name:        StatisticalName,
		Description: "Label or remove points far from their neighbors.",
		Inputs:      stage.CardinalityOne,
		New:         func() stage.Driver { return NewStatistical() },
	}
}

func (f *Statistical) Args() any { return &f.args }

func (f *Statistical) Prepare(_ context.Context, env stage.Env) error {
	if env.Log != nil {
		f.log = env.Log
	}
	return validation.Validate(&f.args)
}

func (f *Statistical) Run(_ context.Context, in *point.View) (*point.ViewSet, error) {
	if in.Empty() {
		return point.NewViewSet(in), nil
	}
	outliers, threshold := StatisticalOutliers(in, f.args.MeanK, f.args.Multiplier)
	f.log.Debug("statistical threshold", map[string]any{"threshold": threshold, logger.FieldPoints: in.Size()})
	return f.args.Policy.Apply(in, outliers, f.log), nil
}

// StatisticalOutliers returns the outlier flag of every point of in and the
// distance threshold used.
func StatisticalOutliers(in *point.View, k int, multiplier float64) ([]bool, float64) {
	ix := newIndex(in)
	means := make([]float64, in.Size())
	for i := range means {
		d := ix.knn(point.PointID(i), k)
		var sum float64
		for _, sq := range d {
			sum += math.Sqrt(sq)
		}
		if len(d) > 0 {
			means[i] = sum / float64(len(d))
		}
	}

	mean, std := stat.MeanStdDev(means, nil)
	if math.IsNaN(std) {
		std = 0
	}
	threshold := mean + multiplier*std

	outliers := make([]bool, len(means))
	for i, m := range means {
		outliers[i] = m > threshold
	}
	return outliers, threshold
}
