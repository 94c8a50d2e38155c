package outlier

import (
	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/point"
)

// Policy selects what happens to detected outliers.
type Policy struct {
	// Classify sets the classification of outliers to high noise in the
	// shared table.
	Classify bool `mapstructure:"classify"`
	// Extract returns a new view holding only the inliers instead of the
	// input. Combined with Classify, outliers are labeled first.
	Extract bool `mapstructure:"extract"`
}

// Apply applies p to in given the outlier flags, one per point.
func (p Policy) Apply(in *point.View, outliers []bool, log *logger.Logger) *point.ViewSet {
	inliers := 0
	for _, o := range outliers {
		if !o {
			inliers++
		}
	}
	removed := len(outliers) - inliers

	if inliers == 0 {
		log.Warn("requested filter would remove all points, leaving input unchanged", map[string]any{
			logger.FieldPoints: in.Size(),
		})
		return point.NewViewSet(in)
	}

	if removed == 0 || !(p.Classify || p.Extract) {
		if removed == 0 {
			log.Warn("filtered cloud has no outliers")
		}
		if !(p.Classify || p.Extract) {
			log.Warn("neither classify nor extract is set, leaving input unchanged")
		}
		return point.NewViewSet(in)
	}

	if p.Classify {
		for i, o := range outliers {
			if o {
				in.SetField(point.DimClassification, point.PointID(i), point.ClassHighNoise)
			}
		}
		log.Debug("outliers classified", map[string]any{"outliers": removed})
	}
	if !p.Extract {
		return point.NewViewSet(in)
	}

	out := in.MakeNew()
	for i, o := range outliers {
		if !o {
			out.Append(in, point.PointID(i))
		}
	}
	log.Debug("outliers extracted", map[string]any{"removed": removed, "kept": inliers})
	return point.NewViewSet(out)
}
