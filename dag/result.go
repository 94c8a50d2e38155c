package dag

import (
	"time"

	"github.com/kbukum/pointflow/point"
)

// Stage statuses reported in a Result.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Result holds the outcome of a successful run.
type Result struct {
	RunID string
	// Views is the union of the output sets of the sink stages.
	Views *point.ViewSet
	// Stages is keyed by stage ID.
	Stages   map[int]StageResult
	Duration time.Duration
}

// StageResult describes one stage of a run.
type StageResult struct {
	Name        string
	Status      string
	InputViews  int
	OutputViews int
	Points      int
	Duration    time.Duration
	// Metadata is reported by drivers implementing stage.MetadataProvider.
	Metadata map[string]any
}

// StageByName returns the result of the stage with the given display name.
func (r *Result) StageByName(name string) (StageResult, bool) {
	for _, sr := range r.Stages {
		if sr.Name == name {
			return sr, true
		}
	}
	return StageResult{}, false
}
