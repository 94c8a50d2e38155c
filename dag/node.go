package dag

import (
	"context"

	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/pipeline"
	"github.com/kbukum/pointflow/point"
	"github.com/kbukum/pointflow/stage"
)

// Node is the execution unit of the engine: one stage applied to the union
// of its upstream output sets.
type Node interface {
	Name() string
	Run(ctx context.Context, in *point.ViewSet) (*point.ViewSet, error)
}

// StageNode returns the node running s. Input views are dispatched to the
// driver with up to workers concurrent calls, each traced on log.
func StageNode(s *stage.Stage, workers int, log *logger.Logger) Node {
	if log == nil {
		log = logger.Nop()
	}
	return &stageNode{stage: s, workers: workers, log: log}
}

type stageNode struct {
	stage   *stage.Stage
	workers int
	log     *logger.Logger
}

func (n *stageNode) Name() string { return n.stage.Name() }

func (n *stageNode) Run(ctx context.Context, in *point.ViewSet) (*point.ViewSet, error) {
	d := n.stage.Driver
	if n.stage.Role == stage.RoleReader {
		return nonNil(d.Run(ctx, nil))
	}
	if sr, ok := d.(stage.SetRunner); ok {
		return nonNil(sr.RunSet(ctx, in))
	}
	views := pipeline.Tap(pipeline.FromViewSet(in), func(_ context.Context, v *point.View) error {
		n.log.Trace("dispatching view", logger.Fields("view", v.ID(), logger.FieldPoints, v.Size()))
		return nil
	})
	return pipeline.RunViews(ctx, views, n.workers, func(ctx context.Context, v *point.View) (*point.ViewSet, error) {
		return nonNil(d.Run(ctx, v))
	})
}

func nonNil(set *point.ViewSet, err error) (*point.ViewSet, error) {
	if err != nil {
		return nil, err
	}
	if set == nil {
		set = point.NewViewSet()
	}
	return set, nil
}
