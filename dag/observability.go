package dag

import (
	"context"
	"time"

	"github.com/kbukum/pointflow/errors"
	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/observability"
	"github.com/kbukum/pointflow/point"
)

// WithTracing wraps a Node with a span named "{prefix}.{nodeName}".
func WithTracing(node Node, prefix string) Node {
	return &tracingNode{inner: node, prefix: prefix}
}

type tracingNode struct {
	inner  Node
	prefix string
}

func (n *tracingNode) Name() string { return n.inner.Name() }

func (n *tracingNode) Run(ctx context.Context, in *point.ViewSet) (*point.ViewSet, error) {
	ctx, span := observability.StartSpan(ctx, n.prefix+"."+n.inner.Name())
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrStage, n.inner.Name())
	observability.SetSpanAttribute(ctx, observability.AttrViews, in.Len())

	out, err := n.inner.Run(ctx, in)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return out, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrPoints, out.PointCount())
	return out, nil
}

// WithMetrics wraps a Node with stage metric recording.
func WithMetrics(node Node, metrics *observability.StageMetrics) Node {
	return &metricsNode{inner: node, metrics: metrics}
}

type metricsNode struct {
	inner   Node
	metrics *observability.StageMetrics
}

func (n *metricsNode) Name() string { return n.inner.Name() }

func (n *metricsNode) Run(ctx context.Context, in *point.ViewSet) (*point.ViewSet, error) {
	start := time.Now()
	out, err := n.inner.Run(ctx, in)
	elapsed := time.Since(start)

	if err != nil {
		code := string(errors.CodeOf(err))
		if code == "" {
			code = string(errors.ErrCodeStageFailed)
		}
		n.metrics.RecordError(ctx, n.inner.Name(), code)
		n.metrics.RecordRun(ctx, n.inner.Name(), "error", elapsed, 0)
		return out, err
	}
	n.metrics.RecordRun(ctx, n.inner.Name(), "ok", elapsed, out.PointCount())
	return out, nil
}

// WithLogging wraps a Node with a log line per execution.
func WithLogging(node Node, log *logger.Logger) Node {
	return &loggingNode{inner: node, log: log}
}

type loggingNode struct {
	inner Node
	log   *logger.Logger
}

func (n *loggingNode) Name() string { return n.inner.Name() }

func (n *loggingNode) Run(ctx context.Context, in *point.ViewSet) (*point.ViewSet, error) {
	start := time.Now()
	out, err := n.inner.Run(ctx, in)

	fields := logger.DurationFields("run", time.Since(start))
	fields[logger.FieldStage] = n.inner.Name()
	fields["input_views"] = in.Len()

	if err != nil {
		fields[logger.FieldError] = err.Error()
		n.log.WithContext(ctx).Error("stage failed", fields)
		return out, err
	}
	fields[logger.FieldViews] = out.Len()
	fields[logger.FieldPoints] = out.PointCount()
	n.log.WithContext(ctx).Debug("stage completed", fields)
	return out, nil
}
