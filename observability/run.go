package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Run tracks the span of one pipeline execution.
type Run struct {
	ID    string
	Start time.Time
	span  trace.Span
}

// StartRun opens the pipeline.run span.
func StartRun(ctx context.Context, runID string, stages int) (context.Context, *Run) {
	ctx, span := StartSpan(ctx, SpanPipelineRun, trace.WithAttributes(
		attribute.String(AttrRunID, runID),
		attribute.Int(AttrStages, stages),
	))
	return ctx, &Run{ID: runID, Start: time.Now(), span: span}
}

// End closes the span, recording err when the run failed.
func (r *Run) End(err error, points int) {
	status := "ok"
	if err != nil {
		status = "error"
		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, err.Error())
		r.span.SetAttributes(attribute.String(AttrErrorMsg, err.Error()))
	}
	r.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int(AttrPoints, points),
	)
	r.span.End()
}

// Duration returns the time elapsed since the run started.
func (r *Run) Duration() time.Duration {
	return time.Since(r.Start)
}
