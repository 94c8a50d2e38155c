// Package observability wires OpenTelemetry tracing and metrics into
// pipeline runs.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("pointflow"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("pointflow"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewStageMetrics(observability.Meter("pointflow"))
//	metrics.RecordRun(ctx, "filters.splitter", "ok", elapsed, points)
//
// A pipeline run is wrapped in a span with StartRun; each stage gets a child
// span when the engine runs with tracing enabled.
package observability
