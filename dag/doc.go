// Package dag holds the stage graph built from a pipeline definition and the
// engine that executes it.
//
// Stages are grouped into levels with Kahn's algorithm; the stages of a
// level share no dependency and run concurrently. Each stage receives the
// union of its upstream output sets and runs once per input view, or once
// with the whole set when its driver implements stage.SetRunner. The first
// failing stage aborts the run and no result is returned.
//
//	engine := &dag.Engine{MaxParallel: 4, Log: log}
//	result, err := engine.Execute(ctx, graph)
//
// Stage execution can be decorated with tracing, metrics and logging:
//
//	node = dag.WithTracing(node, "stage")
//	node = dag.WithMetrics(node, metrics)
//	node = dag.WithLogging(node, log)
package dag
