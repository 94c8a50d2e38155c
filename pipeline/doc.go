// Package pipeline streams values through a stage with pull-based
// iterators. The execution engine uses it to feed a stage its input views,
// one at a time or across a worker pool, and to fold the returned view sets
// into the stage's output.
//
// Pipelines are lazy: nothing runs until Reduce or ForEach pulls.
//
//	outputs := pipeline.Parallel(pipeline.FromViewSet(in), 4, runView)
//	out, err := pipeline.UnionSets(ctx, outputs)
package pipeline
