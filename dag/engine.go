package dag

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/pointflow/errors"
	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/observability"
	"github.com/kbukum/pointflow/point"
	"github.com/kbukum/pointflow/stage"
)

// Engine executes a graph in dependency order.
type Engine struct {
	// MaxParallel limits concurrent stages per level (0 = unlimited).
	MaxParallel int
	// ViewParallel is the number of input views of one stage processed
	// concurrently (<= 1 = sequential).
	ViewParallel int
	// Log receives run and stage diagnostics. Nil discards them.
	Log *logger.Logger
	// Metrics, when set, records stage instruments.
	Metrics *observability.StageMetrics
	// Tracing wraps the run and each stage in spans.
	Tracing bool
}

// Execute validates g, prepares every stage, and runs the levels in order.
// It returns the union of the sink stages' outputs, or the first error with
// no result.
func (e *Engine) Execute(ctx context.Context, g *Graph) (*Result, error) {
	start := time.Now()
	if err := g.Validate(); err != nil {
		return nil, err
	}
	levels, err := g.BuildLevels()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx = logger.ContextWithRunID(ctx, runID)
	log := e.logger().WithContext(ctx)

	var run *observability.Run
	if e.Tracing {
		ctx, run = observability.StartRun(ctx, runID, len(g.Stages))
	}

	log.Debug("pipeline starting", map[string]any{"stages": len(g.Stages), "levels": len(levels)})
	res, err := e.execute(ctx, g, levels, log)
	if run != nil {
		points := 0
		if res != nil {
			points = res.Views.PointCount()
		}
		run.End(err, points)
	}
	if err != nil {
		log.Error("pipeline failed", logger.ErrorFields("execute", err))
		return nil, err
	}

	res.RunID = runID
	res.Duration = time.Since(start)
	log.Info("pipeline completed", map[string]any{
		logger.FieldViews:    res.Views.Len(),
		logger.FieldPoints:   res.Views.PointCount(),
		logger.FieldDuration: res.Duration.Milliseconds(),
	})
	return res, nil
}

// execution is the mutable state of one run.
type execution struct {
	mu      sync.Mutex
	outputs map[int]*point.ViewSet
	pending map[int]int
	results map[int]StageResult
}

func (e *Engine) execute(ctx context.Context, g *Graph, levels [][]*stage.Stage, log *logger.Logger) (*Result, error) {
	table := point.NewTable(point.XYZ()...)

	prepared, err := e.prepare(ctx, levels, table)
	if err != nil {
		e.finish(ctx, prepared, log)
		return nil, err
	}

	x := &execution{
		outputs: make(map[int]*point.ViewSet, len(g.Stages)),
		pending: make(map[int]int, len(g.Stages)),
		results: make(map[int]StageResult, len(g.Stages)),
	}
	for _, s := range g.Stages {
		x.pending[s.ID] = len(g.Consumers(s))
	}
	sinks := g.Sinks()
	keep := make(map[int]bool, len(sinks))
	for _, s := range sinks {
		keep[s.ID] = true
	}

	for _, level := range levels {
		if err := ctx.Err(); err != nil {
			e.finish(ctx, prepared, log)
			return nil, err
		}
		if err := e.runLevel(ctx, level, x); err != nil {
			e.finish(ctx, prepared, log)
			return nil, err
		}
		x.release(level, keep)
	}

	if err := e.finish(ctx, prepared, log); err != nil {
		return nil, err
	}

	views := point.NewViewSet()
	for _, s := range sinks {
		views.Union(x.outputs[s.ID])
	}
	for _, s := range g.Stages {
		if mp, ok := s.Driver.(stage.MetadataProvider); ok {
			sr := x.results[s.ID]
			sr.Metadata = mp.Metadata()
			x.results[s.ID] = sr
		}
	}
	return &Result{Views: views, Stages: x.results}, nil
}

// prepare decodes and validates each stage's arguments, then calls Prepare,
// in topological order. It returns the stages prepared so far.
func (e *Engine) prepare(ctx context.Context, levels [][]*stage.Stage, table *point.Table) ([]*stage.Stage, error) {
	var prepared []*stage.Stage
	for _, level := range levels {
		for _, s := range level {
			if args := s.Driver.Args(); args != nil {
				if err := s.Options.Decode(args); err != nil {
					return prepared, withStage(err, s)
				}
			}
			env := stage.Env{
				Name:    s.Name(),
				Table:   table,
				Log:     e.stageLogger(ctx, s),
				Options: s.Options,
			}
			if err := s.Driver.Prepare(ctx, env); err != nil {
				return prepared, withStage(err, s)
			}
			prepared = append(prepared, s)
		}
	}
	return prepared, nil
}

func (e *Engine) runLevel(ctx context.Context, level []*stage.Stage, x *execution) error {
	eg, gctx := errgroup.WithContext(ctx)
	if e.MaxParallel > 0 {
		eg.SetLimit(e.MaxParallel)
	}
	for _, s := range level {
		eg.Go(func() error {
			return e.runStage(gctx, s, x)
		})
	}
	return eg.Wait()
}

func (e *Engine) runStage(ctx context.Context, s *stage.Stage, x *execution) error {
	in := x.gather(s)
	start := time.Now()
	out, err := e.node(s).Run(ctx, in)
	sr := StageResult{
		Name:       s.Name(),
		InputViews: in.Len(),
		Duration:   time.Since(start),
	}
	if err != nil {
		sr.Status = StatusFailed
		x.record(s, nil, sr)
		if errors.HasCode(err, errors.ErrCodeStageFailed) {
			return err
		}
		return errors.StageFailed(s.Name(), err)
	}

	sr.Status = StatusCompleted
	sr.OutputViews = out.Len()
	sr.Points = out.PointCount()
	x.record(s, out, sr)
	return nil
}

// node builds the decorated execution node for s.
func (e *Engine) node(s *stage.Stage) Node {
	n := StageNode(s, e.ViewParallel, e.logger().WithComponent(s.Name()))
	if e.Tracing {
		n = WithTracing(n, observability.SpanStage)
	}
	if e.Metrics != nil {
		n = WithMetrics(n, e.Metrics)
	}
	return WithLogging(n, e.logger())
}

// finish calls Done on every prepared finisher. Failures after the last
// level are returned; the first one wins.
func (e *Engine) finish(ctx context.Context, prepared []*stage.Stage, log *logger.Logger) error {
	ctx = context.WithoutCancel(ctx)
	var first error
	for _, s := range prepared {
		f, ok := s.Driver.(stage.Finisher)
		if !ok {
			continue
		}
		if err := f.Done(ctx); err != nil {
			log.Warn("stage cleanup failed", map[string]any{
				logger.FieldStage: s.Name(),
				logger.FieldError: err.Error(),
			})
			if first == nil {
				first = errors.StageFailed(s.Name(), err)
			}
		}
	}
	return first
}

// stageLogger returns the logger handed to a stage's driver, leveled by the
// stage's verbose and debug options. A logger registered under the driver
// name replaces the engine's.
func (e *Engine) stageLogger(ctx context.Context, s *stage.Stage) *logger.Logger {
	base := e.logger()
	if l, ok := logger.Lookup(s.Type); ok {
		base = l
	}
	l := base.WithComponent(s.Name()).WithContext(ctx)
	if v, err := s.Options.IntOr("verbose", -1); err == nil && v >= 0 {
		l = l.WithLevel(logger.LevelForVerbosity(v))
	}
	if debug, err := s.Options.BoolOr("debug", false); err == nil && debug && l.Level() > zerolog.DebugLevel {
		l = l.WithLevel(zerolog.DebugLevel)
	}
	return l
}

func (e *Engine) logger() *logger.Logger {
	if e.Log == nil {
		return logger.Nop()
	}
	return e.Log
}

// gather returns the union of the output sets of s's inputs.
func (x *execution) gather(s *stage.Stage) *point.ViewSet {
	x.mu.Lock()
	defer x.mu.Unlock()
	in := point.NewViewSet()
	for _, up := range s.Inputs {
		in.Union(x.outputs[up.ID])
	}
	return in
}

func (x *execution) record(s *stage.Stage, out *point.ViewSet, sr StageResult) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if out != nil {
		x.outputs[s.ID] = out
	}
	x.results[s.ID] = sr
}

// release drops upstream sets whose consumers have all run. Sink outputs
// are kept for the result.
func (x *execution) release(level []*stage.Stage, keep map[int]bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, s := range level {
		seen := make(map[int]bool, len(s.Inputs))
		for _, up := range s.Inputs {
			if seen[up.ID] {
				continue
			}
			seen[up.ID] = true
			x.pending[up.ID]--
			if x.pending[up.ID] <= 0 && !keep[up.ID] {
				delete(x.outputs, up.ID)
			}
		}
	}
}

// withStage tags an AppError with the stage it came from, or wraps a
// foreign error as a stage failure.
func withStage(err error, s *stage.Stage) error {
	var app *errors.AppError
	if errors.As(err, &app) {
		return app.WithDetail("stage", s.Name())
	}
	return errors.StageFailed(s.Name(), err)
}
