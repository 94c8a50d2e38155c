package stage

import (
	"context"

	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/options"
	"github.com/kbukum/pointflow/point"
)

// Env is what a driver receives when it is prepared.
type Env struct {
	// Name is the stage name used in logs.
	Name string
	// Table is the backing store shared by every view of the run.
	Table *point.Table
	// Log is the stage's logger, already leveled by its verbose option.
	Log *logger.Logger
	// Options holds the base options merged with the stage's own.
	Options *options.Options
}

// Driver is the behaviour behind a stage.
//
// Args returns a pointer to the driver's argument struct, pre-filled with
// defaults, or nil. The engine decodes the stage options into it and
// validates it before Prepare. Run is called once per input view; readers
// are called once with a nil view.
type Driver interface {
	Args() any
	Prepare(ctx context.Context, env Env) error
	Run(ctx context.Context, in *point.View) (*point.ViewSet, error)
}

// SetRunner is implemented by drivers that consume their whole input set in
// one call instead of one view at a time.
type SetRunner interface {
	RunSet(ctx context.Context, in *point.ViewSet) (*point.ViewSet, error)
}

// Finisher is implemented by drivers that release resources after a run.
type Finisher interface {
	Done(ctx context.Context) error
}

// MetadataProvider is implemented by drivers that report results beyond
// their output views.
type MetadataProvider interface {
	Metadata() map[string]any
}

// DriverFunc adapts a function to a Driver with no arguments and no
// preparation.
type DriverFunc func(ctx context.Context, in *point.View) (*point.ViewSet, error)

func (f DriverFunc) Args() any                          { return nil }
func (f DriverFunc) Prepare(context.Context, Env) error { return nil }
func (f DriverFunc) Run(ctx context.Context, in *point.View) (*point.ViewSet, error) {
	return f(ctx, in)
}
