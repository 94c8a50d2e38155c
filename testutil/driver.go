package testutil

import (
	"context"
	"sync"

	"github.com/kbukum/pointflow/options"
	"github.com/kbukum/pointflow/point"
	"github.com/kbukum/pointflow/stage"
)

// RunFunc is the body of a ScriptedDriver.
type RunFunc func(ctx context.Context, env stage.Env, in *point.View) (*point.ViewSet, error)

// ScriptedDriver is a stage.Driver whose behaviour is supplied by the test.
// It records every view it is run with.
type ScriptedDriver struct {
	RunFunc    RunFunc
	PrepareErr error
	DoneErr    error

	mu       sync.Mutex
	env      stage.Env
	prepared bool
	done     bool
	inputs   []*point.View
}

var (
	_ stage.Driver   = (*ScriptedDriver)(nil)
	_ stage.Finisher = (*ScriptedDriver)(nil)
)

func (d *ScriptedDriver) Args() any { return nil }

func (d *ScriptedDriver) Prepare(_ context.Context, env stage.Env) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.env = env
	d.prepared = true
	return d.PrepareErr
}

func (d *ScriptedDriver) Run(ctx context.Context, in *point.View) (*point.ViewSet, error) {
	d.mu.Lock()
	d.inputs = append(d.inputs, in)
	env := d.env
	d.mu.Unlock()
	if d.RunFunc == nil {
		return point.NewViewSet(in), nil
	}
	return d.RunFunc(ctx, env, in)
}

func (d *ScriptedDriver) Done(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.done = true
	return d.DoneErr
}

// Calls returns the number of Run calls.
func (d *ScriptedDriver) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inputs)
}

// Inputs returns the views Run was called with.
func (d *ScriptedDriver) Inputs() []*point.View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*point.View(nil), d.inputs...)
}

// Prepared reports whether Prepare was called.
func (d *ScriptedDriver) Prepared() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.prepared
}

// Finished reports whether Done was called.
func (d *ScriptedDriver) Finished() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.done
}

// Env returns the environment passed to Prepare.
func (d *ScriptedDriver) Env() stage.Env {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.env
}

// Passthrough returns a driver that outputs each input view unchanged.
func Passthrough() *ScriptedDriver {
	return &ScriptedDriver{}
}

// Source returns a reader driver producing one view with the given points
// on the run's table.
func Source(coords ...[3]float64) *ScriptedDriver {
	return &ScriptedDriver{
		RunFunc: func(_ context.Context, env stage.Env, _ *point.View) (*point.ViewSet, error) {
			return point.NewViewSet(View(env.Table, coords...)), nil
		},
	}
}

// Failing returns a driver whose Run always returns err.
func Failing(err error) *ScriptedDriver {
	return &ScriptedDriver{
		RunFunc: func(context.Context, stage.Env, *point.View) (*point.ViewSet, error) {
			return nil, err
		},
	}
}

// Stage builds a stage for driver name backed by d and wired to inputs.
func Stage(name string, d stage.Driver, inputs ...*stage.Stage) *stage.Stage {
	return &stage.Stage{
		Type:    name,
		Role:    stage.RoleOf(name),
		Options: options.New(),
		Driver:  d,
		Inputs:  inputs,
	}
}

// Registry returns a registry holding readers.test, filters.test,
// filters.merge and writers.test, all passthrough drivers, plus infos. The
// reader is inferred for ".in" and the writer for ".out".
func Registry(infos ...stage.DriverInfo) *stage.Registry {
	return RegistryWith(nil, infos...)
}

// RegistryWith is Registry with registry options, e.g. a plugin loader.
func RegistryWith(opts []stage.RegistryOption, infos ...stage.DriverInfo) *stage.Registry {
	reg := stage.NewRegistry(opts...)
	reg.MustRegister(
		stage.DriverInfo{Name: "readers.test", Extensions: []string{".in"}, New: func() stage.Driver { return Source([3]float64{0, 0, 0}) }},
		stage.DriverInfo{Name: "filters.test", New: func() stage.Driver { return Passthrough() }},
		stage.DriverInfo{Name: "filters.merge", Inputs: stage.CardinalityMany, New: func() stage.Driver { return Passthrough() }},
		stage.DriverInfo{Name: "writers.test", Extensions: []string{".out"}, New: func() stage.Driver { return Passthrough() }},
	)
	reg.MustRegister(infos...)
	return reg
}
