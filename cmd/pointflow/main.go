// pointflow runs point-cloud processing pipelines.
//
// A pipeline is a JSON or YAML document listing readers, filters and
// writers. The argument is either a path to such a document or a name
// looked up in the configured pipeline directories.
//
// Exit status is 0 on success, 1 when the pipeline cannot be built or
// fails, and 2 on usage or configuration errors.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/kbukum/pointflow/config"
	"github.com/kbukum/pointflow/dag"
	"github.com/kbukum/pointflow/drivers"
	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/observability"
	"github.com/kbukum/pointflow/pipelinedef"
	"github.com/kbukum/pointflow/stage"
	"github.com/kbukum/pointflow/version"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	shutdownWait = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	configFile  string
	verbose     int
	debug       bool
	plugins     []string
	maxParallel int
	listDrivers bool
	version     bool
	help        bool
}

func (f *flags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configFile, "config", "", "path to pointflow.yml (default: search ., ./config and the user config dir)")
	fs.CountVarP(&f.verbose, "verbose", "v", "increase log verbosity (repeatable)")
	fs.BoolVar(&f.debug, "debug", false, "enable debug logging and stage diagnostics")
	fs.StringArrayVar(&f.plugins, "plugin", nil, "load a driver plugin (repeatable)")
	fs.IntVar(&f.maxParallel, "max-parallel", 0, "maximum stages run at once per level (0 = unlimited)")
	fs.BoolVar(&f.listDrivers, "list-drivers", false, "list registered drivers and exit")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	fs.BoolVarP(&f.help, "help", "h", false, "show help")
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var f flags
	fs := pflag.NewFlagSet("pointflow", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f.register(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		printUsage(stderr, fs)
		return exitUsage
	}
	if f.help {
		printUsage(stdout, fs)
		return exitOK
	}
	if f.version {
		fmt.Fprintln(stdout, version.Get())
		return exitOK
	}

	var cfg config.Config
	var loadOpts []config.LoaderOption
	if f.configFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(f.configFile))
	}
	if err := config.Load(&cfg, loadOpts...); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}
	if fs.Changed("max-parallel") {
		if f.maxParallel < 0 {
			fmt.Fprintln(stderr, "error: --max-parallel must be at least 0")
			return exitUsage
		}
		cfg.Engine.MaxParallel = f.maxParallel
	}

	log := newLogger(&cfg, f)
	logger.Register(cfg.Name, log)

	reg := drivers.NewRegistry()
	for _, path := range append(cfg.Plugins.Paths, f.plugins...) {
		if err := reg.LoadPlugin(path); err != nil {
			report(stderr, err)
			return exitFailure
		}
	}

	if f.listDrivers {
		listDrivers(stdout, reg)
		return exitOK
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "error: expected exactly one pipeline")
		printUsage(stderr, fs)
		return exitUsage
	}
	path, err := pipelinedef.NewFinder(cfg.Pipelines.SearchDirs...).Find(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	reader := pipelinedef.NewReader(reg,
		pipelinedef.WithVerbosity(f.verbose),
		pipelinedef.WithDebug(f.debug),
		pipelinedef.WithLogger(log),
	)
	g, err := reader.ReadFile(path)
	if err != nil {
		report(stderr, err)
		return exitFailure
	}

	engine := &dag.Engine{
		MaxParallel:  cfg.Engine.MaxParallel,
		ViewParallel: cfg.Engine.ViewParallel,
		Log:          log,
	}
	if cfg.Telemetry.Enabled {
		shutdown, err := startTelemetry(ctx, &cfg, engine)
		if err != nil {
			log.Warn("telemetry disabled", logger.ErrorFields("init", err))
		} else {
			defer shutdown()
		}
	}

	res, err := engine.Execute(ctx, g)
	if err != nil {
		report(stderr, err)
		return exitFailure
	}
	fmt.Fprintf(stdout, "%s: %d views, %d points in %s\n",
		pipelinedef.NameFromPath(path), res.Views.Len(), res.Views.PointCount(), res.Duration.Round(time.Millisecond))
	return exitOK
}

// newLogger installs the process logger, raising the configured verbosity to
// what -v and --debug ask for.
func newLogger(cfg *config.Config, f flags) *logger.Logger {
	lc := cfg.Logging
	if f.verbose > lc.Verbosity {
		lc.Verbosity = f.verbose
	}
	if f.debug && lc.Verbosity < 3 {
		lc.Verbosity = 3
	}
	return logger.Init(lc, cfg.Name)
}

func startTelemetry(ctx context.Context, cfg *config.Config, engine *dag.Engine) (func(), error) {
	v := version.Get().Short()
	tp, err := observability.InitTracer(ctx, cfg.Telemetry.TracerConfig(cfg.Name, v))
	if err != nil {
		return nil, err
	}
	mp, err := observability.InitMeter(ctx, cfg.Telemetry.MeterConfig(cfg.Name, v))
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	metrics, err := observability.NewStageMetrics(observability.Meter(cfg.Name))
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, err
	}
	engine.Metrics = metrics
	engine.Tracing = true

	return func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownWait)
		defer cancel()
		if err := mp.Shutdown(sctx); err != nil {
			logger.Warn("meter shutdown failed", logger.ErrorFields("shutdown", err))
		}
		if err := tp.Shutdown(sctx); err != nil {
			logger.Warn("tracer shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}, nil
}

// report prints err, one line per issue when it joins several.
func report(w io.Writer, err error) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, issue := range joined.Unwrap() {
			fmt.Fprintf(w, "error: %v\n", issue)
		}
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

func listDrivers(w io.Writer, reg *stage.Registry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tROLE\tDESCRIPTION")
	for _, info := range reg.List(0) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, info.Role, info.Description)
	}
	tw.Flush()
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, `Usage:
  pointflow [flags] <pipeline>

<pipeline> is a pipeline file, or a name searched for in the configured
pipeline directories with the extensions .json, .jsonc, .yaml and .yml.

Flags:
%s`, fs.FlagUsages())
}
