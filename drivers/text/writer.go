package text

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/kbukum/pointflow/errors"
	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/options"
	"github.com/kbukum/pointflow/point"
	"github.com/kbukum/pointflow/stage"
	"github.com/kbukum/pointflow/validation"
)

// WriterName is the registered type of the writer.
const WriterName = "writers.text"

// WriterArgs are the writer options.
type WriterArgs struct {
	Filename  string `mapstructure:"filename" validate:"required"`
	Delimiter string `mapstructure:"delimiter"`
	// Precision is the number of decimals written per field.
	Precision int `mapstructure:"precision" validate:"gte=0,lte=17"`
	// Order lists the dimensions to write. Empty means every dimension of
	// the table, in registration order.
	Order       []string `mapstructure:"order"`
	WriteHeader bool     `mapstructure:"write_header"`
}

// DefaultWriterArgs returns the writer defaults.
func DefaultWriterArgs() WriterArgs {
	return WriterArgs{Delimiter: " ", Precision: 3, WriteHeader: true}
}

// Writer is the writers.text driver. Every view it receives is appended to
// the same file.
type Writer struct {
	args WriterArgs
	log  *logger.Logger

	mu      sync.Mutex
	file    *os.File
	buf     *bufio.Writer
	dims    []point.Dim
	written int
}

var (
	_ stage.Driver   = (*Writer)(nil)
	_ stage.Finisher = (*Writer)(nil)
)

// NewWriter returns a text writer with default arguments.
func NewWriter() *Writer {
	return &Writer{args: DefaultWriterArgs(), log: logger.Nop()}
}

// WriterInfo describes the writer for a registry.
func WriterInfo() stage.DriverInfo {
	return stage.DriverInfo{
		Name:         WriterName,
		Description:  "Text Writer",
		Extensions:   Extensions,
		New:          func() stage.Driver { return NewWriter() },
		InferOptions: InferWriterOptions,
	}
}

// InferWriterOptions selects a comma delimiter for .csv files.
func InferWriterOptions(filename string) *options.Options {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return options.New(options.Option{Name: "delimiter", Value: ","})
	}
	return nil
}

func (w *Writer) Args() any { return &w.args }

func (w *Writer) Prepare(_ context.Context, env stage.Env) error {
	if env.Log != nil {
		w.log = env.Log
	}
	if err := validation.Validate(&w.args); err != nil {
		return err
	}
	if w.args.Delimiter == "" {
		return errors.InvalidOption("delimiter", "must not be empty")
	}
	f, err := os.Create(w.args.Filename)
	if err != nil {
		return errors.Storage("create", err).WithDetail("filename", w.args.Filename)
	}
	w.file = f
	w.buf = bufio.NewWriter(f)
	return nil
}

func (w *Writer) Run(ctx context.Context, in *point.View) (*point.ViewSet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dims == nil {
		dims, err := w.resolveOrder(in.Table().Layout())
		if err != nil {
			return nil, err
		}
		w.dims = dims
		if w.args.WriteHeader {
			if err := w.writeHeader(in.Table().Layout()); err != nil {
				return nil, err
			}
		}
	}

	line := make([]byte, 0, 64)
	for i := 0; i < in.Size(); i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line = line[:0]
		for j, d := range w.dims {
			if j > 0 {
				line = append(line, w.args.Delimiter...)
			}
			line = strconv.AppendFloat(line, in.Field(d, point.PointID(i)), 'f', w.args.Precision, 64)
		}
		line = append(line, '\n')
		if _, err := w.buf.Write(line); err != nil {
			return nil, errors.Storage("write", err).WithDetail("filename", w.args.Filename)
		}
	}
	w.written += in.Size()
	return point.NewViewSet(in), nil
}

// Done flushes and closes the file.
func (w *Writer) Done(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	f := w.file
	w.file = nil
	flushErr := w.buf.Flush()
	closeErr := f.Close()
	if flushErr != nil {
		return errors.Storage("write", flushErr).WithDetail("filename", w.args.Filename)
	}
	if closeErr != nil {
		return errors.Storage("close", closeErr).WithDetail("filename", w.args.Filename)
	}
	w.log.Debug("text file written", map[string]any{
		"filename":         w.args.Filename,
		logger.FieldPoints: w.written,
	})
	return nil
}

func (w *Writer) resolveOrder(layout *point.Layout) ([]point.Dim, error) {
	if len(w.args.Order) == 0 {
		return layout.Dims(), nil
	}
	dims := make([]point.Dim, 0, len(w.args.Order))
	for _, name := range w.args.Order {
		d, ok := layout.Find(strings.TrimSpace(name))
		if !ok {
			return nil, errors.InvalidOption("order", "unknown dimension "+strconv.Quote(name))
		}
		dims = append(dims, d)
	}
	return dims, nil
}

func (w *Writer) writeHeader(layout *point.Layout) error {
	names := make([]string, len(w.dims))
	for i, d := range w.dims {
		names[i] = layout.DimName(d)
	}
	if _, err := w.buf.WriteString(strings.Join(names, w.args.Delimiter) + "\n"); err != nil {
		return errors.Storage("write", err).WithDetail("filename", w.args.Filename)
	}
	return nil
}
