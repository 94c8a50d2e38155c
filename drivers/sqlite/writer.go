package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/pointflow/errors"
	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/point"
	"github.com/kbukum/pointflow/resilience"
	"github.com/kbukum/pointflow/stage"
)

// WriterName is the registered type of the writer.
const WriterName = "writers.sqlite"

// WriterArgs are the writer options.
type WriterArgs struct {
	Filename string `mapstructure:"filename" validate:"required"`
	Table    string `mapstructure:"table" validate:"required"`
	// Overwrite drops an existing table before writing.
	Overwrite bool `mapstructure:"overwrite"`
}

// Writer is the writers.sqlite driver. Each view is inserted in its own
// transaction.
type Writer struct {
	args WriterArgs
	log  *logger.Logger

	mu      sync.Mutex
	db      *sql.DB
	dims    []point.Dim
	insert  string
	written int
}

var (
	_ stage.Driver   = (*Writer)(nil)
	_ stage.Finisher = (*Writer)(nil)
)

// NewWriter returns a SQLite writer.
func NewWriter() *Writer {
	return &Writer{args: WriterArgs{Table: DefaultTable}, log: logger.Nop()}
}

// WriterInfo describes the writer for a registry.
func WriterInfo() stage.DriverInfo {
	return stage.DriverInfo{
		Name:        WriterName,
		Description: "Write points to a SQLite table",
		Extensions:  Extensions,
		New:         func() stage.Driver { return NewWriter() },
	}
}

func (w *Writer) Args() any { return &w.args }

func (w *Writer) Prepare(ctx context.Context, env stage.Env) error {
	if env.Log != nil {
		w.log = env.Log
	}
	db, err := open(w.args.Filename)
	if err != nil {
		return err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if w.args.Overwrite {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(w.args.Table)); err != nil {
			db.Close()
			return errors.Storage("drop table", err).WithDetail("table", w.args.Table)
		}
	}
	w.db = db
	return nil
}

func (w *Writer) Run(ctx context.Context, in *point.View) (*point.ViewSet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dims == nil {
		if err := w.createTable(ctx, in.Table().Layout()); err != nil {
			return nil, err
		}
	}

	if err := resilience.RetryFunc(ctx, w.retry(), func() error { return w.insertView(ctx, in) }); err != nil {
		return nil, err
	}
	w.written += in.Size()
	return point.NewViewSet(in), nil
}

// insertView inserts the points of in in one transaction.
func (w *Writer) insertView(ctx context.Context, in *point.View) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage("begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, w.insert)
	if err != nil {
		return errors.Storage("prepare insert", err).WithDetail("table", w.args.Table)
	}
	defer stmt.Close()

	args := make([]any, len(w.dims))
	for i := 0; i < in.Size(); i++ {
		for j, d := range w.dims {
			args[j] = in.Field(d, point.PointID(i))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.Storage("insert", err).WithDetail("table", w.args.Table)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Storage("commit", err).WithDetail("table", w.args.Table)
	}
	return nil
}

// retry retries a view insert while another connection holds the file.
func (w *Writer) retry() resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.RetryIf = isBusy
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		w.log.Debug("database busy, retrying", map[string]any{
			"attempt":         attempt,
			"backoff_ms":      backoff.Milliseconds(),
			logger.FieldError: err.Error(),
		})
	}
	return cfg
}

// Done closes the database.
func (w *Writer) Done(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.db == nil {
		return nil
	}
	db := w.db
	w.db = nil
	if err := db.Close(); err != nil {
		return errors.Storage("close", err).WithDetail("filename", w.args.Filename)
	}
	w.log.Debug("sqlite table written", map[string]any{
		"table":            w.args.Table,
		logger.FieldPoints: w.written,
	})
	return nil
}

func (w *Writer) createTable(ctx context.Context, layout *point.Layout) error {
	dims := layout.Dims()
	cols := make([]string, len(dims))
	for i, d := range dims {
		cols[i] = quote(layout.DimName(d))
	}

	ddl := "CREATE TABLE IF NOT EXISTS " + quote(w.args.Table) +
		" (" + strings.Join(cols, " REAL, ") + " REAL)"
	if _, err := w.db.ExecContext(ctx, ddl); err != nil {
		return errors.Storage("create table", err).WithDetail("table", w.args.Table)
	}

	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	w.insert = "INSERT INTO " + quote(w.args.Table) +
		" (" + strings.Join(cols, ", ") + ") VALUES (" + marks + ")"
	w.dims = dims
	return nil
}
