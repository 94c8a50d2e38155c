package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kbukum/pointflow/errors"
	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/point"
	"github.com/kbukum/pointflow/stage"
)

// ReaderName is the registered type of the reader.
const ReaderName = "readers.sqlite"

// ReaderArgs are the reader options.
type ReaderArgs struct {
	Filename string `mapstructure:"filename" validate:"required"`
	Table    string `mapstructure:"table" validate:"required"`
	// Where is an optional SQL condition appended to the query.
	Where string `mapstructure:"where"`
}

// Reader is the readers.sqlite driver.
type Reader struct {
	args  ReaderArgs
	table *point.Table
	log   *logger.Logger
}

var _ stage.Driver = (*Reader)(nil)

// NewReader returns a SQLite reader.
func NewReader() *Reader {
	return &Reader{args: ReaderArgs{Table: DefaultTable}, log: logger.Nop()}
}

// ReaderInfo describes the reader for a registry.
func ReaderInfo() stage.DriverInfo {
	return stage.DriverInfo{
		Name:        ReaderName,
		Description: "Read points from a SQLite table",
		Extensions:  Extensions,
		New:         func() stage.Driver { return NewReader() },
	}
}

func (r *Reader) Args() any { return &r.args }

func (r *Reader) Prepare(_ context.Context, env stage.Env) error {
	r.table = env.Table
	if env.Log != nil {
		r.log = env.Log
	}
	return nil
}

func (r *Reader) Run(ctx context.Context, _ *point.View) (*point.ViewSet, error) {
	db, err := open(r.args.Filename)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := "SELECT * FROM " + quote(r.args.Table)
	if r.args.Where != "" {
		query += " WHERE " + r.args.Where
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Storage("query", err).WithDetail("table", r.args.Table)
	}
	defer rows.Close()

	v, err := r.scan(rows)
	if err != nil {
		return nil, errors.Storage("read", err).WithDetail("table", r.args.Table)
	}
	r.log.Debug("sqlite table read", map[string]any{
		"table":            r.args.Table,
		logger.FieldPoints: v.Size(),
	})
	return point.NewViewSet(v), nil
}

func (r *Reader) scan(rows *sql.Rows) (*point.View, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	dims := make([]point.Dim, len(cols))
	for i, name := range cols {
		dims[i] = r.table.RegisterName(name)
	}

	values := make([]sql.NullFloat64, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}

	v := point.NewView(r.table)
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("row %d: %w", v.Size()+1, err)
		}
		id := v.NewPoint()
		for i, val := range values {
			if val.Valid {
				v.SetField(dims[i], id, val.Float64)
			}
		}
	}
	return v, rows.Err()
}
