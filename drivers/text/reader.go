package text

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kbukum/pointflow/errors"
	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/point"
	"github.com/kbukum/pointflow/stage"
	"github.com/kbukum/pointflow/validation"
)

// ReaderName is the registered type of the reader.
const ReaderName = "readers.text"

// Extensions are the file extensions the text drivers are inferred for.
var Extensions = []string{".txt", ".csv", ".xyz"}

// ReaderArgs are the reader options.
type ReaderArgs struct {
	Filename string `mapstructure:"filename" validate:"required"`
	// Delimiter separates fields. Empty means detect: a comma when the
	// header contains one, whitespace otherwise.
	Delimiter string `mapstructure:"delimiter"`
	// Header replaces the file's header line. The first line is then read
	// as data.
	Header string `mapstructure:"header"`
	// Skip is the number of lines ignored before the header.
	Skip int `mapstructure:"skip" validate:"gte=0"`
}

// Reader is the readers.text driver.
type Reader struct {
	args  ReaderArgs
	table *point.Table
	log   *logger.Logger
}

var _ stage.Driver = (*Reader)(nil)

// NewReader returns a text reader.
func NewReader() *Reader {
	return &Reader{log: logger.Nop()}
}

// ReaderInfo describes the reader for a registry.
func ReaderInfo() stage.DriverInfo {
	return stage.DriverInfo{
		Name:        ReaderName,
		Description: "Text Reader",
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
	if utf8.RuneCountInString(r.args.Delimiter) > 1 {
		return errors.InvalidOption("delimiter", "must be a single character")
	}
	return validation.Validate(&r.args)
}

func (r *Reader) Run(ctx context.Context, _ *point.View) (*point.ViewSet, error) {
	f, err := os.Open(r.args.Filename)
	if err != nil {
		return nil, errors.Storage("open", err).WithDetail("filename", r.args.Filename)
	}
	defer f.Close()

	v, err := r.read(ctx, f)
	if err != nil {
		return nil, errors.Storage("read", err).WithDetail("filename", r.args.Filename)
	}
	r.log.Debug("text file read", map[string]any{
		"filename":         r.args.Filename,
		logger.FieldPoints: v.Size(),
	})
	return point.NewViewSet(v), nil
}

func (r *Reader) read(ctx context.Context, src io.Reader) (*point.View, error) {
	br := bufio.NewReader(src)
	for i := 0; i < r.args.Skip; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			return nil, fmt.Errorf("skipping line %d: %w", i+1, err)
		}
	}

	header := r.args.Header
	if header == "" {
		line, err := br.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("missing header line: %w", err)
		}
		header = line
	}
	header = strings.TrimSpace(header)

	delim := r.args.Delimiter
	if delim == "" && strings.Contains(header, ",") {
		delim = ","
	}
	next := fieldSplitter(br, delim)

	names := split(header, delim)
	dims := make([]point.Dim, len(names))
	for i, name := range names {
		dims[i] = r.table.RegisterName(strings.Trim(name, `"`))
	}

	v := point.NewView(r.table)
	for line := 1; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		fields, err := next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue
		}
		if len(fields) != len(dims) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, len(dims), len(fields))
		}
		id := v.NewPoint()
		for i, s := range fields {
			val, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: field %s: %w", line, names[i], err)
			}
			v.SetField(dims[i], id, val)
		}
	}
	return v, nil
}

// fieldSplitter returns a function yielding the fields of each remaining
// line. Quoted fields are honored for character delimiters.
func fieldSplitter(br *bufio.Reader, delim string) func() ([]string, error) {
	if isBlank(delim) {
		sc := bufio.NewScanner(br)
		return func() ([]string, error) {
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return nil, err
				}
				return nil, io.EOF
			}
			return strings.Fields(sc.Text()), nil
		}
	}
	cr := csv.NewReader(br)
	cr.Comma = []rune(delim)[0]
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return cr.Read
}

func split(line, delim string) []string {
	if isBlank(delim) {
		return strings.Fields(line)
	}
	parts := strings.Split(line, delim)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func isBlank(delim string) bool {
	return strings.TrimSpace(delim) == ""
}
