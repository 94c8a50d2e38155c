package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/pointflow/errors"
	"github.com/kbukum/pointflow/options"
	"github.com/kbukum/pointflow/point"
	"github.com/kbukum/pointflow/testutil"
)

func writeViews(t *testing.T, path string, opts *options.Options, coords ...[][3]float64) {
	t.Helper()
	w := NewWriter()
	env := testutil.T(t).Prepare(w, opts.Add("filename", path))
	for _, c := range coords {
		if _, err := w.Run(context.Background(), testutil.View(env.Table, c...)); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	if err := w.Done(context.Background()); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func readAll(t *testing.T, opts *options.Options) (*point.View, error) {
	t.Helper()
	r := NewReader()
	testutil.T(t).Prepare(r, opts)
	out, err := r.Run(context.Background(), nil)
	if err != nil {
		return nil, err
	}
	return out.Views()[0], nil
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloud.sqlite")
	writeViews(t, path, options.New(),
		[][3]float64{{1, 2, 3}, {4, 5, 6}},
		[][3]float64{{7, 8, 9}})

	v, err := readAll(t, options.New().Add("filename", path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][3]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	if diff := cmp.Diff(want, testutil.Coords(v)); diff != "" {
		t.Errorf("coords mismatch (-want +got):\n%s", diff)
	}
}

func TestReader_Where(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloud.db")
	writeViews(t, path, options.New().Add("table", "ground"),
		[][3]float64{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}})

	v, err := readAll(t, options.New().Add("filename", path).Add("table", "ground").Add("where", `"X" >= 2`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([][3]float64{{2, 0, 0}, {3, 0, 0}}, testutil.Coords(v)); diff != "" {
		t.Errorf("coords mismatch (-want +got):\n%s", diff)
	}
}

func TestWriter_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloud.sqlite3")
	writeViews(t, path, options.New(), [][3]float64{{1, 1, 1}})
	writeViews(t, path, options.New(), [][3]float64{{2, 2, 2}})

	v, err := readAll(t, options.New().Add("filename", path))
	if err != nil {
		t.Fatal(err)
	}
	if v.Size() != 2 {
		t.Fatalf("expected appended rows, got %d", v.Size())
	}

	writeViews(t, path, options.New().Add("overwrite", true), [][3]float64{{3, 3, 3}})
	v, err = readAll(t, options.New().Add("filename", path))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][3]float64{{3, 3, 3}}, testutil.Coords(v)); diff != "" {
		t.Errorf("coords mismatch (-want +got):\n%s", diff)
	}
}

func TestReader_UserColumnsAndNulls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	stmts := []string{
		`CREATE TABLE points (X REAL, Y REAL, Z REAL, Range REAL)`,
		`INSERT INTO points VALUES (1, 2, 3, 40.5), (4, 5, 6, NULL)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatal(err)
		}
	}
	db.Close()

	v, err := readAll(t, options.New().Add("filename", path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, ok := v.Table().Layout().Find("range")
	if !ok {
		t.Fatal("expected Range to be registered")
	}
	if got := []float64{v.Field(d, 0), v.Field(d, 1)}; !cmp.Equal(got, []float64{40.5, 0}) {
		t.Errorf("unexpected range values %v", got)
	}
}

func TestReader_MissingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	_, err := readAll(t, options.New().Add("filename", path).Add("table", "nothing"))
	if !errors.HasCode(err, errors.ErrCodeStorage) {
		t.Fatalf("expected STORAGE, got %v", err)
	}
}

func TestIsBusy(t *testing.T) {
	if !isBusy(errors.Storage("commit", stderrors.New("database is locked (5) (SQLITE_BUSY)"))) {
		t.Error("expected a locked database to be busy")
	}
	if isBusy(stderrors.New("no such table: points")) {
		t.Error("expected a missing table not to be busy")
	}
}

func TestQuote(t *testing.T) {
	if got := quote(`we"ird`); got != `"we""ird"` {
		t.Errorf("unexpected identifier %s", got)
	}
}
