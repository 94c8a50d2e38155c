package stage

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/pointflow/errors"
	"github.com/kbukum/pointflow/options"
	"github.com/kbukum/pointflow/point"
)

func nopDriver() Driver {
	return DriverFunc(func(context.Context, *point.View) (*point.ViewSet, error) {
		return point.NewViewSet(), nil
	})
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	reg.MustRegister(
		DriverInfo{Name: "readers.text", Extensions: []string{".TXT", ".csv"}, New: nopDriver},
		DriverInfo{Name: "writers.text", Extensions: []string{".txt", ".csv"}, New: nopDriver,
			InferOptions: func(string) *options.Options { return options.New().Add("delimiter", ",") }},
		DriverInfo{Name: "filters.outlier.radius", Inputs: CardinalityOne, New: nopDriver},
	)
	return reg
}

func TestRegistry_RoleFromName(t *testing.T) {
	reg := testRegistry(t)
	info, ok := reg.Lookup("writers.text")
	if !ok {
		t.Fatal("expected writers.text")
	}
	if info.Role != RoleWriter {
		t.Errorf("expected writer role, got %s", info.Role)
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	reg := testRegistry(t)
	err := reg.Register(DriverInfo{Name: "readers.text", New: nopDriver})
	if !errors.HasCode(err, errors.ErrCodeDriverResolution) {
		t.Fatalf("expected DRIVER_RESOLUTION, got %v", err)
	}
}

func TestRegistry_New(t *testing.T) {
	reg := testRegistry(t)
	s, err := reg.New("filters.outlier.radius")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Role != RoleFilter || s.InputCardinality() != CardinalityOne {
		t.Errorf("unexpected stage %+v", s)
	}
	if s.Options == nil || s.Driver == nil {
		t.Error("expected options and driver")
	}

	_, err = reg.New("filters.nope")
	if !errors.HasCode(err, errors.ErrCodeDriverResolution) {
		t.Fatalf("expected DRIVER_RESOLUTION, got %v", err)
	}
}

func TestRegistry_Infer(t *testing.T) {
	reg := testRegistry(t)
	tests := []struct {
		name     string
		filename string
		reader   bool
		want     string
		wantErr  bool
	}{
		{"reader upper ext", "/data/IN.TXT", true, "readers.text", false},
		{"writer csv", "out.csv", false, "writers.text", false},
		{"no extension", "points", true, "", true},
		{"unknown extension", "a.las", false, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			var err error
			if tt.reader {
				got, err = reg.InferReader(tt.filename)
			} else {
				got, err = reg.InferWriter(tt.filename)
			}
			if tt.wantErr {
				if !errors.HasCode(err, errors.ErrCodeDriverResolution) {
					t.Fatalf("expected DRIVER_RESOLUTION, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("got %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func TestRegistry_List(t *testing.T) {
	reg := testRegistry(t)
	if diff := cmp.Diff([]string{"filters.outlier.radius", "readers.text", "writers.text"}, reg.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if n := len(reg.List(RoleReader)); n != 1 {
		t.Errorf("expected 1 reader, got %d", n)
	}
}

func TestRegistry_LoadPluginOnce(t *testing.T) {
	calls := 0
	loader := PluginLoaderFunc(func(path string) (RegisterFunc, error) {
		calls++
		return func(r *Registry) error {
			return r.Register(DriverInfo{Name: "filters.custom", New: nopDriver})
		}, nil
	})
	reg := NewRegistry(WithPluginLoader(loader))

	for range 2 {
		if err := reg.LoadPlugin("/plugins/custom.so"); err != nil {
			t.Fatalf("LoadPlugin: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected plugin opened once, got %d", calls)
	}
	if _, ok := reg.Lookup("filters.custom"); !ok {
		t.Error("expected plugin driver registered")
	}
}

func TestRegistry_LoadPluginFailure(t *testing.T) {
	cause := stderrors.New("no such file")
	reg := NewRegistry(WithPluginLoader(PluginLoaderFunc(func(string) (RegisterFunc, error) {
		return nil, cause
	})))
	err := reg.LoadPlugin("/missing.so")
	if !errors.HasCode(err, errors.ErrCodePluginLoad) {
		t.Fatalf("expected PLUGIN_LOAD, got %v", err)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be wrapped")
	}
}

func TestCardinality_Accepts(t *testing.T) {
	tests := []struct {
		c    Cardinality
		n    int
		want bool
	}{
		{CardinalityNone, 0, true},
		{CardinalityNone, 1, false},
		{CardinalityOne, 1, true},
		{CardinalityOne, 2, false},
		{CardinalityMany, 0, false},
		{CardinalityMany, 3, true},
	}
	for _, tt := range tests {
		if got := tt.c.Accepts(tt.n); got != tt.want {
			t.Errorf("%s.Accepts(%d) = %v, want %v", tt.c, tt.n, got, tt.want)
		}
	}
}

func TestStage_Name(t *testing.T) {
	s := &Stage{Type: "filters.splitter"}
	if s.Name() != "filters.splitter" {
		t.Errorf("unexpected name %q", s.Name())
	}
	s.Tag = "grid"
	if s.Name() != "filters.splitter#grid" {
		t.Errorf("unexpected tagged name %q", s.Name())
	}
	if DefaultCardinality(RoleReader) != CardinalityNone || (&Stage{Role: RoleWriter}).InputCardinality() != CardinalityMany {
		t.Error("unexpected default cardinality")
	}
}
