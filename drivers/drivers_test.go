package drivers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/pointflow/dag"
	"github.com/kbukum/pointflow/errors"
	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/pipelinedef"
	"github.com/kbukum/pointflow/stage"
)

func TestNewRegistry_Names(t *testing.T) {
	want := []string{
		"filters.merge",
		"filters.outlier.radius",
		"filters.outlier.statistical",
		"filters.splitter",
		"filters.stats",
		"readers.faux",
		"readers.sqlite",
		"readers.text",
		"writers.null",
		"writers.sqlite",
		"writers.text",
	}
	if diff := cmp.Diff(want, NewRegistry().Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterBuiltins_Twice(t *testing.T) {
	reg := stage.NewRegistry()
	if err := RegisterBuiltins(reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RegisterBuiltins(reg); !errors.HasCode(err, errors.ErrCodeDriverResolution) {
		t.Fatalf("expected DRIVER_RESOLUTION, got %v", err)
	}
}

func TestNewRegistry_Inference(t *testing.T) {
	reg := NewRegistry()
	tests := []struct {
		filename string
		infer    func(string) (string, error)
		want     string
	}{
		{"in.xyz", reg.InferReader, "readers.text"},
		{"in.CSV", reg.InferReader, "readers.text"},
		{"in.sqlite", reg.InferReader, "readers.sqlite"},
		{"out.txt", reg.InferWriter, "writers.text"},
		{"out.db", reg.InferWriter, "writers.sqlite"},
	}
	for _, tt := range tests {
		got, err := tt.infer(tt.filename)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.filename, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.filename, tt.want, got)
		}
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "tiles.csv")
	doc := `{"pipeline": [
		{"type": "readers.faux", "count": 16, "mode": "ramp", "bounds": "([0, 15], [0, 15], [0, 0])"},
		{"type": "filters.splitter", "length": 8},
		{"type": "filters.stats", "dimensions": "X"},
		"` + out + `"
	]}`

	g, err := pipelinedef.NewReader(NewRegistry()).Read([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	res, err := (&dag.Engine{Log: logger.Nop()}).Execute(context.Background(), g)
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if res.Views.Len() != 2 || res.Views.PointCount() != 16 {
		t.Errorf("expected 2 tiles of 16 points, got %d views of %d", res.Views.Len(), res.Views.PointCount())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "X,Y,Z" || len(lines) != 17 {
		t.Errorf("unexpected output: header %q, %d lines", lines[0], len(lines))
	}
	sr, ok := res.StageByName("filters.stats")
	if !ok || sr.Metadata["statistic"] == nil {
		t.Errorf("expected stats metadata, got %+v", sr)
	}
}
