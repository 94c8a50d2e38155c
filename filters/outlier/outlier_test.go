package outlier

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/options"
	"github.com/kbukum/pointflow/point"
	"github.com/kbukum/pointflow/stage"
	"github.com/kbukum/pointflow/testutil"
)

// clusterWithStray returns a 5x5 unit grid plus one far point, which is the
// last point of the view.
func clusterWithStray() *point.View {
	table := testutil.NewTable()
	v := testutil.Grid(table, 0, 0, 1, 5, 5)
	id := v.NewPoint()
	v.SetField(point.DimX, id, 100)
	v.SetField(point.DimY, id, 100)
	v.SetField(point.DimZ, id, 100)
	return v
}

func classes(v *point.View) []float64 {
	out := make([]float64, v.Size())
	for i := range out {
		out[i] = v.Field(point.DimClassification, point.PointID(i))
	}
	return out
}

func flagged(flags []bool) []int {
	var out []int
	for i, f := range flags {
		if f {
			out = append(out, i)
		}
	}
	return out
}

func TestStatisticalOutliers(t *testing.T) {
	v := clusterWithStray()
	flags, threshold := StatisticalOutliers(v, 4, 2)
	if diff := cmp.Diff([]int{25}, flagged(flags)); diff != "" {
		t.Errorf("outliers mismatch (-want +got):\n%s", diff)
	}
	if threshold <= 1 {
		t.Errorf("expected threshold above grid spacing, got %v", threshold)
	}
}

func TestRadiusOutliers(t *testing.T) {
	v := clusterWithStray()
	flags := RadiusOutliers(v, 1.01, 2)
	if diff := cmp.Diff([]int{25}, flagged(flags)); diff != "" {
		t.Errorf("outliers mismatch (-want +got):\n%s", diff)
	}

	// Corners have exactly two neighbors at distance 1.
	flags = RadiusOutliers(v, 1.01, 3)
	if diff := cmp.Diff([]int{0, 4, 20, 24, 25}, flagged(flags)); diff != "" {
		t.Errorf("outliers mismatch (-want +got):\n%s", diff)
	}
}

func TestIndex_KNNExcludesSelf(t *testing.T) {
	v := testutil.View(testutil.NewTable(),
		[3]float64{0, 0, 0}, [3]float64{1, 0, 0}, [3]float64{3, 0, 0}, [3]float64{7, 0, 0})
	ix := newIndex(v)

	if diff := cmp.Diff([]float64{1, 9}, ix.knn(0, 2)); diff != "" {
		t.Errorf("knn mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{4, 9, 16}, ix.within(2, 4)); diff != "" {
		t.Errorf("within mismatch (-want +got):\n%s", diff)
	}
	if got := ix.knn(0, 10); len(got) != 3 {
		t.Errorf("expected every other point when k exceeds the view, got %v", got)
	}
}

func TestStatistical_Classify(t *testing.T) {
	f := NewStatistical()
	testutil.T(t).Prepare(f, options.New().Add("mean_k", 4))

	in := clusterWithStray()
	out, err := f.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 || !out.Contains(in) {
		t.Fatal("expected the input view to be returned")
	}
	got := classes(in)
	for i, c := range got {
		want := float64(point.ClassNeverClassified)
		if i == 25 {
			want = point.ClassHighNoise
		}
		if c != want {
			t.Errorf("point %d: classification %v, want %v", i, c, want)
		}
	}
}

func TestStatistical_Extract(t *testing.T) {
	f := NewStatistical()
	testutil.T(t).Prepare(f, options.New().Add("mean_k", "4").Add("extract", "true").Add("classify", "false"))

	in := clusterWithStray()
	out, err := f.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 || out.Contains(in) {
		t.Fatal("expected a single new view")
	}
	kept := out.Views()[0]
	if kept.Size() != 25 {
		t.Errorf("expected 25 inliers, got %d", kept.Size())
	}
	if kept.Bounds().MaxX != 4 {
		t.Errorf("expected the stray point to be gone, bounds %v", kept.Bounds())
	}
	if in.Table().Layout().Has(point.DimClassification) {
		t.Error("extract without classify must not label points")
	}
}

func TestStatistical_ClassifyAndExtract(t *testing.T) {
	f := NewStatistical()
	testutil.T(t).Prepare(f, options.New().Add("mean_k", "4").Add("extract", "true"))

	in := clusterWithStray()
	out, err := f.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 || out.Contains(in) {
		t.Fatal("expected a single new view")
	}
	if kept := out.Views()[0]; kept.Size() != 25 {
		t.Errorf("expected 25 inliers, got %d", kept.Size())
	}
	// The label lands in the shared table, so other views over it see it.
	if got := in.Field(point.DimClassification, 25); got != point.ClassHighNoise {
		t.Errorf("expected the stray point labeled %v, got %v", point.ClassHighNoise, got)
	}
	if diff := cmp.Diff(make([]float64, 25), classes(out.Views()[0])); diff != "" {
		t.Errorf("inlier classes mismatch (-want +got):\n%s", diff)
	}
}

func TestRadius_NoOutliers(t *testing.T) {
	var buf bytes.Buffer
	f := NewRadius()
	testutil.T(t).Prepare(f, options.New().Add("radius", 1.5))
	f.log = logger.NewWriter(&buf, zerolog.WarnLevel)

	in := testutil.Grid(testutil.NewTable(), 0, 0, 1, 5, 5)
	out, err := f.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 || !out.Contains(in) {
		t.Fatal("expected the input to be returned")
	}
	if !strings.Contains(buf.String(), "filtered cloud has no outliers") {
		t.Errorf("expected a warning, got %q", buf.String())
	}
}

func TestRadius_NothingSelected(t *testing.T) {
	var buf bytes.Buffer
	f := NewRadius()
	testutil.T(t).Prepare(f, options.New().Add("classify", false))
	f.log = logger.NewWriter(&buf, zerolog.WarnLevel)

	in := clusterWithStray()
	out, err := f.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Contains(in) || in.Size() != 26 {
		t.Error("expected the input unchanged")
	}
	if !strings.Contains(buf.String(), "neither classify nor extract") {
		t.Errorf("expected a warning, got %q", buf.String())
	}
}

func TestRadius_WouldRemoveAll(t *testing.T) {
	var buf bytes.Buffer
	f := NewRadius()
	testutil.T(t).Prepare(f, options.New().Add("min_neighbors", 50).Add("extract", true))
	f.log = logger.NewWriter(&buf, zerolog.WarnLevel)

	in := clusterWithStray()
	out, err := f.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 || !out.Contains(in) {
		t.Fatal("expected the input to be returned unchanged")
	}
	if !strings.Contains(buf.String(), "would remove all points") {
		t.Errorf("expected a warning, got %q", buf.String())
	}
}

func TestFilters_EmptyInput(t *testing.T) {
	for _, d := range []stage.Driver{NewStatistical(), NewRadius()} {
		in := testutil.View(testutil.NewTable())
		out, err := d.Run(context.Background(), in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !out.Contains(in) {
			t.Error("expected the empty input back")
		}
	}
}

func TestArgs_Decode(t *testing.T) {
	f := NewStatistical()
	testutil.T(t).Prepare(f, options.New().Add("multiplier", "3.5").Add("classify", "false"))
	want := StatisticalArgs{MeanK: 8, Multiplier: 3.5}
	if diff := cmp.Diff(want, f.args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}

	_, err := testutil.T(t).TryPrepare(NewRadius(), options.New().Add("radius", 0))
	if err == nil {
		t.Error("expected radius 0 to be rejected")
	}
}

func TestInfo_CardinalityOne(t *testing.T) {
	for _, info := range []stage.DriverInfo{StatisticalInfo(), RadiusInfo()} {
		if info.Inputs != stage.CardinalityOne {
			t.Errorf("%s: expected cardinality one, got %s", info.Name, info.Inputs)
		}
	}
}
