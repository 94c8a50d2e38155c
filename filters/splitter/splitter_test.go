package splitter

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/pointflow/errors"
	"github.com/kbukum/pointflow/options"
	"github.com/kbukum/pointflow/point"
	"github.com/kbukum/pointflow/testutil"
)

func argsWith(length, buffer float64) Args {
	a := DefaultArgs()
	a.Length, a.Buffer = length, buffer
	return a
}

func cellsOf(tiles []Tile) []Cell {
	out := make([]Cell, len(tiles))
	for i, t := range tiles {
		out[i] = t.Cell
	}
	return out
}

func xs(v *point.View) []float64 {
	out := make([]float64, v.Size())
	for i := range out {
		out[i] = v.Field(point.DimX, point.PointID(i))
	}
	return out
}

func TestSplit_FourCells(t *testing.T) {
	in := testutil.View(testutil.NewTable(),
		[3]float64{1, 1, 0}, [3]float64{11, 1, 0}, [3]float64{1, 11, 0}, [3]float64{19, 19, 0})

	tiles := Split(in, argsWith(10, 0))

	want := []Cell{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	if diff := cmp.Diff(want, cellsOf(tiles)); diff != "" {
		t.Fatalf("cells mismatch (-want +got):\n%s", diff)
	}
	for _, tile := range tiles {
		if tile.View.Size() != 1 {
			t.Errorf("cell %v: expected 1 point, got %d", tile.Cell, tile.View.Size())
		}
		if tile.View.Table() != in.Table() {
			t.Errorf("cell %v: expected output to share the input table", tile.Cell)
		}
	}
}

func TestSplit_Empty(t *testing.T) {
	in := testutil.View(testutil.NewTable())
	if tiles := Split(in, argsWith(10, 5)); len(tiles) != 0 {
		t.Fatalf("expected no tiles, got %d", len(tiles))
	}
}

func TestSplit_PartitionWithoutBuffer(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	coords := make([][3]float64, 500)
	for i := range coords {
		coords[i] = [3]float64{r.Float64()*95 - 20, r.Float64()*60 + 3, 0}
	}
	in := testutil.View(testutil.NewTable(), coords...)
	args := argsWith(7.5, 0)

	tiles := Split(in, args)

	b := in.Bounds()
	ox := ResolveOrigin(args.OriginX, b.MinX, args.Length)
	oy := ResolveOrigin(args.OriginY, b.MinY, args.Length)
	seen := make(map[int]int)
	occupied := make(map[Cell]bool)
	for _, tile := range tiles {
		minX := ox + float64(tile.Cell.X)*args.Length
		minY := oy + float64(tile.Cell.Y)*args.Length
		for i, row := range tile.View.Rows() {
			seen[row]++
			x, y, _ := tile.View.XYZ(point.PointID(i))
			if x < minX || x >= minX+args.Length || y < minY || y >= minY+args.Length {
				t.Errorf("point (%v, %v) outside cell %v", x, y, tile.Cell)
			}
		}
		occupied[tile.Cell] = true
	}
	if len(seen) != in.Size() {
		t.Fatalf("expected every point to be assigned, got %d of %d", len(seen), in.Size())
	}
	for row, n := range seen {
		if n != 1 {
			t.Errorf("row %d assigned to %d cells", row, n)
		}
	}
	if len(occupied) != len(tiles) {
		t.Errorf("expected one view per occupied cell, got %d views for %d cells", len(tiles), len(occupied))
	}
}

func TestSplit_Buffer(t *testing.T) {
	in := testutil.View(testutil.NewTable(),
		[3]float64{0, 0, 0}, [3]float64{12, 0, 0}, [3]float64{20, 0, 0})

	tiles := Split(in, argsWith(10, 2))

	if diff := cmp.Diff([]Cell{{0, 0}, {1, 0}, {2, 0}}, cellsOf(tiles)); diff != "" {
		t.Fatalf("cells mismatch (-want +got):\n%s", diff)
	}
	want := [][]float64{
		{0},
		{0, 12, 20},
		{12, 20},
	}
	for i, tile := range tiles {
		if diff := cmp.Diff(want[i], xs(tile.View)); diff != "" {
			t.Errorf("cell %v members mismatch (-want +got):\n%s", tile.Cell, diff)
		}
	}
}

func TestSplit_BufferLargerThanLength(t *testing.T) {
	in := testutil.View(testutil.NewTable(),
		[3]float64{0, 0, 0}, [3]float64{5, 0, 0}, [3]float64{35, 0, 0})

	tiles := Split(in, argsWith(5, 12))

	// Every point reaches at least two cells each way, clipped to [0, 7].
	counts := map[Cell]int{}
	for _, tile := range tiles {
		counts[tile.Cell] = tile.View.Size()
		if tile.Cell.X < 0 || tile.Cell.X > 7 || tile.Cell.Y != 0 {
			t.Errorf("cell %v outside the data extent", tile.Cell)
		}
	}
	if counts[Cell{0, 0}] != 2 || counts[Cell{1, 0}] != 2 {
		t.Errorf("expected first cells to hold both near points, got %v", counts)
	}
	if counts[Cell{7, 0}] != 1 {
		t.Errorf("expected the last cell to hold only the far point, got %v", counts)
	}
}

func TestSplit_FixedOrigin(t *testing.T) {
	in := testutil.View(testutil.NewTable(), [3]float64{1, 1, 0}, [3]float64{6, 1, 0})

	args := argsWith(10, 0)
	if got := len(Split(in, args)); got != 1 {
		t.Fatalf("expected 1 tile with the default origin, got %d", got)
	}
	args.OriginX, args.OriginY = 5, 0
	tiles := Split(in, args)
	if diff := cmp.Diff([]Cell{{0, 0}, {1, 0}}, cellsOf(tiles)); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveOrigin(t *testing.T) {
	tests := []struct {
		name                string
		origin, min, length float64
		want                float64
	}{
		{"unset", math.NaN(), 3, 10, 3},
		{"below min", -4, 3, 10, -4},
		{"equal min", 3, 3, 10, 3},
		{"above min", 25, 3, 10, -5},
		{"whole cells above", 23, 3, 10, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveOrigin(tt.origin, tt.min, tt.length); got != tt.want {
				t.Errorf("ResolveOrigin(%v, %v, %v) = %v, want %v", tt.origin, tt.min, tt.length, got, tt.want)
			}
		})
	}
}

func TestResolveOrigin_FixedPoint(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		min := r.Float64()*2000 - 1000
		length := r.Float64()*50 + 0.01
		origin := r.Float64()*4000 - 2000

		once := ResolveOrigin(origin, min, length)
		if once > min {
			t.Fatalf("origin %v resolved to %v, above min %v", origin, once, min)
		}
		if twice := ResolveOrigin(once, min, length); twice != once {
			t.Fatalf("resolution is not a fixed point: %v -> %v -> %v", origin, once, twice)
		}
	}
}

func TestFilter_Run(t *testing.T) {
	f := New()
	testutil.T(t).Prepare(f, options.New().Add("length", "10"))

	in := testutil.View(testutil.NewTable(),
		[3]float64{1, 1, 0}, [3]float64{11, 1, 0}, [3]float64{1, 11, 0}, [3]float64{19, 19, 0})
	out, err := f.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]int{1, 1, 1, 1}, testutil.Sizes(out)); diff != "" {
		t.Errorf("sizes mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter_Options(t *testing.T) {
	f := New()
	testutil.T(t).Prepare(f, options.New().Add("length", 25).Add("buffer", "1.5").Add("origin_x", "-3"))
	if f.args.Length != 25 || f.args.Buffer != 1.5 || f.args.OriginX != -3 || !math.IsNaN(f.args.OriginY) {
		t.Errorf("unexpected args %+v", f.args)
	}
}

func TestFilter_InvalidOptions(t *testing.T) {
	tests := map[string]*options.Options{
		"zero length":     options.New().Add("length", 0),
		"negative buffer": options.New().Add("buffer", -1),
		"not a number":    options.New().Add("length", "wide"),
	}
	for name, opts := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := testutil.T(t).TryPrepare(New(), opts)
			if !errors.HasCode(err, errors.ErrCodeInvalidOption) {
				t.Fatalf("expected INVALID_OPTION, got %v", err)
			}
		})
	}
}
