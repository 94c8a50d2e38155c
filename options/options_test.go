package options

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/pointflow/errors"
)

func TestOptions_AddKeepsEarlierValues(t *testing.T) {
	o := New()
	o.Add("where", "a").Add("where", "b")

	if o.Len() != 2 {
		t.Fatalf("expected 2 values, got %d", o.Len())
	}
	v, ok := o.Get("where")
	if !ok || v != "b" {
		t.Errorf("expected last value b, got %v", v)
	}
	if diff := cmp.Diff([]any{"a", "b"}, o.GetAll("where")); diff != "" {
		t.Errorf("GetAll mismatch (-want +got):\n%s", diff)
	}
}

func TestOptions_Replace(t *testing.T) {
	o := New(Option{Name: "length", Value: "1"}, Option{Name: "length", Value: "2"})
	o.Replace("length", "3")

	if diff := cmp.Diff([]any{"3"}, o.GetAll("length")); diff != "" {
		t.Errorf("Replace mismatch (-want +got):\n%s", diff)
	}
}

func TestOptions_MergeIsAdditive(t *testing.T) {
	base := New().Add("debug", "false").Add("verbose", "1")
	stage := New().Add("verbose", "3")

	merged := base.Clone().Merge(stage)
	if merged.Len() != 3 {
		t.Fatalf("expected 3 values, got %d", merged.Len())
	}
	v, _ := merged.Int("verbose")
	if v != 3 {
		t.Errorf("expected merged verbose 3, got %d", v)
	}
	if base.Len() != 2 {
		t.Errorf("expected clone to leave base untouched, got %d", base.Len())
	}
}

func TestOptions_NamesFirstSeenOrder(t *testing.T) {
	o := New().Add("b", 1).Add("a", 2).Add("b", 3)
	if diff := cmp.Diff([]string{"b", "a"}, o.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
}

func TestOptions_Remove(t *testing.T) {
	o := New().Add("a", 1).Add("b", 2).Add("a", 3)
	o.Remove("a")
	if o.Has("a") {
		t.Error("expected a to be removed")
	}
	if !o.Has("b") {
		t.Error("expected b to remain")
	}
}

func TestOptions_TypedAccess(t *testing.T) {
	o := New().
		Add("length", " 12.5 ").
		Add("mean_k", "8").
		Add("classify", "true").
		Add("order", "X, Y ,Z").
		Add("dims", []any{"X", "Y"})

	length, err := o.Float64("length")
	if err != nil || length != 12.5 {
		t.Errorf("Float64: got %v, %v", length, err)
	}
	k, err := o.Int("mean_k")
	if err != nil || k != 8 {
		t.Errorf("Int: got %v, %v", k, err)
	}
	classify, err := o.Bool("classify")
	if err != nil || !classify {
		t.Errorf("Bool: got %v, %v", classify, err)
	}
	order, err := o.StringSlice("order")
	if err != nil {
		t.Fatalf("StringSlice: %v", err)
	}
	if diff := cmp.Diff([]string{"X", "Y", "Z"}, order); diff != "" {
		t.Errorf("StringSlice mismatch (-want +got):\n%s", diff)
	}
	dims, err := o.StringSlice("dims")
	if err != nil {
		t.Fatalf("StringSlice list: %v", err)
	}
	if diff := cmp.Diff([]string{"X", "Y"}, dims); diff != "" {
		t.Errorf("StringSlice list mismatch (-want +got):\n%s", diff)
	}
}

func TestOptions_TypedAccessErrors(t *testing.T) {
	o := New().Add("length", "abc")

	if _, err := o.Float64("length"); !errors.HasCode(err, errors.ErrCodeInvalidOption) {
		t.Errorf("expected INVALID_OPTION for bad float, got %v", err)
	}
	if _, err := o.Float64("missing"); !errors.HasCode(err, errors.ErrCodeInvalidOption) {
		t.Errorf("expected INVALID_OPTION for missing option, got %v", err)
	}
}

func TestOptions_OrVariants(t *testing.T) {
	o := New().Add("buffer", "2")

	buf, err := o.Float64Or("buffer", 0)
	if err != nil || buf != 2 {
		t.Errorf("Float64Or present: got %v, %v", buf, err)
	}
	length, err := o.Float64Or("length", 1000)
	if err != nil || length != 1000 {
		t.Errorf("Float64Or absent: got %v, %v", length, err)
	}
	s, _ := o.StringOr("mode", "constant")
	if s != "constant" {
		t.Errorf("StringOr absent: got %q", s)
	}
	b, _ := o.BoolOr("extract", false)
	if b {
		t.Error("BoolOr absent: expected false")
	}
	n, _ := o.IntOr("count", 10)
	if n != 10 {
		t.Errorf("IntOr absent: got %d", n)
	}
}

type gridArgs struct {
	Length  float64  `mapstructure:"length" validate:"gt=0"`
	Buffer  float64  `mapstructure:"buffer" validate:"gte=0"`
	OriginX float64  `mapstructure:"origin_x"`
	Enabled bool     `mapstructure:"enabled"`
	Dims    []string `mapstructure:"dims"`
}

func TestOptions_Decode(t *testing.T) {
	o := New().
		Add("length", "10").
		Add("buffer", "1").
		Add("buffer", "2").
		Add("enabled", "true").
		Add("dims", "X,Y")

	args := gridArgs{Length: 1000, OriginX: math.NaN()}
	if err := o.Decode(&args); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if args.Length != 10 {
		t.Errorf("expected length 10, got %v", args.Length)
	}
	if args.Buffer != 2 {
		t.Errorf("expected last buffer value 2, got %v", args.Buffer)
	}
	if !math.IsNaN(args.OriginX) {
		t.Errorf("expected absent origin_x to keep its default, got %v", args.OriginX)
	}
	if !args.Enabled {
		t.Error("expected enabled")
	}
	if diff := cmp.Diff([]string{"X", "Y"}, args.Dims); diff != "" {
		t.Errorf("dims mismatch (-want +got):\n%s", diff)
	}
}

func TestOptions_DecodeValidates(t *testing.T) {
	o := New().Add("length", "0")

	_, err := Decode(o, gridArgs{Length: 1000})
	if !errors.HasCode(err, errors.ErrCodeInvalidOption) {
		t.Fatalf("expected INVALID_OPTION, got %v", err)
	}
}

func TestOptions_DecodeBadValue(t *testing.T) {
	o := New().Add("length", "ten")

	_, err := Decode(o, gridArgs{Length: 1000})
	if !errors.HasCode(err, errors.ErrCodeInvalidOption) {
		t.Fatalf("expected INVALID_OPTION, got %v", err)
	}
}
