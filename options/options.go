package options

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/kbukum/pointflow/errors"
)

// Option is a single named value.
type Option struct {
	Name  string
	Value any
}

// String renders the option as name=value.
func (o Option) String() string {
	return fmt.Sprintf("%s=%v", o.Name, o.Value)
}

// Options is an ordered multimap of options. The zero value is ready to use.
type Options struct {
	items []Option
}

// New creates an option set holding opts in order.
func New(opts ...Option) *Options {
	o := &Options{}
	o.items = append(o.items, opts...)
	return o
}

// Add appends a value for name. Earlier values are kept.
func (o *Options) Add(name string, value any) *Options {
	o.items = append(o.items, Option{Name: name, Value: value})
	return o
}

// Replace drops every value of name and appends value.
func (o *Options) Replace(name string, value any) *Options {
	o.Remove(name)
	return o.Add(name, value)
}

// Remove drops every value of name.
func (o *Options) Remove(name string) {
	kept := o.items[:0]
	for _, item := range o.items {
		if item.Name != name {
			kept = append(kept, item)
		}
	}
	o.items = kept
}

// Merge appends every option of other, in order. Nothing is erased.
func (o *Options) Merge(other *Options) *Options {
	if other == nil {
		return o
	}
	o.items = append(o.items, other.items...)
	return o
}

// Clone returns an independent copy.
func (o *Options) Clone() *Options {
	c := &Options{items: make([]Option, len(o.items))}
	copy(c.items, o.items)
	return c
}

// Len returns the number of stored values.
func (o *Options) Len() int { return len(o.items) }

// All returns every option in insertion order.
func (o *Options) All() []Option {
	out := make([]Option, len(o.items))
	copy(out, o.items)
	return out
}

// Has reports whether name has at least one value.
func (o *Options) Has(name string) bool {
	_, ok := o.Get(name)
	return ok
}

// Get returns the most recently added value of name.
func (o *Options) Get(name string) (any, bool) {
	for i := len(o.items) - 1; i >= 0; i-- {
		if o.items[i].Name == name {
			return o.items[i].Value, true
		}
	}
	return nil, false
}

// GetAll returns every value of name in insertion order.
func (o *Options) GetAll(name string) []any {
	var out []any
	for _, item := range o.items {
		if item.Name == name {
			out = append(out, item.Value)
		}
	}
	return out
}

// Names returns distinct option names in first-seen order.
func (o *Options) Names() []string {
	seen := make(map[string]bool, len(o.items))
	var names []string
	for _, item := range o.items {
		if !seen[item.Name] {
			seen[item.Name] = true
			names = append(names, item.Name)
		}
	}
	return names
}

// Map returns the last value of each option keyed by name.
func (o *Options) Map() map[string]any {
	m := make(map[string]any, len(o.items))
	for _, item := range o.items {
		m[item.Name] = item.Value
	}
	return m
}

// Describe renders the set as space separated name=value pairs.
func (o *Options) Describe() string {
	parts := make([]string, len(o.items))
	for i, item := range o.items {
		parts[i] = item.String()
	}
	return strings.Join(parts, " ")
}

// --- Typed access ---

// String returns the value of name as a string.
func (o *Options) String(name string) (string, error) {
	return typed(o, name, cast.ToStringE)
}

// Float64 returns the value of name as a float64.
func (o *Options) Float64(name string) (float64, error) {
	return typed(o, name, func(v any) (float64, error) {
		if s, ok := v.(string); ok {
			v = strings.TrimSpace(s)
		}
		return cast.ToFloat64E(v)
	})
}

// Int returns the value of name as an int.
func (o *Options) Int(name string) (int, error) {
	return typed(o, name, func(v any) (int, error) {
		if s, ok := v.(string); ok {
			v = strings.TrimSpace(s)
		}
		return cast.ToIntE(v)
	})
}

// Bool returns the value of name as a bool.
func (o *Options) Bool(name string) (bool, error) {
	return typed(o, name, func(v any) (bool, error) {
		if s, ok := v.(string); ok {
			v = strings.TrimSpace(s)
		}
		return cast.ToBoolE(v)
	})
}

// StringSlice returns the value of name as a list. A plain string is split
// on commas.
func (o *Options) StringSlice(name string) ([]string, error) {
	return typed(o, name, toStringSlice)
}

// StringOr returns the value of name as a string, or def when absent.
func (o *Options) StringOr(name, def string) (string, error) {
	if !o.Has(name) {
		return def, nil
	}
	return o.String(name)
}

// Float64Or returns the value of name as a float64, or def when absent.
func (o *Options) Float64Or(name string, def float64) (float64, error) {
	if !o.Has(name) {
		return def, nil
	}
	return o.Float64(name)
}

// IntOr returns the value of name as an int, or def when absent.
func (o *Options) IntOr(name string, def int) (int, error) {
	if !o.Has(name) {
		return def, nil
	}
	return o.Int(name)
}

// BoolOr returns the value of name as a bool, or def when absent.
func (o *Options) BoolOr(name string, def bool) (bool, error) {
	if !o.Has(name) {
		return def, nil
	}
	return o.Bool(name)
}

func typed[T any](o *Options, name string, conv func(any) (T, error)) (T, error) {
	var zero T
	v, ok := o.Get(name)
	if !ok {
		return zero, errors.InvalidOption(name, fmt.Sprintf("option %q not set", name))
	}
	out, err := conv(v)
	if err != nil {
		return zero, errors.InvalidOption(name, fmt.Sprintf("option %q has value %v of the wrong type", name, v)).WithCause(err)
	}
	return out, nil
}

func toStringSlice(v any) ([]string, error) {
	if s, ok := v.(string); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	}
	return cast.ToStringSliceE(v)
}
