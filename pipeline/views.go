package pipeline

import (
	"context"

	"github.com/kbukum/pointflow/point"
)

// FromViewSet yields the views of set in view id order.
func FromViewSet(set *point.ViewSet) *Pipeline[*point.View] {
	return FromSlice(set.Views())
}

// Flatten yields every view of every set.
func Flatten(p *Pipeline[*point.ViewSet]) *Pipeline[*point.View] {
	return FlatMap(p, func(_ context.Context, s *point.ViewSet) ([]*point.View, error) {
		return s.Views(), nil
	})
}

// UnionSets pulls every set and returns their union.
func UnionSets(ctx context.Context, p *Pipeline[*point.ViewSet]) (*point.ViewSet, error) {
	return Reduce(ctx, Flatten(p), point.NewViewSet(), func(acc *point.ViewSet, v *point.View) *point.ViewSet {
		acc.Insert(v)
		return acc
	})
}

// RunViews calls fn for each view pulled from views, with up to workers
// concurrent calls, and returns the union of the sets it produced.
func RunViews(ctx context.Context, views *Pipeline[*point.View], workers int,
	fn func(context.Context, *point.View) (*point.ViewSet, error)) (*point.ViewSet, error) {
	out, err := UnionSets(ctx, Parallel(views, workers, fn))
	if err != nil {
		return nil, err
	}
	return out, nil
}
