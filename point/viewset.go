package point

import (
	"cmp"
	"slices"
	"sync"
)

// ViewSet is an identity set of views. Inserting a view twice is a no-op.
// It is safe for concurrent use.
type ViewSet struct {
	mu    sync.RWMutex
	views map[uint64]*View
}

// NewViewSet returns a set holding views.
func NewViewSet(views ...*View) *ViewSet {
	s := &ViewSet{views: make(map[uint64]*View, len(views))}
	for _, v := range views {
		s.Insert(v)
	}
	return s
}

// Insert adds v. Nil views are ignored.
func (s *ViewSet) Insert(v *View) {
	if v == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.views == nil {
		s.views = make(map[uint64]*View)
	}
	s.views[v.id] = v
}

// Erase removes v.
func (s *ViewSet) Erase(v *View) {
	if v == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.views, v.id)
}

// Contains reports whether v is a member.
func (s *ViewSet) Contains(v *View) bool {
	if v == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.views[v.id]
	return ok
}

// Len returns the number of views.
func (s *ViewSet) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}

// Views returns the members ordered by view id.
func (s *ViewSet) Views() []*View {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	out := make([]*View, 0, len(s.views))
	for _, v := range s.views {
		out = append(out, v)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b *View) int { return cmp.Compare(a.id, b.id) })
	return out
}

// Union inserts every member of other.
func (s *ViewSet) Union(other *ViewSet) *ViewSet {
	for _, v := range other.Views() {
		s.Insert(v)
	}
	return s
}

// PointCount returns the total number of points across all members.
func (s *ViewSet) PointCount() int {
	n := 0
	for _, v := range s.Views() {
		n += v.Size()
	}
	return n
}
