package point

import (
	"strings"
	"sync"
)

// Layout is the ordered set of dimensions registered on a table.
type Layout struct {
	mu        sync.RWMutex
	dims      []Dim
	has       map[Dim]bool
	userNames map[Dim]string
	userIDs   map[string]Dim
	next      Dim
}

// NewLayout returns a layout holding dims.
func NewLayout(dims ...Dim) *Layout {
	l := &Layout{
		has:       make(map[Dim]bool),
		userNames: make(map[Dim]string),
		userIDs:   make(map[string]Dim),
		next:      firstUserDim,
	}
	l.Register(dims...)
	return l
}

// Register adds dims that are not yet present, keeping first-registered order.
func (l *Layout) Register(dims ...Dim) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, d := range dims {
		if d == DimUnknown || l.has[d] {
			continue
		}
		l.has[d] = true
		l.dims = append(l.dims, d)
	}
}

// RegisterName resolves name to a built-in dimension or allocates a user
// dimension for it, registering the result.
func (l *Layout) RegisterName(name string) Dim {
	if d, ok := DimByName(name); ok {
		l.Register(d)
		return d
	}
	l.mu.Lock()
	key := strings.ToLower(name)
	d, ok := l.userIDs[key]
	if !ok {
		d = l.next
		l.next++
		l.userIDs[key] = d
		l.userNames[d] = name
	}
	l.mu.Unlock()
	l.Register(d)
	return d
}

// Find resolves name without registering it.
func (l *Layout) Find(name string) (Dim, bool) {
	if d, ok := DimByName(name); ok {
		return d, l.Has(d)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.userIDs[strings.ToLower(name)]
	return d, ok && l.has[d]
}

// Has reports whether d is registered.
func (l *Layout) Has(d Dim) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.has[d]
}

// Dims returns the registered dimensions in registration order.
func (l *Layout) Dims() []Dim {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Dim, len(l.dims))
	copy(out, l.dims)
	return out
}

// DimName returns the name of d, including user dimensions.
func (l *Layout) DimName(d Dim) string {
	if d.Builtin() {
		return d.Name()
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.userNames[d]
}
