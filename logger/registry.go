package logger

import (
	"slices"
	"sync"
)

// named maps a name (usually a driver name such as "readers.text") to the
// logger the CLI or a plugin registered for it.
var named sync.Map

// Register stores l under name, replacing any previous entry.
func Register(name string, l *Logger) {
	named.Store(name, l)
}

// Lookup returns the logger registered under name, if any.
func Lookup(name string) (*Logger, bool) {
	v, ok := named.Load(name)
	if !ok {
		return nil, false
	}
	return v.(*Logger), true
}

// Get returns the logger registered under name. Unknown names get the global
// logger tagged with name as its component.
func Get(name string) *Logger {
	if l, ok := Lookup(name); ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// Unregister removes the logger stored under name.
func Unregister(name string) {
	named.Delete(name)
}

// Names lists the registered names in sorted order.
func Names() []string {
	var out []string
	named.Range(func(k, _ any) bool {
		out = append(out, k.(string))
		return true
	})
	slices.Sort(out)
	return out
}
