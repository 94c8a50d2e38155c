package stage

import (
	"fmt"
	"plugin"
)

// RegisterSymbol is the function a driver plugin must export.
const RegisterSymbol = "RegisterDrivers"

// RegisterFunc registers a plugin's drivers.
type RegisterFunc func(*Registry) error

// PluginLoader opens a plugin and returns its registration function.
type PluginLoader interface {
	Load(path string) (RegisterFunc, error)
}

// PluginLoaderFunc adapts a function to a PluginLoader.
type PluginLoaderFunc func(path string) (RegisterFunc, error)

func (f PluginLoaderFunc) Load(path string) (RegisterFunc, error) { return f(path) }

// GoPluginLoader loads shared objects built with -buildmode=plugin.
type GoPluginLoader struct{}

func (GoPluginLoader) Load(path string) (RegisterFunc, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	sym, err := p.Lookup(RegisterSymbol)
	if err != nil {
		return nil, err
	}
	switch fn := sym.(type) {
	case func(*Registry) error:
		return fn, nil
	case *func(*Registry) error:
		return *fn, nil
	default:
		return nil, fmt.Errorf("symbol %s has type %T, want func(*stage.Registry) error", RegisterSymbol, sym)
	}
}
