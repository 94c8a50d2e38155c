package stage

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kbukum/pointflow/errors"
	"github.com/kbukum/pointflow/options"
)

// DriverInfo describes a registered driver.
type DriverInfo struct {
	// Name is the stage type, e.g. "readers.text".
	Name        string
	Role        Role
	Description string
	// Extensions are the lower-case file extensions, with leading dot, the
	// driver is inferred for.
	Extensions []string
	// Inputs is the driver's input cardinality. Zero means the role default.
	Inputs Cardinality
	// New creates a fresh driver instance.
	New func() Driver
	// InferOptions returns options implied by a filename, e.g. a delimiter
	// for ".csv". May be nil.
	InferOptions func(filename string) *options.Options
}

// Registry maps driver names to their descriptions.
type Registry struct {
	mu      sync.RWMutex
	drivers map[string]DriverInfo
	loader  PluginLoader
	plugins map[string]bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithPluginLoader replaces the loader used by LoadPlugin.
func WithPluginLoader(l PluginLoader) RegistryOption {
	return func(r *Registry) { r.loader = l }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		drivers: make(map[string]DriverInfo),
		loader:  GoPluginLoader{},
		plugins: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a driver. Registering a name twice is an error.
func (r *Registry) Register(info DriverInfo) error {
	if info.Name == "" {
		return errors.DriverResolution("driver name is required")
	}
	if info.New == nil {
		return errors.DriverResolution(fmt.Sprintf("driver %s has no constructor", info.Name))
	}
	if info.Role == 0 {
		info.Role = RoleOf(info.Name)
	}
	exts := make([]string, len(info.Extensions))
	for i, ext := range info.Extensions {
		exts[i] = strings.ToLower(ext)
	}
	info.Extensions = exts

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drivers[info.Name]; ok {
		return errors.DriverResolution(fmt.Sprintf("driver %s already registered", info.Name)).
			WithDetail("driver", info.Name)
	}
	r.drivers[info.Name] = info
	return nil
}

// MustRegister is Register that panics on error. Intended for built-ins.
func (r *Registry) MustRegister(infos ...DriverInfo) {
	for _, info := range infos {
		if err := r.Register(info); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the description of a driver.
func (r *Registry) Lookup(name string) (DriverInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.drivers[name]
	return info, ok
}

// New creates a stage backed by a fresh instance of the named driver.
func (r *Registry) New(name string) (*Stage, error) {
	info, ok := r.Lookup(name)
	if !ok {
		return nil, errors.UnknownDriver(name)
	}
	return &Stage{
		Type:        info.Name,
		Role:        info.Role,
		Options:     options.New(),
		Driver:      info.New(),
		Cardinality: info.Inputs,
	}, nil
}

// InferReader returns the name of the reader handling filename.
func (r *Registry) InferReader(filename string) (string, error) {
	return r.infer(filename, RoleReader)
}

// InferWriter returns the name of the writer handling filename.
func (r *Registry) InferWriter(filename string) (string, error) {
	return r.infer(filename, RoleWriter)
}

func (r *Registry) infer(filename string, role Role) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "", errors.DriverResolution(fmt.Sprintf("cannot infer %s for %q: no extension", role, filename)).
			WithDetail("filename", filename)
	}
	for _, info := range r.List(role) {
		for _, e := range info.Extensions {
			if e == ext {
				return info.Name, nil
			}
		}
	}
	return "", errors.DriverResolution(fmt.Sprintf("cannot infer %s for %q", role, filename)).
		WithDetail("filename", filename)
}

// List returns the drivers of role sorted by name. A zero role lists all.
func (r *Registry) List(role Role) []DriverInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]DriverInfo, 0, len(r.drivers))
	for _, info := range r.drivers {
		if role == 0 || info.Role == role {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the sorted names of all registered drivers.
func (r *Registry) Names() []string {
	infos := r.List(0)
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}

// LoadPlugin loads the plugin at path and lets it register its drivers.
// Loading the same path twice is a no-op.
func (r *Registry) LoadPlugin(path string) error {
	r.mu.Lock()
	if r.plugins[path] {
		r.mu.Unlock()
		return nil
	}
	loader := r.loader
	r.mu.Unlock()

	register, err := loader.Load(path)
	if err != nil {
		return errors.PluginLoad(path, err)
	}
	if err := register(r); err != nil {
		return errors.PluginLoad(path, err)
	}

	r.mu.Lock()
	r.plugins[path] = true
	r.mu.Unlock()
	return nil
}
