package library

import (
	"fmt"
	"sync"
)

// Registry is the process-wide, read-mostly catalog of Components,
// Packages and Devices (spec §5, §6). Writes only happen during library
// load; compile only reads. A sync.RWMutex is sufficient per spec §5 ("if
// multithreading is added later, a read-write lock suffices").
type Registry struct {
	mu                 sync.RWMutex
	components         map[string]*Component
	packages           map[string]*Package
	devices            map[string]*Device
	devicesByComponent map[string][]*Device
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		components:         map[string]*Component{},
		packages:           map[string]*Package{},
		devices:            map[string]*Device{},
		devicesByComponent: map[string][]*Device{},
	}
}

// RegisterComponent adds c to the registry. Returns an error if a
// Component with that name is already registered (pycircuit's
// Component.register_component).
func (r *Registry) RegisterComponent(c *Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.components[c.Name]; exists {
		return fmt.Errorf("component with name %s already registered", c.Name)
	}
	r.components[c.Name] = c
	return nil
}

// ComponentByName looks up a registered Component by name.
func (r *Registry) ComponentByName(name string) (*Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[name]
	return c, ok
}

// RegisterPackage adds p to the registry. Returns an error if a Package
// with that name is already registered.
func (r *Registry) RegisterPackage(p *Package) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.packages[p.Name]; exists {
		return fmt.Errorf("package with name %s already registered", p.Name)
	}
	r.packages[p.Name] = p
	return nil
}

// PackageByName looks up a registered Package by name.
func (r *Registry) PackageByName(name string) (*Package, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.packages[name]
	return p, ok
}

// RegisterDevice builds a Device from a named, already-registered
// Component and Package plus a raw Pin↔Pad mapping, checks it for
// completeness, and adds it to the registry (pycircuit's Device.__init__ +
// register_device). Returns ErrIncompleteDeviceMapping (wrapped) if the
// mapping omits any Pin (an optional Pin left without a Pad still needs an
// entry with PadName "") or any Pad.
func (r *Registry) RegisterDevice(name, componentName, packageName string, maps []PadPinMap) (*Device, error) {
	component, ok := r.ComponentByName(componentName)
	if !ok {
		return nil, fmt.Errorf("device %s: unknown component %s", name, componentName)
	}
	pkg, ok := r.PackageByName(packageName)
	if !ok {
		return nil, fmt.Errorf("device %s: unknown package %s", name, packageName)
	}

	d, err := newDevice(name, component, pkg, maps)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.devices[name]; exists {
		return nil, fmt.Errorf("device with name %s already registered", name)
	}
	r.devices[name] = d
	r.devicesByComponent[componentName] = append(r.devicesByComponent[componentName], d)
	return d, nil
}

// DeviceByName looks up a registered Device by name.
func (r *Registry) DeviceByName(name string) (*Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[name]
	return d, ok
}

// DevicesByComponent returns every Device registered for the named
// Component, in registration order (the "deterministic order of
// declaration" spec §4.4 relies on for its fallback picks).
func (r *Registry) DevicesByComponent(componentName string) []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	devs := r.devicesByComponent[componentName]
	out := make([]*Device, len(devs))
	copy(out, devs)
	return out
}
