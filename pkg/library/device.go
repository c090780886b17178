package library

import "fmt"

// Point is a 2D coordinate of a Package's courtyard polygon.
type Point struct {
	X, Y float64
}

// Pad is a physical contact of a Package (spec §3, GLOSSARY).
type Pad struct {
	Name string
}

// Package is a physical footprint: an outline and ordered Pads (spec §3).
type Package struct {
	Name      string
	Courtyard []Point
	Pads      []Pad
}

// PadByName returns the Pad named name, or nil if none exists.
func (p *Package) PadByName(name string) *Pad {
	for i := range p.Pads {
		if p.Pads[i].Name == name {
			return &p.Pads[i]
		}
	}
	return nil
}

// NewPackage builds a Package from its ordered Pads.
func NewPackage(name string, courtyard []Point, pads ...Pad) *Package {
	return &Package{Name: name, Courtyard: courtyard, Pads: pads}
}

// PadPinMap is one entry of a Device's Pin↔Pad mapping, as supplied by a
// caller registering a Device. PadName == "" marks a Pin deliberately left
// unmapped — only legal when that Pin is Optional (mirrors pycircuit's
// Device.add_map, which asserts pin.optional when map.pad is None).
type PadPinMap struct {
	PadName string
	PinName string
}

// DeviceMap is one resolved Pin↔Pad binding. Pad is nil for a deliberately
// unmapped optional Pin.
type DeviceMap struct {
	Pin *Pin
	Pad *Pad
}

// Device binds a Component to a Package via a Pin↔Pad mapping (spec §3,
// GLOSSARY).
type Device struct {
	Name      string
	Component *Component
	Package   *Package
	Maps      []DeviceMap
}

// PinByPad returns the Pin mapped to the named Pad, or nil.
func (d *Device) PinByPad(padName string) *Pin {
	for _, m := range d.Maps {
		if m.Pad != nil && m.Pad.Name == padName {
			return m.Pin
		}
	}
	return nil
}

// PadsByPin returns every Pad mapped to the named Pin.
func (d *Device) PadsByPin(pinName string) []*Pad {
	var pads []*Pad
	for _, m := range d.Maps {
		if m.Pin != nil && m.Pin.Name == pinName && m.Pad != nil {
			pads = append(pads, m.Pad)
		}
	}
	return pads
}

// newDevice resolves raw PadPinMap entries against component and pkg and
// checks completeness: every Pin of component must appear in some map,
// and every Pad of pkg must appear in some map (pycircuit's
// Device.check_device). This runs at registration time, not at match time
// (SPEC_FULL §4.4), so a malformed library fails fast.
func newDevice(name string, component *Component, pkg *Package, rawMaps []PadPinMap) (*Device, error) {
	d := &Device{Name: name, Component: component, Package: pkg}

	for _, raw := range rawMaps {
		if raw.PadName == "" && raw.PinName == "" {
			return nil, fmt.Errorf("device %s: map entry has neither pad nor pin", name)
		}

		var pin *Pin
		if raw.PinName != "" {
			pin = component.PinByName(raw.PinName)
			if pin == nil {
				return nil, fmt.Errorf("device %s: pin %q not in component %s", name, raw.PinName, component.Name)
			}
		}

		var pad *Pad
		if raw.PadName != "" {
			pad = pkg.PadByName(raw.PadName)
			if pad == nil {
				return nil, fmt.Errorf("device %s: pad %q not in package %s", name, raw.PadName, pkg.Name)
			}
		}

		if pad == nil && (pin == nil || !pin.Optional) {
			return nil, fmt.Errorf("device %s: pin %q has no pad and is not optional", name, raw.PinName)
		}

		d.Maps = append(d.Maps, DeviceMap{Pin: pin, Pad: pad})
	}

	if err := d.checkComplete(); err != nil {
		return nil, err
	}
	return d, nil
}

// checkComplete implements pycircuit's Device.check_device: every Component
// Pin and every Package Pad must appear in some Map.
func (d *Device) checkComplete() error {
	for i := range d.Component.Pins {
		pin := &d.Component.Pins[i]
		mapped := false
		for _, m := range d.Maps {
			if m.Pin == pin {
				mapped = true
				break
			}
		}
		if !mapped {
			return fmt.Errorf("%w: component %s pin %s has no map in device %s",
				ErrIncompleteDeviceMapping, d.Component.Name, pin.Name, d.Name)
		}
	}
	for i := range d.Package.Pads {
		pad := &d.Package.Pads[i]
		mapped := false
		for _, m := range d.Maps {
			if m.Pad == pad {
				mapped = true
				break
			}
		}
		if !mapped {
			return fmt.Errorf("%w: package %s pad %s has no map in device %s",
				ErrIncompleteDeviceMapping, d.Package.Name, pad.Name, d.Name)
		}
	}
	return nil
}

// ErrIncompleteDeviceMapping is returned (wrapped) when a Device fails
// pycircuit's registration-time pin/pad completeness check.
var ErrIncompleteDeviceMapping = fmt.Errorf("incomplete device mapping")
