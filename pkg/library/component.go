// Package library holds the process-wide, read-mostly catalogs of
// Components, Packages and Devices that the compiler core looks up by name
// but never mutates (spec §2, §5, §6): "the core only reads."
package library

import "fmt"

// PinType is the electrical role a Pin plays, from spec §3's
// {POWER, GND, IN, OUT, INOUT, UNKNOWN} enumeration.
type PinType int

const (
	UNKNOWN PinType = iota
	POWER
	GND
	IN
	OUT
	INOUT
)

func (t PinType) String() string {
	switch t {
	case POWER:
		return "power"
	case GND:
		return "gnd"
	case IN:
		return "in"
	case OUT:
		return "out"
	case INOUT:
		return "inout"
	default:
		return "unknown"
	}
}

// ParsePinType maps a KiCad-style or pycircuit-style lowercase pin-type
// string onto PinType. Unrecognized strings map to UNKNOWN.
func ParsePinType(s string) PinType {
	switch s {
	case "power", "power_in", "power_out":
		return POWER
	case "gnd":
		return GND
	case "in", "input":
		return IN
	case "out", "output":
		return OUT
	case "inout", "bidirectional", "passive":
		return INOUT
	default:
		return UNKNOWN
	}
}

// Function is a named role a Pin can play (spec §3, GLOSSARY). A Function
// with a non-empty Bus belongs to a named bus group shared with other
// Functions on other Pins of the same Component; ID and BusID are derived
// at registration time the same way pycircuit's Component.add_pin assigns
// them: IDs are dense indices into the Component's flattened function list,
// and BusID is the shared index of Bus within Component.Busses for bus
// functions, or a unique negative number (-ID-1) for non-bus functions.
type Function struct {
	Name  string
	Bus   string
	ID    int
	BusID int
	PinID int
}

// IsBus reports whether this Function belongs to a named bus group.
func (f Function) IsBus() bool { return f.Bus != "" }

// Fun declares a plain, non-bus Function.
func Fun(function string) Function {
	return Function{Name: function}
}

// BusFun declares a Function that shares a bus group named bus with any
// other BusFun sharing that name on the same Component.
func BusFun(bus, function string) Function {
	return Function{Name: function, Bus: bus}
}

// Pin is a named terminal of a Component (spec §3).
type Pin struct {
	ID          int
	Name        string
	Type        PinType
	Funs        []Function
	Optional    bool
	Description string
	// Voltage is a raw voltage string in the grammar erc.ParseVoltage
	// accepts ("gnd", "vcc", "vee", "3.3V", "V3.3", "3V3", "0V", ...), or ""
	// if this Pin carries no declared voltage. Set by component authors on
	// POWER/GND pins so §4.5's net-type classification has something to
	// read; not present in original_source/pycircuit, which has no voltage
	// concept — added here because spec.md §4.5/§6 requires one.
	Voltage string
}

// pinConfig collects the keyword-style options pycircuit's Pin.__init__
// accepted via **kwargs, plus Voltage (a circuitcore addition, see Pin.Voltage).
type pinConfig struct {
	optional    bool
	description string
	voltage     string
}

// PinOption configures an optional attribute of a Pin built with NewPin.
type PinOption func(*pinConfig)

// Required marks a Pin as non-optional; every Device for the owning
// Component must bind it to a Pad (spec §4.3's MissingRequiredPin check).
// Pins are optional by default, matching pycircuit's Pin.__init__ default.
func Required() PinOption {
	return func(c *pinConfig) { c.optional = false }
}

// Description attaches human-readable documentation to a Pin.
func Description(s string) PinOption {
	return func(c *pinConfig) { c.description = s }
}

// Voltage attaches a raw voltage string (spec §4.5/§6 grammar) to a Pin, for
// §4.5's preliminary net-type classification to read.
func Voltage(s string) PinOption {
	return func(c *pinConfig) { c.voltage = s }
}

// NewPin builds a Pin with the given name, type and Functions. When no
// Functions are given, a single non-bus Function named after the Pin is
// added, matching pycircuit's Pin.__init__ default.
func NewPin(name string, typ PinType, funs []Function, opts ...PinOption) Pin {
	cfg := pinConfig{optional: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(funs) == 0 {
		funs = []Function{Fun(name)}
	}
	return Pin{
		Name:        name,
		Type:        typ,
		Funs:        append([]Function(nil), funs...),
		Optional:    cfg.optional,
		Description: cfg.description,
		Voltage:     cfg.voltage,
	}
}

// Pwr is shorthand for a POWER-type Pin.
func Pwr(name string, opts ...PinOption) Pin { return NewPin(name, POWER, nil, opts...) }

// Gnd is shorthand for a GND-type Pin.
func Gnd(name string, opts ...PinOption) Pin { return NewPin(name, GND, nil, opts...) }

// In is shorthand for an IN-type Pin.
func In(name string, funs []Function, opts ...PinOption) Pin {
	return NewPin(name, IN, funs, opts...)
}

// Out is shorthand for an OUT-type Pin.
func Out(name string, funs []Function, opts ...PinOption) Pin {
	return NewPin(name, OUT, funs, opts...)
}

// Io is shorthand for an INOUT-type Pin that always carries an implicit
// "GPIO" Function ahead of any caller-supplied Functions.
func Io(name string, funs []Function, opts ...PinOption) Pin {
	all := append([]Function{Fun("GPIO")}, funs...)
	return NewPin(name, INOUT, all, opts...)
}

// Component is an abstract electrical part with named Pins and Functions
// (spec §3, GLOSSARY).
type Component struct {
	Name        string
	Description string
	Pins        []Pin
	Funs        []Function
	Busses      []string

	functions map[string]bool
}

// NewComponent builds and validates a Component from its Pins, assigning
// dense Pin/Function ids and deriving bus ids exactly as pycircuit's
// Component.add_pin does.
func NewComponent(name, description string, pins ...Pin) (*Component, error) {
	c := &Component{Name: name, Description: description, functions: map[string]bool{}}
	for _, p := range pins {
		if err := c.addPin(p); err != nil {
			return nil, err
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Component) addPin(p Pin) error {
	if c.PinByName(p.Name) != nil {
		return fmt.Errorf("component %s: duplicate pin name %q", c.Name, p.Name)
	}

	p.ID = len(c.Pins)
	funs := append([]Function(nil), p.Funs...)
	for i := range funs {
		fn := &funs[i]
		fn.ID = len(c.Funs)
		fn.PinID = p.ID

		if fn.IsBus() {
			busID := -1
			for bi, bus := range c.Busses {
				if bus == fn.Bus {
					busID = bi
					break
				}
			}
			if busID < 0 {
				busID = len(c.Busses)
				c.Busses = append(c.Busses, fn.Bus)
			}
			fn.BusID = busID
		} else {
			fn.BusID = -fn.ID - 1
		}

		c.functions[fn.Name] = true
		c.Funs = append(c.Funs, *fn)
	}
	p.Funs = funs
	c.Pins = append(c.Pins, p)
	return nil
}

// validate checks that no Function name is used by both a bus and a
// non-bus Function on this Component (pycircuit's Component.__init__
// post-check).
func (c *Component) validate() error {
	isBus := map[string]bool{}
	for _, fn := range c.Funs {
		if seen, ok := isBus[fn.Name]; ok {
			if seen != fn.IsBus() {
				return fmt.Errorf("component %s: function %q is used as both a bus and a non-bus function", c.Name, fn.Name)
			}
		} else {
			isBus[fn.Name] = fn.IsBus()
		}
	}
	return nil
}

// HasFunction reports whether any Pin of this Component declares the named
// Function.
func (c *Component) HasFunction(function string) bool {
	return c.functions[function]
}

// FunsByFunction returns every Function named function, across all Pins.
func (c *Component) FunsByFunction(function string) []Function {
	var out []Function
	for _, fn := range c.Funs {
		if fn.Name == function {
			out = append(out, fn)
		}
	}
	return out
}

// IsBusFunction reports whether function names a bus Function on this
// Component. Assumes FunsByFunction(function) is non-empty.
func (c *Component) IsBusFunction(function string) bool {
	funs := c.FunsByFunction(function)
	return len(funs) > 0 && funs[0].IsBus()
}

// PinByName returns the Pin named name, or nil if none exists.
func (c *Component) PinByName(name string) *Pin {
	for i := range c.Pins {
		if c.Pins[i].Name == name {
			return &c.Pins[i]
		}
	}
	return nil
}
