// Package circuit implements the Circuit IR (spec §3) and the builder
// contract that constructs it (spec §4.1). Ownership follows the arena
// redesign of spec §9: a Circuit owns uid-indexed slices of its children;
// cross-references between elements (Net↔Assign↔Inst, Port↔PortAssign) are
// resolved through a Builder's uid-keyed lookup tables, never through
// pointers that would form ownership cycles.
package circuit

import (
	"github.com/openpcb/circuitcore/pkg/ids"
	"github.com/openpcb/circuitcore/pkg/library"
)

// NetType classifies a Net's electrical kind (spec §3). Set in place during
// ERC (§4.5); SIGNAL is the zero value and the default before analysis.
type NetType int

const (
	SIGNAL NetType = iota
	VCC
	VEE
	GND
)

func (t NetType) String() string {
	switch t {
	case VCC:
		return "vcc"
	case VEE:
		return "vee"
	case GND:
		return "gnd"
	default:
		return "signal"
	}
}

// ErcRole is the per-Assign driver/receiver role from spec §4.5, set in
// place during ERC analysis.
type ErcRole int

const (
	RoleUnknown ErcRole = iota
	RoleInput
	RoleOutput
)

func (r ErcRole) String() string {
	switch r {
	case RoleInput:
		return "input"
	case RoleOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Net is a named electrical equipotential (spec §3, GLOSSARY).
type Net struct {
	UID             ids.ID
	Name            string
	OwnerCircuitUID ids.ID
	// OwnerPortUID is non-zero when this Net is a Port's internal net
	// (spec §4.1: "the builder creates the Port's internal Net ... on
	// first use"), zero for a plainly declared Net.
	OwnerPortUID ids.ID
	Type         NetType
}

// Port is a Circuit's boundary terminal for external connection (spec §3,
// GLOSSARY).
type Port struct {
	UID             ids.ID
	Name            string
	Type            library.PinType
	OwnerCircuitUID ids.ID
	// Voltage is a raw voltage string in the same grammar as library.Pin.Voltage
	// (spec §6: "Port voltage strings follow the same grammar"); "" if unset.
	Voltage string
	// InternalNetUID is zero until the first internal assignment to this
	// Port; set lazily by Builder.resolveRef.
	InternalNetUID ids.ID
	// InternalAssignUID/ExternalAssignUID are the uids of this Port's at
	// most one internal and at most one external PortAssign (spec §3).
	InternalAssignUID ids.ID
	ExternalAssignUID ids.ID
}

// Circuit is a tree node owning collections of child elements, with an
// optional parent (its enclosing SubInst's container) (spec §3).
type Circuit struct {
	UID       ids.ID
	Name      string
	ParentUID ids.ID

	Nets        []ids.ID
	Ports       []ids.ID
	Insts       []ids.ID
	SubInsts    []ids.ID
	InstAssigns []ids.ID
	PortAssigns []ids.ID

	netsByName     map[string]ids.ID
	portsByName    map[string]ids.ID
	instsByName    map[string]ids.ID
	subInstsByName map[string]ids.ID
}

func newCircuit(uid ids.ID, name string) *Circuit {
	return &Circuit{
		UID:            uid,
		Name:           name,
		netsByName:     map[string]ids.ID{},
		portsByName:    map[string]ids.ID{},
		instsByName:    map[string]ids.ID{},
		subInstsByName: map[string]ids.ID{},
	}
}

// NetUIDByName looks up a direct child Net by name.
func (c *Circuit) NetUIDByName(name string) (ids.ID, bool) {
	uid, ok := c.netsByName[name]
	return uid, ok
}

// PortUIDByName looks up a direct child Port by name.
func (c *Circuit) PortUIDByName(name string) (ids.ID, bool) {
	uid, ok := c.portsByName[name]
	return uid, ok
}

// InstUIDByName looks up a direct child Inst by name.
func (c *Circuit) InstUIDByName(name string) (ids.ID, bool) {
	uid, ok := c.instsByName[name]
	return uid, ok
}

// SubInstUIDByName looks up a direct child SubInst by name.
func (c *Circuit) SubInstUIDByName(name string) (ids.ID, bool) {
	uid, ok := c.subInstsByName[name]
	return uid, ok
}
