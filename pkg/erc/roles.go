package erc

import (
	"github.com/openpcb/circuitcore/pkg/circuit"
	"github.com/openpcb/circuitcore/pkg/elaborate"
	"github.com/openpcb/circuitcore/pkg/library"
)

// classifyNetTypes implements spec §4.5's "Net-type classification
// (preliminary)": for every Net, the first Assign whose Pin yields a
// non-null voltage sets the Net's type.
//
// spec.md also reads Port voltage here ("Pin or Port"); in this
// implementation Ports are fully consumed by elaborate.Flatten's port
// forwarding (spec §4.2 postconditions: "PortAssigns are consumed
// (conceptually deleted) by this pass"), so by the time ERC runs only
// InstAssigns remain on any Net. See DESIGN.md.
func classifyNetTypes(nl *elaborate.Netlist) {
	for _, n := range nl.Nets {
		for _, a := range nl.AssignsByNet(n.UID) {
			if a.Pin == nil {
				continue
			}
			v, ok := ParseVoltage(a.Pin.Voltage)
			if !ok {
				continue
			}
			switch {
			case a.Pin.Type == library.POWER && v > 0:
				n.Type = circuit.VCC
			case a.Pin.Type == library.POWER && v < 0:
				n.Type = circuit.VEE
			case a.Pin.Type == library.GND || v == 0:
				n.Type = circuit.GND
			default:
				continue
			}
			break
		}
	}
}

// assignInitialRoles implements spec §4.5's "ERC role assignment" for
// InstAssigns: the initial role derives from the resolved Pin's type.
func assignInitialRoles(nl *elaborate.Netlist) {
	for _, a := range nl.InstAssigns {
		if a.Pin == nil {
			continue
		}
		a.ErcRole = initialRole(a.Pin.Type)
	}
}

func initialRole(t library.PinType) circuit.ErcRole {
	switch t {
	case library.OUT, library.GND:
		return circuit.RoleOutput
	case library.POWER, library.IN:
		return circuit.RoleInput
	default:
		return circuit.RoleUnknown
	}
}

func opposite(r circuit.ErcRole) circuit.ErcRole {
	switch r {
	case circuit.RoleInput:
		return circuit.RoleOutput
	case circuit.RoleOutput:
		return circuit.RoleInput
	default:
		return circuit.RoleUnknown
	}
}
