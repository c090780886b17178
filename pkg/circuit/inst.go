package circuit

import (
	"github.com/openpcb/circuitcore/pkg/ids"
	"github.com/openpcb/circuitcore/pkg/library"
)

// Inst is an instance of a Component within a Circuit (spec §3, GLOSSARY).
type Inst struct {
	UID         ids.ID
	Name        string
	Component   *library.Component
	Value       string // optional free-text value; "" if absent
	Device      *library.Device // set by §4.4
	AssignUIDs  []ids.ID
	OwnerCircuitUID ids.ID
}

// SubInst is an instance of a nested Circuit (spec §3, GLOSSARY).
type SubInst struct {
	UID             ids.ID
	Name            string
	CircuitUID      ids.ID // the wrapped inner Circuit
	OwnerCircuitUID ids.ID
}

// InstAssign is an edge binding a Function (on an Inst) to a Net (spec §3,
// GLOSSARY).
type InstAssign struct {
	UID, GUID ids.ID
	InstUID   ids.ID
	Function  string
	NetUID    ids.ID
	Pin       *library.Pin   // set by §4.3
	PinType   library.PinType // set by §4.3
	ErcRole   ErcRole         // set by §4.5
}

// PortAssign is an edge binding a Port to a Net (spec §3, GLOSSARY).
// External distinguishes the at-most-one external PortAssign (created from
// the enclosing Circuit, i.e. from the parent's builder calls on the
// wrapping SubInst) from the at-most-one internal PortAssign (created the
// first time something inside the Port's own Circuit assigns to it).
type PortAssign struct {
	UID, GUID ids.ID
	PortUID   ids.ID
	NetUID    ids.ID
	External  bool
	ErcRole   ErcRole
}
