package circuit

import (
	"encoding/json"
	"fmt"

	"github.com/openpcb/circuitcore/pkg/ids"
	"github.com/openpcb/circuitcore/pkg/library"
)

// netObject/portObject/... mirror spec §6's "structured key/value document
// (conventionally JSON)" persistent IR format. Every element's ToObject/
// FromObject pair round-trips identity provided uids are preserved.

type netObject struct {
	UID             ids.ID `json:"uid"`
	Name            string `json:"name"`
	OwnerCircuitUID ids.ID `json:"owner_circuit_uid"`
	OwnerPortUID    ids.ID `json:"owner_port_uid,omitempty"`
	Type            string `json:"type"`
}

type portObject struct {
	UID               ids.ID `json:"uid"`
	Name              string `json:"name"`
	Type              string `json:"type"`
	Voltage           string `json:"voltage,omitempty"`
	OwnerCircuitUID   ids.ID `json:"owner_circuit_uid"`
	InternalNetUID    ids.ID `json:"internal_net_uid,omitempty"`
	InternalAssignUID ids.ID `json:"internal_assign_uid,omitempty"`
	ExternalAssignUID ids.ID `json:"external_assign_uid,omitempty"`
}

type instObject struct {
	UID             ids.ID   `json:"uid"`
	Name            string   `json:"name"`
	Component       string   `json:"component"`
	Value           string   `json:"value,omitempty"`
	Device          string   `json:"device,omitempty"`
	AssignUIDs      []ids.ID `json:"assign_uids,omitempty"`
	OwnerCircuitUID ids.ID   `json:"owner_circuit_uid"`
}

type subInstObject struct {
	UID             ids.ID `json:"uid"`
	Name            string `json:"name"`
	CircuitUID      ids.ID `json:"circuit_uid"`
	OwnerCircuitUID ids.ID `json:"owner_circuit_uid"`
}

type instAssignObject struct {
	UID      ids.ID `json:"uid"`
	GUID     ids.ID `json:"guid"`
	InstUID  ids.ID `json:"inst_uid"`
	Function string `json:"function"`
	NetUID   ids.ID `json:"net_uid"`
	Pin      string `json:"pin,omitempty"`
	PinType  string `json:"pin_type,omitempty"`
	ErcRole  string `json:"erc_role,omitempty"`
}

type portAssignObject struct {
	UID      ids.ID `json:"uid"`
	GUID     ids.ID `json:"guid"`
	PortUID  ids.ID `json:"port_uid"`
	NetUID   ids.ID `json:"net_uid"`
	External bool   `json:"external"`
	ErcRole  string `json:"erc_role,omitempty"`
}

type circuitObject struct {
	UID         ids.ID   `json:"uid"`
	Name        string   `json:"name"`
	ParentUID   ids.ID   `json:"parent_uid,omitempty"`
	Nets        []ids.ID `json:"nets"`
	Ports       []ids.ID `json:"ports"`
	Insts       []ids.ID `json:"insts"`
	SubInsts    []ids.ID `json:"sub_insts"`
	InstAssigns []ids.ID `json:"inst_assigns"`
	PortAssigns []ids.ID `json:"port_assigns"`
}

// document is the full serialized Builder: every element keyed by uid,
// so references round-trip as plain numbers without needing a second
// resolution pass on load.
type document struct {
	RootUID     ids.ID                      `json:"root_uid"`
	Circuits    map[ids.ID]circuitObject    `json:"circuits"`
	Nets        map[ids.ID]netObject        `json:"nets"`
	Ports       map[ids.ID]portObject       `json:"ports"`
	Insts       map[ids.ID]instObject       `json:"insts"`
	SubInsts    map[ids.ID]subInstObject    `json:"sub_insts"`
	InstAssigns map[ids.ID]instAssignObject `json:"inst_assigns"`
	PortAssigns map[ids.ID]portAssignObject `json:"port_assigns"`
}

// ToObject serializes the Builder's full element graph, rooted at root, to
// JSON (spec §6).
func (b *Builder) ToObject(root *Circuit) ([]byte, error) {
	doc := document{
		RootUID:     root.UID,
		Circuits:    map[ids.ID]circuitObject{},
		Nets:        map[ids.ID]netObject{},
		Ports:       map[ids.ID]portObject{},
		Insts:       map[ids.ID]instObject{},
		SubInsts:    map[ids.ID]subInstObject{},
		InstAssigns: map[ids.ID]instAssignObject{},
		PortAssigns: map[ids.ID]portAssignObject{},
	}

	for uid, c := range b.circuits {
		doc.Circuits[uid] = circuitObject{
			UID: c.UID, Name: c.Name, ParentUID: c.ParentUID,
			Nets: c.Nets, Ports: c.Ports, Insts: c.Insts,
			SubInsts: c.SubInsts, InstAssigns: c.InstAssigns, PortAssigns: c.PortAssigns,
		}
	}
	for uid, n := range b.nets {
		doc.Nets[uid] = netObject{
			UID: n.UID, Name: n.Name, OwnerCircuitUID: n.OwnerCircuitUID,
			OwnerPortUID: n.OwnerPortUID, Type: n.Type.String(),
		}
	}
	for uid, p := range b.ports {
		doc.Ports[uid] = portObject{
			UID: p.UID, Name: p.Name, Type: p.Type.String(), Voltage: p.Voltage, OwnerCircuitUID: p.OwnerCircuitUID,
			InternalNetUID: p.InternalNetUID, InternalAssignUID: p.InternalAssignUID,
			ExternalAssignUID: p.ExternalAssignUID,
		}
	}
	for uid, inst := range b.insts {
		io := instObject{
			UID: inst.UID, Name: inst.Name, Component: inst.Component.Name,
			Value: inst.Value, AssignUIDs: inst.AssignUIDs, OwnerCircuitUID: inst.OwnerCircuitUID,
		}
		if inst.Device != nil {
			io.Device = inst.Device.Name
		}
		doc.Insts[uid] = io
	}
	for uid, sub := range b.subInsts {
		doc.SubInsts[uid] = subInstObject{
			UID: sub.UID, Name: sub.Name, CircuitUID: sub.CircuitUID, OwnerCircuitUID: sub.OwnerCircuitUID,
		}
	}
	for uid, a := range b.instAssigns {
		ao := instAssignObject{
			UID: a.UID, GUID: a.GUID, InstUID: a.InstUID, Function: a.Function,
			NetUID: a.NetUID, ErcRole: a.ErcRole.String(),
		}
		if a.Pin != nil {
			ao.Pin = a.Pin.Name
			ao.PinType = a.PinType.String()
		}
		doc.InstAssigns[uid] = ao
	}
	for uid, pa := range b.portAssigns {
		doc.PortAssigns[uid] = portAssignObject{
			UID: pa.UID, GUID: pa.GUID, PortUID: pa.PortUID, NetUID: pa.NetUID,
			External: pa.External, ErcRole: pa.ErcRole.String(),
		}
	}

	return json.MarshalIndent(doc, "", "  ")
}

// FromObject reconstructs a Builder and its root Circuit from the JSON
// produced by ToObject. registry resolves Inst.Component/Device names back
// to library values (spec §6: uids are preserved across the round-trip,
// but Component/Device identity is re-resolved by name against the
// caller's registry, the same external collaborator used at build time).
func FromObject(data []byte, registry *library.Registry) (*Builder, *Circuit, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("circuit: decode: %w", err)
	}

	b := NewBuilder()
	var maxUID ids.ID

	for uid, co := range doc.Circuits {
		b.circuits[uid] = &Circuit{
			UID: co.UID, Name: co.Name, ParentUID: co.ParentUID,
			Nets: co.Nets, Ports: co.Ports, Insts: co.Insts,
			SubInsts: co.SubInsts, InstAssigns: co.InstAssigns, PortAssigns: co.PortAssigns,
			netsByName: map[string]ids.ID{}, portsByName: map[string]ids.ID{},
			instsByName: map[string]ids.ID{}, subInstsByName: map[string]ids.ID{},
		}
		maxUID = maxID(maxUID, uid)
	}
	for uid, no := range doc.Nets {
		typ, err := parseNetType(no.Type)
		if err != nil {
			return nil, nil, err
		}
		n := &Net{UID: no.UID, Name: no.Name, OwnerCircuitUID: no.OwnerCircuitUID, OwnerPortUID: no.OwnerPortUID, Type: typ}
		b.nets[uid] = n
		if c := b.circuits[n.OwnerCircuitUID]; c != nil {
			c.netsByName[n.Name] = uid
		}
		maxUID = maxID(maxUID, uid)
	}
	for uid, po := range doc.Ports {
		p := &Port{
			UID: po.UID, Name: po.Name, Type: library.ParsePinType(po.Type), Voltage: po.Voltage, OwnerCircuitUID: po.OwnerCircuitUID,
			InternalNetUID: po.InternalNetUID, InternalAssignUID: po.InternalAssignUID,
			ExternalAssignUID: po.ExternalAssignUID,
		}
		b.ports[uid] = p
		if c := b.circuits[p.OwnerCircuitUID]; c != nil {
			c.portsByName[p.Name] = uid
		}
		maxUID = maxID(maxUID, uid)
	}
	for uid, io := range doc.Insts {
		comp, ok := registry.ComponentByName(io.Component)
		if !ok {
			return nil, nil, fmt.Errorf("circuit: inst %s: unknown component %q", io.Name, io.Component)
		}
		inst := &Inst{
			UID: io.UID, Name: io.Name, Component: comp, Value: io.Value,
			AssignUIDs: io.AssignUIDs, OwnerCircuitUID: io.OwnerCircuitUID,
		}
		if io.Device != "" {
			dev, ok := registry.DeviceByName(io.Device)
			if !ok {
				return nil, nil, fmt.Errorf("circuit: inst %s: unknown device %q", io.Name, io.Device)
			}
			inst.Device = dev
		}
		b.insts[uid] = inst
		if c := b.circuits[inst.OwnerCircuitUID]; c != nil {
			c.instsByName[inst.Name] = uid
		}
		maxUID = maxID(maxUID, uid)
	}
	for uid, so := range doc.SubInsts {
		b.subInsts[uid] = &SubInst{UID: so.UID, Name: so.Name, CircuitUID: so.CircuitUID, OwnerCircuitUID: so.OwnerCircuitUID}
		if c := b.circuits[so.OwnerCircuitUID]; c != nil {
			c.subInstsByName[so.Name] = uid
		}
		maxUID = maxID(maxUID, uid)
	}
	for uid, ao := range doc.InstAssigns {
		role, err := parseErcRole(ao.ErcRole)
		if err != nil {
			return nil, nil, err
		}
		a := &InstAssign{UID: ao.UID, GUID: ao.GUID, InstUID: ao.InstUID, Function: ao.Function, NetUID: ao.NetUID, ErcRole: role}
		if ao.Pin != "" {
			inst := b.insts[ao.InstUID]
			if inst == nil {
				return nil, nil, fmt.Errorf("circuit: inst_assign %d: dangling inst_uid %d", uid, ao.InstUID)
			}
			pin := inst.Component.PinByName(ao.Pin)
			if pin == nil {
				return nil, nil, fmt.Errorf("circuit: inst_assign %d: component %s has no pin %q", uid, inst.Component.Name, ao.Pin)
			}
			a.Pin = pin
			a.PinType = library.ParsePinType(ao.PinType)
		}
		b.instAssigns[uid] = a
		maxUID = maxID(maxUID, uid)
	}
	for uid, pao := range doc.PortAssigns {
		role, err := parseErcRole(pao.ErcRole)
		if err != nil {
			return nil, nil, err
		}
		b.portAssigns[uid] = &PortAssign{UID: pao.UID, GUID: pao.GUID, PortUID: pao.PortUID, NetUID: pao.NetUID, External: pao.External, ErcRole: role}
		maxUID = maxID(maxUID, uid)
	}

	root := b.circuits[doc.RootUID]
	if root == nil {
		return nil, nil, fmt.Errorf("circuit: root_uid %d not found among circuits", doc.RootUID)
	}

	// Resume the uid counter strictly after anything loaded, so further
	// construction on the reloaded Builder never collides with a restored uid.
	for i := ids.ID(0); i < maxUID; i++ {
		b.ids.Next()
	}

	return b, root, nil
}

func maxID(a, b ids.ID) ids.ID {
	if b > a {
		return b
	}
	return a
}

func parseNetType(s string) (NetType, error) {
	switch s {
	case "vcc":
		return VCC, nil
	case "vee":
		return VEE, nil
	case "gnd":
		return GND, nil
	case "signal", "":
		return SIGNAL, nil
	default:
		return SIGNAL, fmt.Errorf("circuit: unknown net type %q", s)
	}
}

func parseErcRole(s string) (ErcRole, error) {
	switch s {
	case "input":
		return RoleInput, nil
	case "output":
		return RoleOutput, nil
	case "unknown", "":
		return RoleUnknown, nil
	default:
		return RoleUnknown, fmt.Errorf("circuit: unknown erc role %q", s)
	}
}
