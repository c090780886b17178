package circuit

import (
	"fmt"

	"github.com/openpcb/circuitcore/pkg/ids"
	"github.com/openpcb/circuitcore/pkg/library"
)

// Builder is the explicit construction context threaded into every IR
// operation (spec §4.1, §9's "Active-context singleton" redesign flag: "
// Rearchitect by threading the builder as an explicit context passed to
// each construction operation; the front-end can wrap that context to
// preserve its syntactic sugar"). It owns the uid counter and every
// element's canonical storage, keyed by uid.
type Builder struct {
	ids *ids.Counter

	circuits    map[ids.ID]*Circuit
	nets        map[ids.ID]*Net
	ports       map[ids.ID]*Port
	insts       map[ids.ID]*Inst
	subInsts    map[ids.ID]*SubInst
	instAssigns map[ids.ID]*InstAssign
	portAssigns map[ids.ID]*PortAssign
}

// NewBuilder returns a Builder with a fresh uid counter.
func NewBuilder() *Builder {
	return &Builder{
		ids:         ids.NewCounter(),
		circuits:    map[ids.ID]*Circuit{},
		nets:        map[ids.ID]*Net{},
		ports:       map[ids.ID]*Port{},
		insts:       map[ids.ID]*Inst{},
		subInsts:    map[ids.ID]*SubInst{},
		instAssigns: map[ids.ID]*InstAssign{},
		portAssigns: map[ids.ID]*PortAssign{},
	}
}

// Lookups by uid. These are the "per-Circuit or per-Netlist lookup" the
// arena redesign note calls for, scoped here to the whole build session
// since a Builder is itself the construction context spec §9 asks for.

func (b *Builder) Circuit(uid ids.ID) *Circuit       { return b.circuits[uid] }
func (b *Builder) Net(uid ids.ID) *Net               { return b.nets[uid] }
func (b *Builder) Port(uid ids.ID) *Port             { return b.ports[uid] }
func (b *Builder) Inst(uid ids.ID) *Inst             { return b.insts[uid] }
func (b *Builder) SubInst(uid ids.ID) *SubInst       { return b.subInsts[uid] }
func (b *Builder) InstAssign(uid ids.ID) *InstAssign { return b.instAssigns[uid] }
func (b *Builder) PortAssign(uid ids.ID) *PortAssign { return b.portAssigns[uid] }

// NewCircuit creates a top-level or nested Circuit. Use WrapCircuit to
// nest it under a SubInst; an unwrapped Circuit is a compile root.
func (b *Builder) NewCircuit(name string) *Circuit {
	c := newCircuit(b.ids.Next(), name)
	b.circuits[c.UID] = c
	return c
}

// NewNet declares a Net in circuit c.
func (b *Builder) NewNet(c *Circuit, name string) (*Net, error) {
	if _, exists := c.netsByName[name]; exists {
		return nil, fmt.Errorf("circuit %s: duplicate net name %q (DuplicateName)", c.Name, name)
	}
	n := &Net{UID: b.ids.Next(), Name: name, OwnerCircuitUID: c.UID}
	b.nets[n.UID] = n
	c.Nets = append(c.Nets, n.UID)
	c.netsByName[name] = n.UID
	return n, nil
}

// NewPort declares a Port in circuit c with the given direction type. An
// optional voltage string (spec §6 grammar) may be passed for §4.5's net-type
// classification to read; omit or pass "" when not applicable.
func (b *Builder) NewPort(c *Circuit, name string, typ library.PinType, voltage string) (*Port, error) {
	if _, exists := c.portsByName[name]; exists {
		return nil, fmt.Errorf("circuit %s: duplicate port name %q (DuplicateName)", c.Name, name)
	}
	p := &Port{UID: b.ids.Next(), Name: name, Type: typ, Voltage: voltage, OwnerCircuitUID: c.UID}
	b.ports[p.UID] = p
	c.Ports = append(c.Ports, p.UID)
	c.portsByName[name] = p.UID
	return p, nil
}

// NewInst creates an Inst of the named Component (looked up in registry)
// within circuit c. Returns an UnknownComponent error if no such Component
// is registered.
func (b *Builder) NewInst(c *Circuit, name string, registry *library.Registry, componentName, value string) (*Inst, error) {
	if _, exists := c.instsByName[name]; exists {
		return nil, fmt.Errorf("circuit %s: duplicate inst name %q (DuplicateName)", c.Name, name)
	}
	comp, ok := registry.ComponentByName(componentName)
	if !ok {
		return nil, fmt.Errorf("circuit %s: unknown component %q (UnknownComponent)", c.Name, componentName)
	}
	inst := &Inst{UID: b.ids.Next(), Name: name, Component: comp, Value: value, OwnerCircuitUID: c.UID}
	b.insts[inst.UID] = inst
	c.Insts = append(c.Insts, inst.UID)
	c.instsByName[name] = inst.UID
	return inst, nil
}

// WrapCircuit creates a SubInst named name in circuit c, wrapping inner.
// inner must not already be wrapped elsewhere — the IR tree is genuinely a
// tree: a Circuit built once is instantiated in exactly one place.
func (b *Builder) WrapCircuit(c *Circuit, name string, inner *Circuit) (*SubInst, error) {
	if _, exists := c.subInstsByName[name]; exists {
		return nil, fmt.Errorf("circuit %s: duplicate subinst name %q (DuplicateName)", c.Name, name)
	}
	if inner.ParentUID != 0 {
		return nil, fmt.Errorf("circuit %s: circuit already instantiated elsewhere", inner.Name)
	}
	sub := &SubInst{UID: b.ids.Next(), Name: name, CircuitUID: inner.UID, OwnerCircuitUID: c.UID}
	inner.ParentUID = sub.UID
	b.subInsts[sub.UID] = sub
	c.SubInsts = append(c.SubInsts, sub.UID)
	c.subInstsByName[name] = sub.UID
	return sub, nil
}

// Ref names an assignment target: one of the current Circuit's own Nets or
// Ports (spec §4.1: "assign ... to a tuple of Nets or Ports").
type Ref struct {
	net  *Net
	port *Port
}

// NetRef targets a Net.
func NetRef(n *Net) Ref { return Ref{net: n} }

// PortRef targets a Port.
func PortRef(p *Port) Ref { return Ref{port: p} }

// resolveRef resolves ref to a Net uid within circuit c, lazily creating a
// Port's internal Net and its internal PortAssign on first use (spec
// §4.1).
func (b *Builder) resolveRef(c *Circuit, ref Ref) (ids.ID, error) {
	switch {
	case ref.net != nil:
		if ref.net.OwnerCircuitUID != c.UID {
			return 0, fmt.Errorf("net %s does not belong to circuit %s", ref.net.Name, c.Name)
		}
		return ref.net.UID, nil

	case ref.port != nil:
		p := ref.port
		if p.OwnerCircuitUID != c.UID {
			return 0, fmt.Errorf("port %s does not belong to circuit %s", p.Name, c.Name)
		}
		if p.InternalNetUID == 0 {
			n := &Net{UID: b.ids.Next(), Name: p.Name, OwnerCircuitUID: c.UID, OwnerPortUID: p.UID}
			b.nets[n.UID] = n
			c.Nets = append(c.Nets, n.UID)
			p.InternalNetUID = n.UID

			pa := &PortAssign{UID: b.ids.Next(), GUID: b.ids.Next(), PortUID: p.UID, NetUID: n.UID, External: false}
			b.portAssigns[pa.UID] = pa
			c.PortAssigns = append(c.PortAssigns, pa.UID)
			p.InternalAssignUID = pa.UID
		}
		return p.InternalNetUID, nil

	default:
		return 0, fmt.Errorf("empty assignment target")
	}
}

// AssignInst binds one or more Functions of inst to targets, forming a
// bus-group when len(functions) > 1 (spec §4.1). Function and target
// counts must match; each function must name a Function declared on the
// Inst's Component (checked here to surface UnknownFunction as early as
// possible, though §4.3 re-validates during pin assignment).
func (b *Builder) AssignInst(c *Circuit, inst *Inst, functions []string, targets []Ref) error {
	if len(functions) != len(targets) {
		return fmt.Errorf("inst %s: function/target arity mismatch: %d functions, %d targets", inst.Name, len(functions), len(targets))
	}
	if len(functions) == 0 {
		return fmt.Errorf("inst %s: empty assignment", inst.Name)
	}

	guid := b.ids.Next() // shared across the whole group, even a singleton

	for i, function := range functions {
		if !inst.Component.HasFunction(function) {
			return fmt.Errorf("inst %s: component %s has no function %q (UnknownFunction)", inst.Name, inst.Component.Name, function)
		}
		netUID, err := b.resolveRef(c, targets[i])
		if err != nil {
			return fmt.Errorf("inst %s: %w", inst.Name, err)
		}

		a := &InstAssign{UID: b.ids.Next(), GUID: guid, InstUID: inst.UID, Function: function, NetUID: netUID}
		b.instAssigns[a.UID] = a
		c.InstAssigns = append(c.InstAssigns, a.UID)
		inst.AssignUIDs = append(inst.AssignUIDs, a.UID)
	}
	return nil
}

// AssignSubInstPort binds the named Port of sub's wrapped Circuit to an
// external target (spec §4.1's "assign a SubInst's Port to an external Net
// or Port"). Each Port accepts at most one external PortAssign.
func (b *Builder) AssignSubInstPort(c *Circuit, sub *SubInst, portName string, target Ref) error {
	inner := b.circuits[sub.CircuitUID]
	portUID, ok := inner.PortUIDByName(portName)
	if !ok {
		return fmt.Errorf("subinst %s: circuit %s has no port %q", sub.Name, inner.Name, portName)
	}
	port := b.ports[portUID]
	if port.ExternalAssignUID != 0 {
		return fmt.Errorf("subinst %s: port %q already has an external assignment", sub.Name, portName)
	}

	netUID, err := b.resolveRef(c, target)
	if err != nil {
		return fmt.Errorf("subinst %s port %s: %w", sub.Name, portName, err)
	}

	pa := &PortAssign{UID: b.ids.Next(), GUID: b.ids.Next(), PortUID: port.UID, NetUID: netUID, External: true}
	b.portAssigns[pa.UID] = pa
	c.PortAssigns = append(c.PortAssigns, pa.UID)
	port.ExternalAssignUID = pa.UID
	return nil
}

// AssignSubInstPorts is the bus-group form of AssignSubInstPort: portNames
// and targets must have equal length.
func (b *Builder) AssignSubInstPorts(c *Circuit, sub *SubInst, portNames []string, targets []Ref) error {
	if len(portNames) != len(targets) {
		return fmt.Errorf("subinst %s: port/target arity mismatch: %d ports, %d targets", sub.Name, len(portNames), len(targets))
	}
	for i, name := range portNames {
		if err := b.AssignSubInstPort(c, sub, name, targets[i]); err != nil {
			return err
		}
	}
	return nil
}
