package elaborate

import (
	"errors"
	"fmt"

	"github.com/openpcb/circuitcore/pkg/circuit"
	"github.com/openpcb/circuitcore/pkg/diag"
	"github.com/openpcb/circuitcore/pkg/ids"
)

// ErrCyclicPortBinding is returned (wrapped, with the offending subject's
// qualified name prefixed) when port forwarding revisits a Net it has
// already passed through (spec §4.2, §7).
var ErrCyclicPortBinding = errors.New(string(diag.CyclicPortBinding))

// ErrUnconnectedPort is returned (wrapped) when forwarding reaches a Port
// with no external PortAssign to continue from (spec §4.2, §7).
var ErrUnconnectedPort = errors.New(string(diag.UnconnectedPort))

// walker walks the tree collecting the flattened Inst/Net/InstAssign lists
// in pre-order, plus each Inst's and Port's dotted hierarchical path (spec
// §7: diagnostics identify subjects by qualified name, e.g. R1.2,
// sub.SubCircuit.port, not by uid) captured before renameDuplicates can
// touch an Inst's bare Name.
type walker struct {
	b *circuit.Builder

	insts        []*circuit.Inst
	instQualName map[ids.ID]string
	portQualName map[ids.ID]string
	nets         []*circuit.Net
	instAssigns  []*circuit.InstAssign
}

func (w *walker) walk(c *circuit.Circuit, path string) {
	for _, uid := range c.Insts {
		inst := w.b.Inst(uid)
		w.insts = append(w.insts, inst)
		w.instQualName[inst.UID] = joinPath(path, inst.Name)
	}
	for _, uid := range c.Ports {
		port := w.b.Port(uid)
		w.portQualName[port.UID] = joinPath(path, port.Name)
	}
	for _, uid := range c.Nets {
		w.nets = append(w.nets, w.b.Net(uid))
	}
	for _, uid := range c.InstAssigns {
		w.instAssigns = append(w.instAssigns, w.b.InstAssign(uid))
	}
	for _, uid := range c.SubInsts {
		sub := w.b.SubInst(uid)
		inner := w.b.Circuit(sub.CircuitUID)
		w.walk(inner, joinPath(path, sub.Name))
	}
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// Flatten runs spec §4.2's three-step algorithm: rename duplicate Insts,
// collect every Inst/Net/InstAssign across the hierarchy, then forward
// each InstAssign's Net target across SubInst boundaries until it names a
// true (non-Port-owned) Net or the internal Net of one of top's own Ports.
func Flatten(b *circuit.Builder, top *circuit.Circuit) (*Netlist, error) {
	w := &walker{
		b:            b,
		instQualName: map[ids.ID]string{},
		portQualName: map[ids.ID]string{},
	}
	w.walk(top, "")

	renameDuplicates(w.insts)

	for i, a := range w.instAssigns {
		resolved, err := forwardNet(b, a.NetUID, top.UID, w.portQualName)
		if err != nil {
			name := w.instQualName[a.InstUID]
			if name == "" {
				name = "?"
			}
			return nil, fmt.Errorf("%s.%s: %w", name, a.Function, err)
		}
		w.instAssigns[i].NetUID = resolved
	}

	nl := &Netlist{
		Name:        top.Name,
		Insts:       w.insts,
		Nets:        pruneZeroAssignNets(w.nets, w.instAssigns),
		InstAssigns: w.instAssigns,
		instByUID:   map[ids.ID]*circuit.Inst{},
		netByUID:    map[ids.ID]*circuit.Net{},
		qualName:    w.instQualName,
	}
	for _, inst := range w.insts {
		nl.instByUID[inst.UID] = inst
	}
	for _, n := range nl.Nets {
		nl.netByUID[n.UID] = n
	}
	return nl, nil
}

// pruneZeroAssignNets implements the other half of spec §4.5's Net
// pruning: a Net with zero remaining InstAssigns is dropped from the flat
// Netlist. Port-owned shadow Nets (circuit.Builder.resolveRef's lazily
// created internal Nets) are exactly this case once forwardNet has
// rerouted every InstAssign away from them across their SubInst boundary;
// a top-level Net nobody ever assigned to is pruned the same way. A Net
// with exactly one remaining assign survives pruning and is reported by
// reportUnconnectedNets instead (spec §4.5 draws that line at one, not
// zero).
func pruneZeroAssignNets(nets []*circuit.Net, instAssigns []*circuit.InstAssign) []*circuit.Net {
	used := make(map[ids.ID]bool, len(instAssigns))
	for _, a := range instAssigns {
		used[a.NetUID] = true
	}
	kept := nets[:0]
	for _, n := range nets {
		if used[n.UID] {
			kept = append(kept, n)
		}
	}
	return kept
}

// renameDuplicates implements spec §4.2 step 1: group Insts by name in
// pre-order traversal order, and where a name is shared by more than one,
// append a 1-based index to every occurrence (R1 -> R1_1, R1_2, ...). The
// walker has already captured each Inst's qualified hierarchical path by
// uid before this runs, so the rename here never loses it.
func renameDuplicates(insts []*circuit.Inst) {
	counts := map[string]int{}
	for _, inst := range insts {
		counts[inst.Name]++
	}
	seen := map[string]int{}
	for _, inst := range insts {
		if counts[inst.Name] <= 1 {
			continue
		}
		seen[inst.Name]++
		inst.Name = fmt.Sprintf("%s_%d", inst.Name, seen[inst.Name])
	}
}

// forwardNet resolves netUID to the Net it ultimately names, following
// Port-owned shadow Nets across SubInst boundaries (spec §4.2 step 3). A
// Port of the root Circuit itself (rootUID) has no enclosing SubInst to
// forward through, so its internal Net is where forwarding stops.
func forwardNet(b *circuit.Builder, netUID, rootUID ids.ID, portQualName map[ids.ID]string) (ids.ID, error) {
	visited := map[ids.ID]bool{}
	for {
		if visited[netUID] {
			return 0, fmt.Errorf("%w", ErrCyclicPortBinding)
		}
		visited[netUID] = true

		n := b.Net(netUID)
		if n == nil {
			return 0, fmt.Errorf("dangling net uid %d", netUID)
		}
		if n.OwnerPortUID == 0 {
			return netUID, nil
		}

		port := b.Port(n.OwnerPortUID)
		if port != nil && port.ExternalAssignUID == 0 && port.OwnerCircuitUID == rootUID {
			return netUID, nil
		}
		if port == nil || port.ExternalAssignUID == 0 {
			return 0, fmt.Errorf("port %s: %w", qualPortName(port, portQualName), ErrUnconnectedPort)
		}
		ext := b.PortAssign(port.ExternalAssignUID)
		netUID = ext.NetUID
	}
}

func qualPortName(p *circuit.Port, portQualName map[ids.ID]string) string {
	if p == nil {
		return "?"
	}
	if name, ok := portQualName[p.UID]; ok {
		return name
	}
	return p.Name
}
