// Package elaborate implements the hierarchy-to-flat-Netlist pass (spec
// §4.2): rename, flatten, and port-forwarding resolution.
package elaborate

import (
	"github.com/openpcb/circuitcore/pkg/circuit"
	"github.com/openpcb/circuitcore/pkg/ids"
)

// Netlist is the flat output of Flatten: every Inst and Net drawn from the
// full hierarchy, with every InstAssign's target forwarded to a Net (spec
// §4.2). Lookup maps are per-Netlist, not pointer back-references, per the
// arena redesign of spec §9.
type Netlist struct {
	Name        string
	Insts       []*circuit.Inst
	Nets        []*circuit.Net
	InstAssigns []*circuit.InstAssign

	instByUID map[ids.ID]*circuit.Inst
	netByUID  map[ids.ID]*circuit.Net
	qualName  map[ids.ID]string
}

// InstByUID looks up a flattened Inst by uid.
func (n *Netlist) InstByUID(uid ids.ID) *circuit.Inst { return n.instByUID[uid] }

// NetByUID looks up a flattened Net by uid.
func (n *Netlist) NetByUID(uid ids.ID) *circuit.Net { return n.netByUID[uid] }

// QualName returns the dotted hierarchical path Flatten captured for an
// Inst uid before any duplicate-rename suffix was applied (e.g.
// "sub1.amp.R1"), or "?" if uid names no Inst this Netlist flattened (spec
// §7: diagnostics identify subjects by qualified name, not by uid).
func (n *Netlist) QualName(uid ids.ID) string {
	if name, ok := n.qualName[uid]; ok {
		return name
	}
	return "?"
}

// AssignsByNet returns every InstAssign bound to the Net uid, in Netlist
// order.
func (n *Netlist) AssignsByNet(netUID ids.ID) []*circuit.InstAssign {
	var out []*circuit.InstAssign
	for _, a := range n.InstAssigns {
		if a.NetUID == netUID {
			out = append(out, a)
		}
	}
	return out
}
