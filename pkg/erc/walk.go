package erc

import (
	"github.com/openpcb/circuitcore/pkg/circuit"
	"github.com/openpcb/circuitcore/pkg/diag"
	"github.com/openpcb/circuitcore/pkg/elaborate"
	"github.com/openpcb/circuitcore/pkg/ids"
)

// walkPaths implements spec §4.5's "Path walk": a maximal alternating
// chain Assign -> Net -> Assign -> ... through two-terminal Nets (exactly
// two Assigns) and two-terminal Insts (exactly two Assigns — passive
// two-pin parts). Entry points are every Inst with an Assign count other
// than two. Each Assign is visited at most once globally (spec §9 Open
// Question b): a walk that would revisit an Assign stops at that boundary
// instead of looping.
func walkPaths(nl *elaborate.Netlist, report *diag.Report) {
	assignsByInst := map[ids.ID][]*circuit.InstAssign{}
	assignsByNet := map[ids.ID][]*circuit.InstAssign{}
	for _, a := range nl.InstAssigns {
		assignsByInst[a.InstUID] = append(assignsByInst[a.InstUID], a)
		assignsByNet[a.NetUID] = append(assignsByNet[a.NetUID], a)
	}

	visited := map[ids.ID]bool{}

	var entries []*circuit.InstAssign
	for _, inst := range nl.Insts {
		if assigns := assignsByInst[inst.UID]; len(assigns) != 2 {
			entries = append(entries, assigns...)
		}
	}

	for _, entry := range entries {
		if visited[entry.UID] {
			continue
		}
		walkFrom(entry, assignsByInst, assignsByNet, visited, report)
	}

	for _, a := range nl.InstAssigns {
		if a.ErcRole == circuit.RoleUnknown {
			report.Addf(diag.Warn, diag.UnresolvedErcRole, uint64(a.UID),
				"assign %d (function %s) has no disambiguating context to resolve its role", a.UID, a.Function)
		}
	}
}

func walkFrom(
	entry *circuit.InstAssign,
	assignsByInst, assignsByNet map[ids.ID][]*circuit.InstAssign,
	visited map[ids.ID]bool,
	report *diag.Report,
) {
	visited[entry.UID] = true
	current := entry

	for {
		netAssigns := assignsByNet[current.NetUID]
		if len(netAssigns) != 2 {
			return // terminal net: more/fewer than two terminals
		}
		next := otherAssign(netAssigns, current)
		if next == nil || visited[next.UID] {
			return // cycle boundary (spec §9 Open Question b)
		}

		resolveRoles(current, next, report)
		visited[next.UID] = true

		instAssigns := assignsByInst[next.InstUID]
		if len(instAssigns) != 2 {
			return // terminal inst: not a two-terminal passive part
		}
		through := otherAssign(instAssigns, next)
		if through == nil || visited[through.UID] {
			return
		}
		visited[through.UID] = true

		maybeSwapPins(next, through)

		current = through
	}
}

func otherAssign(pair []*circuit.InstAssign, not *circuit.InstAssign) *circuit.InstAssign {
	for _, a := range pair {
		if a.UID != not.UID {
			return a
		}
	}
	return nil
}

// resolveRoles enforces spec §4.5's role-diff rule across the Net joining
// a and b: opposite roles are required. Unknowns are bound by walk
// direction (a, walked from, becomes OUTPUT; b, walked to, becomes INPUT)
// when both sides are undetermined. A same-role conflict on both sides
// raises ErcConflict without aborting the walk, so later entries still run
// (spec §4.5: "the walk continues so multiple errors surface in one
// pass").
func resolveRoles(a, b *circuit.InstAssign, report *diag.Report) {
	switch {
	case a.ErcRole == circuit.RoleUnknown && b.ErcRole == circuit.RoleUnknown:
		a.ErcRole = circuit.RoleOutput
		b.ErcRole = circuit.RoleInput
	case a.ErcRole == circuit.RoleUnknown:
		a.ErcRole = opposite(b.ErcRole)
	case b.ErcRole == circuit.RoleUnknown:
		b.ErcRole = opposite(a.ErcRole)
	case a.ErcRole == b.ErcRole:
		report.Addf(diag.Error, diag.ErcConflict, uint64(a.UID),
			"assigns %d and %d on the same net both resolve to role %s", a.UID, b.UID, a.ErcRole)
	}
}

// maybeSwapPins implements spec §4.5's "Pin swap on two-terminal insts":
// for adjacent InstAssigns on the same Inst sharing a bus-group, flow
// should enter the lower-id Pin first. next is the Assign the walk just
// arrived at (the entry side of the two-terminal Inst); through is the
// other Assign on that Inst. If next's Pin id is not the lower of the
// pair, swap their Pin bindings.
func maybeSwapPins(next, through *circuit.InstAssign) {
	if next.GUID != through.GUID {
		return
	}
	if next.Pin == nil || through.Pin == nil {
		return
	}
	if next.Pin.ID > through.Pin.ID {
		next.Pin, through.Pin = through.Pin, next.Pin
		next.PinType, through.PinType = through.PinType, next.PinType
	}
}
