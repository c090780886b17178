// Package pinassign solves, per Inst, the boolean choice of which
// Component Function each InstAssign resolves to (spec §4.3).
//
// The spec frames this as an SMT problem over linear integer arithmetic
// (fun_a, pin_a, bus_a per InstAssign). That generality isn't needed here:
// once a candidate Function is fixed, pin_a and bus_a follow deterministically
// from it, so the whole problem reduces to boolean choice plus pairwise
// exclusion. This is encoded and solved with github.com/go-air/gini — the
// same AIG-then-CNF idiom (logic.C circuit, ToCnf, Assume, Solve, Value)
// the pack's operator-lifecycle-manager dependency resolver uses for its
// constraint solving.
package pinassign

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/openpcb/circuitcore/pkg/circuit"
	"github.com/openpcb/circuitcore/pkg/diag"
	"github.com/openpcb/circuitcore/pkg/ids"
	"github.com/openpcb/circuitcore/pkg/library"
)

// ErrUnsatisfiablePinAssignment is returned (wrapped) when no Pin
// assignment satisfies an Inst's InstAssigns (spec §4.3, §7).
var ErrUnsatisfiablePinAssignment = errors.New(string(diag.UnsatisfiablePinAssignment))

const satisfiable = 1

// option is one (InstAssign, candidate Function) pairing and its decision
// literal: true means this InstAssign resolves to this Function.
type option struct {
	assign *circuit.InstAssign
	fn     library.Function
	lit    z.Lit
}

// Solve assigns a Pin to every InstAssign of inst (resolved through b),
// writing the result back onto each InstAssign (Pin, PinType), and returns
// a Report carrying any MissingRequiredPin warnings. qualName is inst's
// dotted hierarchical path (elaborate.Netlist.QualName); pass "" to fall
// back to inst.Name when no flattened Netlist is in hand (spec §7:
// diagnostics identify subjects by qualified name, not by uid).
func Solve(b *circuit.Builder, inst *circuit.Inst, qualName string) (*diag.Report, error) {
	report := &diag.Report{}
	comp := inst.Component
	name := inst.Name
	if qualName != "" {
		name = qualName
	}

	assigns := make([]*circuit.InstAssign, 0, len(inst.AssignUIDs))
	for _, uid := range inst.AssignUIDs {
		assigns = append(assigns, b.InstAssign(uid))
	}
	if len(assigns) == 0 {
		for i := range comp.Pins {
			pin := &comp.Pins[i]
			if !pin.Optional {
				report.Addf(diag.Warn, diag.MissingRequiredPin, uint64(inst.UID),
					"inst %s: required pin %s of component %s was not assigned", name, pin.Name, comp.Name)
			}
		}
		return report, nil
	}

	c := logic.NewCCap(len(assigns) * 4)
	optsByAssign := map[ids.ID][]option{}
	var allOpts []option

	for _, a := range assigns {
		candidates := comp.FunsByFunction(a.Function)
		if len(candidates) == 0 {
			return nil, fmt.Errorf("inst %s: %w: function %q has no candidate pin on component %s",
				name, ErrUnsatisfiablePinAssignment, a.Function, comp.Name)
		}
		for _, fn := range candidates {
			o := option{assign: a, fn: fn, lit: c.Lit()}
			optsByAssign[a.UID] = append(optsByAssign[a.UID], o)
			allOpts = append(allOpts, o)
		}
	}

	var constraints []z.Lit

	for _, a := range assigns {
		lits := litsOf(optsByAssign[a.UID])
		constraints = append(constraints, c.Ors(lits...))
		constraints = append(constraints, atMostOne(c, lits)...)
	}

	groups := groupByGUID(assigns)
	for _, group := range groups {
		constraints = append(constraints, sameBusConstraints(c, group, optsByAssign)...)
	}

	constraints = append(constraints, exclusiveBy(c, allOpts, func(o option) int { return o.fn.ID })...)
	constraints = append(constraints, exclusiveBy(c, allOpts, func(o option) int { return o.fn.PinID })...)
	constraints = append(constraints, groupBusExclusion(c, groups, optsByAssign)...)

	g := gini.New()
	c.ToCnf(g)
	for _, m := range constraints {
		g.Assume(m)
	}

	if g.Solve() != satisfiable {
		return nil, fmt.Errorf("inst %s: %w", name, ErrUnsatisfiablePinAssignment)
	}

	assigned := map[int]bool{} // Pin.ID -> used
	for _, a := range assigns {
		for _, o := range optsByAssign[a.UID] {
			if g.Value(o.lit) {
				pin := &comp.Pins[o.fn.PinID]
				a.Pin = pin
				a.PinType = pin.Type
				assigned[pin.ID] = true
				break
			}
		}
	}

	for i := range comp.Pins {
		pin := &comp.Pins[i]
		if !pin.Optional && !assigned[pin.ID] {
			report.Addf(diag.Warn, diag.MissingRequiredPin, uint64(inst.UID),
				"inst %s: required pin %s of component %s was not assigned", name, pin.Name, comp.Name)
		}
	}

	return report, nil
}

func litsOf(opts []option) []z.Lit {
	lits := make([]z.Lit, len(opts))
	for i, o := range opts {
		lits[i] = o.lit
	}
	return lits
}

func atMostOne(c *logic.C, lits []z.Lit) []z.Lit {
	var out []z.Lit
	for i := 0; i < len(lits); i++ {
		for j := i + 1; j < len(lits); j++ {
			out = append(out, c.Or(lits[i].Not(), lits[j].Not()))
		}
	}
	return out
}

// groupByGUID groups assigns sharing a guid into bus-groups (singleton
// groups for non-bus assigns), preserving first-seen order.
func groupByGUID(assigns []*circuit.InstAssign) [][]*circuit.InstAssign {
	var order []ids.ID
	byGUID := map[ids.ID][]*circuit.InstAssign{}
	for _, a := range assigns {
		if _, ok := byGUID[a.GUID]; !ok {
			order = append(order, a.GUID)
		}
		byGUID[a.GUID] = append(byGUID[a.GUID], a)
	}
	groups := make([][]*circuit.InstAssign, len(order))
	for i, guid := range order {
		groups[i] = byGUID[guid]
	}
	return groups
}

// sameBusConstraints forbids any pair of a bus-group's members from
// choosing candidates on different Busses (spec §4.3: "all members must
// share the same bus_a").
func sameBusConstraints(c *logic.C, group []*circuit.InstAssign, optsByAssign map[ids.ID][]option) []z.Lit {
	var out []z.Lit
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			for _, oi := range optsByAssign[group[i].UID] {
				for _, oj := range optsByAssign[group[j].UID] {
					if oi.fn.IsBus() && oj.fn.IsBus() && oi.fn.BusID != oj.fn.BusID {
						out = append(out, c.Or(oi.lit.Not(), oj.lit.Not()))
					}
				}
			}
		}
	}
	return out
}

// exclusiveBy forbids any two options sharing the same key from both being
// chosen — used for "all fun_a distinct" (key = Function.ID) and "all
// pin_a distinct" (key = Function.PinID).
func exclusiveBy(c *logic.C, opts []option, key func(option) int) []z.Lit {
	groups := map[int][]option{}
	for _, o := range opts {
		k := key(o)
		groups[k] = append(groups[k], o)
	}
	var keys []int
	for k, os := range groups {
		if len(os) > 1 {
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)

	var out []z.Lit
	for _, k := range keys {
		out = append(out, atMostOne(c, litsOf(groups[k]))...)
	}
	return out
}

// groupBusExclusion forbids two distinct bus-groups from both landing on
// the same physical Bus (spec §4.3: "all group-level bus ids distinct").
// A group's bus choice is read off its first member, since
// sameBusConstraints already forces every member to agree.
func groupBusExclusion(c *logic.C, groups [][]*circuit.InstAssign, optsByAssign map[ids.ID][]option) []z.Lit {
	type busSelector struct {
		groupIdx int
		busID    int
		lit      z.Lit
	}
	var selectors []busSelector

	for gi, group := range groups {
		rep := group[0]
		byBus := map[int][]z.Lit{}
		for _, o := range optsByAssign[rep.UID] {
			if o.fn.IsBus() {
				byBus[o.fn.BusID] = append(byBus[o.fn.BusID], o.lit)
			}
		}
		var busIDs []int
		for b := range byBus {
			busIDs = append(busIDs, b)
		}
		sort.Ints(busIDs)
		for _, b := range busIDs {
			selectors = append(selectors, busSelector{groupIdx: gi, busID: b, lit: c.Ors(byBus[b]...)})
		}
	}

	var out []z.Lit
	for i := 0; i < len(selectors); i++ {
		for j := i + 1; j < len(selectors); j++ {
			if selectors[i].groupIdx != selectors[j].groupIdx && selectors[i].busID == selectors[j].busID {
				out = append(out, c.Or(selectors[i].lit.Not(), selectors[j].lit.Not()))
			}
		}
	}
	return out
}
