// Package erc implements spec §4.5's ERC / path analysis: net-type
// classification, ERC role assignment, path walking with conflict
// detection, and the adjacent-pair pin swap on two-terminal Insts.
package erc

import (
	"github.com/openpcb/circuitcore/pkg/diag"
	"github.com/openpcb/circuitcore/pkg/elaborate"
)

// Analyze runs ERC over a flattened Netlist in place (spec §4.6:
// "analyze(netlist) -> Report; in-place on the netlist plus a structured
// report of warnings and errors"). All diagnostics here are Soft-binding
// or Electrical (spec §7): non-fatal, and always returned rather than
// aborting the pipeline.
func Analyze(nl *elaborate.Netlist) *diag.Report {
	report := &diag.Report{}

	classifyNetTypes(nl)
	assignInitialRoles(nl)
	walkPaths(nl, report)
	reportUnconnectedNets(nl, report)

	return report
}

// reportUnconnectedNets implements the UnconnectedNet-warning half of spec
// §4.5's "Net pruning": a Net with exactly one Assign is left in the
// Netlist but flagged. The zero-Assign half of that step — dropping the
// Net outright — already happened in elaborate.Flatten (pruneZeroAssignNets),
// so by the time Analyze runs, every Net here has at least one Assign.
func reportUnconnectedNets(nl *elaborate.Netlist, report *diag.Report) {
	for _, n := range nl.Nets {
		if len(nl.AssignsByNet(n.UID)) == 1 {
			report.Addf(diag.Warn, diag.UnconnectedNet, uint64(n.UID),
				"net %s has only one assign", n.Name)
		}
	}
}
