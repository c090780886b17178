// Package compile orchestrates the full pipeline (spec §4.6): elaborate,
// then per-Inst pin assignment and device matching, then ERC.
package compile

import (
	"fmt"

	"github.com/openpcb/circuitcore/pkg/circuit"
	"github.com/openpcb/circuitcore/pkg/devicematch"
	"github.com/openpcb/circuitcore/pkg/diag"
	"github.com/openpcb/circuitcore/pkg/elaborate"
	"github.com/openpcb/circuitcore/pkg/erc"
	"github.com/openpcb/circuitcore/pkg/library"
	"github.com/openpcb/circuitcore/pkg/pinassign"
)

// Compile runs elaborate(top) -> per-Inst (assign_pins, match_device) ->
// analyze, returning the fully-annotated flat Netlist and the accumulated
// diagnostic report (spec §4.6's compile(top) -> Netlist).
//
// Structural and Binding errors (spec §7) are fatal: Compile collects one
// per offending Inst before returning, so siblings in the same pass still
// run, but the first returned error means the Netlist is incomplete.
// Soft-binding and Electrical diagnostics never abort Compile; they always
// appear in the returned Report.
func Compile(registry *library.Registry, b *circuit.Builder, top *circuit.Circuit) (*elaborate.Netlist, *diag.Report, error) {
	nl, err := elaborate.Flatten(b, top)
	if err != nil {
		return nil, nil, err
	}

	report := &diag.Report{}
	var fatal []error

	for _, inst := range nl.Insts {
		qualName := nl.QualName(inst.UID)

		pinReport, err := pinassign.Solve(b, inst, qualName)
		if err != nil {
			fatal = append(fatal, fmt.Errorf("pin assignment: %w", err))
			continue
		}
		report.Merge(pinReport)

		matchReport, err := devicematch.Match(registry, inst, qualName)
		if err != nil {
			fatal = append(fatal, fmt.Errorf("device match: %w", err))
			continue
		}
		report.Merge(matchReport)
	}

	if len(fatal) > 0 {
		return nl, report, joinErrors(fatal)
	}

	report.Merge(erc.Analyze(nl))

	return nl, report, nil
}

func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msg := fmt.Sprintf("%d instances failed to compile:", len(errs))
	for _, e := range errs {
		msg += "\n  " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
