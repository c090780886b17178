package pinassign_test

import (
	"errors"
	"testing"

	"github.com/openpcb/circuitcore/pkg/circuit"
	"github.com/openpcb/circuitcore/pkg/library"
	"github.com/openpcb/circuitcore/pkg/library/demolib"
	"github.com/openpcb/circuitcore/pkg/pinassign"
)

func newTestRegistry(t *testing.T) *library.Registry {
	t.Helper()
	reg := library.NewRegistry()
	if err := demolib.Load(reg); err != nil {
		t.Fatalf("demolib.Load: %v", err)
	}
	return reg
}

func TestSolve_SimplePassive(t *testing.T) {
	reg := newTestRegistry(t)
	b := circuit.NewBuilder()
	top := b.NewCircuit("top")
	a, _ := b.NewNet(top, "A")
	c, _ := b.NewNet(top, "C")
	inst, err := b.NewInst(top, "R1", reg, "R", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AssignInst(top, inst, []string{"~", "~"}, []circuit.Ref{circuit.NetRef(a), circuit.NetRef(c)}); err != nil {
		t.Fatal(err)
	}

	report, err := pinassign.Solve(b, inst, "")
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(report.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", report.Diagnostics)
	}

	pins := map[int]bool{}
	for _, uid := range inst.AssignUIDs {
		a := b.InstAssign(uid)
		if a.Pin == nil {
			t.Fatalf("assign %d not resolved", a.UID)
		}
		pins[a.Pin.ID] = true
	}
	if len(pins) != 2 {
		t.Fatalf("want 2 distinct pins, got %d", len(pins))
	}
}

func TestSolve_MissingRequiredPinWarns(t *testing.T) {
	reg := newTestRegistry(t)
	b := circuit.NewBuilder()
	top := b.NewCircuit("top")
	vin, _ := b.NewNet(top, "VIN")
	inst, err := b.NewInst(top, "Q1", reg, "Q", "")
	if err != nil {
		t.Fatal(err)
	}
	// Only bind B; C and E (also Required) are left unassigned.
	if err := b.AssignInst(top, inst, []string{"B"}, []circuit.Ref{circuit.NetRef(vin)}); err != nil {
		t.Fatal(err)
	}

	report, err := pinassign.Solve(b, inst, "")
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(report.Diagnostics) != 2 {
		t.Fatalf("want 2 MissingRequiredPin warnings (C, E), got %d: %v", len(report.Diagnostics), report.Diagnostics)
	}
}

func TestSolve_UnknownFunctionRejectedByBuilder(t *testing.T) {
	reg := newTestRegistry(t)
	b := circuit.NewBuilder()
	top := b.NewCircuit("top")
	n, _ := b.NewNet(top, "N")
	inst, err := b.NewInst(top, "R1", reg, "R", "")
	if err != nil {
		t.Fatal(err)
	}
	// Builder-time HasFunction check already rejects this; confirm it does
	// so pinassign never even sees an assign for an undeclared function.
	err = b.AssignInst(top, inst, []string{"NOPE"}, []circuit.Ref{circuit.NetRef(n)})
	if err == nil {
		t.Fatal("expected an UnknownFunction error from AssignInst")
	}
}

func TestSolve_BusGroupsResolveToDistinctBuses(t *testing.T) {
	reg := newTestRegistry(t)
	b := circuit.NewBuilder()
	top := b.NewCircuit("top")

	nets := make([]*circuit.Net, 4)
	for i, name := range []string{"t0", "r0", "t1", "r1"} {
		n, err := b.NewNet(top, name)
		if err != nil {
			t.Fatal(err)
		}
		nets[i] = n
	}

	inst, err := b.NewInst(top, "MCU1", reg, "MCU", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AssignInst(top, inst, []string{"UART_TX", "UART_RX"}, []circuit.Ref{circuit.NetRef(nets[0]), circuit.NetRef(nets[1])}); err != nil {
		t.Fatal(err)
	}
	if err := b.AssignInst(top, inst, []string{"UART_TX", "UART_RX"}, []circuit.Ref{circuit.NetRef(nets[2]), circuit.NetRef(nets[3])}); err != nil {
		t.Fatal(err)
	}

	if _, err := pinassign.Solve(b, inst, ""); err != nil {
		t.Fatalf("Solve: %v", err)
	}

	busIDs := map[int]bool{}
	for _, uid := range inst.AssignUIDs {
		a := b.InstAssign(uid)
		if a.Pin == nil {
			continue
		}
		for _, fn := range inst.Component.FunsByFunction(a.Function) {
			if fn.PinID == a.Pin.ID {
				busIDs[fn.BusID] = true
			}
		}
	}
	if len(busIDs) != 2 {
		t.Fatalf("want 2 distinct bus ids across the two bus-groups, got %d", len(busIDs))
	}
}

func TestSolve_EmptyInstIsNoop(t *testing.T) {
	reg := newTestRegistry(t)
	b := circuit.NewBuilder()
	top := b.NewCircuit("top")
	inst, err := b.NewInst(top, "R1", reg, "R", "")
	if err != nil {
		t.Fatal(err)
	}
	report, err := pinassign.Solve(b, inst, "")
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(report.Diagnostics) != 2 {
		t.Fatalf("want 2 MissingRequiredPin warnings (A, B), got %d", len(report.Diagnostics))
	}
	var errUnsat error = pinassign.ErrUnsatisfiablePinAssignment
	if errors.Is(err, errUnsat) {
		t.Fatal("an empty inst must not be reported as unsatisfiable")
	}
}
