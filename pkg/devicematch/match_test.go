package devicematch_test

import (
	"errors"
	"testing"

	"github.com/openpcb/circuitcore/pkg/circuit"
	"github.com/openpcb/circuitcore/pkg/devicematch"
	"github.com/openpcb/circuitcore/pkg/diag"
	"github.com/openpcb/circuitcore/pkg/library"
	"github.com/openpcb/circuitcore/pkg/library/demolib"
)

func newTestRegistry(t *testing.T) *library.Registry {
	t.Helper()
	reg := library.NewRegistry()
	if err := demolib.Load(reg); err != nil {
		t.Fatalf("demolib.Load: %v", err)
	}
	return reg
}

func TestMatch_ValueSelectsPackageToken(t *testing.T) {
	reg := newTestRegistry(t)
	b := circuit.NewBuilder()
	top := b.NewCircuit("top")
	inst, err := b.NewInst(top, "R1", reg, "R", "10k 0603")
	if err != nil {
		t.Fatal(err)
	}
	report, err := devicematch.Match(reg, inst, "")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(report.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics for a confident match: %v", report.Diagnostics)
	}
	if inst.Device == nil || inst.Device.Name != "R0603" {
		t.Fatalf("want device R0603, got %v", inst.Device)
	}
}

func TestMatch_NoValueWarnsAndPicksFirst(t *testing.T) {
	reg := newTestRegistry(t)
	b := circuit.NewBuilder()
	top := b.NewCircuit("top")
	inst, err := b.NewInst(top, "R1", reg, "R", "")
	if err != nil {
		t.Fatal(err)
	}
	report, err := devicematch.Match(reg, inst, "")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(report.Diagnostics) != 1 || report.Diagnostics[0].Code != diag.RandomDeviceSelected {
		t.Fatalf("want one RandomDeviceSelected warning, got %v", report.Diagnostics)
	}
	if inst.Device == nil || inst.Device.Name != "R0805" {
		t.Fatalf("want first-registered device R0805, got %v", inst.Device)
	}
}

func TestMatch_UnmatchedValueFallsBackToLastTried(t *testing.T) {
	reg := newTestRegistry(t)
	b := circuit.NewBuilder()
	top := b.NewCircuit("top")
	inst, err := b.NewInst(top, "R1", reg, "R", "10k nonexistent")
	if err != nil {
		t.Fatal(err)
	}
	report, err := devicematch.Match(reg, inst, "")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(report.Diagnostics) != 1 || report.Diagnostics[0].Code != diag.RandomDeviceSelected {
		t.Fatalf("want one RandomDeviceSelected warning, got %v", report.Diagnostics)
	}
	if inst.Device == nil || inst.Device.Name != "R0603" {
		t.Fatalf("want last-tried device R0603 (Open Question (a)), got %v", inst.Device)
	}
}

func TestMatch_NoDeviceForComponent(t *testing.T) {
	reg := library.NewRegistry()
	comp, err := library.NewComponent("Orphan", "", library.Pwr("+", library.Required()))
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterComponent(comp); err != nil {
		t.Fatal(err)
	}

	b := circuit.NewBuilder()
	top := b.NewCircuit("top")
	inst, err := b.NewInst(top, "U1", reg, "Orphan", "")
	if err != nil {
		t.Fatal(err)
	}

	_, err = devicematch.Match(reg, inst, "")
	if !errors.Is(err, devicematch.ErrNoDeviceForComponent) {
		t.Fatalf("want ErrNoDeviceForComponent, got %v", err)
	}
}

func TestCheckRequiredPins(t *testing.T) {
	reg := newTestRegistry(t)
	b := circuit.NewBuilder()
	top := b.NewCircuit("top")
	n, _ := b.NewNet(top, "N")
	inst, err := b.NewInst(top, "Q1", reg, "Q", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AssignInst(top, inst, []string{"B"}, []circuit.Ref{circuit.NetRef(n)}); err != nil {
		t.Fatal(err)
	}
	b.InstAssign(inst.AssignUIDs[0]).Pin = inst.Component.PinByName("B")

	report := devicematch.CheckRequiredPins(b, inst, "")
	if len(report.Diagnostics) != 2 {
		t.Fatalf("want 2 MissingRequiredPin warnings (C, E), got %d: %v", len(report.Diagnostics), report.Diagnostics)
	}
}
