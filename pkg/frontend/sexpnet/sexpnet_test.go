package sexpnet_test

import (
	"testing"

	"github.com/openpcb/circuitcore/pkg/circuit"
	"github.com/openpcb/circuitcore/pkg/compile"
	"github.com/openpcb/circuitcore/pkg/frontend/sexpnet"
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

func TestParse_ResistorPair(t *testing.T) {
	src := `
(circuit divider
  (port vin in)
  (port vout out)
  (port gnd gnd)
  (net mid)
  (inst r1 R "10k")
  (inst r2 R "10k")
  (assign r1 (~ ~) (vin mid))
  (assign r2 (~ ~) (mid gnd)))
`
	f, err := sexpnet.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Circuits) != 1 {
		t.Fatalf("want 1 circuit, got %d", len(f.Circuits))
	}
	cd := f.Circuits[0]
	if cd.Name != "divider" {
		t.Fatalf("want circuit name divider, got %s", cd.Name)
	}
	if len(cd.Ports) != 3 {
		t.Fatalf("want 3 ports, got %d", len(cd.Ports))
	}
	if len(cd.Stmts) != 5 {
		t.Fatalf("want 5 statements, got %d", len(cd.Stmts))
	}
}

func TestInterpretAndCompile_ResistorPair(t *testing.T) {
	reg := newTestRegistry(t)
	src := `
(circuit divider
  (port vin in)
  (port vout out)
  (port gnd gnd)
  (net mid)
  (inst r1 R "10k")
  (inst r2 R "10k")
  (assign r1 (~ ~) (vin mid))
  (assign r2 (~ ~) (mid gnd)))
`
	f, err := sexpnet.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	b := circuit.NewBuilder()
	built, err := sexpnet.Interpret(f, b, reg)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	top, ok := built["divider"]
	if !ok {
		t.Fatal("circuit divider not built")
	}

	netlist, report, err := compile.Compile(reg, b, top)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if report.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", report)
	}
	if len(netlist.InstAssigns) != 4 {
		t.Fatalf("want 4 flattened assigns, got %d", len(netlist.InstAssigns))
	}
}

func TestInterpret_HierarchicalSubInst(t *testing.T) {
	reg := newTestRegistry(t)
	src := `
(circuit leaf
  (port vin in)
  (port vout out)
  (inst r1 R "10k")
  (assign r1 (~ ~) (vin vout)))
(circuit top
  (port vin in)
  (port vout out)
  (sub s leaf)
  (subassign s (vin vout) (vin vout)))
`
	f, err := sexpnet.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	b := circuit.NewBuilder()
	built, err := sexpnet.Interpret(f, b, reg)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	top, ok := built["top"]
	if !ok {
		t.Fatal("circuit top not built")
	}

	netlist, report, err := compile.Compile(reg, b, top)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if report.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", report)
	}
	if len(netlist.Insts) != 1 {
		t.Fatalf("want 1 flattened inst, got %d", len(netlist.Insts))
	}
}

func TestParse_MalformedFormRejected(t *testing.T) {
	src := `(circuit bad (bogus 1 2 3))`
	if _, err := sexpnet.Parse(src); err == nil {
		t.Fatal("want error for unknown form, got nil")
	}
}
