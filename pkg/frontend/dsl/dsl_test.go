package dsl_test

import (
	"testing"

	"github.com/openpcb/circuitcore/pkg/circuit"
	"github.com/openpcb/circuitcore/pkg/compile"
	"github.com/openpcb/circuitcore/pkg/frontend/dsl"
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
circuit divider(vin in, vout out, gnd gnd) {
    net mid
    inst r1 = R("10k")
    inst r2 = R("10k")
    r1[~, ~] = vin, mid
    r2[~, ~] = mid, gnd
}
`
	p, err := dsl.NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	f, err := p.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
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
circuit divider(vin in, vout out, gnd gnd) {
    net mid
    inst r1 = R("10k")
    inst r2 = R("10k")
    r1[~, ~] = vin, mid
    r2[~, ~] = mid, gnd
}
`
	p, err := dsl.NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	f, err := p.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}

	b := circuit.NewBuilder()
	built, err := dsl.Interpret(f, b, reg)
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
circuit leaf(vin in, vout out) {
    inst r1 = R("10k")
    r1[~, ~] = vin, vout
}
circuit top(vin in, vout out) {
    sub s = leaf()
    s.[vin, vout] = vin, vout
}
`
	p, err := dsl.NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	f, err := p.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}

	b := circuit.NewBuilder()
	built, err := dsl.Interpret(f, b, reg)
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

func TestInterpret_UndeclaredSubCircuitFails(t *testing.T) {
	reg := newTestRegistry(t)
	src := `
circuit top(vin in, vout out) {
    sub s = notYetDeclared()
    s.[vin, vout] = vin, vout
}
`
	p, err := dsl.NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	f, err := p.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}

	b := circuit.NewBuilder()
	if _, err := dsl.Interpret(f, b, reg); err == nil {
		t.Fatal("want error referencing an undeclared circuit, got nil")
	}
}
