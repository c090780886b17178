package circuit_test

import (
	"testing"

	"github.com/openpcb/circuitcore/pkg/circuit"
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

func TestNewNet_DuplicateNameRejected(t *testing.T) {
	b := circuit.NewBuilder()
	c := b.NewCircuit("c")
	if _, err := b.NewNet(c, "A"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.NewNet(c, "A"); err == nil {
		t.Fatal("expected a duplicate net name error")
	}
}

func TestAssignInst_SharesOneGUIDAcrossABusGroup(t *testing.T) {
	reg := newTestRegistry(t)
	b := circuit.NewBuilder()
	c := b.NewCircuit("c")
	tx, _ := b.NewNet(c, "tx")
	rx, _ := b.NewNet(c, "rx")
	inst, err := b.NewInst(c, "MCU1", reg, "MCU", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AssignInst(c, inst, []string{"UART_TX", "UART_RX"}, []circuit.Ref{circuit.NetRef(tx), circuit.NetRef(rx)}); err != nil {
		t.Fatal(err)
	}
	if len(inst.AssignUIDs) != 2 {
		t.Fatalf("want 2 assigns, got %d", len(inst.AssignUIDs))
	}
	a0 := b.InstAssign(inst.AssignUIDs[0])
	a1 := b.InstAssign(inst.AssignUIDs[1])
	if a0.GUID != a1.GUID {
		t.Fatalf("bus-group members must share one guid: %d != %d", a0.GUID, a1.GUID)
	}
	if a0.UID == a1.UID {
		t.Fatal("distinct assigns must have distinct uids")
	}
}

func TestAssignInst_ArityMismatchRejected(t *testing.T) {
	reg := newTestRegistry(t)
	b := circuit.NewBuilder()
	c := b.NewCircuit("c")
	tx, _ := b.NewNet(c, "tx")
	inst, err := b.NewInst(c, "MCU1", reg, "MCU", "")
	if err != nil {
		t.Fatal(err)
	}
	err = b.AssignInst(c, inst, []string{"UART_TX", "UART_RX"}, []circuit.Ref{circuit.NetRef(tx)})
	if err == nil {
		t.Fatal("expected an arity-mismatch error")
	}
}

func TestPortRef_LazilyCreatesInternalNetOnce(t *testing.T) {
	reg := newTestRegistry(t)
	b := circuit.NewBuilder()
	c := b.NewCircuit("c")
	p, err := b.NewPort(c, "vin", library.IN, "")
	if err != nil {
		t.Fatal(err)
	}

	r1, err := b.NewInst(c, "R1", reg, "R", "")
	if err != nil {
		t.Fatal(err)
	}
	n, _ := b.NewNet(c, "mid1")
	if err := b.AssignInst(c, r1, []string{"~", "~"}, []circuit.Ref{circuit.PortRef(p), circuit.NetRef(n)}); err != nil {
		t.Fatal(err)
	}

	r2, err := b.NewInst(c, "R2", reg, "R", "")
	if err != nil {
		t.Fatal(err)
	}
	n2, _ := b.NewNet(c, "mid2")
	if err := b.AssignInst(c, r2, []string{"~", "~"}, []circuit.Ref{circuit.PortRef(p), circuit.NetRef(n2)}); err != nil {
		t.Fatal(err)
	}

	a0 := b.InstAssign(r1.AssignUIDs[0])
	a1 := b.InstAssign(r2.AssignUIDs[0])
	if a0.NetUID != a1.NetUID {
		t.Fatalf("both internal assigns to the same port must resolve to the same lazily-created net: %d != %d", a0.NetUID, a1.NetUID)
	}
}

func TestWrapCircuit_RejectsReuseOfAnAlreadyWrappedCircuit(t *testing.T) {
	b := circuit.NewBuilder()
	inner := b.NewCircuit("inner")
	outer1 := b.NewCircuit("outer1")
	outer2 := b.NewCircuit("outer2")

	if _, err := b.WrapCircuit(outer1, "s1", inner); err != nil {
		t.Fatal(err)
	}
	if _, err := b.WrapCircuit(outer2, "s2", inner); err == nil {
		t.Fatal("expected an error wrapping a Circuit that is already instantiated elsewhere")
	}
}

func TestAssignSubInstPort_RejectsSecondExternalAssign(t *testing.T) {
	b := circuit.NewBuilder()
	inner := b.NewCircuit("inner")
	if _, err := b.NewPort(inner, "vin", library.IN, ""); err != nil {
		t.Fatal(err)
	}
	outer := b.NewCircuit("outer")
	sub, err := b.WrapCircuit(outer, "s1", inner)
	if err != nil {
		t.Fatal(err)
	}
	n1, _ := b.NewNet(outer, "N1")
	n2, _ := b.NewNet(outer, "N2")
	if err := b.AssignSubInstPort(outer, sub, "vin", circuit.NetRef(n1)); err != nil {
		t.Fatal(err)
	}
	if err := b.AssignSubInstPort(outer, sub, "vin", circuit.NetRef(n2)); err == nil {
		t.Fatal("expected an error on a second external assignment to the same port")
	}
}
