package compile_test

import (
	"testing"

	"github.com/openpcb/circuitcore/pkg/circuit"
	"github.com/openpcb/circuitcore/pkg/compile"
	"github.com/openpcb/circuitcore/pkg/diag"
	"github.com/openpcb/circuitcore/pkg/library"
	"github.com/openpcb/circuitcore/pkg/library/demolib"
)

func newRegistry(t *testing.T) *library.Registry {
	t.Helper()
	reg := library.NewRegistry()
	if err := demolib.Load(reg); err != nil {
		t.Fatalf("demolib.Load: %v", err)
	}
	return reg
}

// Scenario 1: resistor pair.
func TestCompile_ResistorPair(t *testing.T) {
	reg := newRegistry(t)
	b := circuit.NewBuilder()
	top := b.NewCircuit("resistor_pair")

	vin, err := b.NewNet(top, "VIN")
	if err != nil {
		t.Fatal(err)
	}
	vout, err := b.NewNet(top, "VOUT")
	if err != nil {
		t.Fatal(err)
	}
	gnd, err := b.NewNet(top, "GND")
	if err != nil {
		t.Fatal(err)
	}

	r1, err := b.NewInst(top, "R1", reg, "R", "10k")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AssignInst(top, r1, []string{"~", "~"}, []circuit.Ref{circuit.NetRef(vin), circuit.NetRef(vout)}); err != nil {
		t.Fatal(err)
	}

	r2, err := b.NewInst(top, "R2", reg, "R", "10k")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AssignInst(top, r2, []string{"~", "~"}, []circuit.Ref{circuit.NetRef(vout), circuit.NetRef(gnd)}); err != nil {
		t.Fatal(err)
	}

	nl, report, err := compile.Compile(reg, b, top)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(nl.Nets) != 3 {
		t.Fatalf("want 3 nets, got %d", len(nl.Nets))
	}
	if len(nl.Insts) != 2 {
		t.Fatalf("want 2 insts, got %d", len(nl.Insts))
	}
	if nl.Insts[0].Name == nl.Insts[1].Name {
		t.Fatalf("inst names not distinct: %s", nl.Insts[0].Name)
	}
	for _, inst := range nl.Insts {
		pins := map[int]bool{}
		for _, uid := range inst.AssignUIDs {
			a := b.InstAssign(uid)
			if a.Pin == nil {
				t.Fatalf("inst %s: assign %d has no pin", inst.Name, uid)
			}
			if pins[a.Pin.ID] {
				t.Fatalf("inst %s: pin %d assigned twice", inst.Name, a.Pin.ID)
			}
			pins[a.Pin.ID] = true
		}
	}
	for _, d := range report.Diagnostics {
		if d.Severity == diag.Error {
			t.Fatalf("unexpected error diagnostic: %v", d)
		}
	}
}

// Scenario 3: hierarchical RGB via a shared led() Circuit SubInst'd three
// times under one top-level rgb Circuit.
func TestCompile_HierarchicalRGB(t *testing.T) {
	reg := newRegistry(t)
	b := circuit.NewBuilder()

	buildLED := func(name string) *circuit.Circuit {
		led := b.NewCircuit(name)
		vin, err := b.NewPort(led, "vin", library.IN, "")
		if err != nil {
			t.Fatal(err)
		}
		gnd, err := b.NewPort(led, "gnd", library.GND, "gnd")
		if err != nil {
			t.Fatal(err)
		}
		r, err := b.NewInst(led, "R", reg, "R", "220")
		if err != nil {
			t.Fatal(err)
		}
		mid, err := b.NewNet(led, "mid")
		if err != nil {
			t.Fatal(err)
		}
		if err := b.AssignInst(led, r, []string{"~", "~"}, []circuit.Ref{circuit.PortRef(vin), circuit.NetRef(mid)}); err != nil {
			t.Fatal(err)
		}
		// a second resistor stands in for the LED die itself, keeping this
		// fixture to parts demolib actually defines.
		led2, err := b.NewInst(led, "D", reg, "R", "led")
		if err != nil {
			t.Fatal(err)
		}
		if err := b.AssignInst(led, led2, []string{"~", "~"}, []circuit.Ref{circuit.NetRef(mid), circuit.PortRef(gnd)}); err != nil {
			t.Fatal(err)
		}
		return led
	}

	rgb := b.NewCircuit("rgb")
	rPort, err := b.NewPort(rgb, "r", library.IN, "")
	if err != nil {
		t.Fatal(err)
	}
	gPort, err := b.NewPort(rgb, "g", library.IN, "")
	if err != nil {
		t.Fatal(err)
	}
	bluePort, err := b.NewPort(rgb, "b", library.IN, "")
	if err != nil {
		t.Fatal(err)
	}
	gndPort, err := b.NewPort(rgb, "gnd", library.GND, "gnd")
	if err != nil {
		t.Fatal(err)
	}

	for _, side := range []struct {
		name string
		port *circuit.Port
	}{{"led_r", rPort}, {"led_g", gPort}, {"led_b", bluePort}} {
		led := buildLED(side.name)
		sub, err := b.WrapCircuit(rgb, side.name, led)
		if err != nil {
			t.Fatal(err)
		}
		if err := b.AssignSubInstPort(rgb, sub, "vin", circuit.PortRef(side.port)); err != nil {
			t.Fatal(err)
		}
		if err := b.AssignSubInstPort(rgb, sub, "gnd", circuit.PortRef(gndPort)); err != nil {
			t.Fatal(err)
		}
	}

	top := b.NewCircuit("top")
	gpioR, err := b.NewNet(top, "GPIO_R")
	if err != nil {
		t.Fatal(err)
	}
	gpioG, err := b.NewNet(top, "GPIO_G")
	if err != nil {
		t.Fatal(err)
	}
	gpioB, err := b.NewNet(top, "GPIO_B")
	if err != nil {
		t.Fatal(err)
	}
	gnd, err := b.NewNet(top, "GND")
	if err != nil {
		t.Fatal(err)
	}
	rgbSub, err := b.WrapCircuit(top, "rgb1", rgb)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AssignSubInstPorts(top, rgbSub,
		[]string{"r", "g", "b", "gnd"},
		[]circuit.Ref{circuit.NetRef(gpioR), circuit.NetRef(gpioG), circuit.NetRef(gpioB), circuit.NetRef(gnd)},
	); err != nil {
		t.Fatal(err)
	}

	nl, _, err := compile.Compile(reg, b, top)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(nl.InstAssigns) != 12 { // 2 resistors x 2 pins each, across 3 LEDs
		t.Fatalf("want 12 flattened assigns, got %d", len(nl.InstAssigns))
	}
	for _, a := range nl.InstAssigns {
		if nl.NetByUID(a.NetUID) == nil {
			t.Fatalf("assign %d: net %d not in flat netlist", a.UID, a.NetUID)
		}
	}
	// Each of the 3 leds contributes its own "mid" net (3), plus top's
	// GPIO_R/GPIO_G/GPIO_B/GND (4): 7 true nets. Every rgb/led Port (r, g,
	// b, gnd on rgb; vin, gnd on each of the 3 leds, 4+6=10 Ports) lazily
	// gets its own Port-owned scaffolding Net when first assigned to, and
	// forwardNet reroutes every InstAssign across those before Flatten
	// returns, leaving each one with zero remaining Assigns — spec §4.5's
	// Net-pruning drops all 10 of them, so only the 7 true nets survive.
	if len(nl.Nets) != 7 {
		t.Fatalf("want 7 nets after pruning zero-assign Port scaffolding, got %d", len(nl.Nets))
	}
	for _, n := range nl.Nets {
		if len(nl.AssignsByNet(n.UID)) == 0 {
			t.Fatalf("net %s (uid %d) survived pruning with zero assigns", n.Name, n.UID)
		}
	}
}

// Scenario 4: bus-group assignment to an MCU's two independent UART bus
// groups must resolve to distinct, non-overlapping pin pairs.
func TestCompile_MCUBusGroups(t *testing.T) {
	reg := newRegistry(t)
	b := circuit.NewBuilder()
	top := b.NewCircuit("mcu_bus")

	gnd, err := b.NewNet(top, "GND")
	if err != nil {
		t.Fatal(err)
	}
	vcc, err := b.NewNet(top, "VCC")
	if err != nil {
		t.Fatal(err)
	}
	clk, err := b.NewNet(top, "CLK_IN")
	if err != nil {
		t.Fatal(err)
	}
	clkOut, err := b.NewNet(top, "CLK_OUT")
	if err != nil {
		t.Fatal(err)
	}
	uart0Tx, err := b.NewNet(top, "uart0_tx")
	if err != nil {
		t.Fatal(err)
	}
	uart0Rx, err := b.NewNet(top, "uart0_rx")
	if err != nil {
		t.Fatal(err)
	}
	uart1Tx, err := b.NewNet(top, "uart1_tx")
	if err != nil {
		t.Fatal(err)
	}
	uart1Rx, err := b.NewNet(top, "uart1_rx")
	if err != nil {
		t.Fatal(err)
	}

	mcu, err := b.NewInst(top, "MCU1", reg, "MCU", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AssignInst(top, mcu, []string{"GND", "5V"}, []circuit.Ref{circuit.NetRef(gnd), circuit.NetRef(vcc)}); err != nil {
		t.Fatal(err)
	}
	if err := b.AssignInst(top, mcu, []string{"XTAL_XI", "XTAL_XO"}, []circuit.Ref{circuit.NetRef(clk), circuit.NetRef(clkOut)}); err != nil {
		t.Fatal(err)
	}
	if err := b.AssignInst(top, mcu, []string{"UART_TX", "UART_RX"}, []circuit.Ref{circuit.NetRef(uart0Tx), circuit.NetRef(uart0Rx)}); err != nil {
		t.Fatal(err)
	}
	if err := b.AssignInst(top, mcu, []string{"UART_TX", "UART_RX"}, []circuit.Ref{circuit.NetRef(uart1Tx), circuit.NetRef(uart1Rx)}); err != nil {
		t.Fatal(err)
	}

	nl, _, err := compile.Compile(reg, b, top)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	pinsUsed := map[string]bool{}
	var busIDs []int
	for _, inst := range nl.Insts {
		if inst.Name != "MCU1" {
			continue
		}
		for _, uid := range inst.AssignUIDs {
			a := b.InstAssign(uid)
			if a.Function != "UART_TX" && a.Function != "UART_RX" {
				continue
			}
			if a.Pin == nil {
				t.Fatalf("uart assign %d unresolved", a.UID)
			}
			if pinsUsed[a.Pin.Name] {
				t.Fatalf("pin %s reused across bus-groups", a.Pin.Name)
			}
			pinsUsed[a.Pin.Name] = true
			fn := inst.Component.FunsByFunction(a.Function)
			for _, f := range fn {
				if f.PinID == a.Pin.ID {
					busIDs = append(busIDs, f.BusID)
				}
			}
		}
	}
	if len(pinsUsed) != 4 {
		t.Fatalf("want 4 distinct uart pins, got %d", len(pinsUsed))
	}
	if len(busIDs) != 4 || busIDs[0] != busIDs[1] || busIDs[2] != busIDs[3] || busIDs[0] == busIDs[2] {
		t.Fatalf("bus ids not grouped as expected: %v", busIDs)
	}
}

// Scenario 5: value-driven device match.
func TestCompile_ValueDrivenDeviceMatch(t *testing.T) {
	reg := newRegistry(t)
	b := circuit.NewBuilder()
	top := b.NewCircuit("device_match")

	a, err := b.NewNet(top, "A")
	if err != nil {
		t.Fatal(err)
	}
	c, err := b.NewNet(top, "C")
	if err != nil {
		t.Fatal(err)
	}

	r1, err := b.NewInst(top, "R1", reg, "R", "10k 0805")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AssignInst(top, r1, []string{"~", "~"}, []circuit.Ref{circuit.NetRef(a), circuit.NetRef(c)}); err != nil {
		t.Fatal(err)
	}

	r2, err := b.NewInst(top, "R2", reg, "R", "10k")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AssignInst(top, r2, []string{"~", "~"}, []circuit.Ref{circuit.NetRef(a), circuit.NetRef(c)}); err != nil {
		t.Fatal(err)
	}

	if _, _, err := compile.Compile(reg, b, top); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if r1.Device == nil || r1.Device.Name != "R0805" {
		t.Fatalf("r1: want device R0805, got %v", r1.Device)
	}
	if r2.Device == nil {
		t.Fatalf("r2: expected an arbitrarily selected device")
	}
}

// Scenario 6: ERC violation — two OUT pins tied to the same net.
func TestCompile_ErcConflict(t *testing.T) {
	reg := newRegistry(t)
	b := circuit.NewBuilder()
	top := b.NewCircuit("erc_conflict")

	shared, err := b.NewNet(top, "SHARED")
	if err != nil {
		t.Fatal(err)
	}
	other1, err := b.NewNet(top, "O1")
	if err != nil {
		t.Fatal(err)
	}
	other2, err := b.NewNet(top, "O2")
	if err != nil {
		t.Fatal(err)
	}

	q1, err := b.NewInst(top, "Q1", reg, "Q", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AssignInst(top, q1, []string{"B", "C", "E"}, []circuit.Ref{circuit.NetRef(other1), circuit.NetRef(other2), circuit.NetRef(shared)}); err != nil {
		t.Fatal(err)
	}

	q2, err := b.NewInst(top, "Q2", reg, "Q", "")
	if err != nil {
		t.Fatal(err)
	}
	other3, err := b.NewNet(top, "O3")
	if err != nil {
		t.Fatal(err)
	}
	// Q2's E (OUT) also drives shared, the same net Q1's E already drives:
	// two OUTPUT assigns on one net, the conflict scenario 6 exercises.
	if err := b.AssignInst(top, q2, []string{"B", "C", "E"}, []circuit.Ref{circuit.NetRef(other3), circuit.NetRef(other1), circuit.NetRef(shared)}); err != nil {
		t.Fatal(err)
	}

	nl, report, err := compile.Compile(reg, b, top)
	if err != nil {
		t.Fatalf("Compile returned a fatal error for a non-fatal ERC conflict: %v", err)
	}
	if nl == nil {
		t.Fatal("expected a non-nil Netlist even when ERC reports an error")
	}

	var found bool
	for _, d := range report.Diagnostics {
		if d.Code == diag.ErcConflict {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an ErcConflict diagnostic, got %v", report.Diagnostics)
	}
	if !report.HasErrors() {
		t.Fatal("expected HasErrors() true (nonzero exit code per spec)")
	}
}

// Idempotency: compile(circuit) run again on the same circuit, after a
// round-trip through persistence, must reproduce the same Netlist and
// Report (spec §8's "compile(circuit) is idempotent when re-run on its
// own output"). Re-running Compile directly on the same *circuit.Builder
// would only prove pinassign/devicematch don't mutate their own inputs;
// going through ToObject/FromObject also proves nothing about the
// persisted form itself drifts from one compile to the next.
func TestCompile_IdempotentAcrossPersistRoundTrip(t *testing.T) {
	reg := newRegistry(t)
	b := circuit.NewBuilder()
	top := b.NewCircuit("resistor_pair")

	vin, err := b.NewNet(top, "VIN")
	if err != nil {
		t.Fatal(err)
	}
	vout, err := b.NewNet(top, "VOUT")
	if err != nil {
		t.Fatal(err)
	}
	gnd, err := b.NewNet(top, "GND")
	if err != nil {
		t.Fatal(err)
	}

	r1, err := b.NewInst(top, "R1", reg, "R", "10k")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AssignInst(top, r1, []string{"~", "~"}, []circuit.Ref{circuit.NetRef(vin), circuit.NetRef(vout)}); err != nil {
		t.Fatal(err)
	}
	r2, err := b.NewInst(top, "R2", reg, "R", "10k")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AssignInst(top, r2, []string{"~", "~"}, []circuit.Ref{circuit.NetRef(vout), circuit.NetRef(gnd)}); err != nil {
		t.Fatal(err)
	}

	nl1, report1, err := compile.Compile(reg, b, top)
	if err != nil {
		t.Fatalf("first Compile: %v", err)
	}

	data, err := b.ToObject(top)
	if err != nil {
		t.Fatalf("ToObject: %v", err)
	}
	b2, top2, err := circuit.FromObject(data, reg)
	if err != nil {
		t.Fatalf("FromObject: %v", err)
	}

	nl2, report2, err := compile.Compile(reg, b2, top2)
	if err != nil {
		t.Fatalf("second Compile (post round-trip): %v", err)
	}

	if len(nl1.Insts) != len(nl2.Insts) {
		t.Fatalf("inst count changed across recompile: %d vs %d", len(nl1.Insts), len(nl2.Insts))
	}
	if len(nl1.Nets) != len(nl2.Nets) {
		t.Fatalf("net count changed across recompile: %d vs %d", len(nl1.Nets), len(nl2.Nets))
	}
	if len(nl1.InstAssigns) != len(nl2.InstAssigns) {
		t.Fatalf("assign count changed across recompile: %d vs %d", len(nl1.InstAssigns), len(nl2.InstAssigns))
	}
	for i := range nl1.Insts {
		a, c := nl1.Insts[i], nl2.Insts[i]
		if a.UID != c.UID || a.Name != c.Name {
			t.Fatalf("inst[%d] drifted: (%d,%s) vs (%d,%s)", i, a.UID, a.Name, c.UID, c.Name)
		}
		if (a.Device == nil) != (c.Device == nil) || (a.Device != nil && a.Device.Name != c.Device.Name) {
			t.Fatalf("inst %s: device drifted: %v vs %v", a.Name, a.Device, c.Device)
		}
	}
	for i := range nl1.Nets {
		if nl1.Nets[i].UID != nl2.Nets[i].UID || nl1.Nets[i].Name != nl2.Nets[i].Name {
			t.Fatalf("net[%d] drifted: (%d,%s) vs (%d,%s)", i, nl1.Nets[i].UID, nl1.Nets[i].Name, nl2.Nets[i].UID, nl2.Nets[i].Name)
		}
	}
	for i := range nl1.InstAssigns {
		a, c := nl1.InstAssigns[i], nl2.InstAssigns[i]
		if a.NetUID != c.NetUID {
			t.Fatalf("assign[%d] resolved to a different net: %d vs %d", i, a.NetUID, c.NetUID)
		}
		if (a.Pin == nil) != (c.Pin == nil) || (a.Pin != nil && a.Pin.Name != c.Pin.Name) {
			t.Fatalf("assign[%d] resolved to a different pin: %v vs %v", i, a.Pin, c.Pin)
		}
	}
	if len(report1.Diagnostics) != len(report2.Diagnostics) {
		t.Fatalf("diagnostic count changed across recompile: %d vs %d", len(report1.Diagnostics), len(report2.Diagnostics))
	}
	for i := range report1.Diagnostics {
		d1, d2 := report1.Diagnostics[i], report2.Diagnostics[i]
		if d1.Code != d2.Code || d1.Severity != d2.Severity {
			t.Fatalf("diagnostic[%d] drifted: %v vs %v", i, d1, d2)
		}
	}
}
