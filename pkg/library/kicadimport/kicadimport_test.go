package kicadimport_test

import (
	"testing"

	"github.com/openpcb/circuitcore/pkg/kicad/pcb"
	"github.com/openpcb/circuitcore/pkg/kicad/schematic"
	"github.com/openpcb/circuitcore/pkg/library"
	"github.com/openpcb/circuitcore/pkg/library/kicadimport"
)

func TestComponentsFromSchematic(t *testing.T) {
	sch := &schematic.Schematic{
		LibSymbols: []schematic.LibSymbol{
			{
				Name: "power:GND",
				Pins: []schematic.Pin{{Type: "power_in", Name: schematic.PinName{Name: "GND"}}},
			},
			{
				Name: "Device:R",
				Pins: []schematic.Pin{
					{Type: "passive", Name: schematic.PinName{Name: "1"}, Number: schematic.PinNum{Number: "1"}},
					{Type: "passive", Name: schematic.PinName{Name: "2"}, Number: schematic.PinNum{Number: "2"}},
				},
			},
		},
	}

	comps, err := kicadimport.ComponentsFromSchematic(sch)
	if err != nil {
		t.Fatalf("ComponentsFromSchematic: %v", err)
	}
	if len(comps) != 1 {
		t.Fatalf("want 1 component (power symbol skipped), got %d", len(comps))
	}
	r := comps[0]
	if r.Name != "R" {
		t.Fatalf("want component name R, got %s", r.Name)
	}
	if len(r.Pins) != 2 {
		t.Fatalf("want 2 pins, got %d", len(r.Pins))
	}
	for _, p := range r.Pins {
		if p.Type != library.INOUT {
			t.Fatalf("pin %s: want INOUT (passive), got %v", p.Name, p.Type)
		}
	}
}

func TestDevicesFromBoard(t *testing.T) {
	reg := library.NewRegistry()
	comp, err := library.NewComponent("R", "Resistor",
		library.NewPin("1", library.INOUT, nil, library.Required()),
		library.NewPin("2", library.INOUT, nil, library.Required()),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterComponent(comp); err != nil {
		t.Fatal(err)
	}

	board := &pcb.Board{
		Footprints: []pcb.Footprint{
			{
				Library:   "Resistor_SMD",
				Name:      "Resistor_SMD:R_0805_2012Metric",
				Reference: "R1",
				Value:     "R",
				Pads: []pcb.Pad{
					{Number: "1"},
					{Number: "2"},
				},
			},
		},
	}

	skipped, err := kicadimport.DevicesFromBoard(reg, board, func(fp pcb.Footprint) string { return fp.Value })
	if err != nil {
		t.Fatalf("DevicesFromBoard: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skips: %v", skipped)
	}

	devices := reg.DevicesByComponent("R")
	if len(devices) != 1 {
		t.Fatalf("want 1 device, got %d", len(devices))
	}
	if devices[0].Package.Name != "R_0805_2012Metric" {
		t.Fatalf("want package R_0805_2012Metric, got %s", devices[0].Package.Name)
	}
}

func TestUnresolvedSymbolInstances(t *testing.T) {
	sch := &schematic.Schematic{
		LibSymbols: []schematic.LibSymbol{
			{Name: "Device:R"},
		},
		Symbols: []schematic.Symbol{
			{
				LibID:      "Device:R",
				Properties: []schematic.Property{{Key: "Reference", Value: "R1"}},
			},
			{
				LibID:      "Device:C",
				Properties: []schematic.Property{{Key: "Reference", Value: "C1"}},
			},
		},
	}

	unresolved := kicadimport.UnresolvedSymbolInstances(sch)
	if len(unresolved) != 1 || unresolved[0] != "C1" {
		t.Fatalf("want [C1], got %v", unresolved)
	}
}

func TestDevicesFromBoard_SkipsUnknownComponent(t *testing.T) {
	reg := library.NewRegistry()
	board := &pcb.Board{
		Footprints: []pcb.Footprint{
			{Name: "Foo:Bar", Reference: "U1", Value: "Unregistered"},
		},
	}
	skipped, err := kicadimport.DevicesFromBoard(reg, board, func(fp pcb.Footprint) string { return fp.Value })
	if err != nil {
		t.Fatalf("DevicesFromBoard: %v", err)
	}
	if len(skipped) != 1 {
		t.Fatalf("want 1 skipped footprint, got %d", len(skipped))
	}
}
