// Package kicadimport populates a library.Registry from real KiCad files,
// adapting pkg/kicad/schematic (symbol pins -> library.Component) and
// pkg/kicad/pcb (footprint pads -> library.Package/Device) instead of
// hand-writing every part the way library/demolib does. This is the
// external-collaborator population path spec.md's library model leaves
// open: "how Components/Packages/Devices get registered is outside this
// core's scope" (spec §3, §5) — here, from real board files, the way a
// production flow would actually load its catalog.
package kicadimport

import (
	"fmt"
	"strings"

	"github.com/openpcb/circuitcore/pkg/kicad/pcb"
	"github.com/openpcb/circuitcore/pkg/kicad/schematic"
	"github.com/openpcb/circuitcore/pkg/library"
)

// ComponentsFromSchematic builds one library.Component per embedded
// LibSymbol in sch (spec §3: a Component's Pins come from its symbol),
// skipping power-flag symbols (names like "power:GND", "power:+5V") which
// carry no real Pin geometry.
func ComponentsFromSchematic(sch *schematic.Schematic) ([]*library.Component, error) {
	var out []*library.Component
	for _, sym := range sch.LibSymbols {
		if isPowerSymbol(sym) {
			continue
		}
		c, err := componentFromSymbol(sym)
		if err != nil {
			return nil, fmt.Errorf("kicadimport: symbol %s: %w", sym.Name, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func isPowerSymbol(sym schematic.LibSymbol) bool {
	return strings.HasPrefix(sym.Name, "power:")
}

// UnresolvedSymbolInstances reports every placed symbol.GetAllReferences
// reference whose instance LibID names no embedded LibSymbol definition —
// a schematic saved with stale or missing library symbols. Callers
// typically just log these: a reference designator with no resolvable
// symbol never produces a Component, so it never reaches RegisterComponent
// to fail loudly on its own.
func UnresolvedSymbolInstances(sch *schematic.Schematic) []string {
	known := make(map[string]bool, len(sch.LibSymbols))
	for _, sym := range sch.LibSymbols {
		known[sym.Name] = true
	}

	var unresolved []string
	for _, ref := range sch.GetAllReferences() {
		inst := sch.GetSymbol(ref)
		if inst == nil || known[inst.LibID] {
			continue
		}
		unresolved = append(unresolved, ref)
	}
	return unresolved
}

func componentFromSymbol(sym schematic.LibSymbol) (*library.Component, error) {
	pins := collectPins(sym)
	var libPins []library.Pin
	for _, p := range pins {
		typ := library.ParsePinType(p.Type)
		opts := []library.PinOption{}
		if p.Hide {
			opts = append(opts, library.Description("hidden pin"))
		}
		libPins = append(libPins, library.NewPin(p.Name.Name, typ, nil, opts...))
	}
	return library.NewComponent(symbolComponentName(sym.Name), sym.Name, libPins...)
}

// collectPins flattens a possibly multi-unit symbol's pins: KiCad splits a
// multi-gate part's pins across Units, but circuitcore's Component has no
// unit concept (spec §3's Component is a single flat Pin list), so every
// unit's pins fold into one Component.
func collectPins(sym schematic.LibSymbol) []schematic.Pin {
	pins := append([]schematic.Pin(nil), sym.Pins...)
	for _, u := range sym.Units {
		pins = append(pins, u.Pins...)
	}
	return pins
}

// symbolComponentName strips a KiCad "Library:Symbol" qualifier down to
// the bare symbol name, which is what circuit.Builder.NewInst's
// componentName argument names.
func symbolComponentName(libSymbolName string) string {
	if i := strings.LastIndex(libSymbolName, ":"); i >= 0 {
		return libSymbolName[i+1:]
	}
	return libSymbolName
}

// DevicesFromBoard builds one library.Package and library.Device per
// Footprint on board, registering both into reg against an
// already-registered Component named componentOf(footprint) (spec §3: a
// Device binds one Component to one Package). Footprints whose
// componentOf result isn't a registered Component are skipped with a
// descriptive error collected rather than aborting the whole import.
func DevicesFromBoard(reg *library.Registry, board *pcb.Board, componentOf func(pcb.Footprint) string) ([]error, error) {
	var skipped []error
	for _, fp := range board.Footprints {
		componentName := componentOf(fp)
		comp, ok := reg.ComponentByName(componentName)
		if !ok {
			skipped = append(skipped, fmt.Errorf("kicadimport: footprint %s (%s): no component %q registered", fp.Reference, fp.Name, componentName))
			continue
		}

		pkgName := packageName(fp)
		if _, ok := reg.PackageByName(pkgName); !ok {
			var pads []library.Pad
			for _, p := range fp.Pads {
				pads = append(pads, library.Pad{Name: p.Number})
			}
			if err := reg.RegisterPackage(library.NewPackage(pkgName, nil, pads...)); err != nil {
				return skipped, fmt.Errorf("kicadimport: footprint %s: %w", fp.Reference, err)
			}
		}

		maps, err := inferPadPinMaps(comp, fp)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("kicadimport: footprint %s: %w", fp.Reference, err))
			continue
		}

		deviceName := deviceName(fp, pkgName)
		if _, ok := reg.DeviceByName(deviceName); ok {
			continue
		}
		if _, err := reg.RegisterDevice(deviceName, componentName, pkgName, maps); err != nil {
			return skipped, fmt.Errorf("kicadimport: footprint %s: %w", fp.Reference, err)
		}
	}
	return skipped, nil
}

func packageName(fp pcb.Footprint) string {
	if i := strings.LastIndex(fp.Name, ":"); i >= 0 {
		return fp.Name[i+1:]
	}
	return fp.Name
}

func deviceName(fp pcb.Footprint, pkgName string) string {
	base := symbolComponentName(fp.Value)
	if base == "" {
		base = strings.TrimSuffix(fp.Reference, "?")
	}
	return base + "_" + pkgName
}

// inferPadPinMaps pairs Pads to Pins positionally by declaration order:
// KiCad footprints number Pads to match a symbol's Pin numbers one-to-one
// for simple (single-unit, non-gangable) parts, which is all demolib's
// reference components and the pack's example boards ever model. A
// component with more Pins than the footprint has Pads is an import error
// (a real mismatch, not a deliberately-unmapped optional Pin — kicadimport
// has no Map('N', None) notation of its own to express that).
func inferPadPinMaps(comp *library.Component, fp pcb.Footprint) ([]library.PadPinMap, error) {
	if len(fp.Pads) < len(comp.Pins) {
		return nil, fmt.Errorf("footprint %s has %d pads, component %s has %d pins",
			fp.Name, len(fp.Pads), comp.Name, len(comp.Pins))
	}
	var maps []library.PadPinMap
	for i, pad := range fp.Pads {
		if i < len(comp.Pins) {
			maps = append(maps, library.PadPinMap{PadName: pad.Number, PinName: comp.Pins[i].Name})
		} else {
			maps = append(maps, library.PadPinMap{PadName: pad.Number})
		}
	}
	return maps, nil
}
