// Package devicematch resolves, per Inst, which registered Device it binds
// to (spec §4.4).
package devicematch

import (
	"errors"
	"strings"

	"github.com/openpcb/circuitcore/pkg/circuit"
	"github.com/openpcb/circuitcore/pkg/diag"
	"github.com/openpcb/circuitcore/pkg/library"
)

// ErrNoDeviceForComponent is returned (wrapped) when no Device is
// registered for an Inst's Component (spec §4.4, §7).
var ErrNoDeviceForComponent = errors.New(string(diag.NoDeviceForComponent))

// Match resolves inst.Device by inspecting every Device registered for
// inst.Component, writes the result in place, and returns a Report
// carrying any RandomDeviceSelected warning. qualName is inst's dotted
// hierarchical path (elaborate.Netlist.QualName); callers with no
// flattened Netlist to hand (e.g. tests exercising a bare Inst) may pass
// "" and get inst.Name instead (spec §7: diagnostics identify subjects by
// qualified name, not by uid).
//
// When inst.Value is absent, the first Device in declaration order is
// picked (spec §4.4's "deterministic order of declaration"). When
// inst.Value is present but tokenizing and matching it against every
// Device's name/package name yields no match, the *last*-tried candidate
// is picked rather than the first — this is spec §9 Open Question (a),
// resolved to match pycircuit's `for ... else` fallback, which lands on
// the loop variable's final value after the loop runs to completion.
func Match(registry *library.Registry, inst *circuit.Inst, qualName string) (*diag.Report, error) {
	report := &diag.Report{}
	name := displayName(inst, qualName)

	devices := registry.DevicesByComponent(inst.Component.Name)
	if len(devices) == 0 {
		return nil, errNoDevice(inst)
	}

	if strings.TrimSpace(inst.Value) == "" {
		inst.Device = devices[0]
		report.Addf(diag.Warn, diag.RandomDeviceSelected, uint64(inst.UID),
			"inst %s: no value given, selected device %s arbitrarily", name, inst.Device.Name)
		return report, nil
	}

	tokens := strings.Fields(strings.ToLower(inst.Value))
	for _, token := range tokens {
		for _, d := range devices {
			if strings.ToLower(d.Name) == token || strings.ToLower(d.Package.Name) == token {
				inst.Device = d
				return report, nil
			}
		}
	}

	inst.Device = devices[len(devices)-1]
	report.Addf(diag.Warn, diag.RandomDeviceSelected, uint64(inst.UID),
		"inst %s: value %q matched no device or package name, selected device %s arbitrarily",
		name, inst.Value, inst.Device.Name)
	return report, nil
}

// displayName prefers qualName, falling back to inst's own bare Name when
// the caller has none to give.
func displayName(inst *circuit.Inst, qualName string) string {
	if qualName != "" {
		return qualName
	}
	return inst.Name
}

func errNoDevice(inst *circuit.Inst) error {
	return &noDeviceError{instName: inst.Component.Name}
}

type noDeviceError struct {
	instName string
}

func (e *noDeviceError) Error() string {
	return "component " + e.instName + ": " + ErrNoDeviceForComponent.Error()
}

func (e *noDeviceError) Unwrap() error {
	return ErrNoDeviceForComponent
}

// CheckRequiredPins re-states spec §4.3's post-solve MissingRequiredPin
// check from the device-matching side: once inst.Device is set, every
// non-optional Pin of its Component must have been resolved by some
// InstAssign (spec §4.6 lists this as an External-facing operation
// alongside Match). qualName follows Match's convention above.
func CheckRequiredPins(b *circuit.Builder, inst *circuit.Inst, qualName string) *diag.Report {
	report := &diag.Report{}
	name := displayName(inst, qualName)
	assigned := map[int]bool{}
	for _, uid := range inst.AssignUIDs {
		a := b.InstAssign(uid)
		if a != nil && a.Pin != nil {
			assigned[a.Pin.ID] = true
		}
	}
	for i := range inst.Component.Pins {
		pin := &inst.Component.Pins[i]
		if !pin.Optional && !assigned[pin.ID] {
			report.Addf(diag.Warn, diag.MissingRequiredPin, uint64(inst.UID),
				"inst %s: required pin %s of component %s was not assigned", name, pin.Name, inst.Component.Name)
		}
	}
	return report
}
