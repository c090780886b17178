package demolib

import "github.com/openpcb/circuitcore/pkg/library"

// Two-pad passive packages, named after their real SMD package codes so
// devicematch.Match's value-token search (spec §4.4, scenario 5) has
// something to find in an Inst.Value like "10k 0805".
var (
	pkg0805  = library.NewPackage("0805", nil, library.Pad{Name: "1"}, library.Pad{Name: "2"})
	pkg0603  = library.NewPackage("0603", nil, library.Pad{Name: "1"}, library.Pad{Name: "2"})
	pkgSOT23 = library.NewPackage("SOT23", nil,
		library.Pad{Name: "1"}, library.Pad{Name: "2"}, library.Pad{Name: "3"})
	pkgRail = library.NewPackage("RAIL", nil, library.Pad{Name: "1"})

	// pkgQFN16 leaves pad 16 unused by any Device mapping below (mirrors
	// original_source/examples/mcu/mcu.py's Map('16', None) for a package
	// pad with no corresponding signal — legal only because the
	// completeness check runs on Component Pins and Package Pads
	// independently, and here every Pad *is* still mapped, just to no Pin:
	// see mcuMaps, which maps pad "16" to the empty PinName.
	pkgQFN16 = library.NewPackage("QFN16", nil,
		library.Pad{Name: "1"}, library.Pad{Name: "2"}, library.Pad{Name: "3"}, library.Pad{Name: "4"},
		library.Pad{Name: "5"}, library.Pad{Name: "6"}, library.Pad{Name: "7"}, library.Pad{Name: "8"},
		library.Pad{Name: "9"}, library.Pad{Name: "10"}, library.Pad{Name: "11"}, library.Pad{Name: "12"},
		library.Pad{Name: "13"}, library.Pad{Name: "14"}, library.Pad{Name: "15"}, library.Pad{Name: "16"},
	)
)

// Load registers every demolib Component, Package and Device into reg. Call
// once per fresh Registry before compiling a Circuit that instantiates
// these parts.
func Load(reg *library.Registry) error {
	for _, c := range []*library.Component{R, C, Q, V, MCU} {
		if err := reg.RegisterComponent(c); err != nil {
			return err
		}
	}
	for _, p := range []*library.Package{pkg0805, pkg0603, pkgSOT23, pkgQFN16, pkgRail} {
		if err := reg.RegisterPackage(p); err != nil {
			return err
		}
	}

	twoPad := []library.PadPinMap{{PadName: "1", PinName: "A"}, {PadName: "2", PinName: "B"}}
	if _, err := reg.RegisterDevice("R0805", "R", "0805", twoPad); err != nil {
		return err
	}
	if _, err := reg.RegisterDevice("R0603", "R", "0603", twoPad); err != nil {
		return err
	}
	if _, err := reg.RegisterDevice("C0805", "C", "0805", twoPad); err != nil {
		return err
	}
	if _, err := reg.RegisterDevice("C0603", "C", "0603", twoPad); err != nil {
		return err
	}

	qMaps := []library.PadPinMap{
		{PadName: "1", PinName: "B"},
		{PadName: "2", PinName: "C"},
		{PadName: "3", PinName: "E"},
	}
	if _, err := reg.RegisterDevice("QSOT23", "Q", "SOT23", qMaps); err != nil {
		return err
	}

	mcuMaps := []library.PadPinMap{
		{PadName: "1", PinName: "GND"},
		{PadName: "2", PinName: "5V"},
		{PadName: "3", PinName: "XTAL_XI"},
		{PadName: "4", PinName: "XTAL_XO"},
		{PadName: "5", PinName: "GPIO_1"},
		{PadName: "6", PinName: "GPIO_2"},
		{PadName: "7", PinName: "GPIO_3"},
		{PadName: "8", PinName: "GPIO_4"},
		{PadName: "9", PinName: "GPIO_5"},
		{PadName: "10", PinName: "GPIO_6"},
		{PadName: "11"}, {PadName: "12"}, {PadName: "13"}, {PadName: "14"}, {PadName: "15"},
		// Pad 16 is deliberately left bare, mirroring mcu.py's Map('16', None).
		{PadName: "16"},
	}
	if _, err := reg.RegisterDevice("MCUQFN16", "MCU", "QFN16", mcuMaps); err != nil {
		return err
	}

	if _, err := reg.RegisterDevice("VRAIL", "V", "RAIL", []library.PadPinMap{{PadName: "1", PinName: "+"}}); err != nil {
		return err
	}

	return nil
}
