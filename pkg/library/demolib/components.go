// Package demolib is a small demo component library exercising every
// corner of circuit, elaborate, pinassign, devicematch and erc: the passive
// R/C/Q parts and bus-group wiring grounded on
// original_source/pycircuit/library/components.py, and the bus-group MCU
// grounded on original_source/examples/mcu/mcu.py. It plays the role
// pycircuit's own "demo" library plays in the reference examples, and backs
// the spec §8 end-to-end test scenarios.
package demolib

import "github.com/openpcb/circuitcore/pkg/library"

// R is a two-terminal resistor. Both pins share a single non-bus Function
// so either terminal can bind to either wire (pycircuit's
// Component('R', 'Resistor', Pin('A', Fun('~')), Pin('B', Fun('~')))).
var R = mustComponent("R", "Resistor",
	library.NewPin("A", library.INOUT, []library.Function{library.Fun("~")}, library.Required()),
	library.NewPin("B", library.INOUT, []library.Function{library.Fun("~")}, library.Required()),
)

// C is a two-terminal capacitor. Like R its terminals are interchangeable
// under a single non-bus Function so a polarized or unpolarized part can bind either
// way round (pycircuit's Component('C', 'Capacitor', ...)).
var C = mustComponent("C", "Capacitor",
	library.NewPin("A", library.INOUT, []library.Function{library.Fun("~")}, library.Required()),
	library.NewPin("B", library.INOUT, []library.Function{library.Fun("~")}, library.Required()),
)

// Q is an NPN bipolar transistor: Base in, Collector in, Emitter out
// (pycircuit's Component('Q', 'Bipolar transistor', Pin('B', Fun('B'),
// optional=False), Pin('C', Fun('C'), optional=False), Pin('E', Fun('E'),
// optional=False))).
var Q = mustComponent("Q", "Bipolar transistor",
	library.In("B", []library.Function{library.Fun("B")}, library.Required()),
	library.In("C", []library.Function{library.Fun("C")}, library.Required()),
	library.Out("E", []library.Function{library.Fun("E")}, library.Required()),
)

// V is a voltage source / rail: a single power pin '+' whose one Function is
// also named '+' (Pwr's default), modeled on pycircuit's
// Component('V', 'Voltage source', Pin('+', Fun('~'), optional=False)) used
// throughout the reference examples to name supply rails.
var V = mustComponent("V", "Voltage source",
	library.Pwr("+", library.Required(), library.Voltage("vcc")),
)

// MCU is a microcontroller with a ground pin, a power pin, a crystal
// input/output pair and six GPIO pins split into two UART bus-groups
// (GPIO_1/GPIO_2 as UART0_TX/UART0_RX, GPIO_5/GPIO_6 as UART1_TX/UART1_RX),
// grounded on original_source/examples/mcu/mcu.py's
// Component('MCU', 'Microcontroller', Gnd('GND'), Pwr('5V'), In('XTAL_XI'),
// Out('XTAL_XO'), Io('GPIO_1', BusFun('UART0', 'UART_TX')), ...).
var MCU = mustComponent("MCU", "Microcontroller",
	library.Gnd("GND", library.Required(), library.Voltage("gnd")),
	library.Pwr("5V", library.Required(), library.Voltage("3.3V")),
	library.In("XTAL_XI", []library.Function{library.Fun("XTAL_XI")}, library.Required()),
	library.Out("XTAL_XO", []library.Function{library.Fun("XTAL_XO")}, library.Required()),
	library.Io("GPIO_1", []library.Function{library.BusFun("UART0", "UART_TX")}),
	library.Io("GPIO_2", []library.Function{library.BusFun("UART0", "UART_RX")}),
	library.Io("GPIO_3", []library.Function{library.Fun("GPIO_3")}),
	library.Io("GPIO_4", []library.Function{library.Fun("GPIO_4")}),
	library.Io("GPIO_5", []library.Function{library.BusFun("UART1", "UART_TX")}),
	library.Io("GPIO_6", []library.Function{library.BusFun("UART1", "UART_RX")}),
)

func mustComponent(name, description string, pins ...library.Pin) *library.Component {
	c, err := library.NewComponent(name, description, pins...)
	if err != nil {
		panic(err)
	}
	return c
}
