package dsl

// The AST mirrors pkg/bsdl/ast.go's struct-tag idiom: each grammar rule is a
// Go struct whose field tags spell out the participle expression, so the
// parser is generated straight from these types (parser.go).
//
// Surface syntax is modeled on pycircuit's own circuit-description style
// (the @circuit decorator plus Inst(...)[...] = ... assignment statements
// seen in common_emitter.py and mcu.py), reshaped into a standalone
// block-structured form instead of Python decorators:
//
//	circuit name(vin in, vout out, gnd gnd) {
//	    net mid
//	    inst r1 = R("10k")
//	    r1[~, ~] = vin, mid
//	    sub amp = commonEmitter()
//	    amp.[vin, vout] = mid, vout
//	}

// File is the root of a parsed DSL source: one or more circuit definitions.
type File struct {
	Circuits []*CircuitDecl `@@*`
}

// CircuitDecl declares one Circuit: its external Ports and its body
// statements, built in source order by Interpret.
type CircuitDecl struct {
	Name  string       `KwCircuit @Ident`
	Ports []*PortDecl   `LParen ( @@ ( Comma @@ )* )? RParen`
	Stmts []*Stmt       `LBrace @@* RBrace`
}

// PortDecl is one entry in a circuit's port list: a name and a pin-type
// keyword (in/out/inout/power/gnd), with an optional voltage string for
// spec §4.5's net-type classification.
type PortDecl struct {
	Name    string  `@Ident`
	Type    string  `@Ident`
	Voltage *string `( @String )?`
}

// Stmt is one body statement: a net declaration, an inst declaration, an
// inst (bus-group) assignment, a sub-circuit instantiation, or a sub-inst
// port (bus-group) assignment. Exactly one alternative matches per line.
type Stmt struct {
	Net        *NetDecl        `  @@`
	Inst       *InstDecl       `| @@`
	InstAssign *InstAssignStmt `| @@`
	Sub        *SubDecl        `| @@`
	SubAssign  *SubAssignStmt  `| @@`
}

// NetDecl declares one or more Nets: "net a, b, c".
type NetDecl struct {
	Names []string `KwNet @Ident ( Comma @Ident )*`
}

// InstDecl instantiates a Component by name, with an optional free-text
// value string used by devicematch (spec §4.4): "inst r1 = R(\"10k 0805\")".
type InstDecl struct {
	Name      string  `KwInst @Ident Assign`
	Component string  `@Ident LParen`
	Value     *string `( @String )? RParen`
}

// InstAssignStmt binds one or a bus-group of an Inst's Functions to targets:
// "r1[~, ~] = vin, mid" or "mcu1[UART_TX, UART_RX] = tx, rx".
type InstAssignStmt struct {
	Inst      string   `@Ident`
	Functions []string `LBracket @Ident ( Comma @Ident )* RBracket`
	Targets   []*Target `Assign @@ ( Comma @@ )*`
}

// SubDecl wraps a previously declared Circuit under a new name: "sub amp =
// commonEmitter()".
type SubDecl struct {
	Name    string `KwSub @Ident Assign`
	Circuit string `@Ident LParen RParen`
}

// SubAssignStmt binds one or a bus-group of a SubInst's Ports to external
// targets: "amp.[vin, vout] = mid, vout".
type SubAssignStmt struct {
	Sub     string    `@Ident Dot`
	Ports   []string  `LBracket @Ident ( Comma @Ident )* RBracket`
	Targets []*Target `Assign @@ ( Comma @@ )*`
}

// Target names an assignment target: a bare identifier resolved by
// Interpret against the enclosing circuit's Nets first, then its Ports
// (spec §4.1: a target is one of the current circuit's own Nets or Ports).
type Target struct {
	Name string `@Ident`
}
