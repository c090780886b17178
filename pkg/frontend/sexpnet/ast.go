// Package sexpnet is an alternate textual front-end for circuit.Builder:
// an S-expression circuit description, parsed with the same
// pkg/kicad/sexp/kicadsexp streaming parser pkg/kicad/pcb and
// pkg/kicad/schematic use for board and schematic files (generalized here
// from KiCad's own file grammar to a netlist grammar, the way
// cmd/investigate_sexp and cmd/debug_parse treat s-expressions as a
// general-purpose nested-list format rather than something KiCad-specific).
//
// Grammar (each top-level form is one circuit):
//
//	(circuit divider
//	  (port vin in)
//	  (port vout out)
//	  (net mid)
//	  (inst r1 R "10k")
//	  (assign r1 (~) (vin))
//	  (assign r2 (~ ~) (mid vout))
//	  (sub amp leaf)
//	  (subassign amp (vin vout) (mid vout)))
package sexpnet

import (
	"fmt"

	"github.com/openpcb/circuitcore/pkg/kicad/sexp"
	"github.com/openpcb/circuitcore/pkg/kicad/sexp/kicadsexp"
)

// File is every top-level circuit form in a parsed source.
type File struct {
	Circuits []*CircuitDecl
}

// CircuitDecl is one (circuit name ...) form.
type CircuitDecl struct {
	Name  string
	Ports []PortDecl
	Stmts []Stmt
}

// PortDecl is one (port name type [voltage]) form.
type PortDecl struct {
	Name    string
	Type    string
	Voltage string
}

// Stmt is exactly one of Net, Inst, Assign, Sub, SubAssign.
type Stmt struct {
	Net       *NetStmt
	Inst      *InstStmt
	Assign    *AssignStmt
	Sub       *SubStmt
	SubAssign *SubAssignStmt
}

// NetStmt is one (net name...) form, declaring one or more Nets.
type NetStmt struct {
	Names []string
}

// InstStmt is one (inst name component [value]) form.
type InstStmt struct {
	Name      string
	Component string
	Value     string
}

// AssignStmt is one (assign inst (func...) (target...)) form.
type AssignStmt struct {
	Inst      string
	Functions []string
	Targets   []string
}

// SubStmt is one (sub name circuit) form.
type SubStmt struct {
	Name    string
	Circuit string
}

// SubAssignStmt is one (subassign sub (port...) (target...)) form.
type SubAssignStmt struct {
	Sub     string
	Ports   []string
	Targets []string
}

// Parse reads every top-level (circuit ...) form from src.
func Parse(src string) (*File, error) {
	forms, err := kicadsexp.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("sexpnet: parse: %w", err)
	}

	f := &File{}
	for _, form := range forms {
		cd, err := parseCircuit(form)
		if err != nil {
			return nil, err
		}
		f.Circuits = append(f.Circuits, cd)
	}
	return f, nil
}

func parseCircuit(form kicadsexp.Sexp) (*CircuitDecl, error) {
	items := sexp.SexpToSlice(form)
	if len(items) < 2 {
		return nil, fmt.Errorf("sexpnet: malformed top-level form: %s", form.String())
	}
	head, err := symbolName(items[0])
	if err != nil {
		return nil, err
	}
	if head != "circuit" {
		return nil, fmt.Errorf("sexpnet: expected (circuit ...), got (%s ...)", head)
	}
	name, err := symbolName(items[1])
	if err != nil {
		return nil, err
	}

	cd := &CircuitDecl{Name: name}
	for _, item := range items[2:] {
		kind, err := formKind(item)
		if err != nil {
			return nil, fmt.Errorf("sexpnet: circuit %s: %w", name, err)
		}
		switch kind {
		case "port":
			pd, err := parsePort(item)
			if err != nil {
				return nil, fmt.Errorf("sexpnet: circuit %s: %w", name, err)
			}
			cd.Ports = append(cd.Ports, pd)
		case "net":
			names, err := symbolNames(sexp.GetListItems(item))
			if err != nil {
				return nil, fmt.Errorf("sexpnet: circuit %s: %w", name, err)
			}
			cd.Stmts = append(cd.Stmts, Stmt{Net: &NetStmt{Names: names}})
		case "inst":
			st, err := parseInst(item)
			if err != nil {
				return nil, fmt.Errorf("sexpnet: circuit %s: %w", name, err)
			}
			cd.Stmts = append(cd.Stmts, Stmt{Inst: st})
		case "assign":
			st, err := parseAssign(item)
			if err != nil {
				return nil, fmt.Errorf("sexpnet: circuit %s: %w", name, err)
			}
			cd.Stmts = append(cd.Stmts, Stmt{Assign: st})
		case "sub":
			st, err := parseSub(item)
			if err != nil {
				return nil, fmt.Errorf("sexpnet: circuit %s: %w", name, err)
			}
			cd.Stmts = append(cd.Stmts, Stmt{Sub: st})
		case "subassign":
			st, err := parseSubAssign(item)
			if err != nil {
				return nil, fmt.Errorf("sexpnet: circuit %s: %w", name, err)
			}
			cd.Stmts = append(cd.Stmts, Stmt{SubAssign: st})
		default:
			return nil, fmt.Errorf("sexpnet: circuit %s: unknown form %q", name, kind)
		}
	}
	return cd, nil
}

func parsePort(item kicadsexp.Sexp) (PortDecl, error) {
	items := sexp.SexpToSlice(item)
	if len(items) < 3 {
		return PortDecl{}, fmt.Errorf("malformed port form: %s", item.String())
	}
	name, err := symbolName(items[1])
	if err != nil {
		return PortDecl{}, err
	}
	typ, err := symbolName(items[2])
	if err != nil {
		return PortDecl{}, err
	}
	pd := PortDecl{Name: name, Type: typ}
	if len(items) > 3 {
		voltage, err := symbolName(items[3])
		if err != nil {
			return PortDecl{}, err
		}
		pd.Voltage = voltage
	}
	return pd, nil
}

func parseInst(item kicadsexp.Sexp) (*InstStmt, error) {
	items := sexp.SexpToSlice(item)
	if len(items) < 3 {
		return nil, fmt.Errorf("malformed inst form: %s", item.String())
	}
	name, err := symbolName(items[1])
	if err != nil {
		return nil, err
	}
	component, err := symbolName(items[2])
	if err != nil {
		return nil, err
	}
	st := &InstStmt{Name: name, Component: component}
	if len(items) > 3 {
		value, err := symbolName(items[3])
		if err != nil {
			return nil, err
		}
		st.Value = value
	}
	return st, nil
}

func parseAssign(item kicadsexp.Sexp) (*AssignStmt, error) {
	items := sexp.SexpToSlice(item)
	if len(items) != 4 {
		return nil, fmt.Errorf("malformed assign form: %s", item.String())
	}
	instName, err := symbolName(items[1])
	if err != nil {
		return nil, err
	}
	functions, err := symbolNames(sexp.SexpToSlice(items[2]))
	if err != nil {
		return nil, err
	}
	targets, err := symbolNames(sexp.SexpToSlice(items[3]))
	if err != nil {
		return nil, err
	}
	return &AssignStmt{Inst: instName, Functions: functions, Targets: targets}, nil
}

func parseSub(item kicadsexp.Sexp) (*SubStmt, error) {
	items := sexp.SexpToSlice(item)
	if len(items) != 3 {
		return nil, fmt.Errorf("malformed sub form: %s", item.String())
	}
	name, err := symbolName(items[1])
	if err != nil {
		return nil, err
	}
	circuitName, err := symbolName(items[2])
	if err != nil {
		return nil, err
	}
	return &SubStmt{Name: name, Circuit: circuitName}, nil
}

func parseSubAssign(item kicadsexp.Sexp) (*SubAssignStmt, error) {
	items := sexp.SexpToSlice(item)
	if len(items) != 4 {
		return nil, fmt.Errorf("malformed subassign form: %s", item.String())
	}
	subName, err := symbolName(items[1])
	if err != nil {
		return nil, err
	}
	ports, err := symbolNames(sexp.SexpToSlice(items[2]))
	if err != nil {
		return nil, err
	}
	targets, err := symbolNames(sexp.SexpToSlice(items[3]))
	if err != nil {
		return nil, err
	}
	return &SubAssignStmt{Sub: subName, Ports: ports, Targets: targets}, nil
}

// formKind returns the leading symbol of a list form ("port", "net", ...).
func formKind(item kicadsexp.Sexp) (string, error) {
	items := sexp.SexpToSlice(item)
	if len(items) == 0 {
		return "", fmt.Errorf("empty form")
	}
	return symbolName(items[0])
}

func symbolName(s kicadsexp.Sexp) (string, error) {
	sym, ok := s.(kicadsexp.Symbol)
	if !ok {
		return "", fmt.Errorf("expected symbol, got %s", s.String())
	}
	return string(sym), nil
}

func symbolNames(items []kicadsexp.Sexp) ([]string, error) {
	names := make([]string, len(items))
	for i, item := range items {
		name, err := symbolName(item)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}
