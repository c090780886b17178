package sexpnet

import (
	"fmt"

	"github.com/openpcb/circuitcore/pkg/circuit"
	"github.com/openpcb/circuitcore/pkg/library"
)

// Interpret walks a parsed File and issues circuit.Builder calls in source
// order, identically in spirit to pkg/frontend/dsl.Interpret but driven from
// the S-expression AST instead of the participle grammar. A circuit named by
// a later (sub ...) form must already have been declared earlier in f.
func Interpret(f *File, b *circuit.Builder, reg *library.Registry) (map[string]*circuit.Circuit, error) {
	built := map[string]*circuit.Circuit{}

	for _, cd := range f.Circuits {
		c, err := interpretCircuit(cd, b, reg, built)
		if err != nil {
			return nil, fmt.Errorf("sexpnet: circuit %s: %w", cd.Name, err)
		}
		built[cd.Name] = c
	}
	return built, nil
}

func interpretCircuit(cd *CircuitDecl, b *circuit.Builder, reg *library.Registry, built map[string]*circuit.Circuit) (*circuit.Circuit, error) {
	c := b.NewCircuit(cd.Name)

	ports := map[string]*circuit.Port{}
	for _, pd := range cd.Ports {
		p, err := b.NewPort(c, pd.Name, library.ParsePinType(pd.Type), pd.Voltage)
		if err != nil {
			return nil, err
		}
		ports[pd.Name] = p
	}

	nets := map[string]*circuit.Net{}
	insts := map[string]*circuit.Inst{}
	subInsts := map[string]*circuit.SubInst{}

	resolve := func(name string) (circuit.Ref, error) {
		if n, ok := nets[name]; ok {
			return circuit.NetRef(n), nil
		}
		if p, ok := ports[name]; ok {
			return circuit.PortRef(p), nil
		}
		return circuit.Ref{}, fmt.Errorf("undeclared net or port %q", name)
	}

	resolveAll := func(names []string) ([]circuit.Ref, error) {
		refs := make([]circuit.Ref, len(names))
		for i, name := range names {
			ref, err := resolve(name)
			if err != nil {
				return nil, err
			}
			refs[i] = ref
		}
		return refs, nil
	}

	for _, stmt := range cd.Stmts {
		switch {
		case stmt.Net != nil:
			for _, name := range stmt.Net.Names {
				n, err := b.NewNet(c, name)
				if err != nil {
					return nil, err
				}
				nets[name] = n
			}

		case stmt.Inst != nil:
			inst, err := b.NewInst(c, stmt.Inst.Name, reg, stmt.Inst.Component, stmt.Inst.Value)
			if err != nil {
				return nil, err
			}
			insts[stmt.Inst.Name] = inst

		case stmt.Assign != nil:
			as := stmt.Assign
			inst, ok := insts[as.Inst]
			if !ok {
				return nil, fmt.Errorf("undeclared inst %q", as.Inst)
			}
			targets, err := resolveAll(as.Targets)
			if err != nil {
				return nil, err
			}
			if err := b.AssignInst(c, inst, as.Functions, targets); err != nil {
				return nil, err
			}

		case stmt.Sub != nil:
			inner, ok := built[stmt.Sub.Circuit]
			if !ok {
				return nil, fmt.Errorf("circuit %q not yet declared (sub-circuits must be declared before use)", stmt.Sub.Circuit)
			}
			sub, err := b.WrapCircuit(c, stmt.Sub.Name, inner)
			if err != nil {
				return nil, err
			}
			subInsts[stmt.Sub.Name] = sub

		case stmt.SubAssign != nil:
			sa := stmt.SubAssign
			sub, ok := subInsts[sa.Sub]
			if !ok {
				return nil, fmt.Errorf("undeclared sub %q", sa.Sub)
			}
			targets, err := resolveAll(sa.Targets)
			if err != nil {
				return nil, err
			}
			if err := b.AssignSubInstPorts(c, sub, sa.Ports, targets); err != nil {
				return nil, err
			}
		}
	}

	return c, nil
}
