package dsl

import (
	"fmt"
	"strings"

	"github.com/openpcb/circuitcore/pkg/circuit"
	"github.com/openpcb/circuitcore/pkg/library"
)

// Interpret walks a parsed File and issues circuit.Builder calls in source
// order (spec §4.1's construction operations), the way pycircuit's decorator
// machinery walks a @circuit function body at import time. Each CircuitDecl
// becomes one independent Circuit; a circuit referenced by a later SubDecl
// must have already been declared earlier in the same File.
//
// Interpret returns every declared Circuit keyed by name, so callers with
// multi-circuit sources can pick whichever root they need (typically the
// last one declared, which is the convention a single-root source follows).
func Interpret(f *File, b *circuit.Builder, reg *library.Registry) (map[string]*circuit.Circuit, error) {
	built := map[string]*circuit.Circuit{}

	for _, cd := range f.Circuits {
		c, err := interpretCircuit(cd, b, reg, built)
		if err != nil {
			return nil, fmt.Errorf("dsl: circuit %s: %w", cd.Name, err)
		}
		built[cd.Name] = c
	}
	return built, nil
}

func interpretCircuit(cd *CircuitDecl, b *circuit.Builder, reg *library.Registry, built map[string]*circuit.Circuit) (*circuit.Circuit, error) {
	c := b.NewCircuit(cd.Name)

	ports := map[string]*circuit.Port{}
	for _, pd := range cd.Ports {
		voltage := ""
		if pd.Voltage != nil {
			voltage = unquote(*pd.Voltage)
		}
		p, err := b.NewPort(c, pd.Name, library.ParsePinType(pd.Type), voltage)
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
			value := ""
			if stmt.Inst.Value != nil {
				value = unquote(*stmt.Inst.Value)
			}
			inst, err := b.NewInst(c, stmt.Inst.Name, reg, stmt.Inst.Component, value)
			if err != nil {
				return nil, err
			}
			insts[stmt.Inst.Name] = inst

		case stmt.InstAssign != nil:
			ia := stmt.InstAssign
			inst, ok := insts[ia.Inst]
			if !ok {
				return nil, fmt.Errorf("undeclared inst %q", ia.Inst)
			}
			targets, err := resolveTargets(ia.Targets, resolve)
			if err != nil {
				return nil, err
			}
			if err := b.AssignInst(c, inst, ia.Functions, targets); err != nil {
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
			targets, err := resolveTargets(sa.Targets, resolve)
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

func resolveTargets(targets []*Target, resolve func(string) (circuit.Ref, error)) ([]circuit.Ref, error) {
	refs := make([]circuit.Ref, len(targets))
	for i, t := range targets {
		ref, err := resolve(t.Name)
		if err != nil {
			return nil, err
		}
		refs[i] = ref
	}
	return refs, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.TrimSuffix(strings.TrimPrefix(s, `"`), `"`)
	}
	return s
}
