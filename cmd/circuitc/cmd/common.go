package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openpcb/circuitcore/pkg/circuit"
	"github.com/openpcb/circuitcore/pkg/frontend/dsl"
	"github.com/openpcb/circuitcore/pkg/frontend/sexpnet"
	"github.com/openpcb/circuitcore/pkg/kicad/pcb"
	"github.com/openpcb/circuitcore/pkg/kicad/schematic"
	"github.com/openpcb/circuitcore/pkg/library"
	"github.com/openpcb/circuitcore/pkg/library/demolib"
	"github.com/openpcb/circuitcore/pkg/library/kicadimport"
)

// loadRegistry builds the library.Registry a compile run looks components
// up in. With neither flag set, circuitc falls back to library/demolib, the
// in-repo sample catalog; passing --schematic and/or --board populates the
// registry from real KiCad files instead (pkg/library/kicadimport), the way
// a production flow would load its actual part catalog.
func loadRegistry(schematicFile, boardFile string) (*library.Registry, error) {
	reg := library.NewRegistry()

	if schematicFile == "" && boardFile == "" {
		if err := demolib.Load(reg); err != nil {
			return nil, fmt.Errorf("loading demolib: %w", err)
		}
		return reg, nil
	}

	if schematicFile != "" {
		sch, err := schematic.ParseFile(schematicFile)
		if err != nil {
			return nil, fmt.Errorf("parsing schematic %s: %w", schematicFile, err)
		}
		comps, err := kicadimport.ComponentsFromSchematic(sch)
		if err != nil {
			return nil, fmt.Errorf("importing components from %s: %w", schematicFile, err)
		}
		for _, c := range comps {
			if err := reg.RegisterComponent(c); err != nil {
				return nil, fmt.Errorf("registering component from %s: %w", schematicFile, err)
			}
		}
		if verbose {
			for _, ref := range kicadimport.UnresolvedSymbolInstances(sch) {
				fmt.Println("unresolved symbol instance:", ref)
			}
		}
	}

	if boardFile != "" {
		board, err := pcb.ParseFile(boardFile)
		if err != nil {
			return nil, fmt.Errorf("parsing board %s: %w", boardFile, err)
		}
		componentOf := func(fp pcb.Footprint) string { return fp.Value }
		skipped, err := kicadimport.DevicesFromBoard(reg, board, componentOf)
		if err != nil {
			return nil, fmt.Errorf("importing devices from %s: %w", boardFile, err)
		}
		if verbose {
			for _, s := range skipped {
				fmt.Println("skipped:", s)
			}
		}
	}

	return reg, nil
}

// loadedSource is the result of parsing and interpreting a circuit
// description: every declared Circuit, plus the declaration order needed to
// pick a default compile root.
type loadedSource struct {
	builder *circuit.Builder
	built   map[string]*circuit.Circuit
	order   []string
}

// parseSource dispatches to frontend/dsl or frontend/sexpnet by file
// extension and interprets the result against a fresh circuit.Builder.
func parseSource(filename string, reg *library.Registry) (*loadedSource, error) {
	b := circuit.NewBuilder()

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".circuit":
		p, err := dsl.NewParser()
		if err != nil {
			return nil, fmt.Errorf("building dsl parser: %w", err)
		}
		f, err := p.ParseFile(filename)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filename, err)
		}
		built, err := dsl.Interpret(f, b, reg)
		if err != nil {
			return nil, fmt.Errorf("interpreting %s: %w", filename, err)
		}
		order := make([]string, len(f.Circuits))
		for i, cd := range f.Circuits {
			order[i] = cd.Name
		}
		return &loadedSource{builder: b, built: built, order: order}, nil

	case ".sexp", ".net":
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", filename, err)
		}
		f, err := sexpnet.Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filename, err)
		}
		built, err := sexpnet.Interpret(f, b, reg)
		if err != nil {
			return nil, fmt.Errorf("interpreting %s: %w", filename, err)
		}
		order := make([]string, len(f.Circuits))
		for i, cd := range f.Circuits {
			order[i] = cd.Name
		}
		return &loadedSource{builder: b, built: built, order: order}, nil

	default:
		return nil, fmt.Errorf("%s: unrecognized extension %q (want .circuit, .sexp, or .net)", filename, ext)
	}
}

// rootCircuit picks the compile root: the explicitly named circuit if
// rootName is non-empty, otherwise the last one declared (the convention a
// single-root source follows).
func (s *loadedSource) rootCircuit(rootName string) (*circuit.Circuit, error) {
	if rootName != "" {
		c, ok := s.built[rootName]
		if !ok {
			return nil, fmt.Errorf("no circuit named %q in source", rootName)
		}
		return c, nil
	}
	if len(s.order) == 0 {
		return nil, fmt.Errorf("source declares no circuits")
	}
	return s.built[s.order[len(s.order)-1]], nil
}
