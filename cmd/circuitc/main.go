// Command circuitc compiles a textual circuit description (the
// pkg/frontend/dsl or pkg/frontend/sexpnet grammar, chosen by file
// extension) down to a flat netlist, running elaboration, device matching,
// pin assignment, and ERC (spec §1's pipeline), and reports the result.
package main

import "github.com/openpcb/circuitcore/cmd/circuitc/cmd"

func main() {
	cmd.Execute()
}
