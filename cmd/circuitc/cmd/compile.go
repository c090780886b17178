package cmd

import (
	"fmt"
	"os"

	"github.com/openpcb/circuitcore/pkg/compile"
	"github.com/openpcb/circuitcore/pkg/diag"
	"github.com/openpcb/circuitcore/pkg/elaborate"
	"github.com/spf13/cobra"
)

var (
	compileRoot      string
	compileSchematic string
	compileBoard     string
)

var compileCmd = &cobra.Command{
	Use:   "compile <source file>",
	Short: "Compile a circuit description to a flat netlist",
	Long: `Parses a .circuit (frontend/dsl) or .sexp/.net (frontend/sexpnet)
source, runs hierarchy elaboration, device matching, pin assignment, and
ERC, and prints the resulting netlist and any diagnostics.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringVar(&compileRoot, "root", "", "circuit to compile (default: last declared)")
	compileCmd.Flags().StringVar(&compileSchematic, "schematic", "", "KiCad schematic to import components from")
	compileCmd.Flags().StringVar(&compileBoard, "board", "", "KiCad board to import devices from")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(c *cobra.Command, args []string) error {
	reg, err := loadRegistry(compileSchematic, compileBoard)
	if err != nil {
		return err
	}

	src, err := parseSource(args[0], reg)
	if err != nil {
		return err
	}

	top, err := src.rootCircuit(compileRoot)
	if err != nil {
		return err
	}

	netlist, report, err := compile.Compile(reg, src.builder, top)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	printNetlist(netlist)
	printReport(report)

	if report.HasErrors() {
		return fmt.Errorf("compile: reported errors, see above")
	}
	return nil
}

func printNetlist(netlist *elaborate.Netlist) {
	fmt.Printf("netlist %q: %d insts, %d nets, %d assigns\n",
		netlist.Name, len(netlist.Insts), len(netlist.Nets), len(netlist.InstAssigns))
	for _, inst := range netlist.Insts {
		device := "(no device)"
		if inst.Device != nil {
			device = inst.Device.Name
		}
		fmt.Printf("  %s: %s %s\n", inst.Name, inst.Component.Name, device)
	}
}

func printReport(report *diag.Report) {
	for _, d := range report.Diagnostics {
		fmt.Fprintln(os.Stderr, d.String())
	}
}
