package cmd

import (
	"fmt"

	"github.com/openpcb/circuitcore/pkg/compile"
	"github.com/spf13/cobra"
)

var (
	checkRoot      string
	checkSchematic string
	checkBoard     string
)

var checkCmd = &cobra.Command{
	Use:   "check <source file>",
	Short: "Validate a circuit description without printing the netlist",
	Long: `Runs the same pipeline as "compile" but only reports diagnostics,
exiting nonzero iff any Error-severity diagnostic was emitted (spec §6).
Useful in CI where the netlist itself isn't needed.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkRoot, "root", "", "circuit to check (default: last declared)")
	checkCmd.Flags().StringVar(&checkSchematic, "schematic", "", "KiCad schematic to import components from")
	checkCmd.Flags().StringVar(&checkBoard, "board", "", "KiCad board to import devices from")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(c *cobra.Command, args []string) error {
	reg, err := loadRegistry(checkSchematic, checkBoard)
	if err != nil {
		return err
	}

	src, err := parseSource(args[0], reg)
	if err != nil {
		return err
	}

	top, err := src.rootCircuit(checkRoot)
	if err != nil {
		return err
	}

	_, report, err := compile.Compile(reg, src.builder, top)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	printReport(report)
	if report.HasErrors() {
		fmt.Println("FAIL")
		return fmt.Errorf("check: reported errors, see above")
	}
	fmt.Println("OK")
	return nil
}
