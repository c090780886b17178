package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "circuitc",
	Short: "circuitc compiles circuit descriptions to flat netlists",
	Long: `circuitc provides a command-line interface to the circuitcore
compiler pipeline: hierarchy elaboration, device matching, boolean-SAT pin
assignment, and electrical-role-consistency checking.

Examples:
  circuitc compile divider.circuit
  circuitc compile divider.sexp
  circuitc check divider.circuit`,
	Version: "0.1.0",
}

// Execute runs the root command, exiting nonzero on any fatal error (spec
// §6: "Exit code is nonzero iff any Error-severity diagnostic was emitted",
// extended here to cover fatal Structural/Binding errors too, since those
// never make it into a Report to begin with).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
