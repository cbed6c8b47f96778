// Command tsynth is the CLI front end for the synthesis engine: it wires
// a node library, a circuit's external types, an op list, and a
// behavioral spec function into pkg/cegis and prints the resulting
// interconnect (or reports that none exists). Mirrors
// cmd/minzc/main.go's cobra shape, stripped to this engine's surface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/synthcore/tcircuit/pkg/version"
)

var (
	showVersion     bool
	showVersionFull bool
)

var rootCmd = &cobra.Command{
	Use:   "tsynth",
	Short: "Timed digital circuit synthesis engine " + version.GetVersion(),
	Long: `tsynth synthesizes a loop-free interconnect of library nodes that
matches a behavioral specification, using counterexample-guided inductive
synthesis (CEGIS) over a bit-vector/boolean theory.`,
	Run: func(cmd *cobra.Command, args []string) {
		if showVersionFull {
			fmt.Println(version.GetFullVersion())
			return
		}
		if showVersion {
			fmt.Println(version.GetVersion())
			return
		}
		cmd.Help()
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "show version")
	rootCmd.Flags().BoolVar(&showVersionFull, "version-full", false, "show full version info")
}

func main() {
	rootCmd.AddCommand(runCmd, listCmd, specCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tsynth:", err)
		os.Exit(1)
	}
}
