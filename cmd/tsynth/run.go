package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Run one of the built-in synthesis scenarios",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, ok := findScenario(args[0])
		if !ok {
			return fmt.Errorf("unknown scenario %q (see 'tsynth list')", args[0])
		}
		fmt.Printf("running %s: %s\n", s.name, s.description)
		ic, ok, err := s.run()
		if err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		if !ok {
			fmt.Println("no interconnect exists matching the specification")
			return nil
		}
		printInterconnect(ic)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in synthesis scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, s := range scenarios {
			fmt.Printf("%-20s %s\n", s.name, s.description)
		}
		return nil
	},
}
