package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/synthcore/tcircuit/pkg/cegis"
	"github.com/synthcore/tcircuit/pkg/circuit"
	"github.com/synthcore/tcircuit/pkg/decode"
	"github.com/synthcore/tcircuit/pkg/luaspec"
	"github.com/synthcore/tcircuit/pkg/node"
	"github.com/synthcore/tcircuit/pkg/solver"
	"github.com/synthcore/tcircuit/pkg/synth"
)

var specCycles int

// specCmd synthesizes against a user-scripted behavioral spec instead of
// a built-in one: the circuit is fixed to a single 4-bit Add node, and
// the Lua script's `spec(history)` global supplies the golden model
// (spec.md §3's scriptable alternative to a Go SpecFunc).
var specCmd = &cobra.Command{
	Use:   "spec <script.lua>",
	Short: "Synthesize a 4-bit Add node's interconnect against a Lua-scripted spec function",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		script, err := luaspec.Load(args[0])
		if err != nil {
			return err
		}
		defer script.Close()

		ctx := solver.NewContext()
		ts := solver.NewTransitionSystem(ctx)
		lib := node.NewLibrary(ts, 8)
		add, err := lib.NewAdd(4, 0)
		if err != nil {
			return err
		}
		c, err := circuit.New(lib, ctx, ts, circuit.Types{In: []uint{4, 4}, Out: []uint{4}}, []*node.Node{add}, nil)
		if err != nil {
			return err
		}

		enc, err := synth.Build(ts, c, script.SpecFunc(), synth.Options{NumCycles: specCycles})
		if err != nil {
			return err
		}
		res, ok, err := cegis.Run(ctx, enc)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("no interconnect exists matching the specification")
			return nil
		}
		ic, err := decode.Decode(c, res)
		if err != nil {
			return err
		}
		printInterconnect(ic)
		return nil
	},
}

func init() {
	specCmd.Flags().IntVar(&specCycles, "cycles", 0, "number of cycles to unroll")
}
