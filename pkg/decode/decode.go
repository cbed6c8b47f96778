// Package decode reads a synthesized interconnect's line numbers out of
// a CEGIS result, the way CircuitSynth.run's return tuple does in
// original_source/src/circuit_synth.py.
package decode

import (
	"fmt"

	"github.com/synthcore/tcircuit/pkg/bvterm"
	"github.com/synthcore/tcircuit/pkg/cegis"
	"github.com/synthcore/tcircuit/pkg/circuit"
)

// Interconnect is the synthesized wiring, decoded into plain line
// numbers: which line feeds each op input, which line each op output
// occupies, and which line feeds each circuit output.
type Interconnect struct {
	InputLvars    []int64
	OpInputLvars  [][]int64
	OpOutputLvars [][]int64
	OutputLvars   []int64
}

// Decode reads res — a satisfying E-variable assignment returned by
// cegis.Run — against the circuit that produced it.
func Decode(c *circuit.Circuit, res cegis.Result) (*Interconnect, error) {
	out := &Interconnect{
		InputLvars:    make([]int64, len(c.InputLvars)),
		OpInputLvars:  make([][]int64, len(c.OpInputLvars)),
		OpOutputLvars: make([][]int64, len(c.OpOutputLvars)),
		OutputLvars:   make([]int64, len(c.OutputLvars)),
	}
	for i, lvar := range c.InputLvars {
		out.InputLvars[i] = lvar.Const.Int64()
	}
	for i, lvs := range c.OpInputLvars {
		vals := make([]int64, len(lvs))
		for j, lv := range lvs {
			v, err := lookup(res, lv)
			if err != nil {
				return nil, fmt.Errorf("decode: op %d input %d: %w", i, j, err)
			}
			vals[j] = v
		}
		out.OpInputLvars[i] = vals
	}
	for i, lvs := range c.OpOutputLvars {
		vals := make([]int64, len(lvs))
		for j, lv := range lvs {
			v, err := lookup(res, lv)
			if err != nil {
				return nil, fmt.Errorf("decode: op %d output %d: %w", i, j, err)
			}
			vals[j] = v
		}
		out.OpOutputLvars[i] = vals
	}
	for i, lvar := range c.OutputLvars {
		v, err := lookup(res, lvar)
		if err != nil {
			return nil, fmt.Errorf("decode: circuit output %d: %w", i, err)
		}
		out.OutputLvars[i] = v
	}
	return out, nil
}

func lookup(res cegis.Result, lvar *bvterm.Term) (int64, error) {
	t, ok := res[lvar.Symbol]
	if !ok {
		return 0, fmt.Errorf("no assignment for %s", lvar.Symbol)
	}
	return t.Const.Int64(), nil
}
