// Package circuit is the circuit encoding of spec.md §4.2: it allocates
// line variables (lvars), port value/delay variables, and publishes the
// well-formed-program predicate, the connectivity predicates, and the
// E/A/D variable partition CEGIS drives over. Grounded line-for-line on
// original_source/src/circuit_encoding.py.
package circuit

import (
	"fmt"
	"math/bits"

	"github.com/synthcore/tcircuit/pkg/bvterm"
	"github.com/synthcore/tcircuit/pkg/node"
	"github.com/synthcore/tcircuit/pkg/solver"
)

// Types is the circuit's external interface: nonnegative bit widths for
// each circuit input and each circuit output (spec.md §3).
type Types struct {
	In  []uint
	Out []uint
}

// Circuit is the fully-allocated encoding for one (types, ops) pair.
type Circuit struct {
	lib  *node.Library
	ctx  *solver.Context
	ts   *solver.TransitionSystem

	Types Types
	Ops   []*node.Node

	NumInputs    int
	NumOutputs   int
	NumOpOutputs int
	NumLines     int
	LvarWidth    uint
	DelayWidth   uint

	InputLvars    []*bvterm.Term
	OpInputLvars  [][]*bvterm.Term
	OpOutputLvars [][]*bvterm.Term
	OutputLvars   []*bvterm.Term

	InputVars    []*bvterm.Term
	OpInputVars  [][]*bvterm.Term
	OpOutputVars [][]*bvterm.Term // populated only for SpecNode ops
	OutputVars   []*bvterm.Term

	InputDelays    []*bvterm.Term
	OpInputDelays  [][]*bvterm.Term
	OpOutputDelays [][]*bvterm.Term
	OutputDelays   []*bvterm.Term

	EVars  []*bvterm.Term
	AVars  []*bvterm.Term
	DVars  []*bvterm.Term
	Setups []*bvterm.Term
	Holds  []*bvterm.Term
}

func lvarSort(numLines int) bvterm.Sort {
	w := bits.Len(uint(numLines - 1))
	if w == 0 {
		w = 1 // a single-line circuit still needs a (trivial) lvar sort
	}
	return bvterm.BVSort(uint(w))
}

// New allocates the encoding for the given circuit types and op list. ops
// must already be constructed (node.Descriptor.New) and Eval'd is NOT yet
// called — New calls Eval/Timing itself, in op-list order, exactly once.
func New(lib *node.Library, ctx *solver.Context, ts *solver.TransitionSystem, types Types, ops []*node.Node, inputDelays []int) (*Circuit, error) {
	if len(types.In) == 0 && len(types.Out) == 0 {
		return nil, fmt.Errorf("circuit: types must declare at least one input or output")
	}

	c := &Circuit{lib: lib, ctx: ctx, ts: ts, Types: types, Ops: ops, DelayWidth: lib.DelayWidth()}
	c.NumInputs = len(types.In)
	c.NumOutputs = len(types.Out)
	for _, op := range ops {
		c.NumOpOutputs += len(op.OutWidths)
	}
	c.NumLines = c.NumInputs + c.NumOpOutputs
	lvSort := lvarSort(c.NumLines)
	c.LvarWidth = lvSort.Width

	c.InputLvars = make([]*bvterm.Term, c.NumInputs)
	for i := range c.InputLvars {
		c.InputLvars[i] = bvterm.Const(int64(i), lvSort)
	}

	c.OpInputLvars = make([][]*bvterm.Term, len(ops))
	c.OpOutputLvars = make([][]*bvterm.Term, len(ops))
	// Every op_output_lvar is itself a free symbol, even the ones P_acyc
	// pins to a fixed line number: SeqNode's first output and each
	// SpecNode Moore output get an equality constraint to a hardcoded
	// constant in P_acyc rather than being replaced by that constant here
	// (spec.md §9's hardcoded_lvars bookkeeping), matching
	// circuit_encoding.py's P_acyc/P_multi_out split of that bookkeeping.
	for i, op := range ops {
		c.OpInputLvars[i] = make([]*bvterm.Term, len(op.InWidths))
		for j := range op.InWidths {
			c.OpInputLvars[i][j] = ctx.MakeSymbol(fmt.Sprintf("op_input_lvar[%d][%d]", i, j), lvSort)
		}
		c.OpOutputLvars[i] = make([]*bvterm.Term, len(op.OutWidths))
		for j := range op.OutWidths {
			c.OpOutputLvars[i][j] = ctx.MakeSymbol(fmt.Sprintf("op_output_lvar[%d][%d]", i, j), lvSort)
		}
	}
	c.OutputLvars = make([]*bvterm.Term, c.NumOutputs)
	for i := range c.OutputLvars {
		c.OutputLvars[i] = ctx.MakeSymbol(fmt.Sprintf("output_lvar[%d]", i), lvSort)
	}

	c.InputVars = make([]*bvterm.Term, c.NumInputs)
	for i, w := range types.In {
		c.InputVars[i] = ts.MakeInputVar(fmt.Sprintf("input_var[%d]", i), bvterm.BVSort(w))
	}

	c.OpInputVars = make([][]*bvterm.Term, len(ops))
	for i, op := range ops {
		c.OpInputVars[i] = make([]*bvterm.Term, len(op.InWidths))
		for j, w := range op.InWidths {
			c.OpInputVars[i][j] = ts.MakeInputVar(fmt.Sprintf("op_input_var[%d][%d]", i, j), bvterm.BVSort(w))
		}
	}

	c.OpOutputVars = make([][]*bvterm.Term, len(ops))
	for i, op := range ops {
		if op.Flavor() == node.FlavorSpec {
			c.OpOutputVars[i] = make([]*bvterm.Term, len(op.OutWidths))
			for j, w := range op.OutWidths {
				c.OpOutputVars[i][j] = ts.MakeInputVar(fmt.Sprintf("op_output_var[%d][%d]", i, j), bvterm.BVSort(w))
			}
			continue
		}
		out, err := op.Eval(ts, c.OpInputVars[i])
		if err != nil {
			return nil, fmt.Errorf("circuit: op %d (%s): %w", i, op.Name(), err)
		}
		c.OpOutputVars[i] = out
	}

	c.OutputVars = make([]*bvterm.Term, c.NumOutputs)
	for i, w := range types.Out {
		v, err := c.selectVar(c.OutputLvars[i], w)
		if err != nil {
			return nil, fmt.Errorf("circuit: output %d: %w", i, err)
		}
		c.OutputVars[i] = v
	}

	if inputDelays == nil {
		inputDelays = make([]int, c.NumInputs)
	}
	delaySort := bvterm.BVSort(lib.DelayWidth())
	c.InputDelays = make([]*bvterm.Term, c.NumInputs)
	for i, d := range inputDelays {
		c.InputDelays[i] = bvterm.Const(int64(d), delaySort)
	}

	c.OpInputDelays = make([][]*bvterm.Term, len(ops))
	for i, op := range ops {
		c.OpInputDelays[i] = make([]*bvterm.Term, len(op.InWidths))
		for j := range op.InWidths {
			c.OpInputDelays[i][j] = ctx.MakeSymbol(fmt.Sprintf("op_input_delay[%d][%d]", i, j), delaySort)
		}
	}

	c.OpOutputDelays = make([][]*bvterm.Term, len(ops))
	for i, op := range ops {
		out, err := op.Timing(lib.DelayWidth(), c.OpInputDelays[i])
		if err != nil {
			return nil, fmt.Errorf("circuit: op %d (%s) timing: %w", i, op.Name(), err)
		}
		c.OpOutputDelays[i] = out
	}

	c.OutputDelays = make([]*bvterm.Term, c.NumOutputs)
	for i, w := range types.Out {
		d, err := c.selectDelay(c.OutputLvars[i], w)
		if err != nil {
			return nil, fmt.Errorf("circuit: output %d delay: %w", i, err)
		}
		c.OutputDelays[i] = d
	}

	c.buildPartition()
	return c, nil
}

func (c *Circuit) buildPartition() {
	var e []*bvterm.Term
	for _, lvs := range c.OpInputLvars {
		e = append(e, lvs...)
	}
	for _, lvs := range c.OpOutputLvars {
		e = append(e, lvs...)
	}
	e = append(e, c.OutputLvars...)
	c.EVars = e

	c.AVars = append([]*bvterm.Term{}, c.InputVars...)

	var d []*bvterm.Term
	for _, vs := range c.OpInputVars {
		d = append(d, vs...)
	}
	for _, op := range c.Ops {
		if op.Flavor() == node.FlavorSeq {
			d = append(d, op.StateVars...)
		}
	}
	for i, op := range c.Ops {
		if op.Flavor() == node.FlavorSpec {
			d = append(d, c.OpOutputVars[i]...)
		}
	}
	c.DVars = d

	var setups, holds []*bvterm.Term
	for _, op := range c.Ops {
		if op.Flavor() == node.FlavorSeq || op.Flavor() == node.FlavorSpec {
			setups = append(setups, op.Setup...)
			holds = append(holds, op.Hold...)
		}
	}
	c.Setups = setups
	c.Holds = holds
}
