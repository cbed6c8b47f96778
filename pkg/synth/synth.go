// Package synth unrolls a circuit.Circuit over a fixed number of cycles
// and assembles the three formulas CEGIS drives: synth_base (the
// cycle-independent well-formedness/timing side), synth_constrain (grows
// one counterexample at a time), and verify (checked against a fixed
// candidate interconnect). Grounded line-for-line on
// original_source/src/circuit_synth.py.
package synth

import (
	"fmt"

	"github.com/synthcore/tcircuit/pkg/bvterm"
	"github.com/synthcore/tcircuit/pkg/circuit"
	"github.com/synthcore/tcircuit/pkg/node"
	"github.com/synthcore/tcircuit/pkg/solver"
)

// SpecFunc is the behavioral golden model spec.md §2 synthesizes an
// interconnect against: given the history of circuit-input tuples up to
// and including the current cycle, it returns the expected circuit-output
// tuple for that cycle. Shape mirrors node.SpecEvalFunc. When the history
// is shorter than the behavior it describes, a SpecFunc returns the
// zero-valued term of each output's sort (as the built-in scenarios do).
type SpecFunc func(inputHistory [][]*bvterm.Term) []*bvterm.Term

// Options configures the timing side of the encoding (spec.md §6); the
// zero value disables timing entirely.
type Options struct {
	NumCycles       int
	EnforceTiming   bool
	CycleDelay      int
	MaxOutputDelays []int
}

// Encoding is the fully unrolled formula set, plus the E/A/D variable
// partition flattened over every unrolled cycle — exactly what
// pkg/cegis.Run needs.
type Encoding struct {
	SynthBase      *bvterm.Term
	SynthConstrain *bvterm.Term
	Verify         *bvterm.Term
	EVars          []*bvterm.Term
	AVars          []*bvterm.Term
	DVars          []*bvterm.Term
}

// Build assembles the encoding. c must already be fully allocated
// (circuit.New), and spec must accept histories of length 1..NumCycles+1.
func Build(ts *solver.TransitionSystem, c *circuit.Circuit, spec SpecFunc, opts Options) (*Encoding, error) {
	if opts.NumCycles < 0 {
		return nil, fmt.Errorf("synth: num_cycles must be >= 0")
	}
	ur := solver.NewUnroller(ts)

	connVars, err := c.PConnVars()
	if err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}

	synthBase := c.PWfp()
	if opts.EnforceTiming {
		connDelays, err := c.PConnDelays()
		if err != nil {
			return nil, fmt.Errorf("synth: %w", err)
		}
		timing, err := buildTiming(c, opts)
		if err != nil {
			return nil, err
		}
		synthBase = bvterm.AndAll([]*bvterm.Term{timing, connDelays, synthBase})
	}

	connVarsCycles := make([]*bvterm.Term, 0, opts.NumCycles+1)
	for n := 0; n <= opts.NumCycles; n++ {
		connVarsCycles = append(connVarsCycles, ur.AtTime(connVars, n))
	}
	pConnVars := bvterm.AndAll(connVarsCycles)

	pState := []*bvterm.Term{ur.AtTime(ts.Init(), 0)}
	for n := 0; n < opts.NumCycles; n++ {
		pState = append(pState, ur.AtTime(ts.Trans(), n))
	}
	pStateAll := bvterm.AndAll(pState)

	pSpecNodes, err := buildSpecNodes(ur, c, opts.NumCycles)
	if err != nil {
		return nil, err
	}

	pSpec, inputHistory, err := buildSpecMatch(ur, c, spec, opts.NumCycles)
	if err != nil {
		return nil, err
	}

	synthConstrain := bvterm.AndAll([]*bvterm.Term{pConnVars, pStateAll, pSpec, pSpecNodes})
	verify := bvterm.Implies(
		bvterm.AndAll([]*bvterm.Term{synthBase, pConnVars, pStateAll, pSpecNodes}),
		pSpec,
	)

	var dVars []*bvterm.Term
	for n := 0; n <= opts.NumCycles; n++ {
		for _, v := range c.DVars {
			dVars = append(dVars, ur.AtTime(v, n))
		}
	}

	var aVars []*bvterm.Term
	for _, cycle := range inputHistory {
		aVars = append(aVars, cycle...)
	}

	return &Encoding{
		SynthBase:      synthBase,
		SynthConstrain: synthConstrain,
		Verify:         verify,
		EVars:          c.EVars,
		AVars:          aVars,
		DVars:          dVars,
	}, nil
}

func buildTiming(c *circuit.Circuit, opts Options) (*bvterm.Term, error) {
	if len(opts.MaxOutputDelays) != len(c.OutputDelays) {
		return nil, fmt.Errorf("synth: max_output_delays has %d entries, expected %d", len(opts.MaxOutputDelays), len(c.OutputDelays))
	}
	sort := bvterm.BVSort(c.DelayWidth)
	cycleDelay := bvterm.Const(int64(opts.CycleDelay), sort)
	zero := bvterm.Const(0, sort)

	var conj []*bvterm.Term
	for _, setup := range c.Setups {
		conj = append(conj, bvterm.BVSle(setup, cycleDelay))
	}
	for _, hold := range c.Holds {
		conj = append(conj, bvterm.BVSge(hold, zero))
	}
	for i, delay := range c.OutputDelays {
		conj = append(conj, bvterm.BVSle(delay, bvterm.Const(int64(opts.MaxOutputDelays[i]), sort)))
	}
	return bvterm.AndAll(conj), nil
}

// buildSpecNodes ties each SpecNode's op-output variables, at every
// unrolled cycle, to the black box's own evaluation of the input history
// observed up to that cycle.
func buildSpecNodes(ur *solver.Unroller, c *circuit.Circuit, numCycles int) (*bvterm.Term, error) {
	conj := []*bvterm.Term{bvterm.Const(1, bvterm.BoolSort())}
	for i, op := range c.Ops {
		if op.Flavor() != node.FlavorSpec {
			continue
		}
		var history [][]*bvterm.Term
		for n := 0; n <= numCycles; n++ {
			cycle := make([]*bvterm.Term, len(c.OpInputVars[i]))
			for j, v := range c.OpInputVars[i] {
				cycle[j] = ur.AtTime(v, n)
			}
			history = append(history, cycle)

			result, err := op.EvalSpec(history)
			if err != nil {
				return nil, fmt.Errorf("synth: spec node %d: %w", i, err)
			}
			for j, out := range c.OpOutputVars[i] {
				conj = append(conj, bvterm.Equal(result[j], ur.AtTime(out, n)))
			}
		}
	}
	return bvterm.AndAll(conj), nil
}

// buildSpecMatch ties the circuit's own outputs, at every unrolled cycle,
// to the golden SpecFunc's expectation given the input history up to that
// cycle, and returns the per-cycle unrolled circuit-input tuples so the
// caller can flatten them into the A-variable list.
func buildSpecMatch(ur *solver.Unroller, c *circuit.Circuit, spec SpecFunc, numCycles int) (*bvterm.Term, [][]*bvterm.Term, error) {
	var conj []*bvterm.Term
	var history [][]*bvterm.Term
	for n := 0; n <= numCycles; n++ {
		cycle := make([]*bvterm.Term, len(c.InputVars))
		for i, v := range c.InputVars {
			cycle[i] = ur.AtTime(v, n)
		}
		history = append(history, cycle)

		expected := spec(history)
		if len(expected) != len(c.OutputVars) {
			return nil, nil, fmt.Errorf("synth: spec func returned %d outputs at cycle %d, expected %d", len(expected), n, len(c.OutputVars))
		}
		for i, out := range c.OutputVars {
			conj = append(conj, bvterm.Equal(expected[i], ur.AtTime(out, n)))
		}
	}
	return bvterm.AndAll(conj), history, nil
}
