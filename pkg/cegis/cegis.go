// Package cegis drives the counterexample-guided inductive synthesis
// loop of spec.md §5: repeatedly synthesize a candidate interconnect,
// verify it against every possible input, and on failure fold the
// discovered counterexample into the next round's constraint. Grounded
// line-for-line on original_source/src/cegis.py.
package cegis

import (
	"fmt"

	"github.com/synthcore/tcircuit/pkg/bvterm"
	"github.com/synthcore/tcircuit/pkg/solver"
	"github.com/synthcore/tcircuit/pkg/synth"
)

// Result is the synthesized interconnect: a constant term for every
// E-variable, keyed by symbol name.
type Result map[string]*bvterm.Term

// Run drives the loop to completion and reports whether an interconnect
// was found. Run owns no state across calls — every Push it issues is
// matched by a Pop before returning or looping.
func Run(ctx *solver.Context, enc *synth.Encoding) (Result, bool, error) {
	synthConstrain := bvterm.Const(1, bvterm.BoolSort())

	for round := 1; ; round++ {
		ctx.Push()
		ctx.AssertFormula(enc.SynthBase)
		ctx.AssertFormula(synthConstrain)
		synthRes := ctx.CheckSat()
		ctx.Pop()
		if synthRes.IsUnsat() {
			return nil, false, nil
		}

		eVals := make(Result, len(enc.EVars))
		for _, v := range enc.EVars {
			val, err := ctx.GetValue(v)
			if err != nil {
				return nil, false, fmt.Errorf("cegis: round %d: reading E var %s: %w", round, v.Symbol, err)
			}
			eVals[v.Symbol] = val
		}

		ctx.Push()
		ctx.AssertFormula(bvterm.Not(ctx.Substitute(enc.Verify, eVals)))
		verifyRes := ctx.CheckSat()
		ctx.Pop()
		if verifyRes.IsUnsat() {
			return eVals, true, nil
		}

		aVals := make(map[string]*bvterm.Term, len(enc.AVars))
		for _, v := range enc.AVars {
			val, err := ctx.GetValue(v)
			if err != nil {
				return nil, false, fmt.Errorf("cegis: round %d: reading A var %s: %w", round, v.Symbol, err)
			}
			aVals[v.Symbol] = val
		}

		mapping := make(map[string]*bvterm.Term, len(aVals)+len(enc.DVars))
		for name, val := range aVals {
			mapping[name] = val
		}
		for _, v := range enc.DVars {
			mapping[v.Symbol] = bvterm.Symbol(fmt.Sprintf("%s@%d", v.Symbol, round), v.Sort)
		}

		newConstraint := ctx.Substitute(enc.SynthConstrain, mapping)
		synthConstrain = bvterm.And(synthConstrain, newConstraint)
	}
}
