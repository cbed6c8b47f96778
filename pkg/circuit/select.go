package circuit

import (
	"fmt"

	"github.com/synthcore/tcircuit/pkg/bvterm"
)

// lineRef is one line of the circuit: a source of a value of a known
// width and its line variable, plus the delay computed for that line.
type lineRef struct {
	lvar  *bvterm.Term
	width uint
	val   *bvterm.Term
	delay *bvterm.Term
}

// lines enumerates every line of the circuit in allocation order: circuit
// inputs first, then each op's outputs, matching the indexing that
// buildPartition and New use when allocating lvars.
func (c *Circuit) lines() []lineRef {
	refs := make([]lineRef, 0, c.NumLines)
	for i, w := range c.Types.In {
		refs = append(refs, lineRef{c.InputLvars[i], w, c.InputVars[i], c.InputDelays[i]})
	}
	for i, op := range c.Ops {
		for j, w := range op.OutWidths {
			refs = append(refs, lineRef{c.OpOutputLvars[i][j], w, c.OpOutputVars[i][j], c.OpOutputDelays[i][j]})
		}
	}
	return refs
}

// selectVar builds the mux expression that reads the value on line
// `target` out of every candidate line of the matching width: a
// right-fold of if-then-else tests ending in the last candidate as the
// base case, mirroring circuit_encoding.py's select_var.
func (c *Circuit) selectVar(target *bvterm.Term, width uint) (*bvterm.Term, error) {
	var cand []lineRef
	for _, l := range c.lines() {
		if l.width == width {
			cand = append(cand, l)
		}
	}
	if len(cand) == 0 {
		return nil, fmt.Errorf("circuit: no line of width %d to select_var from", width)
	}
	res := cand[len(cand)-1].val
	for i := len(cand) - 2; i >= 0; i-- {
		res = bvterm.Ite(bvterm.Equal(target, cand[i].lvar), cand[i].val, res)
	}
	return res, nil
}

// selectDelay is select_var's delay-domain counterpart: it filters
// candidate lines by width the same way selectVar does, matching
// circuit_encoding.py's select_delay rather than relying on P_wfp's
// global lvar uniqueness to make an unfiltered fold safe.
func (c *Circuit) selectDelay(target *bvterm.Term, width uint) (*bvterm.Term, error) {
	var cand []lineRef
	for _, l := range c.lines() {
		if l.width == width {
			cand = append(cand, l)
		}
	}
	if len(cand) == 0 {
		return nil, fmt.Errorf("circuit: no line of width %d to select_delay from", width)
	}
	res := cand[len(cand)-1].delay
	for i := len(cand) - 2; i >= 0; i-- {
		res = bvterm.Ite(bvterm.Equal(target, cand[i].lvar), cand[i].delay, res)
	}
	return res, nil
}
