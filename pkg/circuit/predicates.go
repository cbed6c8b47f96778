package circuit

import (
	"fmt"

	"github.com/synthcore/tcircuit/pkg/bvterm"
	"github.com/synthcore/tcircuit/pkg/node"
)

func (c *Circuit) lvSort() bvterm.Sort { return bvterm.BVSort(c.LvarWidth) }

// PAcyc forbids combinational feedback and pins the line numbers that
// spec.md §9 calls hardcoded_lvars: a CombNode's inputs must precede its
// own first output; a SeqNode's first output (and a SpecNode's every
// Moore output) is pinned to the next free line by equality rather than
// substitution, so it stays a free symbol everywhere else in the
// encoding; a SpecNode's Mealy outputs behave like a CombNode's.
// Mirrors circuit_encoding.py's P_acyc exactly, including its reliance on
// P_multi_out to keep a multi-output op's later lvars contiguous.
func (c *Circuit) PAcyc() *bvterm.Term {
	lv := c.lvSort()
	hardcoded := c.NumInputs
	var conj []*bvterm.Term
	for i, op := range c.Ops {
		in := c.OpInputLvars[i]
		out := c.OpOutputLvars[i]
		switch op.Flavor() {
		case node.FlavorComb:
			for _, inLvar := range in {
				conj = append(conj, bvterm.BVUlt(inLvar, out[0]))
			}
		case node.FlavorSeq:
			conj = append(conj, bvterm.Equal(out[0], bvterm.Const(int64(hardcoded), lv)))
			hardcoded += len(out)
		case node.FlavorSpec:
			for j, outLvar := range out {
				if op.IsMoore(j) {
					conj = append(conj, bvterm.Equal(outLvar, bvterm.Const(int64(hardcoded), lv)))
					hardcoded++
					continue
				}
				for _, inLvar := range in {
					conj = append(conj, bvterm.BVUlt(inLvar, outLvar))
				}
			}
		}
	}
	return bvterm.AndAll(conj)
}

// PLvarsInRange constrains every op-output lvar to a valid non-circuit-
// input line number. Circuit inputs are fixed lvars by construction, and
// sink lvars (op inputs, circuit outputs) are constrained indirectly by
// P_well_typed, so neither needs its own range check.
func (c *Circuit) PLvarsInRange() *bvterm.Term {
	lv := c.lvSort()
	minLvar := bvterm.Const(int64(c.NumInputs), lv)
	maxLvar := bvterm.Const(int64(c.NumLines-1), lv)
	var conj []*bvterm.Term
	for _, lvs := range c.OpOutputLvars {
		for _, lvar := range lvs {
			conj = append(conj, bvterm.BVUge(lvar, minLvar))
			conj = append(conj, bvterm.BVUle(lvar, maxLvar))
		}
	}
	return bvterm.AndAll(conj)
}

// PMultiOut requires a multi-output op's later lvars to sit on
// consecutive lines after its first — SpecNode is exempt since its Moore
// outputs are pinned individually by P_acyc and its Mealy outputs float
// independently.
func (c *Circuit) PMultiOut() *bvterm.Term {
	one := bvterm.Const(1, c.lvSort())
	var conj []*bvterm.Term
	for i, op := range c.Ops {
		if op.Flavor() == node.FlavorSpec {
			continue
		}
		out := c.OpOutputLvars[i]
		for k := 0; k+1 < len(out); k++ {
			conj = append(conj, bvterm.Equal(bvterm.BVAdd(out[k], one), out[k+1]))
		}
	}
	return bvterm.AndAll(conj)
}

// PSrcLvarsUnique forbids two different op outputs from occupying the
// same line — the pairwise-inequality shape of
// circuit_encoding.py's itertools.combinations loop.
func (c *Circuit) PSrcLvarsUnique() *bvterm.Term {
	var all []*bvterm.Term
	for _, lvs := range c.OpOutputLvars {
		all = append(all, lvs...)
	}
	var conj []*bvterm.Term
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			conj = append(conj, bvterm.Not(bvterm.Equal(all[i], all[j])))
		}
	}
	return bvterm.AndAll(conj)
}

// PWellTyped requires every sink lvar (op inputs, circuit outputs) to
// equal one of the source lvars of matching width.
func (c *Circuit) PWellTyped() *bvterm.Term {
	srcsByWidth := make(map[uint][]*bvterm.Term)
	for i, w := range c.Types.In {
		srcsByWidth[w] = append(srcsByWidth[w], c.InputLvars[i])
	}
	for i, op := range c.Ops {
		for j, w := range op.OutWidths {
			srcsByWidth[w] = append(srcsByWidth[w], c.OpOutputLvars[i][j])
		}
	}

	var conj []*bvterm.Term
	addSink := func(sink *bvterm.Term, width uint) {
		var eqs []*bvterm.Term
		for _, s := range srcsByWidth[width] {
			eqs = append(eqs, bvterm.Equal(sink, s))
		}
		conj = append(conj, bvterm.OrAll(eqs))
	}
	for i, op := range c.Ops {
		for j, w := range op.InWidths {
			addSink(c.OpInputLvars[i][j], w)
		}
	}
	for i, w := range c.Types.Out {
		addSink(c.OutputLvars[i], w)
	}
	return bvterm.AndAll(conj)
}

// PWfp is the well-formed-program predicate: the conjunction every
// candidate interconnect must satisfy before CEGIS even asks whether it
// matches the behavioral spec (spec.md §4.2).
func (c *Circuit) PWfp() *bvterm.Term {
	return bvterm.AndAll([]*bvterm.Term{
		c.PAcyc(),
		c.PLvarsInRange(),
		c.PMultiOut(),
		c.PSrcLvarsUnique(),
		c.PWellTyped(),
	})
}

// PConnVars ties each op input's independently-evaluated value variable
// to the value actually present on the line its lvar selects.
func (c *Circuit) PConnVars() (*bvterm.Term, error) {
	var conj []*bvterm.Term
	for i, op := range c.Ops {
		for j, w := range op.InWidths {
			v, err := c.selectVar(c.OpInputLvars[i][j], w)
			if err != nil {
				return nil, fmt.Errorf("circuit: P_conn_vars op %d input %d: %w", i, j, err)
			}
			conj = append(conj, bvterm.Equal(v, c.OpInputVars[i][j]))
		}
	}
	return bvterm.AndAll(conj), nil
}

// PConnDelays is P_conn_vars's timing-domain counterpart.
func (c *Circuit) PConnDelays() (*bvterm.Term, error) {
	var conj []*bvterm.Term
	for i, op := range c.Ops {
		for j, w := range op.InWidths {
			d, err := c.selectDelay(c.OpInputLvars[i][j], w)
			if err != nil {
				return nil, fmt.Errorf("circuit: P_conn_delays op %d input %d: %w", i, j, err)
			}
			conj = append(conj, bvterm.Equal(d, c.OpInputDelays[i][j]))
		}
	}
	return bvterm.AndAll(conj), nil
}
