package solver

import (
	"testing"

	"github.com/synthcore/tcircuit/pkg/bvterm"
)

func TestUnrollerCyclesStateAndInputVars(t *testing.T) {
	ctx := NewContext()
	ts := NewTransitionSystem(ctx)

	in := ts.MakeInputVar("in", bvterm.BVSort(4))
	state := ts.MakeStateVar("reg", bvterm.BVSort(4))
	ts.ConstrainInit(bvterm.Equal(state, bvterm.Const(0, bvterm.BVSort(4))))
	ts.AssignNext(state, bvterm.BVAdd(state, in))

	ur := NewUnroller(ts)
	trans0 := ur.AtTime(ts.Trans(), 0)

	into := map[string]*bvterm.Term{}
	bvterm.FreeSymbols(trans0, into)
	if _, ok := into["reg@0"]; !ok {
		t.Errorf("expected trans@0 to reference reg@0, got symbols %v", keys(into))
	}
	if _, ok := into["reg@1"]; !ok {
		t.Errorf("expected trans@0 to reference reg@1 (the next-state copy), got symbols %v", keys(into))
	}
	if _, ok := into["in@0"]; !ok {
		t.Errorf("expected trans@0 to reference in@0, got symbols %v", keys(into))
	}
}

func TestAssignNextOnUnregisteredStatePanics(t *testing.T) {
	ctx := NewContext()
	ts := NewTransitionSystem(ctx)
	notAState := bvterm.Symbol("ghost", bvterm.BVSort(4))

	defer func() {
		if recover() == nil {
			t.Error("expected panic assigning next() on a non-state symbol")
		}
	}()
	ts.AssignNext(notAState, bvterm.Const(0, bvterm.BVSort(4)))
}

func keys(m map[string]*bvterm.Term) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
