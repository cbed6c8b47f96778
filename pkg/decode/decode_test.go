package decode

import (
	"testing"

	"github.com/synthcore/tcircuit/pkg/bvterm"
	"github.com/synthcore/tcircuit/pkg/cegis"
	"github.com/synthcore/tcircuit/pkg/circuit"
	"github.com/synthcore/tcircuit/pkg/node"
	"github.com/synthcore/tcircuit/pkg/solver"
)

func TestDecodeReadsEveryLvarCategory(t *testing.T) {
	ctx := solver.NewContext()
	ts := solver.NewTransitionSystem(ctx)
	lib := node.NewLibrary(ts, 8)
	add, err := lib.NewAdd(4, 0)
	if err != nil {
		t.Fatalf("NewAdd: %v", err)
	}
	types := circuit.Types{In: []uint{4, 4}, Out: []uint{4}}
	c, err := circuit.New(lib, ctx, ts, types, []*node.Node{add}, nil)
	if err != nil {
		t.Fatalf("circuit.New: %v", err)
	}

	lv := bvterm.BVSort(c.LvarWidth)
	res := cegis.Result{
		c.OpInputLvars[0][0].Symbol:  bvterm.Const(0, lv),
		c.OpInputLvars[0][1].Symbol:  bvterm.Const(1, lv),
		c.OpOutputLvars[0][0].Symbol: bvterm.Const(2, lv),
		c.OutputLvars[0].Symbol:      bvterm.Const(2, lv),
	}

	ic, err := Decode(c, res)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ic.InputLvars[0] != 0 || ic.InputLvars[1] != 1 {
		t.Errorf("InputLvars = %v, want [0 1]", ic.InputLvars)
	}
	if ic.OpInputLvars[0][0] != 0 || ic.OpInputLvars[0][1] != 1 {
		t.Errorf("OpInputLvars[0] = %v, want [0 1]", ic.OpInputLvars[0])
	}
	if ic.OpOutputLvars[0][0] != 2 {
		t.Errorf("OpOutputLvars[0][0] = %d, want 2", ic.OpOutputLvars[0][0])
	}
	if ic.OutputLvars[0] != 2 {
		t.Errorf("OutputLvars[0] = %d, want 2", ic.OutputLvars[0])
	}
}

func TestDecodeErrorsOnMissingAssignment(t *testing.T) {
	ctx := solver.NewContext()
	ts := solver.NewTransitionSystem(ctx)
	lib := node.NewLibrary(ts, 8)
	add, err := lib.NewAdd(4, 0)
	if err != nil {
		t.Fatalf("NewAdd: %v", err)
	}
	types := circuit.Types{In: []uint{4, 4}, Out: []uint{4}}
	c, err := circuit.New(lib, ctx, ts, types, []*node.Node{add}, nil)
	if err != nil {
		t.Fatalf("circuit.New: %v", err)
	}

	if _, err := Decode(c, cegis.Result{}); err == nil {
		t.Error("expected an error when the result has no assignment for a required lvar")
	}
}
