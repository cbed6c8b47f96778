package node

import (
	"testing"

	"github.com/synthcore/tcircuit/pkg/bvterm"
)

func TestSchemaValidateMissingParam(t *testing.T) {
	schema := Schema{"N": ParamInt}
	if err := schema.Validate("Add", Params{}); err == nil {
		t.Error("expected error for missing parameter")
	}
}

func TestSchemaValidateWrongType(t *testing.T) {
	schema := Schema{"N": ParamInt}
	if err := schema.Validate("Add", Params{"N": "four"}); err == nil {
		t.Error("expected error for wrong parameter type")
	}
}

func TestSchemaValidateUnexpectedParam(t *testing.T) {
	schema := Schema{"N": ParamInt}
	if err := schema.Validate("Add", Params{"N": 4, "extra": 1}); err == nil {
		t.Error("expected error for unexpected parameter")
	}
}

func TestDescriptorNewComputesWidths(t *testing.T) {
	lib := NewLibrary(nil, 8)
	n, err := lib.Add.New(Params{"N": 4, "delay": 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(n.InWidths) != 2 || n.InWidths[0] != 4 || n.InWidths[1] != 4 {
		t.Errorf("InWidths = %v, want [4 4]", n.InWidths)
	}
	if len(n.OutWidths) != 1 || n.OutWidths[0] != 4 {
		t.Errorf("OutWidths = %v, want [4]", n.OutWidths)
	}
}

func TestEvalRejectsWrongInputWidth(t *testing.T) {
	lib := NewLibrary(nil, 8)
	n, err := lib.Add.New(Params{"N": 4, "delay": 0})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	badArgs := []*bvterm.Term{bvterm.Const(0, bvterm.BVSort(8)), bvterm.Const(0, bvterm.BVSort(4))}
	if _, err := n.Eval(nil, badArgs); err == nil {
		t.Error("expected error evaluating Add with a mismatched input width")
	}
}

func TestEvalOnSpecNodeReturnsError(t *testing.T) {
	lib := NewLibrary(nil, 8)
	desc := lib.MakeSpec("Echo",
		Schema{"N": ParamInt},
		func(p Params, history [][]*bvterm.Term) []*bvterm.Term { return history[len(history)-1] },
		func(p Params) ([]uint, []uint) { n := uint(p.Int("N")); return []uint{n}, []uint{n} },
		func(p Params, delayWidth uint, delays []*bvterm.Term) ([]*bvterm.Term, []*bvterm.Term, []*bvterm.Term) {
			return delays, delays, delays
		},
		[]bool{false},
	)
	n, err := desc.New(Params{"N": 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := n.Eval(nil, []*bvterm.Term{bvterm.Const(0, bvterm.BVSort(4))}); err == nil {
		t.Error("expected Eval on a SpecNode to return an error directing the caller to EvalSpec")
	}
}

func TestEvalSpecTypeChecksHistoryAndOutput(t *testing.T) {
	lib := NewLibrary(nil, 8)
	desc := lib.MakeSpec("Echo",
		Schema{"N": ParamInt},
		func(p Params, history [][]*bvterm.Term) []*bvterm.Term { return history[len(history)-1] },
		func(p Params) ([]uint, []uint) { n := uint(p.Int("N")); return []uint{n}, []uint{n} },
		func(p Params, delayWidth uint, delays []*bvterm.Term) ([]*bvterm.Term, []*bvterm.Term, []*bvterm.Term) {
			return delays, delays, delays
		},
		[]bool{false},
	)
	n, err := desc.New(Params{"N": 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	history := [][]*bvterm.Term{{bvterm.Const(3, bvterm.BVSort(4))}}
	out, err := n.EvalSpec(history)
	if err != nil {
		t.Fatalf("EvalSpec: %v", err)
	}
	if out[0].Const.Int64() != 3 {
		t.Errorf("Echo output = %v, want 3", out[0].Const)
	}

	badHistory := [][]*bvterm.Term{{bvterm.Const(3, bvterm.BVSort(8))}}
	if _, err := n.EvalSpec(badHistory); err == nil {
		t.Error("expected EvalSpec to reject a history cycle of the wrong width")
	}
}

func TestIsMooreReflectsDescriptor(t *testing.T) {
	lib := NewLibrary(nil, 8)
	desc := lib.MakeSpec("Mixed",
		Schema{},
		func(p Params, history [][]*bvterm.Term) []*bvterm.Term {
			return []*bvterm.Term{bvterm.Const(0, bvterm.BVSort(1)), bvterm.Const(0, bvterm.BVSort(1))}
		},
		func(p Params) ([]uint, []uint) { return []uint{1}, []uint{1, 1} },
		func(p Params, delayWidth uint, delays []*bvterm.Term) ([]*bvterm.Term, []*bvterm.Term, []*bvterm.Term) {
			return []*bvterm.Term{delays[0], delays[0]}, []*bvterm.Term{delays[0], delays[0]}, []*bvterm.Term{delays[0], delays[0]}
		},
		[]bool{true, false},
	)
	n, err := desc.New(Params{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !n.IsMoore(0) {
		t.Error("output 0 should be Moore")
	}
	if n.IsMoore(1) {
		t.Error("output 1 should be Mealy")
	}
}
