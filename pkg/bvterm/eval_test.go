package bvterm

import (
	"math/big"
	"testing"
)

func TestEvalArithmetic(t *testing.T) {
	sort := BVSort(4)
	x := Symbol("x", sort)
	y := Symbol("y", sort)
	sum := BVAdd(x, y)

	got, err := Eval(sum, Assignment{"x": big.NewInt(9), "y": big.NewInt(9)})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got.Cmp(big.NewInt(2)) != 0 { // 18 mod 16 = 2
		t.Errorf("9+9 (mod 16) = %v, want 2", got)
	}
}

func TestEvalMissingSymbol(t *testing.T) {
	x := Symbol("x", BVSort(4))
	if _, err := Eval(x, Assignment{}); err == nil {
		t.Error("expected error evaluating an unassigned symbol")
	}
}

func TestPartialEvalShortCircuitsAnd(t *testing.T) {
	x := Symbol("x", BVSort(4))
	conj := And(Const(0, BoolSort()), BVUlt(x, Const(5, BVSort(4))))
	v, ok := PartialEval(conj, Assignment{})
	if !ok {
		t.Fatal("expected a false left operand to short-circuit And without needing x")
	}
	if v.Sign() != 0 {
		t.Errorf("And(false, _) = %v, want false", v)
	}
}

func TestPartialEvalIncompleteIsNotOk(t *testing.T) {
	x := Symbol("x", BVSort(4))
	y := Symbol("y", BVSort(4))
	sum := BVAdd(x, y)
	if _, ok := PartialEval(sum, Assignment{"x": big.NewInt(1)}); ok {
		t.Error("expected PartialEval to report not-ok when y is unassigned")
	}
}

func TestSubstitute(t *testing.T) {
	x := Symbol("x", BVSort(4))
	y := Symbol("y", BVSort(4))
	term := BVAdd(x, Const(1, BVSort(4)))
	replaced := Substitute(term, map[string]*Term{"x": y})

	got, err := Eval(replaced, Assignment{"y": big.NewInt(3)})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got.Cmp(big.NewInt(4)) != 0 {
		t.Errorf("substituted term evaluated to %v, want 4", got)
	}
}

func TestFreeSymbols(t *testing.T) {
	x := Symbol("x", BVSort(4))
	y := Symbol("y", BVSort(4))
	term := BVAdd(x, BVMul(y, x))

	into := map[string]*Term{}
	FreeSymbols(term, into)
	if len(into) != 2 {
		t.Fatalf("expected 2 distinct free symbols, got %d", len(into))
	}
}

func TestSignedReinterpretation(t *testing.T) {
	sort := BVSort(4)
	neg1 := Const(-1, sort) // 15 unsigned, -1 signed
	sum := BVAdd(Symbol("x", sort), neg1)
	got, err := Eval(sum, Assignment{"x": big.NewInt(1)})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got.Sign() != 0 {
		t.Errorf("1 + (-1 as 4-bit) = %v, want 0", got)
	}
}
