package bvterm

import (
	"math/big"
	"testing"
)

func TestConstMasksToWidth(t *testing.T) {
	tests := []struct {
		value int64
		width uint
		want  int64
	}{
		{5, 4, 5},
		{16, 4, 0},
		{-1, 4, 15},
		{-1, 8, 255},
	}
	for _, tt := range tests {
		got := Const(tt.value, BVSort(tt.width))
		if got.Const.Cmp(big.NewInt(tt.want)) != 0 {
			t.Errorf("Const(%d, width %d) = %v, want %d", tt.value, tt.width, got.Const, tt.want)
		}
	}
}

func TestConstBoolNormalizes(t *testing.T) {
	if Const(5, BoolSort()).Const.Cmp(big.NewInt(1)) != 0 {
		t.Error("nonzero Bool const should normalize to 1")
	}
	if Const(0, BoolSort()).Const.Sign() != 0 {
		t.Error("zero Bool const should normalize to 0")
	}
}

func TestIteRequiresMatchingBranchSorts(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on mismatched Ite branch sorts")
		}
	}()
	Ite(Const(1, BoolSort()), Const(0, BVSort(4)), Const(0, BVSort(8)))
}

func TestAndAllCollapsesIdentity(t *testing.T) {
	got := AndAll([]*Term{Const(1, BoolSort()), Const(1, BoolSort())})
	if !isTrue(got) {
		t.Errorf("AndAll of all-true terms should collapse to true, got %v", got)
	}
}

func TestAndAllEmptyIsTrue(t *testing.T) {
	if !isTrue(AndAll(nil)) {
		t.Error("AndAll of no terms should be true")
	}
}

func TestOrAllEmptyIsFalse(t *testing.T) {
	if !isFalse(OrAll(nil)) {
		t.Error("OrAll of no terms should be false")
	}
}
