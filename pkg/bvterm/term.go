package bvterm

import (
	"fmt"
	"math/big"
)

// Op is the fixed operator set the engine's formulas are built from —
// the same set original_source/src/nodes.py and circuit_encoding.py pull
// out of smt_switch.primops.
type Op uint8

const (
	OpConst Op = iota
	OpSymbol
	OpNot
	OpNeg // BVNeg, two's-complement negation
	OpAnd
	OpOr
	OpXor
	OpImplies
	OpEqual
	OpBVAdd
	OpBVSub
	OpBVMul
	OpBVAnd // bitwise, BV-sorted (distinct from the boolean OpAnd)
	OpBVOr
	OpBVXor
	OpBVUlt
	OpBVUgt
	OpBVUle
	OpBVUge
	OpBVSle
	OpBVSge
	OpBVSgt
	OpIte
)

// Term is a tagged-variant expression node, mirroring the way
// pkg/ir/ir.go represents an Instruction as one struct with an Opcode tag
// rather than a class per operator.
type Term struct {
	Op       Op
	Sort     Sort
	Const    *big.Int // OpConst
	Symbol   string    // OpSymbol
	Args     []*Term   // operator arguments, in operand order
}

func (t *Term) String() string {
	switch t.Op {
	case OpConst:
		return t.Const.String()
	case OpSymbol:
		return t.Symbol
	default:
		return fmt.Sprintf("(%d %v)", t.Op, t.Args)
	}
}

func leaf(op Op, sort Sort) *Term { return &Term{Op: op, Sort: sort} }

// Const builds a constant term of the given sort. For BV sorts the value
// is masked to width; for Bool any nonzero value is true.
func Const(value int64, sort Sort) *Term {
	t := leaf(OpConst, sort)
	t.Const = maskedBig(big.NewInt(value), sort)
	return t
}

// ConstBig is Const for values that don't fit an int64.
func ConstBig(value *big.Int, sort Sort) *Term {
	t := leaf(OpConst, sort)
	t.Const = maskedBig(new(big.Int).Set(value), sort)
	return t
}

func maskedBig(v *big.Int, sort Sort) *big.Int {
	if sort.Kind == KindBool {
		if v.Sign() != 0 {
			return big.NewInt(1)
		}
		return big.NewInt(0)
	}
	mask := new(big.Int).Lsh(big.NewInt(1), sort.Width)
	mask.Sub(mask, big.NewInt(1))
	v = new(big.Int).And(v, mask)
	if v.Sign() < 0 {
		v.Add(v, mask).Add(v, big.NewInt(1))
	}
	return v
}

// Symbol builds a free variable term; name uniqueness is the caller's
// responsibility (pkg/circuit, pkg/solver and pkg/cegis hand out names
// like "op_input_lvar[0][1]", "<orig>@<cycle>" or "<orig>@<round>").
func Symbol(name string, sort Sort) *Term {
	t := leaf(OpSymbol, sort)
	t.Symbol = name
	return t
}

func unary(op Op, sort Sort, a *Term) *Term {
	t := leaf(op, sort)
	t.Args = []*Term{a}
	return t
}

func binary(op Op, sort Sort, a, b *Term) *Term {
	t := leaf(op, sort)
	t.Args = []*Term{a, b}
	if a.Op == OpConst && b.Op == OpConst {
		if v, ok := evalConcreteOp(t, []*big.Int{a.Const, b.Const}); ok {
			folded := leaf(OpConst, sort)
			folded.Const = v
			return folded
		}
	}
	return t
}

func Not(a *Term) *Term { return unary(OpNot, BoolSort(), a) }
func Neg(a *Term) *Term { return unary(OpNeg, a.Sort, a) }

func And(a, b *Term) *Term     { return binary(OpAnd, BoolSort(), a, b) }
func Or(a, b *Term) *Term      { return binary(OpOr, BoolSort(), a, b) }
func Xor(a, b *Term) *Term     { return binary(OpXor, BoolSort(), a, b) }
func Implies(a, b *Term) *Term { return binary(OpImplies, BoolSort(), a, b) }
func Equal(a, b *Term) *Term   { return binary(OpEqual, BoolSort(), a, b) }
func BVUlt(a, b *Term) *Term   { return binary(OpBVUlt, BoolSort(), a, b) }
func BVUgt(a, b *Term) *Term   { return binary(OpBVUgt, BoolSort(), a, b) }
func BVUle(a, b *Term) *Term   { return binary(OpBVUle, BoolSort(), a, b) }
func BVUge(a, b *Term) *Term   { return binary(OpBVUge, BoolSort(), a, b) }
func BVSle(a, b *Term) *Term   { return binary(OpBVSle, BoolSort(), a, b) }
func BVSge(a, b *Term) *Term   { return binary(OpBVSge, BoolSort(), a, b) }
func BVSgt(a, b *Term) *Term   { return binary(OpBVSgt, BoolSort(), a, b) }

func BVAdd(a, b *Term) *Term { return binary(OpBVAdd, a.Sort, a, b) }
func BVSub(a, b *Term) *Term { return binary(OpBVSub, a.Sort, a, b) }
func BVMul(a, b *Term) *Term { return binary(OpBVMul, a.Sort, a, b) }
func BVAnd(a, b *Term) *Term { return binary(OpBVAnd, a.Sort, a, b) }
func BVOr(a, b *Term) *Term  { return binary(OpBVOr, a.Sort, a, b) }
func BVXor(a, b *Term) *Term { return binary(OpBVXor, a.Sort, a, b) }

// Ite builds an if-then-else term; cond must be Bool and then/els share a sort.
func Ite(cond, then, els *Term) *Term {
	if !then.Sort.Equal(els.Sort) {
		panic(fmt.Sprintf("bvterm: Ite branch sort mismatch %v vs %v", then.Sort, els.Sort))
	}
	if cond.Op == OpConst {
		if cond.Const.Sign() != 0 {
			return then
		}
		return els
	}
	t := leaf(OpIte, then.Sort)
	t.Args = []*Term{cond, then, els}
	return t
}

// AndAll folds a slice of Bool terms with And (an empty slice yields true), short-circuiting
// the true identity the way spec.md's design notes ask for (builders that
// collapse trivial conjuncts instead of growing a long flat AND chain).
func AndAll(terms []*Term) *Term {
	acc := Const(1, BoolSort())
	first := true
	for _, t := range terms {
		if isTrue(t) {
			continue
		}
		if first {
			acc = t
			first = false
			continue
		}
		acc = And(acc, t)
	}
	return acc
}

// OrAll is the disjunctive counterpart of AndAll.
func OrAll(terms []*Term) *Term {
	acc := Const(0, BoolSort())
	first := true
	for _, t := range terms {
		if isFalse(t) {
			continue
		}
		if first {
			acc = t
			first = false
			continue
		}
		acc = Or(acc, t)
	}
	return acc
}

func isTrue(t *Term) bool  { return t.Op == OpConst && t.Sort.Kind == KindBool && t.Const.Sign() != 0 }
func isFalse(t *Term) bool { return t.Op == OpConst && t.Sort.Kind == KindBool && t.Const.Sign() == 0 }
