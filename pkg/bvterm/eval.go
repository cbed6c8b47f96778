package bvterm

import (
	"fmt"
	"math/big"
)

// Assignment maps symbol names to constant values.
type Assignment map[string]*big.Int

// Eval evaluates t under a complete assignment of its free symbols,
// returning the resulting constant value. It is the evaluator the
// enumeration-based check_sat in pkg/solver drives over candidate models.
func Eval(t *Term, a Assignment) (*big.Int, error) {
	switch t.Op {
	case OpConst:
		return t.Const, nil
	case OpSymbol:
		v, ok := a[t.Symbol]
		if !ok {
			return nil, fmt.Errorf("bvterm: no assignment for symbol %q", t.Symbol)
		}
		return v, nil
	}

	args := make([]*big.Int, len(t.Args))
	for i, arg := range t.Args {
		v, err := Eval(arg, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	switch t.Op {
	case OpNot:
		return boolBig(args[0].Sign() == 0), nil
	case OpNeg:
		return maskedBig(new(big.Int).Neg(args[0]), t.Sort), nil
	case OpAnd:
		return boolBig(args[0].Sign() != 0 && args[1].Sign() != 0), nil
	case OpOr:
		return boolBig(args[0].Sign() != 0 || args[1].Sign() != 0), nil
	case OpXor:
		return boolBig((args[0].Sign() != 0) != (args[1].Sign() != 0)), nil
	case OpImplies:
		return boolBig(args[0].Sign() == 0 || args[1].Sign() != 0), nil
	case OpEqual:
		return boolBig(args[0].Cmp(args[1]) == 0), nil
	case OpBVUlt:
		return boolBig(args[0].Cmp(args[1]) < 0), nil
	case OpBVUgt:
		return boolBig(args[0].Cmp(args[1]) > 0), nil
	case OpBVUle:
		return boolBig(args[0].Cmp(args[1]) <= 0), nil
	case OpBVUge:
		return boolBig(args[0].Cmp(args[1]) >= 0), nil
	case OpBVSle:
		return boolBig(signed(args[0], t.Args[0].Sort).Cmp(signed(args[1], t.Args[1].Sort)) <= 0), nil
	case OpBVSge:
		return boolBig(signed(args[0], t.Args[0].Sort).Cmp(signed(args[1], t.Args[1].Sort)) >= 0), nil
	case OpBVSgt:
		return boolBig(signed(args[0], t.Args[0].Sort).Cmp(signed(args[1], t.Args[1].Sort)) > 0), nil
	case OpBVAdd:
		return maskedBig(new(big.Int).Add(args[0], args[1]), t.Sort), nil
	case OpBVSub:
		return maskedBig(new(big.Int).Sub(args[0], args[1]), t.Sort), nil
	case OpBVMul:
		return maskedBig(new(big.Int).Mul(args[0], args[1]), t.Sort), nil
	case OpBVAnd:
		return maskedBig(new(big.Int).And(args[0], args[1]), t.Sort), nil
	case OpBVOr:
		return maskedBig(new(big.Int).Or(args[0], args[1]), t.Sort), nil
	case OpBVXor:
		return maskedBig(new(big.Int).Xor(args[0], args[1]), t.Sort), nil
	case OpIte:
		if args[0].Sign() != 0 {
			return args[1], nil
		}
		return args[2], nil
	}
	return nil, fmt.Errorf("bvterm: unhandled op %d", t.Op)
}

// PartialEval evaluates t under a possibly-incomplete assignment,
// short-circuiting And/Or/Implies/Ite where the result is already
// determined so a search procedure can prune a branch before every free
// symbol has been assigned. ok is false when t's value cannot yet be
// determined from the given partial assignment.
func PartialEval(t *Term, a Assignment) (v *big.Int, ok bool) {
	switch t.Op {
	case OpConst:
		return t.Const, true
	case OpSymbol:
		val, present := a[t.Symbol]
		return val, present
	case OpNot:
		s, ok := PartialEval(t.Args[0], a)
		if !ok {
			return nil, false
		}
		return boolBig(s.Sign() == 0), true
	case OpAnd:
		l, lok := PartialEval(t.Args[0], a)
		if lok && l.Sign() == 0 {
			return boolBig(false), true
		}
		r, rok := PartialEval(t.Args[1], a)
		if rok && r.Sign() == 0 {
			return boolBig(false), true
		}
		if lok && rok {
			return boolBig(l.Sign() != 0 && r.Sign() != 0), true
		}
		return nil, false
	case OpOr:
		l, lok := PartialEval(t.Args[0], a)
		if lok && l.Sign() != 0 {
			return boolBig(true), true
		}
		r, rok := PartialEval(t.Args[1], a)
		if rok && r.Sign() != 0 {
			return boolBig(true), true
		}
		if lok && rok {
			return boolBig(l.Sign() != 0 || r.Sign() != 0), true
		}
		return nil, false
	case OpImplies:
		l, lok := PartialEval(t.Args[0], a)
		if lok && l.Sign() == 0 {
			return boolBig(true), true
		}
		r, rok := PartialEval(t.Args[1], a)
		if rok && r.Sign() != 0 {
			return boolBig(true), true
		}
		if lok && rok {
			return boolBig(l.Sign() == 0 || r.Sign() != 0), true
		}
		return nil, false
	case OpIte:
		cond, cok := PartialEval(t.Args[0], a)
		if !cok {
			return nil, false
		}
		if cond.Sign() != 0 {
			return PartialEval(t.Args[1], a)
		}
		return PartialEval(t.Args[2], a)
	default:
		args := make([]*big.Int, len(t.Args))
		for i, arg := range t.Args {
			val, ok := PartialEval(arg, a)
			if !ok {
				return nil, false
			}
			args[i] = val
		}
		return evalConcreteOp(t, args)
	}
}

// evalConcreteOp evaluates an operator whose arguments are all already
// determined; used by PartialEval and by the term constructors to fold
// all-constant operands. Eval keeps its own switch.
func evalConcreteOp(t *Term, args []*big.Int) (*big.Int, bool) {
	switch t.Op {
	case OpNeg:
		return maskedBig(new(big.Int).Neg(args[0]), t.Sort), true
	case OpXor:
		return boolBig((args[0].Sign() != 0) != (args[1].Sign() != 0)), true
	case OpEqual:
		return boolBig(args[0].Cmp(args[1]) == 0), true
	case OpBVUlt:
		return boolBig(args[0].Cmp(args[1]) < 0), true
	case OpBVUgt:
		return boolBig(args[0].Cmp(args[1]) > 0), true
	case OpBVUle:
		return boolBig(args[0].Cmp(args[1]) <= 0), true
	case OpBVUge:
		return boolBig(args[0].Cmp(args[1]) >= 0), true
	case OpBVSle:
		return boolBig(signed(args[0], t.Args[0].Sort).Cmp(signed(args[1], t.Args[1].Sort)) <= 0), true
	case OpBVSge:
		return boolBig(signed(args[0], t.Args[0].Sort).Cmp(signed(args[1], t.Args[1].Sort)) >= 0), true
	case OpBVSgt:
		return boolBig(signed(args[0], t.Args[0].Sort).Cmp(signed(args[1], t.Args[1].Sort)) > 0), true
	case OpBVAdd:
		return maskedBig(new(big.Int).Add(args[0], args[1]), t.Sort), true
	case OpBVSub:
		return maskedBig(new(big.Int).Sub(args[0], args[1]), t.Sort), true
	case OpBVMul:
		return maskedBig(new(big.Int).Mul(args[0], args[1]), t.Sort), true
	case OpBVAnd:
		return maskedBig(new(big.Int).And(args[0], args[1]), t.Sort), true
	case OpBVOr:
		return maskedBig(new(big.Int).Or(args[0], args[1]), t.Sort), true
	case OpBVXor:
		return maskedBig(new(big.Int).Xor(args[0], args[1]), t.Sort), true
	}
	return nil, false
}

func boolBig(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return big.NewInt(0)
}

// signed reinterprets an unsigned width-masked value as two's complement.
func signed(v *big.Int, s Sort) *big.Int {
	half := new(big.Int).Lsh(big.NewInt(1), s.Width-1)
	if v.Cmp(half) < 0 {
		return v
	}
	full := new(big.Int).Lsh(big.NewInt(1), s.Width)
	return new(big.Int).Sub(v, full)
}

// FreeSymbols collects the distinct symbol terms reachable from t, keyed
// by name so repeated occurrences of the same variable collapse.
func FreeSymbols(t *Term, into map[string]*Term) {
	if t.Op == OpSymbol {
		into[t.Symbol] = t
		return
	}
	for _, a := range t.Args {
		FreeSymbols(a, into)
	}
}

// Substitute produces a fresh term with every occurrence of a symbol in
// mapping replaced by its image term — the one extra primitive spec.md §4.4
// requires beyond push/pop/assert/check/get-value/make-symbol.
func Substitute(t *Term, mapping map[string]*Term) *Term {
	switch t.Op {
	case OpConst:
		return t
	case OpSymbol:
		if repl, ok := mapping[t.Symbol]; ok {
			return repl
		}
		return t
	}
	newArgs := make([]*Term, len(t.Args))
	changed := false
	for i, a := range t.Args {
		newArgs[i] = Substitute(a, mapping)
		if newArgs[i] != a {
			changed = true
		}
	}
	if !changed {
		return t
	}
	cp := *t
	cp.Args = newArgs
	return &cp
}
