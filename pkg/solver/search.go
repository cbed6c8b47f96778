package solver

import (
	"math/big"
	"sort"

	"github.com/synthcore/tcircuit/pkg/bvterm"
)

// search is the bounded-enumeration check_sat implementation: it orders
// the conjunction's free symbols, assigns them one at a time, and prunes
// a branch the moment any assertion's partial evaluation is concretely
// false. This is sound and complete for the finite bit-vector domains
// this engine's scenarios use (spec.md §4.4's termination argument); it
// is not a general-purpose bit-blasting SMT solver, and callers should
// keep symbol widths small (the way this repo's own demo scenarios do).
func search(assertions []*bvterm.Term) (bool, bvterm.Assignment) {
	symbols := map[string]*bvterm.Term{}
	for _, a := range assertions {
		bvterm.FreeSymbols(a, symbols)
	}
	names := make([]string, 0, len(symbols))
	for name := range symbols {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic order: same problem, same search path

	assignment := bvterm.Assignment{}
	ok := backtrack(assertions, symbols, names, 0, assignment)
	if !ok {
		return false, nil
	}
	return true, assignment
}

func backtrack(assertions []*bvterm.Term, symbols map[string]*bvterm.Term, names []string, idx int, assignment bvterm.Assignment) bool {
	if idx == len(names) {
		for _, a := range assertions {
			v, ok := bvterm.PartialEval(a, assignment)
			if !ok || v.Sign() == 0 {
				return false
			}
		}
		return true
	}

	name := names[idx]
	sym := symbols[name]
	for _, value := range domain(sym.Sort) {
		assignment[name] = value
		if consistent(assertions, assignment) {
			if backtrack(assertions, symbols, names, idx+1, assignment) {
				return true
			}
		}
		delete(assignment, name)
	}
	return false
}

// consistent reports whether the partial assignment has not yet falsified
// any assertion that has become fully ground.
func consistent(assertions []*bvterm.Term, assignment bvterm.Assignment) bool {
	for _, a := range assertions {
		if v, ok := bvterm.PartialEval(a, assignment); ok && v.Sign() == 0 {
			return false
		}
	}
	return true
}

// domain enumerates every value a symbol of the given sort can take.
func domain(s bvterm.Sort) []*big.Int {
	if s.Kind == bvterm.KindBool {
		return []*big.Int{big.NewInt(0), big.NewInt(1)}
	}
	count := uint64(1) << s.Width
	vals := make([]*big.Int, count)
	for i := range vals {
		vals[i] = big.NewInt(int64(i))
	}
	return vals
}
