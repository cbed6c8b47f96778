package solver

import (
	"fmt"

	"github.com/synthcore/tcircuit/pkg/bvterm"
)

// TransitionSystem is the unroller contract's other half: it owns state
// and input variable declarations and the init/trans formulas they
// satisfy, the way `pono.FunctionalTransitionSystem` does in
// original_source/demo.py. Every SeqNode registers its state variable
// here (pkg/node's Register constructor), and pkg/circuit registers every
// port-level value variable as an input var so the unroller can give it a
// per-cycle copy uniformly.
type TransitionSystem struct {
	ctx       *Context
	inputVars map[string]bvterm.Sort
	stateVars map[string]bvterm.Sort
	initTerms []*bvterm.Term
	transTerms []*bvterm.Term
}

func NewTransitionSystem(ctx *Context) *TransitionSystem {
	return &TransitionSystem{
		ctx:       ctx,
		inputVars: make(map[string]bvterm.Sort),
		stateVars: make(map[string]bvterm.Sort),
	}
}

// MakeInputVar declares a fresh symbolic variable that the unroller
// copies per cycle but that the transition system itself never constrains.
func (ts *TransitionSystem) MakeInputVar(name string, sort bvterm.Sort) *bvterm.Term {
	if _, dup := ts.inputVars[name]; dup {
		panic(fmt.Sprintf("solver: duplicate input var %q", name))
	}
	ts.inputVars[name] = sort
	return bvterm.Symbol(name, sort)
}

// MakeStateVar declares a fresh state variable; its cycle-0 value is
// fixed by ConstrainInit and its cycle-(t+1) value by AssignNext.
func (ts *TransitionSystem) MakeStateVar(name string, sort bvterm.Sort) *bvterm.Term {
	if _, dup := ts.stateVars[name]; dup {
		panic(fmt.Sprintf("solver: duplicate state var %q", name))
	}
	ts.stateVars[name] = sort
	return bvterm.Symbol(name, sort)
}

// ConstrainInit conjoins a formula (typically `state == init-value`) to
// the system's init predicate.
func (ts *TransitionSystem) ConstrainInit(f *bvterm.Term) {
	ts.initTerms = append(ts.initTerms, f)
}

// AssignNext records `next(state) == nextExpr`. The "next" reference is
// modeled as a synthetic symbol name state.Symbol+"'" that AtTime maps to
// cycle k+1 when unrolling trans@k, mirroring pono's next-state operator.
func (ts *TransitionSystem) AssignNext(state *bvterm.Term, nextExpr *bvterm.Term) {
	if state.Op != bvterm.OpSymbol {
		panic("solver: AssignNext target must be a state-var symbol")
	}
	if _, ok := ts.stateVars[state.Symbol]; !ok {
		panic(fmt.Sprintf("solver: AssignNext on unregistered state var %q", state.Symbol))
	}
	next := bvterm.Symbol(state.Symbol+"'", state.Sort)
	ts.transTerms = append(ts.transTerms, bvterm.Equal(next, nextExpr))
}

// Init returns the conjoined init formula.
func (ts *TransitionSystem) Init() *bvterm.Term { return bvterm.AndAll(ts.initTerms) }

// Trans returns the conjoined transition formula (with "'"-suffixed
// next-state references still present, for AtTime to resolve).
func (ts *TransitionSystem) Trans() *bvterm.Term { return bvterm.AndAll(ts.transTerms) }

// Unroller produces per-cycle copies of a transition system's formulas
// and variables, the `at_time(term, k)` contract of spec.md §6.
type Unroller struct {
	ts *TransitionSystem
}

func NewUnroller(ts *TransitionSystem) *Unroller { return &Unroller{ts: ts} }

// AtTime returns a copy of t where every state/input variable is
// replaced by its k-th cycle symbol ("name@k"), and every next-state
// reference ("name'") by its (k+1)-th cycle symbol.
func (u *Unroller) AtTime(t *bvterm.Term, k int) *bvterm.Term {
	mapping := map[string]*bvterm.Term{}
	symbols := map[string]*bvterm.Term{}
	bvterm.FreeSymbols(t, symbols)
	for name, sym := range symbols {
		if base, isNext := trimPrime(name); isNext {
			if sort, ok := u.ts.stateVars[base]; ok {
				mapping[name] = bvterm.Symbol(cycleName(base, k+1), sort)
				continue
			}
		}
		if sort, ok := u.ts.stateVars[name]; ok {
			mapping[name] = bvterm.Symbol(cycleName(name, k), sort)
			continue
		}
		if sort, ok := u.ts.inputVars[name]; ok {
			mapping[name] = bvterm.Symbol(cycleName(name, k), sort)
			continue
		}
		_ = sym // not a ts-tracked var: left unchanged (e.g. lvars, op params)
	}
	return bvterm.Substitute(t, mapping)
}

func trimPrime(name string) (string, bool) {
	if len(name) > 0 && name[len(name)-1] == '\'' {
		return name[:len(name)-1], true
	}
	return name, false
}

func cycleName(base string, cycle int) string {
	return fmt.Sprintf("%s@%d", base, cycle)
}
