// Package solver realizes the narrow SMT contract spec.md §6 asks the
// core to consume: push/pop, incremental assertion, model extraction and
// substitution, plus the transition-system/unroller pair the encoder
// needs to turn sequential state into per-cycle copies. No ecosystem SMT
// binding appears anywhere in the retrieval pack this engine was built
// from (see DESIGN.md), so Context discharges check_sat itself by bounded
// enumeration over the free symbols of the active assertion set — sound
// and terminating for the bit-vector widths this engine's own scenarios
// use, per spec.md §4.4's termination argument.
package solver

import (
	"fmt"

	"github.com/synthcore/tcircuit/pkg/bvterm"
)

// Context is the solver façade: one assertion stack, one options map, one
// cached model from the most recent check_sat call (cleared when that
// call is UNSAT).
type Context struct {
	opts       map[string]bool
	stack      [][]*bvterm.Term // stack[i] holds the assertions pushed at level i
	lastModel  bvterm.Assignment
	gensymSeq  int
}

func NewContext() *Context {
	return &Context{
		opts:  make(map[string]bool),
		stack: [][]*bvterm.Term{{}},
	}
}

// SetOpt mirrors `set_opt("produce-models", true)` / `set_opt("incremental", true)`.
func (c *Context) SetOpt(name string, value bool) {
	c.opts[name] = value
}

// Push opens a new assertion scope.
func (c *Context) Push() {
	c.stack = append(c.stack, []*bvterm.Term{})
}

// Pop discards the assertions added since the matching Push. Every Push
// in this package is paired with exactly one Pop on all exit paths,
// per spec.md §5's ownership rule.
func (c *Context) Pop() {
	if len(c.stack) == 1 {
		panic("solver: Pop without matching Push")
	}
	c.stack = c.stack[:len(c.stack)-1]
}

// AssertFormula adds a Bool-sorted term to the current scope.
func (c *Context) AssertFormula(t *bvterm.Term) {
	if t.Sort.Kind != bvterm.KindBool {
		panic(fmt.Sprintf("solver: AssertFormula of non-Bool sort %v", t.Sort))
	}
	top := len(c.stack) - 1
	c.stack[top] = append(c.stack[top], t)
}

func (c *Context) activeAssertions() []*bvterm.Term {
	var all []*bvterm.Term
	for _, level := range c.stack {
		all = append(all, level...)
	}
	return all
}

// CheckResult reports satisfiability of the current assertion stack.
type CheckResult struct {
	sat bool
}

func (r CheckResult) IsSat() bool   { return r.sat }
func (r CheckResult) IsUnsat() bool { return !r.sat }

// CheckSat searches for a satisfying assignment of every free symbol in
// the active assertions. On success the model is cached for GetValue.
func (c *Context) CheckSat() CheckResult {
	assertions := c.activeAssertions()
	sat, model := search(assertions)
	if sat {
		c.lastModel = model
	} else {
		c.lastModel = nil
	}
	return CheckResult{sat: sat}
}

// GetValue reads t's value out of the most recent satisfying model.
// t is almost always a symbol, but any ground-after-substitution term works.
func (c *Context) GetValue(t *bvterm.Term) (*bvterm.Term, error) {
	if c.lastModel == nil {
		return nil, fmt.Errorf("solver: GetValue called with no satisfying model")
	}
	v, err := bvterm.Eval(t, c.lastModel)
	if err != nil {
		return nil, fmt.Errorf("solver: GetValue: %w", err)
	}
	return bvterm.ConstBig(v, t.Sort), nil
}

// MakeSymbol returns a fresh named symbol of the given sort. Names are
// caller-chosen (matching `solver.make_symbol(name, sort)`); this just
// constructs the term.
func (c *Context) MakeSymbol(name string, sort bvterm.Sort) *bvterm.Term {
	return bvterm.Symbol(name, sort)
}

// GensymName returns a name seeded with prefix and suffixed with a
// counter, unique among the names this Context has generated.
func (c *Context) GensymName(prefix string) string {
	c.gensymSeq++
	return fmt.Sprintf("%s#%d", prefix, c.gensymSeq)
}

// Substitute produces a fresh formula with the given symbols replaced —
// the one operation spec.md §4.4 requires beyond push/pop/assert/check/
// get-value/make-symbol.
func (c *Context) Substitute(t *bvterm.Term, mapping map[string]*bvterm.Term) *bvterm.Term {
	return bvterm.Substitute(t, mapping)
}
