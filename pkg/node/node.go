package node

import (
	"fmt"

	"github.com/synthcore/tcircuit/pkg/bvterm"
	"github.com/synthcore/tcircuit/pkg/solver"
)

// Flavor is the three-way tagged variant spec.md §3 requires: CombNode,
// SeqNode, SpecNode are mutually exclusive and carry different fields
// (is_moores only on Spec, state vars only on Seq).
type Flavor uint8

const (
	FlavorComb Flavor = iota
	FlavorSeq
	FlavorSpec
)

func (f Flavor) String() string {
	switch f {
	case FlavorComb:
		return "comb"
	case FlavorSeq:
		return "seq"
	case FlavorSpec:
		return "spec"
	default:
		return "unknown"
	}
}

type (
	// CombEvalFunc maps input value terms to output value terms.
	CombEvalFunc func(args []*bvterm.Term) []*bvterm.Term
	// SeqEvalFunc registers a state variable with the transition system
	// and returns (stateVars, outputs) — original_source's register_eval_func.
	// It receives the full Node so it can key the state-var name off the
	// instance's library-assigned ID rather than reaching for a global
	// per-class counter (spec.md §9's node-naming design note).
	SeqEvalFunc func(ts *solver.TransitionSystem, n *Node, args []*bvterm.Term) (state []*bvterm.Term, out []*bvterm.Term)
	// SpecEvalFunc maps a history of per-cycle input tuples to one output
	// tuple for the current cycle.
	SpecEvalFunc func(params Params, history [][]*bvterm.Term) []*bvterm.Term

	// TypeFunc computes (in_widths, out_widths) from bound parameters.
	TypeFunc func(params Params) (in []uint, out []uint)
	// CombTimingFunc maps input delays to output delays.
	CombTimingFunc func(params Params, delayWidth uint, delays []*bvterm.Term) []*bvterm.Term
	// StatefulTimingFunc additionally publishes setup/hold per output,
	// shared by SeqNode and SpecNode.
	StatefulTimingFunc func(params Params, delayWidth uint, delays []*bvterm.Term) (setup []*bvterm.Term, hold []*bvterm.Term, out []*bvterm.Term)
)

// Descriptor is a node kind: a name, a parameter schema, and the
// flavor-appropriate closures. Exactly one of {CombEval,SeqEval,SpecEval}
// and one of {CombTiming,SeqTiming,SpecTiming} is populated, per Flavor.
type Descriptor struct {
	Name       string
	Flavor     Flavor
	Schema     Schema
	TypeFunc   TypeFunc
	CombEval   CombEvalFunc
	SeqEval    SeqEvalFunc
	SpecEval   SpecEvalFunc
	CombTiming CombTimingFunc
	SeqTiming  StatefulTimingFunc
	SpecTiming StatefulTimingFunc
	// IsMoores tags each SpecNode output port Moore (true, fixed lvar
	// slot) or Mealy (false, floats like a CombNode output).
	IsMoores []bool
}

// New validates params against the descriptor's schema and computes the
// instance's concrete port widths — construction-time validation per
// spec.md §4.1, never deferred to Eval.
func (d *Descriptor) New(params Params) (*Node, error) {
	if err := d.Schema.Validate(d.Name, params); err != nil {
		return nil, err
	}
	in, out := d.TypeFunc(params)
	if d.Flavor == FlavorSpec && len(d.IsMoores) != len(out) {
		return nil, fmt.Errorf("%s: is_moores has %d entries, expected %d outputs", d.Name, len(d.IsMoores), len(out))
	}
	return &Node{
		Descriptor: d,
		Params:     params,
		InWidths:   in,
		OutWidths:  out,
	}, nil
}

// Node is one instantiated component in the op list being wired together.
type Node struct {
	Descriptor *Descriptor
	Params     Params
	InWidths   []uint
	OutWidths  []uint

	// ID is assigned by the Library at construction time for stateful
	// nodes, so each instance's state variable gets a unique name without
	// a process-global counter (spec.md §9).
	ID int
	// StateVars is populated by Eval for SeqNode instances only.
	StateVars []*bvterm.Term
	// Setup/Hold are populated by Timing for SeqNode/SpecNode instances.
	Setup []*bvterm.Term
	Hold  []*bvterm.Term
}

func (n *Node) Name() string   { return n.Descriptor.Name }
func (n *Node) Flavor() Flavor { return n.Descriptor.Flavor }

// IsMoore reports whether SpecNode output i is a Moore output.
func (n *Node) IsMoore(i int) bool {
	return n.Descriptor.Flavor == FlavorSpec && n.Descriptor.IsMoores[i]
}

func (n *Node) String() string {
	return fmt.Sprintf("%s%v", n.Name(), n.Params)
}

func checkWidths(kind, name string, got []*bvterm.Term, want []uint) error {
	if len(got) != len(want) {
		return fmt.Errorf("%s: %s expects %d %s ports, got %d", name, kind, len(want), kind, len(got))
	}
	for i, t := range got {
		if t.Sort.Kind != bvterm.KindBV || t.Sort.Width != want[i] {
			return fmt.Errorf("%s: %s port %d expected width %d, got %v", name, kind, i, want[i], t.Sort)
		}
	}
	return nil
}

// Eval evaluates a CombNode or SeqNode instance over input value terms,
// type-checking both the arguments and the result against the instance's
// declared widths (spec.md §4.1: "on eval, type-checks actual argument
// widths against types[0], invokes the flavor-specific evaluator,
// type-checks outputs against types[1]").
func (n *Node) Eval(ts *solver.TransitionSystem, args []*bvterm.Term) ([]*bvterm.Term, error) {
	if err := checkWidths("input", n.Name(), args, n.InWidths); err != nil {
		return nil, err
	}
	var out []*bvterm.Term
	switch n.Descriptor.Flavor {
	case FlavorComb:
		out = n.Descriptor.CombEval(args)
	case FlavorSeq:
		state, o := n.Descriptor.SeqEval(ts, n, args)
		n.StateVars = state
		out = o
	default:
		return nil, fmt.Errorf("%s: Eval called on a SpecNode; use EvalSpec", n.Name())
	}
	if err := checkWidths("output", n.Name(), out, n.OutWidths); err != nil {
		return nil, err
	}
	return out, nil
}

// EvalSpec evaluates a SpecNode over the full history of per-cycle input
// tuples, producing the output tuple for the final (current) cycle.
func (n *Node) EvalSpec(history [][]*bvterm.Term) ([]*bvterm.Term, error) {
	if n.Descriptor.Flavor != FlavorSpec {
		return nil, fmt.Errorf("%s: EvalSpec called on a non-SpecNode", n.Name())
	}
	for t, cycle := range history {
		if err := checkWidths(fmt.Sprintf("input@%d", t), n.Name(), cycle, n.InWidths); err != nil {
			return nil, err
		}
	}
	out := n.Descriptor.SpecEval(n.Params, history)
	if err := checkWidths("output", n.Name(), out, n.OutWidths); err != nil {
		return nil, err
	}
	return out, nil
}

// Timing evaluates the node's delay function, type-checking input delays
// and the result against declared widths; for stateful nodes it also
// records Setup/Hold as a side effect.
func (n *Node) Timing(delayWidth uint, delays []*bvterm.Term) ([]*bvterm.Term, error) {
	inDelayWidths := make([]uint, len(n.InWidths))
	for i := range inDelayWidths {
		inDelayWidths[i] = delayWidth
	}
	if err := checkWidths("input delay", n.Name(), delays, inDelayWidths); err != nil {
		return nil, err
	}

	var out, setup, hold []*bvterm.Term
	switch n.Descriptor.Flavor {
	case FlavorComb:
		out = n.Descriptor.CombTiming(n.Params, delayWidth, delays)
	case FlavorSeq:
		setup, hold, out = n.Descriptor.SeqTiming(n.Params, delayWidth, delays)
	case FlavorSpec:
		setup, hold, out = n.Descriptor.SpecTiming(n.Params, delayWidth, delays)
	}

	outDelayWidths := make([]uint, len(n.OutWidths))
	for i := range outDelayWidths {
		outDelayWidths[i] = delayWidth
	}
	if err := checkWidths("output delay", n.Name(), out, outDelayWidths); err != nil {
		return nil, err
	}
	if n.Descriptor.Flavor != FlavorComb {
		if len(setup) != len(out) || len(hold) != len(out) {
			return nil, fmt.Errorf("%s: setup/hold/output-delay length mismatch", n.Name())
		}
		n.Setup, n.Hold = setup, hold
	}
	return out, nil
}
