package synth

import (
	"testing"

	"github.com/synthcore/tcircuit/pkg/bvterm"
	"github.com/synthcore/tcircuit/pkg/circuit"
	"github.com/synthcore/tcircuit/pkg/node"
	"github.com/synthcore/tcircuit/pkg/solver"
)

func newAdderCircuit(t *testing.T) (*solver.Context, *solver.TransitionSystem, *circuit.Circuit) {
	t.Helper()
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
	return ctx, ts, c
}

func addSpec(history [][]*bvterm.Term) []*bvterm.Term {
	cur := history[len(history)-1]
	return []*bvterm.Term{bvterm.BVAdd(cur[0], cur[1])}
}

func TestBuildProducesNonNilFormulas(t *testing.T) {
	_, ts, c := newAdderCircuit(t)
	enc, err := Build(ts, c, addSpec, Options{NumCycles: 0})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if enc.SynthBase == nil || enc.SynthConstrain == nil || enc.Verify == nil {
		t.Fatal("expected Build to populate all three formulas")
	}
	if len(enc.EVars) == 0 {
		t.Error("expected a nonempty E-variable partition")
	}
}

func TestBuildRejectsMismatchedMaxOutputDelays(t *testing.T) {
	_, ts, c := newAdderCircuit(t)
	_, err := Build(ts, c, addSpec, Options{
		NumCycles:       0,
		EnforceTiming:   true,
		MaxOutputDelays: []int{1, 2}, // circuit has exactly one output
	})
	if err == nil {
		t.Error("expected an error when MaxOutputDelays length mismatches the circuit's outputs")
	}
}

func TestBuildRejectsNegativeNumCycles(t *testing.T) {
	_, ts, c := newAdderCircuit(t)
	if _, err := Build(ts, c, addSpec, Options{NumCycles: -1}); err == nil {
		t.Error("expected an error for a negative NumCycles")
	}
}

func TestBuildFlattensDVarsAcrossCycles(t *testing.T) {
	_, ts, c := newAdderCircuit(t)
	enc, err := Build(ts, c, addSpec, Options{NumCycles: 2})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// D vars are flattened over cycles 0..NumCycles inclusive.
	want := len(c.DVars) * 3
	if len(enc.DVars) != want {
		t.Errorf("len(DVars) = %d, want %d", len(enc.DVars), want)
	}
}
