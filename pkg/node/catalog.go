package node

import (
	"strconv"

	"github.com/synthcore/tcircuit/pkg/bvterm"
	"github.com/synthcore/tcircuit/pkg/solver"
)

// Library is the fixed catalog spec.md §4.1 describes: constructed once
// per synthesis session with a handle to the transition system (so
// Register instances can register state) and the delay_width used by
// every timing quantity. Mirrors original_source/src/nodes.py's `Nodes`
// class, with its per-process Register counter replaced by an explicit
// field threaded through the library instance (spec.md §9).
type Library struct {
	ts         *solver.TransitionSystem
	delayWidth uint
	regCount   int

	Add, Sub, Mul        *Descriptor
	And, Or, Xor         *Descriptor
	Equal                *Descriptor
	Ult, Ugt, Ule, Uge   *Descriptor
	Mux                  *Descriptor
	Register             *Descriptor
}

func bv(width uint) bvterm.Sort { return bvterm.BVSort(width) }

// maxTerm takes delay quantities as signed: hold's delays[0]-hold
// subtraction in SeqTiming can go negative, so every comparison over a
// timing value must use signed arithmetic (spec.md §4.3), matching
// nodes.py's use of BVSgt for its own delay max.
func maxTerm(a, b *bvterm.Term) *bvterm.Term {
	return bvterm.Ite(bvterm.BVSgt(a, b), a, b)
}

func max3Term(a, b, c *bvterm.Term) *bvterm.Term {
	return maxTerm(maxTerm(a, b), c)
}

// boolToBV1 narrows a Bool-sorted comparison result to a width-1
// bit-vector, honoring spec.md §3's "all port terms are bit-vectors"
// invariant (the Python original left comparisons Bool-sorted).
func boolToBV1(cond *bvterm.Term) *bvterm.Term {
	return bvterm.Ite(cond, bvterm.Const(1, bv(1)), bvterm.Const(0, bv(1)))
}

var binSchema = Schema{"N": ParamInt, "delay": ParamInt}

func binTypeFunc(p Params) ([]uint, []uint) {
	n := uint(p.Int("N"))
	return []uint{n, n}, []uint{n}
}

func cmpTypeFunc(p Params) ([]uint, []uint) {
	n := uint(p.Int("N"))
	return []uint{n, n}, []uint{1}
}

func binDelayFunc(p Params, delayWidth uint, delays []*bvterm.Term) []*bvterm.Term {
	opDelay := bvterm.Const(int64(p.Int("delay")), bv(delayWidth))
	return []*bvterm.Term{bvterm.BVAdd(maxTerm(delays[0], delays[1]), opDelay)}
}

func makeBinComb(name string, eval CombEvalFunc, typeFunc TypeFunc) *Descriptor {
	return &Descriptor{
		Name:       name,
		Flavor:     FlavorComb,
		Schema:     binSchema,
		TypeFunc:   typeFunc,
		CombEval:   eval,
		CombTiming: binDelayFunc,
	}
}

func NewLibrary(ts *solver.TransitionSystem, delayWidth uint) *Library {
	l := &Library{ts: ts, delayWidth: delayWidth}

	l.Add = makeBinComb("Add", func(a []*bvterm.Term) []*bvterm.Term { return []*bvterm.Term{bvterm.BVAdd(a[0], a[1])} }, binTypeFunc)
	l.Sub = makeBinComb("Sub", func(a []*bvterm.Term) []*bvterm.Term { return []*bvterm.Term{bvterm.BVSub(a[0], a[1])} }, binTypeFunc)
	l.Mul = makeBinComb("Mul", func(a []*bvterm.Term) []*bvterm.Term { return []*bvterm.Term{bvterm.BVMul(a[0], a[1])} }, binTypeFunc)
	l.And = makeBinComb("And", func(a []*bvterm.Term) []*bvterm.Term { return []*bvterm.Term{bvterm.BVAnd(a[0], a[1])} }, binTypeFunc)
	l.Or = makeBinComb("Or", func(a []*bvterm.Term) []*bvterm.Term { return []*bvterm.Term{bvterm.BVOr(a[0], a[1])} }, binTypeFunc)
	l.Xor = makeBinComb("Xor", func(a []*bvterm.Term) []*bvterm.Term { return []*bvterm.Term{bvterm.BVXor(a[0], a[1])} }, binTypeFunc)

	l.Equal = makeBinComb("Equal", func(a []*bvterm.Term) []*bvterm.Term { return []*bvterm.Term{boolToBV1(bvterm.Equal(a[0], a[1]))} }, cmpTypeFunc)
	l.Ult = makeBinComb("Ult", func(a []*bvterm.Term) []*bvterm.Term { return []*bvterm.Term{boolToBV1(bvterm.BVUlt(a[0], a[1]))} }, cmpTypeFunc)
	l.Ugt = makeBinComb("Ugt", func(a []*bvterm.Term) []*bvterm.Term { return []*bvterm.Term{boolToBV1(bvterm.BVUgt(a[0], a[1]))} }, cmpTypeFunc)
	l.Ule = makeBinComb("Ule", func(a []*bvterm.Term) []*bvterm.Term { return []*bvterm.Term{boolToBV1(bvterm.BVUle(a[0], a[1]))} }, cmpTypeFunc)
	l.Uge = makeBinComb("Uge", func(a []*bvterm.Term) []*bvterm.Term { return []*bvterm.Term{boolToBV1(bvterm.BVUge(a[0], a[1]))} }, cmpTypeFunc)

	l.Mux = &Descriptor{
		Name:   "Mux",
		Flavor: FlavorComb,
		Schema: binSchema,
		TypeFunc: func(p Params) ([]uint, []uint) {
			n := uint(p.Int("N"))
			return []uint{1, n, n}, []uint{n}
		},
		CombEval: func(a []*bvterm.Term) []*bvterm.Term {
			sel := bvterm.Equal(a[0], bvterm.Const(1, bv(1)))
			return []*bvterm.Term{bvterm.Ite(sel, a[1], a[2])}
		},
		CombTiming: func(p Params, delayWidth uint, delays []*bvterm.Term) []*bvterm.Term {
			opDelay := bvterm.Const(int64(p.Int("delay")), bv(delayWidth))
			return []*bvterm.Term{bvterm.BVAdd(max3Term(delays[0], delays[1], delays[2]), opDelay)}
		},
	}

	l.Register = &Descriptor{
		Name:   "Register",
		Flavor: FlavorSeq,
		Schema: Schema{"N": ParamInt, "init": ParamInt, "setup": ParamInt, "hold": ParamInt, "output_delay": ParamInt},
		TypeFunc: func(p Params) ([]uint, []uint) {
			n := uint(p.Int("N"))
			return []uint{n}, []uint{n}
		},
		SeqEval: func(ts *solver.TransitionSystem, inst *Node, args []*bvterm.Term) ([]*bvterm.Term, []*bvterm.Term) {
			n := uint(inst.Params.Int("N"))
			reg := ts.MakeStateVar(registerStateName(inst.ID), bv(n))
			ts.ConstrainInit(bvterm.Equal(reg, bvterm.Const(int64(inst.Params.Int("init")), bv(n))))
			ts.AssignNext(reg, args[0])
			return []*bvterm.Term{reg}, []*bvterm.Term{reg}
		},
		SeqTiming: func(p Params, delayWidth uint, delays []*bvterm.Term) ([]*bvterm.Term, []*bvterm.Term, []*bvterm.Term) {
			setup := bvterm.BVAdd(delays[0], bvterm.Const(int64(p.Int("setup")), bv(delayWidth)))
			hold := bvterm.BVAdd(delays[0], bvterm.Neg(bvterm.Const(int64(p.Int("hold")), bv(delayWidth))))
			outDelay := bvterm.Const(int64(p.Int("output_delay")), bv(delayWidth))
			return []*bvterm.Term{setup}, []*bvterm.Term{hold}, []*bvterm.Term{outDelay}
		},
	}

	return l
}

func registerStateName(instanceID int) string {
	return "Register" + strconv.Itoa(instanceID)
}

// NewAdd etc. are thin convenience constructors matching the call shape
// of original_source's `n.Add(N=4, delay=1)`.
func (l *Library) NewAdd(n, delay int) (*Node, error) { return l.Add.New(Params{"N": n, "delay": delay}) }
func (l *Library) NewSub(n, delay int) (*Node, error) { return l.Sub.New(Params{"N": n, "delay": delay}) }
func (l *Library) NewMul(n, delay int) (*Node, error) { return l.Mul.New(Params{"N": n, "delay": delay}) }
func (l *Library) NewAnd(n, delay int) (*Node, error) { return l.And.New(Params{"N": n, "delay": delay}) }
func (l *Library) NewOr(n, delay int) (*Node, error)  { return l.Or.New(Params{"N": n, "delay": delay}) }
func (l *Library) NewXor(n, delay int) (*Node, error) { return l.Xor.New(Params{"N": n, "delay": delay}) }
func (l *Library) NewEqual(n, delay int) (*Node, error) {
	return l.Equal.New(Params{"N": n, "delay": delay})
}
func (l *Library) NewUlt(n, delay int) (*Node, error) { return l.Ult.New(Params{"N": n, "delay": delay}) }
func (l *Library) NewUgt(n, delay int) (*Node, error) { return l.Ugt.New(Params{"N": n, "delay": delay}) }
func (l *Library) NewUle(n, delay int) (*Node, error) { return l.Ule.New(Params{"N": n, "delay": delay}) }
func (l *Library) NewUge(n, delay int) (*Node, error) { return l.Uge.New(Params{"N": n, "delay": delay}) }
func (l *Library) NewMux(n, delay int) (*Node, error) { return l.Mux.New(Params{"N": n, "delay": delay}) }

func (l *Library) NewRegister(n, init, setup, hold, outputDelay int) (*Node, error) {
	reg, err := l.Register.New(Params{
		"N": n, "init": init, "setup": setup, "hold": hold, "output_delay": outputDelay,
	})
	if err != nil {
		return nil, err
	}
	reg.ID = l.regCount
	l.regCount++
	return reg, nil
}

// TransitionSystem exposes the library's transition-system handle, so
// callers (pkg/circuit) can call Node.Eval without holding their own copy.
func (l *Library) TransitionSystem() *solver.TransitionSystem { return l.ts }

func (l *Library) DelayWidth() uint { return l.delayWidth }

// MakeSpec builds a user-defined SpecNode descriptor — the black-box
// behavioral node of spec.md §3, constructed once and instantiated with
// New like any catalog entry.
func (l *Library) MakeSpec(name string, schema Schema, evalFn SpecEvalFunc, typeFn TypeFunc, timingFn StatefulTimingFunc, isMoores []bool) *Descriptor {
	return &Descriptor{
		Name:       name,
		Flavor:     FlavorSpec,
		Schema:     schema,
		TypeFunc:   typeFn,
		SpecEval:   evalFn,
		SpecTiming: timingFn,
		IsMoores:   isMoores,
	}
}
