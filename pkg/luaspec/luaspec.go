// Package luaspec lets a behavioral spec function (spec.md §3's
// black-box SpecNode callable, and the top-level golden model
// synth.SpecFunc) be authored as a Lua script instead of Go, the way
// pkg/meta/lua_evaluator.go embeds gopher-lua for MinZ's compile-time
// metaprogramming. Term values cross the Go/Lua boundary as userdata
// wrapping a *bvterm.Term; the script builds its output formula by
// calling the small set of term-constructor functions this package
// registers as Lua globals, it never evaluates concrete numbers itself.
package luaspec

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/synthcore/tcircuit/pkg/bvterm"
)

const termMeta = "tcircuit.term"

// Script wraps one loaded Lua state exposing a `spec(history)` entry
// point for a top-level circuit spec. Other globals the script defines
// (such as `type_fn` or `timing_fn`) are not read.
type Script struct {
	L *lua.LState
}

// Load reads and runs a Lua source file, registering the term-builder
// API before executing it so top-level script code can already call into
// it (e.g. to precompute constants).
func Load(path string) (*Script, error) {
	L := lua.NewState()
	registerTermAPI(L)
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("luaspec: loading %s: %w", path, err)
	}
	return &Script{L: L}, nil
}

// Close releases the underlying Lua state.
func (s *Script) Close() { s.L.Close() }

// SpecFunc returns a synth.SpecFunc-shaped closure that calls this
// script's global `spec` function. The package has no node.SpecEvalFunc
// adapter.
func (s *Script) SpecFunc() func(history [][]*bvterm.Term) []*bvterm.Term {
	return func(history [][]*bvterm.Term) []*bvterm.Term {
		out, err := s.call("spec", history)
		if err != nil {
			panic(fmt.Sprintf("luaspec: spec(): %v", err))
		}
		return out
	}
}

func (s *Script) call(name string, history [][]*bvterm.Term) ([]*bvterm.Term, error) {
	fn := s.L.GetGlobal(name)
	if fn == lua.LNil {
		return nil, fmt.Errorf("undefined Lua function %q", name)
	}

	histTable := s.L.NewTable()
	for i, cycle := range history {
		cycleTable := s.L.NewTable()
		for j, t := range cycle {
			cycleTable.RawSetInt(j+1, wrapTerm(s.L, t))
		}
		histTable.RawSetInt(i+1, cycleTable)
	}

	s.L.Push(fn)
	s.L.Push(histTable)
	if err := s.L.PCall(1, 1, nil); err != nil {
		return nil, err
	}
	result := s.L.Get(-1)
	s.L.Pop(1)

	tbl, ok := result.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("expected a table of terms, got %T", result)
	}
	var out []*bvterm.Term
	n := tbl.Len()
	for i := 1; i <= n; i++ {
		term, err := unwrapTerm(tbl.RawGetInt(i))
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		out = append(out, term)
	}
	return out, nil
}

func wrapTerm(L *lua.LState, t *bvterm.Term) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = t
	L.SetMetatable(ud, L.GetTypeMetatable(termMeta))
	return ud
}

func unwrapTerm(v lua.LValue) (*bvterm.Term, error) {
	ud, ok := v.(*lua.LUserData)
	if !ok {
		return nil, fmt.Errorf("expected a term value, got %T", v)
	}
	t, ok := ud.Value.(*bvterm.Term)
	if !ok {
		return nil, fmt.Errorf("userdata does not hold a term")
	}
	return t, nil
}

func checkTerm(L *lua.LState, idx int) *bvterm.Term {
	ud := L.CheckUserData(idx)
	t, ok := ud.Value.(*bvterm.Term)
	if !ok {
		L.ArgError(idx, "expected a tcircuit term")
	}
	return t
}

// registerTermAPI installs the term-builder metatable and the global
// functions a spec script composes its output formula from: bit-vector
// arithmetic/logic, comparisons, ite, and integer-literal construction.
func registerTermAPI(L *lua.LState) {
	meta := L.NewTypeMetatable(termMeta)
	L.SetField(meta, "__index", meta)

	binOp := func(build func(a, b *bvterm.Term) *bvterm.Term) lua.LGFunction {
		return func(L *lua.LState) int {
			a, b := checkTerm(L, 1), checkTerm(L, 2)
			L.Push(wrapTerm(L, build(a, b)))
			return 1
		}
	}

	fns := map[string]lua.LGFunction{
		"bvadd": binOp(bvterm.BVAdd),
		"bvsub": binOp(bvterm.BVSub),
		"bvmul": binOp(bvterm.BVMul),
		"bvand": binOp(bvterm.BVAnd),
		"bvor":  binOp(bvterm.BVOr),
		"bvxor": binOp(bvterm.BVXor),
		"bvult": binOp(bvterm.BVUlt),
		"bvugt": binOp(bvterm.BVUgt),
		"bvule": binOp(bvterm.BVUle),
		"bvuge": binOp(bvterm.BVUge),
		"eq":    binOp(bvterm.Equal),
		"bvconst": func(L *lua.LState) int {
			value := L.CheckInt64(1)
			width := L.CheckInt(2)
			L.Push(wrapTerm(L, bvterm.Const(value, bvterm.BVSort(uint(width)))))
			return 1
		},
		"ite": func(L *lua.LState) int {
			cond, then, els := checkTerm(L, 1), checkTerm(L, 2), checkTerm(L, 3)
			L.Push(wrapTerm(L, bvterm.Ite(cond, then, els)))
			return 1
		},
		"width": func(L *lua.LState) int {
			t := checkTerm(L, 1)
			L.Push(lua.LNumber(t.Sort.Width))
			return 1
		},
	}
	mod := L.NewTable()
	L.SetFuncs(mod, fns)
	L.SetGlobal("tc", mod)
}
