package luaspec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/synthcore/tcircuit/pkg/bvterm"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.lua")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing script: %v", err)
	}
	return path
}

func TestSpecFuncBuildsSymbolicAdd(t *testing.T) {
	path := writeScript(t, `
function spec(history)
  local cur = history[#history]
  return { tc.bvadd(cur[1], cur[2]) }
end
`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer s.Close()

	x := bvterm.Symbol("x", bvterm.BVSort(4))
	y := bvterm.Symbol("y", bvterm.BVSort(4))
	out := s.SpecFunc()([][]*bvterm.Term{{x, y}})
	if len(out) != 1 {
		t.Fatalf("expected 1 output term, got %d", len(out))
	}
	if out[0].Op != bvterm.OpBVAdd {
		t.Errorf("expected a BVAdd term, got op %v", out[0].Op)
	}
	if out[0].Args[0] != x || out[0].Args[1] != y {
		t.Error("expected the returned term to reference the original symbolic operands")
	}
}

func TestSpecFuncUndefinedEntryPointPanics(t *testing.T) {
	path := writeScript(t, `-- no spec() defined`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer s.Close()

	defer func() {
		if recover() == nil {
			t.Error("expected SpecFunc to panic when the script defines no spec()")
		}
	}()
	s.SpecFunc()(nil)
}

func TestIteAndWidthBuiltins(t *testing.T) {
	path := writeScript(t, `
function spec(history)
  local cur = history[#history]
  local sel = tc.bvult(cur[1], tc.bvconst(4, tc.width(cur[1])))
  return { tc.ite(sel, cur[1], cur[2]) }
end
`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer s.Close()

	x := bvterm.Symbol("x", bvterm.BVSort(4))
	y := bvterm.Symbol("y", bvterm.BVSort(4))
	out := s.SpecFunc()([][]*bvterm.Term{{x, y}})
	if out[0].Op != bvterm.OpIte {
		t.Errorf("expected an Ite term, got op %v", out[0].Op)
	}
}
