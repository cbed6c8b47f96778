// Package node is the node library: a data-driven catalog of the
// parameterized hardware components (and user spec nodes) the
// synthesizer wires together, per spec.md §4.1. Node construction is the
// spot spec.md §9 calls out for a style change from the Python original:
// instead of generating a class per node kind at runtime, each kind is an
// explicit Descriptor value closing over Go functions, and instances are
// plain structs it stamps out after validating parameters against a
// declared schema.
package node

import "fmt"

// ParamKind is the declared type of a node constructor parameter.
type ParamKind uint8

const (
	ParamInt ParamKind = iota
	ParamIntTuple
)

// Schema is a node kind's declared parameter shape — the Go analogue of
// original_source/src/nodes.py's `{"N": int, "delay": int}` dictionaries.
type Schema map[string]ParamKind

// Params is a concrete parameter binding, e.g. {"N": 4, "delay": 1}.
type Params map[string]any

// Validate checks params against schema: every schema key must be
// present with the declared kind, and no extra keys are allowed — the
// same two failure modes original_source/src/nodes.py's `init` raises
// (`ValueError` for missing/extra keys, `TypeError` for the wrong kind).
func (s Schema) Validate(name string, params Params) error {
	for key, kind := range s {
		v, ok := params[key]
		if !ok {
			return fmt.Errorf("%s: missing parameter %q of type %s", name, key, kind)
		}
		if !kind.accepts(v) {
			return fmt.Errorf("%s: parameter %q expected type %s, got %T", name, key, kind, v)
		}
	}
	for key := range params {
		if _, declared := s[key]; !declared {
			return fmt.Errorf("%s: unexpected parameter %q", name, key)
		}
	}
	return nil
}

func (k ParamKind) String() string {
	switch k {
	case ParamInt:
		return "int"
	case ParamIntTuple:
		return "[]int"
	default:
		return "unknown"
	}
}

func (k ParamKind) accepts(v any) bool {
	switch k {
	case ParamInt:
		_, ok := v.(int)
		return ok
	case ParamIntTuple:
		_, ok := v.([]int)
		return ok
	default:
		return false
	}
}

func (p Params) Int(key string) int { return p[key].(int) }

func (p Params) IntTuple(key string) []int { return p[key].([]int) }
