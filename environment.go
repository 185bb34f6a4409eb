package lox

import "fmt"

// slot distinguishes declared-but-uninitialized names from names bound to a
// value (including nil).
type slot struct {
	value Value
	set   bool
}

// Env is one binding frame with a parent link. Globals are the root frame
// and are addressed by name; locals are addressed by the resolver-computed
// depth only, so Get/Assign never walk the chain themselves.
type Env struct {
	parent *Env
	table  map[string]slot
}

// NewEnv creates a frame with the given parent (nil for the globals root).
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, table: map[string]slot{}}
}

// Declare binds name with no value. Reading it before assignment reports an
// uninitialized-variable error.
func (e *Env) Declare(name string) {
	e.table[name] = slot{}
}

// Define binds name to v in this frame. No duplicate check: the resolver
// enforces uniqueness for locals and globals may be re-defined freely.
func (e *Env) Define(name string, v Value) {
	e.table[name] = slot{value: v, set: true}
}

// Get reads name in this frame only.
func (e *Env) Get(name string) (Value, error) {
	s, ok := e.table[name]
	if !ok {
		return Value{}, fmt.Errorf("Undefined variable '%s'", name)
	}
	if !s.set {
		return Value{}, fmt.Errorf("Uninitialized variable '%s'", name)
	}
	return s.value, nil
}

// Assign updates name in this frame only; it does not define.
func (e *Env) Assign(name string, v Value) error {
	if _, ok := e.table[name]; !ok {
		return fmt.Errorf("Undefined variable '%s'", name)
	}
	e.table[name] = slot{value: v, set: true}
	return nil
}

// ancestor walks depth hops toward the outer frame.
func (e *Env) ancestor(depth int) *Env {
	env := e
	for i := 0; i < depth; i++ {
		if env.parent == nil {
			panic(fmt.Sprintf("lox: scope depth %d exceeds environment chain", depth))
		}
		env = env.parent
	}
	return env
}

// GetAt reads name at depth hops out. A missing slot means the resolver and
// the evaluator disagree on addressing, which is unrecoverable.
func (e *Env) GetAt(depth int, name string) (Value, error) {
	env := e.ancestor(depth)
	s, ok := env.table[name]
	if !ok {
		panic(fmt.Sprintf("lox: unresolved local '%s' at depth %d", name, depth))
	}
	if !s.set {
		return Value{}, fmt.Errorf("Uninitialized variable '%s'", name)
	}
	return s.value, nil
}

// AssignAt writes name at depth hops out; a missing slot aborts as in GetAt.
func (e *Env) AssignAt(depth int, name string, v Value) {
	env := e.ancestor(depth)
	if _, ok := env.table[name]; !ok {
		panic(fmt.Sprintf("lox: unresolved local '%s' at depth %d", name, depth))
	}
	env.table[name] = slot{value: v, set: true}
}

// GetUncheckedAt is GetAt without the abort: a missing or unset slot yields
// (zero, false). Super dispatch uses it to probe for this in static context.
func (e *Env) GetUncheckedAt(depth int, name string) (Value, bool) {
	env := e.ancestor(depth)
	s, ok := env.table[name]
	if !ok || !s.set {
		return Value{}, false
	}
	return s.value, true
}
