package evaluator

import (
	"sort"

	merrors "github.com/minqlang/minq/pkg/minq/errors"
)

// Environment is one lexical scope: its own bindings, the names among them
// declared constant, and a non-owning link to the enclosing scope.
type Environment struct {
	store     map[string]Object
	constants map[string]bool
	outer     *Environment
	runtime   *Runtime
}

// NewEnvironment creates an empty root scope bound to rt. Most callers want
// rt.NewGlobalEnvironment, which also installs the builtins.
func NewEnvironment(rt *Runtime) *Environment {
	if rt == nil {
		rt = NewRuntime()
	}
	return &Environment{
		store:     make(map[string]Object),
		constants: make(map[string]bool),
		runtime:   rt,
	}
}

// NewEnclosedEnvironment creates a child scope of outer
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment(outer.runtime)
	env.outer = outer
	return env
}

// Runtime returns the runtime owning this scope chain.
func (e *Environment) Runtime() *Runtime { return e.runtime }

// Outer returns the enclosing scope, or nil for a root.
func (e *Environment) Outer() *Environment { return e.outer }

// Declare binds name in this scope. A name already bound here is reported
// through the listener subsystem and NULL is returned.
func (e *Environment) Declare(name string, val Object, constant bool) Object {
	if _, exists := e.store[name]; exists {
		return e.throw(merrors.New("SCOPE-0001", map[string]any{"Name": name}))
	}
	e.store[name] = val
	if constant {
		e.constants[name] = true
	}
	return val
}

// Resolve returns the nearest scope declaring name. When none does, the
// unresolved name is reported through listeners and the returned scope is
// nil; the Object is NULL or whatever halting value a listener produced.
func (e *Environment) Resolve(name string) (*Environment, Object) {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			return env, nil
		}
	}
	return nil, e.throw(merrors.NewUndefinedName(name, e.VisibleNames()))
}

// Lookup returns the value bound to name, resolving through parents.
func (e *Environment) Lookup(name string) Object {
	owner, failure := e.Resolve(name)
	if owner == nil {
		return failure
	}
	return owner.store[name]
}

// Assign overwrites an existing binding. It never creates one.
func (e *Environment) Assign(name string, val Object) Object {
	owner, failure := e.Resolve(name)
	if owner == nil {
		return failure
	}
	if owner.constants[name] {
		return e.throw(merrors.New("SCOPE-0002", map[string]any{"Name": name}))
	}
	owner.store[name] = val
	return val
}

// Delete removes name from this scope only and returns its value.
func (e *Environment) Delete(name string) Object {
	val, ok := e.store[name]
	if !ok {
		return e.throw(merrors.New("SCOPE-0004", map[string]any{"Name": name}))
	}
	delete(e.store, name)
	delete(e.constants, name)
	return val
}

// Has reports whether name is bound in this scope (parents are not searched).
func (e *Environment) Has(name string) bool {
	_, ok := e.store[name]
	return ok
}

// Get looks name up through the chain without reporting anything.
func (e *Environment) Get(name string) (Object, bool) {
	for env := e; env != nil; env = env.outer {
		if val, ok := env.store[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// IsConstant reports whether name is a constant binding in this scope.
func (e *Environment) IsConstant(name string) bool {
	return e.constants[name]
}

// Bindings returns a copy of this scope's own bindings.
func (e *Environment) Bindings() map[string]Object {
	out := make(map[string]Object, len(e.store))
	for k, v := range e.store {
		out[k] = v
	}
	return out
}

// Names returns this scope's own names, sorted.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.store))
	for k := range e.store {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// VisibleNames returns every name reachable from this scope.
func (e *Environment) VisibleNames() []string {
	seen := make(map[string]bool)
	var names []string
	for env := e; env != nil; env = env.outer {
		for k := range env.store {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)
	return names
}

func (e *Environment) throw(err *merrors.MinqError) Object {
	return e.runtime.ThrowError(e, &String{Value: err.String()})
}
