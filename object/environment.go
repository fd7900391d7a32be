package object

// Environment is one scope: a block, a call, or the "this" binding of a
// method. Scopes are shared by pointer, so a closure keeps its defining
// scope alive after the call that created it returns.
type Environment struct {
	store map[string]Object
	outer *Environment
}

func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object)}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

func (e *Environment) Outer() *Environment {
	return e.outer
}

// Define binds name in this scope only, replacing any existing binding.
func (e *Environment) Define(name string, val Object) {
	e.store[name] = val
}

// Get searches this scope and then every enclosing one.
func (e *Environment) Get(name string) (Object, bool) {
	for env := e; env != nil; env = env.outer {
		if obj, ok := env.store[name]; ok {
			return obj, true
		}
	}
	return nil, false
}

// GetAt looks name up exactly distance scopes out.
func (e *Environment) GetAt(distance int, name string) (Object, bool) {
	obj, ok := e.Ancestor(distance).store[name]
	return obj, ok
}

// Assign rebinds the nearest existing binding of name. It reports false
// when no scope in the chain binds name.
func (e *Environment) Assign(name string, val Object) bool {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			env.store[name] = val
			return true
		}
	}
	return false
}

// AssignAt rebinds name exactly distance scopes out.
func (e *Environment) AssignAt(distance int, name string, val Object) bool {
	env := e.Ancestor(distance)
	if _, ok := env.store[name]; !ok {
		return false
	}
	env.store[name] = val
	return true
}

// Ancestor walks distance scopes out. The resolver guarantees the chain is
// at least that deep for every distance it records.
func (e *Environment) Ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.outer
	}
	return env
}
