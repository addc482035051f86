package plic

// Env is the single flat name table an evaluation resolves words against.
// There is no parent frame and no shadowing; a new Env is built for every
// top-level evaluation.
type Env struct {
	bindings map[string]Value
}

func NewEnv() *Env {
	return &Env{bindings: make(map[string]Value)}
}

// Lookup returns a copy of the value bound to name.
func (e *Env) Lookup(name string) (Value, bool) {
	v, ok := e.bindings[name]
	return v, ok
}

func (e *Env) Bind(name string, v Value) {
	e.bindings[name] = v
}

func (e *Env) Len() int {
	return len(e.bindings)
}
