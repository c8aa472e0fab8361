package schema

import "maps"

// ScopeKey is the attribute that carries a node's Scope. Like ContextKey it
// never reaches the element constructor.
const ScopeKey = "_scope"

// BoundKey is the attribute listing props produced by a two-way binding.
// Later directives leave those props untouched.
const BoundKey = "_bound"

// Scope is a chain of variable layers, innermost first. Lookups go through
// the merged context; a Scope answers which map a write belongs in.
type Scope struct {
	vars   Context
	parent *Scope
}

// NewScope returns a root scope over vars. Writes that no inner layer owns
// land in vars.
func NewScope(vars Context) *Scope {
	return &Scope{vars: vars}
}

// With pushes vars as a new innermost layer. An empty vars returns s.
func (s *Scope) With(vars Context) *Scope {
	if len(vars) == 0 {
		return s
	}
	return &Scope{vars: vars, parent: s}
}

// Owner returns the innermost layer that defines name, or the root layer
// when none does. It returns nil for a nil scope.
func (s *Scope) Owner(name string) Context {
	if s == nil {
		return nil
	}
	cur := s
	for {
		if _, ok := cur.vars[name]; ok {
			return cur.vars
		}
		if cur.parent == nil {
			return cur.vars
		}
		cur = cur.parent
	}
}

// ScopeOf returns the scope stored in props, or nil.
func ScopeOf(props Attrs) *Scope {
	s, _ := props[ScopeKey].(*Scope)
	return s
}

// WithScope returns a copy of props carrying s.
func WithScope(props Attrs, s *Scope) Attrs {
	out := maps.Clone(props)
	if out == nil {
		out = Attrs{}
	}
	if s == nil {
		delete(out, ScopeKey)
		return out
	}
	out[ScopeKey] = s
	return out
}

// Bound reports whether key was produced by a binding.
func Bound(props Attrs, key string) bool {
	b, _ := props[BoundKey].(map[string]bool)
	return b[key]
}
