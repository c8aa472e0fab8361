package schema

import (
	"maps"

	"github.com/vango-dev/vschema/pkg/expr"
)

// Evaluator evaluates expression strings. *expr.Engine implements it.
type Evaluator interface {
	Eval(source string, ctx expr.Context) any
	Unbox(v any) any
}

// Merge returns the union of parent and child with child keys winning.
// Neither input is modified.
func Merge(parent, child Context) Context {
	out := make(Context, len(parent)+len(child))
	maps.Copy(out, parent)
	maps.Copy(out, child)
	return out
}

// Extract returns the context carried in props, or an empty context.
func Extract(props Attrs) Context {
	if ctx, ok := props[ContextKey].(map[string]any); ok {
		return ctx
	}
	return Context{}
}

// Inject returns props carrying ctx under ContextKey. props is returned
// unchanged when ctx is empty; otherwise a copy is made.
func Inject(props Attrs, ctx Context) Attrs {
	if len(ctx) == 0 {
		return props
	}
	out := make(Attrs, len(props)+1)
	maps.Copy(out, props)
	out[ContextKey] = ctx
	return out
}

// Clean returns a copy of props without the bookkeeping keys (ContextKey,
// ScopeKey, BoundKey) and the extra keys.
func Clean(props Attrs, extra ...string) Attrs {
	out := maps.Clone(props)
	if out == nil {
		out = Attrs{}
	}
	delete(out, ContextKey)
	delete(out, ScopeKey)
	delete(out, BoundKey)
	for _, k := range extra {
		delete(out, k)
	}
	return out
}

// EvaluateCondition evaluates a directive value as a boolean. Strings are
// expressions; any other value is unboxed and tested for truthiness.
func EvaluateCondition(value any, ctx Context, ev Evaluator) bool {
	if s, ok := value.(string); ok {
		return expr.Truthy(ev.Eval(s, ctx))
	}
	return expr.Truthy(ev.Unbox(value))
}
