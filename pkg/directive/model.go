package directive

import (
	"fmt"
	"maps"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/vschema/internal/errors"
	"github.com/vango-dev/vschema/pkg/expr"
	"github.com/vango-dev/vschema/pkg/reactive"
	"github.com/vango-dev/vschema/pkg/schema"
	"github.com/vango-dev/vschema/pkg/vdom"
)

// KeyModel is the two-way binding prefix.
const KeyModel = "v-model"

// DefaultModelTarget is the prop a bare v-model binds.
const DefaultModelTarget = "modelValue"

// UpdatePrefix precedes the target name of an update callback.
const UpdatePrefix = "onUpdate:"

// Model turns two-way bindings into a value prop and an update callback.
type Model struct {
	engine *expr.Engine
}

// NewModel creates the two-way binding adaptor.
func NewModel(engine *expr.Engine) *Model {
	return &Model{engine: engine}
}

func (m *Model) Name() string  { return "model" }
func (m *Model) Priority() int { return PriorityModel }

// binding reads and writes one bound location.
type binding struct {
	get func() (any, error)
	set func(any) error
}

// Process handles every v-model key on the node. A binding may be a path
// string, a [getter, setter] pair, an [object, property] pair or a
// reactive value.
func (m *Model) Process(node *schema.Node, props schema.Attrs) *Result {
	keys := modelKeys(props)
	if len(keys) == 0 {
		return nil
	}
	ctx := schema.Extract(props)
	scope := schema.ScopeOf(props)
	out := without(props)
	bound := map[string]bool{}
	if prev, ok := props[schema.BoundKey].(map[string]bool); ok {
		maps.Copy(bound, prev)
	}

	for _, key := range keys {
		target, mods := parseModelKey(key)
		b, err := m.bind(props[key], ctx, scope)
		if err != nil {
			m.report(errors.FromError(err, "E111"), key)
			continue
		}
		delete(out, key)

		value, err := b.get()
		if err != nil {
			m.report(errors.New("E110").WithDetail("reading binding").Wrap(err), key)
			value = nil
		}
		out[target] = value
		out[UpdatePrefix+target] = m.updater(key, b, mods, props[UpdatePrefix+target])
		bound[target], bound[UpdatePrefix+target] = true, true
		if !mods.Empty() {
			out[modifiersProp(target)] = mods.Map()
			bound[modifiersProp(target)] = true
		}
	}
	if len(bound) > 0 {
		out[schema.BoundKey] = bound
	}
	return &Result{Props: out}
}

// bind resolves a binding. Reads go through the merged ctx; a bare
// identifier is written into the scope layer that defines it, so the
// caller's context sees the update.
func (m *Model) bind(value any, ctx schema.Context, scope *schema.Scope) (binding, error) {
	switch v := value.(type) {
	case string:
		dst := ctx
		if name := strings.TrimSpace(v); scope != nil && expr.IsIdentifier(name) {
			dst = scope.Owner(name)
		}
		return binding{
			get: func() (any, error) { return m.engine.Eval(v, ctx), nil },
			set: func(nv any) error { return m.engine.Assign(v, dst, nv) },
		}, nil
	case reactive.Ref:
		return binding{
			get: func() (any, error) { return m.engine.Unbox(v), nil },
			set: v.Assign,
		}, nil
	}

	pair, ok := expr.ToSlice(value)
	if !ok || len(pair) != 2 {
		return binding{}, errors.New("E111").WithDetailf("unsupported binding of type %T", value)
	}
	first, second := pair[0], pair[1]

	if expr.IsCallable(first) && expr.IsCallable(second) {
		return binding{
			get: func() (any, error) {
				v, err := expr.Call(first, nil, nil)
				return m.engine.Unbox(v), err
			},
			set: func(nv any) error {
				_, err := expr.Call(second, nil, []any{nv})
				return err
			},
		}, nil
	}

	// [object, property]. A string object names a context path.
	object := func() any {
		if path, ok := first.(string); ok {
			return m.engine.Eval(path, ctx)
		}
		return m.engine.Unbox(first)
	}
	return binding{
		get: func() (any, error) {
			return m.engine.Unbox(expr.GetMember(object(), second)), nil
		},
		set: func(nv any) error {
			obj := object()
			if obj == nil {
				return fmt.Errorf("binding object %v is undefined", first)
			}
			return expr.SetMember(obj, second, nv)
		},
	}, nil
}

func (m *Model) updater(key string, b binding, mods Modifiers, existing any) vdom.Handler {
	return func(args ...any) {
		var value any
		if len(args) > 0 {
			value = args[0]
		}
		if ev, ok := value.(interface{ EventValue() any }); ok {
			value = ev.EventValue()
		}
		value = applyModelModifiers(value, mods)

		if err := safeSet(b, value); err != nil {
			m.report(errors.FromError(err, "E110"), key)
		}
		if existing != nil && expr.IsCallable(existing) {
			if _, err := expr.Call(existing, nil, []any{value}); err != nil {
				m.report(errors.New("E130").Wrap(err), key)
			}
		}
	}
}

func safeSet(b binding, value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return b.set(value)
}

func (m *Model) report(err *errors.Error, key string) {
	if err.Source == "" {
		err = err.WithSource(key)
	}
	m.engine.Reporter().Report(err)
}

func applyModelModifiers(value any, mods Modifiers) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	if mods.Trim {
		s = strings.TrimSpace(s)
		value = s
	}
	if mods.Number {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return value
}

// modelKeys returns the v-model keys in props, sorted.
func modelKeys(props schema.Attrs) []string {
	var keys []string
	for k := range props {
		if k == KeyModel || strings.HasPrefix(k, KeyModel+":") || strings.HasPrefix(k, KeyModel+".") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// parseModelKey splits "v-model:title.trim" into its target and modifiers.
func parseModelKey(key string) (string, Modifiers) {
	rest := strings.TrimPrefix(key, KeyModel)
	rest = strings.TrimPrefix(rest, ":")
	target, mods := splitKey(rest)
	if target == "" {
		target = DefaultModelTarget
	}
	return target, ParseModifiers(mods)
}

func modifiersProp(target string) string {
	if target == DefaultModelTarget {
		return "modelModifiers"
	}
	return target + "Modifiers"
}
