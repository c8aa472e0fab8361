package directive

import (
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vango-dev/vschema/internal/errors"
	"github.com/vango-dev/vschema/pkg/expr"
	"github.com/vango-dev/vschema/pkg/schema"
	"github.com/vango-dev/vschema/pkg/vdom"
)

// Event key prefixes.
const (
	PrefixAt      = "@"
	PrefixVOn     = "v-on:"
	PrefixOnColon = "on:"
)

// HandlerName converts an event name to its handler prop: "click" becomes
// "onClick", "key-down" becomes "onKeyDown" and "update:modelValue" becomes
// "onUpdate:modelValue".
func HandlerName(event string) string {
	head, tail, scoped := strings.Cut(event, ":")
	caser := cases.Title(language.Und, cases.NoLower)

	var b strings.Builder
	b.WriteString("on")
	for _, part := range strings.Split(head, "-") {
		b.WriteString(caser.String(part))
	}
	if scoped {
		b.WriteString(":")
		b.WriteString(tail)
	}
	return b.String()
}

// Event wires @event keys to handler props.
type Event struct {
	engine *expr.Engine
}

// NewEvent creates the event binding adaptor.
func NewEvent(engine *expr.Engine) *Event {
	return &Event{engine: engine}
}

func (e *Event) Name() string  { return "event" }
func (e *Event) Priority() int { return PriorityEvent }

// Process replaces each event key with a wrapped handler. A handler value is
// either a function or an expression string evaluated when the event fires,
// with $event and $args in scope. If the expression yields a function it
// is called with the event arguments.
func (e *Event) Process(node *schema.Node, props schema.Attrs) *Result {
	keys := eventKeys(props)
	if len(keys) == 0 {
		return nil
	}
	ctx := schema.Extract(props)
	out := without(props, keys...)

	for _, key := range keys {
		event, mods := splitKey(trimEventPrefix(key))
		call := e.caller(props[key], ctx)
		if call == nil {
			e.engine.Reporter().Report(errors.New("E130").
				WithSource(key).
				WithDetailf("handler must be a function or an expression, got %T", props[key]))
			continue
		}

		name := HandlerName(event)
		handler := e.wrap(key, call, ParseModifiers(mods))
		if prev, ok := out[name]; ok && expr.IsCallable(prev) {
			handler = e.chain(key, prev, handler)
		}
		out[name] = handler
	}
	return &Result{Props: out}
}

type callFunc func(args []any) error

func (e *Event) caller(value any, ctx schema.Context) callFunc {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		source := strings.TrimSpace(v)
		if source == "" {
			return nil
		}
		return func(args []any) error {
			scope := schema.Context{"$args": args}
			if len(args) > 0 {
				scope["$event"] = args[0]
			}
			result := e.engine.Eval(source, schema.Merge(ctx, scope))
			if expr.IsCallable(result) {
				_, err := expr.Call(result, nil, args)
				return err
			}
			return nil
		}
	}
	if !expr.IsCallable(value) {
		return nil
	}
	return func(args []any) error {
		_, err := expr.Call(value, nil, args)
		return err
	}
}

type preventer interface{ PreventDefault() }
type stopper interface{ StopPropagation() }
type selfChecker interface{ IsSelf() bool }

func (e *Event) wrap(key string, call callFunc, mods Modifiers) vdom.Handler {
	var fired atomic.Bool
	return func(args ...any) {
		var ev any
		if len(args) > 0 {
			ev = args[0]
		}
		if mods.Self {
			if s, ok := ev.(selfChecker); ok && !s.IsSelf() {
				return
			}
		}
		if mods.Once && !fired.CompareAndSwap(false, true) {
			return
		}
		if mods.Prevent {
			if p, ok := ev.(preventer); ok {
				p.PreventDefault()
			}
		}
		if mods.Stop {
			if s, ok := ev.(stopper); ok {
				s.StopPropagation()
			}
		}
		if err := call(args); err != nil {
			e.engine.Reporter().Report(errors.New("E130").WithSource(key).Wrap(err))
		}
	}
}

// chain runs an existing handler before next.
func (e *Event) chain(key string, prev any, next vdom.Handler) vdom.Handler {
	return func(args ...any) {
		if _, err := expr.Call(prev, nil, args); err != nil {
			e.engine.Reporter().Report(errors.New("E130").WithSource(key).Wrap(err))
		}
		next(args...)
	}
}

func eventKeys(props schema.Attrs) []string {
	var keys []string
	for k := range props {
		if trimEventPrefix(k) != k {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func trimEventPrefix(key string) string {
	for _, prefix := range []string{PrefixAt, PrefixVOn, PrefixOnColon} {
		if strings.HasPrefix(key, prefix) && len(key) > len(prefix) {
			return key[len(prefix):]
		}
	}
	return key
}
