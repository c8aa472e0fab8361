package expr

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/vschema/internal/errors"
	"github.com/vango-dev/vschema/pkg/reactive"
)

// Context is the variable bag an expression is evaluated against.
type Context = map[string]any

// Option configures an Engine.
type Option func(*Engine)

// WithUnboxer sets the function used to unwrap reactive boxes before
// property access and invocation. Pass reactive.Identity for hosts without
// reactive values.
func WithUnboxer(fn func(any) any) Option {
	return func(e *Engine) {
		if fn != nil {
			e.unbox = fn
		}
	}
}

// WithReporter sets where parse and call diagnostics are sent.
func WithReporter(r errors.Reporter) Option {
	return func(e *Engine) {
		if r != nil {
			e.reporter = r
		}
	}
}

// maxCached bounds the parse cache. The cache is dropped once it grows past
// this many sources.
const maxCached = 4096

// Engine parses and evaluates expressions. It is safe for concurrent use.
// Parsed sources are cached up to maxCached entries, so an Engine may be
// shared across requests without growing without bound.
type Engine struct {
	unbox    func(any) any
	reporter errors.Reporter
	cache    sync.Map // string -> Node
	cached   atomic.Int64
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		unbox:    reactive.Unbox,
		reporter: errors.Discard,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Unbox unwraps v with the engine's unboxer.
func (e *Engine) Unbox(v any) any {
	return e.unbox(v)
}

// Reporter returns the engine's diagnostics reporter.
func (e *Engine) Reporter() errors.Reporter {
	return e.reporter
}

// Parse parses source, consulting the cache first.
func (e *Engine) Parse(source string) (Node, error) {
	if node, ok := e.cache.Load(source); ok {
		return node.(Node), nil
	}
	node, err := Parse(source)
	if err != nil {
		return nil, err
	}
	if e.cached.Add(1) > maxCached {
		e.cache.Clear()
		e.cached.Store(1)
	}
	e.cache.Store(source, node)
	return node, nil
}

// Eval parses and evaluates source against ctx. Parse failures are
// reported and yield nil.
func (e *Engine) Eval(source string, ctx Context) any {
	node, err := e.Parse(source)
	if err != nil {
		e.reporter.Report(err)
		return nil
	}
	return e.Evaluate(node, ctx)
}

// Evaluate evaluates node against ctx. It never panics: absent identifiers
// and members evaluate to nil, and a panic raised by a host value is
// reported as E102 and yields nil.
func (e *Engine) Evaluate(node Node, ctx Context) (result any) {
	if node == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			e.reporter.Report(errors.New("E102").
				WithSource(node.String()).
				WithDetailf("panic: %v", r))
			result = nil
		}
	}()
	return e.eval(node, ctx)
}

func (e *Engine) eval(node Node, ctx Context) any {
	switch n := node.(type) {
	case *NumberLiteral:
		return n.Value
	case *StringLiteral:
		return n.Value
	case *BooleanLiteral:
		return n.Value
	case *NullLiteral:
		return nil
	case *Identifier:
		return e.unbox(ctx[n.Name])
	case *ArrayLiteral:
		items := make([]any, len(n.Elements))
		for i, el := range n.Elements {
			items[i] = e.eval(el, ctx)
		}
		return items
	case *MemberExpression:
		obj := e.eval(n.Object, ctx)
		if obj == nil {
			return nil
		}
		return e.unbox(GetMember(obj, e.memberKey(n, ctx)))
	case *CallExpression:
		return e.evalCall(n, ctx)
	case *UnaryExpression:
		return e.evalUnary(n, ctx)
	case *BinaryExpression:
		return evalBinary(n.Operator, e.eval(n.Left, ctx), e.eval(n.Right, ctx))
	case *LogicalExpression:
		left := e.eval(n.Left, ctx)
		switch n.Operator {
		case "&&":
			if !Truthy(left) {
				return left
			}
		case "||":
			if Truthy(left) {
				return left
			}
		case "??":
			if left != nil {
				return left
			}
		}
		return e.eval(n.Right, ctx)
	case *ConditionalExpression:
		if Truthy(e.eval(n.Test, ctx)) {
			return e.eval(n.Consequent, ctx)
		}
		return e.eval(n.Alternate, ctx)
	}
	e.reporter.Report(errors.New("E102").
		WithSource(node.String()).
		WithOffset(node.Pos()).
		WithDetailf("unsupported expression %T", node))
	return nil
}

func (e *Engine) memberKey(n *MemberExpression, ctx Context) any {
	if !n.Computed {
		if id, ok := n.Property.(*Identifier); ok {
			return id.Name
		}
	}
	return e.eval(n.Property, ctx)
}

func (e *Engine) evalCall(n *CallExpression, ctx Context) any {
	var this, fn any
	if member, ok := n.Callee.(*MemberExpression); ok {
		this = e.eval(member.Object, ctx)
		if this == nil {
			return nil
		}
		fn = e.unbox(GetMember(this, e.memberKey(member, ctx)))
	} else {
		fn = e.eval(n.Callee, ctx)
	}

	if !IsCallable(fn) {
		e.reporter.Report(errors.New("E103").
			WithSource(n.String()).
			WithOffset(n.Pos()).
			WithDetailf("%s is %s", n.Callee.String(), describeValue(fn)))
		return nil
	}

	args := make([]any, len(n.Args))
	for i, arg := range n.Args {
		args[i] = e.eval(arg, ctx)
	}
	result, err := Call(fn, this, args)
	if err != nil {
		e.reporter.Report(errors.New("E102").
			WithSource(n.String()).
			WithOffset(n.Pos()).
			Wrap(err))
		return nil
	}
	return e.unbox(result)
}

func (e *Engine) evalUnary(n *UnaryExpression, ctx Context) any {
	v := e.eval(n.Operand, ctx)
	switch n.Operator {
	case "!":
		return !Truthy(v)
	case "-":
		return -ToNumber(v)
	case "+":
		return ToNumber(v)
	}
	return nil
}

func evalBinary(op string, left, right any) any {
	switch op {
	case "+":
		_, ls := left.(string)
		_, rs := right.(string)
		if ls || rs {
			return ToString(left) + ToString(right)
		}
		return ToNumber(left) + ToNumber(right)
	case "-":
		return ToNumber(left) - ToNumber(right)
	case "*":
		return ToNumber(left) * ToNumber(right)
	case "/":
		return ToNumber(left) / ToNumber(right)
	case "%":
		return math.Mod(ToNumber(left), ToNumber(right))
	case "==":
		return LooseEqual(left, right)
	case "!=":
		return !LooseEqual(left, right)
	case "===":
		return StrictEqual(left, right)
	case "!==":
		return !StrictEqual(left, right)
	case "<", ">", "<=", ">=":
		return compare(op, left, right)
	}
	return nil
}

func compare(op string, left, right any) bool {
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		switch op {
		case "<":
			return ls < rs
		case ">":
			return ls > rs
		case "<=":
			return ls <= rs
		default:
			return ls >= rs
		}
	}
	l, r := ToNumber(left), ToNumber(right)
	switch op {
	case "<":
		return l < r
	case ">":
		return l > r
	case "<=":
		return l <= r
	default:
		return l >= r
	}
}

func describeValue(v any) string {
	if v == nil {
		return "undefined"
	}
	return "not a function (" + ToString(v) + ")"
}
