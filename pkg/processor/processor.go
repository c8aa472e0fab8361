package processor

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vschema/internal/errors"
	"github.com/vango-dev/vschema/pkg/directive"
	"github.com/vango-dev/vschema/pkg/registry"
	"github.com/vango-dev/vschema/pkg/schema"
	"github.com/vango-dev/vschema/pkg/vdom"
)

// StyleKey is the attribute whose value is sent to the style sink.
const StyleKey = "css"

// DefaultSlot is the slot name children are passed under.
const DefaultSlot = "default"

// Renderer turns schema nodes into vdom nodes. A Renderer is safe for
// concurrent use as long as its registry, sink and observer are.
type Renderer struct {
	config Config
	text   *directive.Text
	tracer trace.Tracer
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	config := Config{}
	for _, opt := range opts {
		opt(&config)
	}
	config.applyDefaults()

	return &Renderer{
		config: config,
		text:   directive.NewText(config.Engine, config.Delimiters[0], config.Delimiters[1]),
		tracer: otel.Tracer(config.TracerName),
	}
}

// Config returns the renderer's effective configuration.
func (r *Renderer) Config() Config {
	return r.config
}

// Render processes nodes under the global context. Sibling v-if, v-else-if
// and v-else nodes in nodes form conditional chains.
func (r *Renderer) Render(ctx context.Context, nodes []*schema.Node, global schema.Context) ([]*vdom.VNode, error) {
	ctx, span := r.tracer.Start(ctx, "vschema.render",
		trace.WithAttributes(attribute.Int("vschema.roots", len(nodes))),
	)
	defer span.End()

	p := &pass{
		r:      r,
		ctx:    ctx,
		global: global,
		stats:  Stats{Applied: map[string]int{}},
	}
	start := time.Now()
	out, err := p.list(nodes, schema.Context{}, schema.NewScope(global), 0, false)
	if err == nil {
		err = p.err
	}
	p.stats.Duration = time.Since(start)
	p.done = true

	span.SetAttributes(
		attribute.Int("vschema.nodes", p.stats.Nodes),
		attribute.Int("vschema.elements", p.stats.Elements),
		attribute.Int("vschema.skipped", p.stats.Skipped),
		attribute.Int("vschema.fanouts", p.stats.FanOuts),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	r.config.Logger.Debug("schema rendered",
		slog.Int("nodes", p.stats.Nodes),
		slog.Int("elements", p.stats.Elements),
		slog.Duration("duration", p.stats.Duration),
		slog.Any("error", err),
	)
	if r.config.Observer != nil {
		r.config.Observer.ObserveRender(ctx, p.stats, err)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RenderDocument renders a parsed document.
func (r *Renderer) RenderDocument(ctx context.Context, doc *schema.Document) ([]*vdom.VNode, error) {
	return r.Render(ctx, doc.Nodes, doc.Context)
}

// RenderNode renders a single node. A fan-out may yield several nodes or
// none.
func (r *Renderer) RenderNode(ctx context.Context, node *schema.Node, global schema.Context) ([]*vdom.VNode, error) {
	return r.Render(ctx, []*schema.Node{node}, global)
}

// pass holds the state of one Render call.
type pass struct {
	r      *Renderer
	ctx    context.Context
	global schema.Context
	stats  Stats

	// err is the first error raised inside a slot function while the
	// pass is running.
	err  error
	done bool
}

// list renders a sibling list. Conditional chains are tracked only for
// nodes entering the pipeline from the start; copies resuming after a
// fan-out have already had their conditions applied.
//
// inherited is the merged context visible to the list; scope records which
// map owns each variable so bindings write to the right place.
func (p *pass) list(nodes []*schema.Node, inherited schema.Context, scope *schema.Scope, from int, inSlot bool) ([]*vdom.VNode, error) {
	out := make([]*vdom.VNode, 0, len(nodes))

	var chainOpen, chainMatched bool
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if err := p.ctx.Err(); err != nil {
			return nil, err
		}

		branch := directive.BranchNone
		if from == 0 {
			branch = directive.BranchOf(n.Attrs)
		}
		if (branch == directive.BranchElseIf || branch == directive.BranchElse) && chainOpen && chainMatched {
			p.stats.Nodes++
			p.stats.Skipped++
			if branch == directive.BranchElse {
				chainOpen = false
			}
			continue
		}

		vnodes, passed, err := p.node(n, inherited, scope, from, inSlot)
		if err != nil {
			return nil, err
		}
		out = append(out, vnodes...)

		switch branch {
		case directive.BranchIf, directive.BranchElseIf:
			chainOpen, chainMatched = true, passed
		default:
			chainOpen, chainMatched = false, false
		}
	}
	return out, nil
}

// node renders one node. passed is false when a conditional rejected it.
func (p *pass) node(n *schema.Node, inherited schema.Context, scope *schema.Scope, from int, inSlot bool) (out []*vdom.VNode, passed bool, err error) {
	cfg := &p.r.config
	p.stats.Nodes++

	own := schema.Extract(n.Attrs)
	// Copies made by a fan-out already carry their scope.
	if s := schema.ScopeOf(n.Attrs); s != nil {
		scope = s
	} else {
		scope = scope.With(own)
	}
	effective := schema.Merge(p.global, schema.Merge(inherited, own))
	props := schema.WithScope(schema.Inject(n.Attrs, effective), scope)

	outcome := cfg.Pipeline.Run(n, props, from)
	for _, name := range outcome.Applied {
		p.stats.Applied[name]++
	}
	if outcome.Skip {
		p.stats.Skipped++
		return nil, outcome.SkippedBy != "conditional", nil
	}
	if outcome.FanOut {
		p.stats.FanOuts++
		out, err := p.list(outcome.Nodes, effective, scope, outcome.Resume, inSlot)
		return out, true, err
	}

	props = schema.Clean(outcome.Props)
	if css, ok := props[StyleKey].(string); ok {
		cfg.Styles.AppendGlobalStyle(css)
		delete(props, StyleKey)
	}

	tag, component := p.resolve(n.Tag)

	var content vdom.Content
	if component && !inSlot {
		content.Slots = p.slots(n, effective, scope)
	} else {
		children, err := p.children(n.Children, effective, scope)
		if err != nil {
			return nil, true, err
		}
		if len(children) == 0 && !component {
			if slot, ok := n.Slots[DefaultSlot]; ok {
				children, err = p.slot(slot, effective, scope, nil)
				if err != nil {
					return nil, true, err
				}
			}
		}
		content.Children = children
	}

	vnode, err := cfg.Constructor.Construct(tag, vdom.Props(props), content)
	if err != nil {
		if errors.Code(err) == "" {
			err = errors.New("E140").Wrap(err)
		}
		return nil, true, err
	}
	if vnode == nil {
		return nil, true, nil
	}
	p.stats.Elements++
	return []*vdom.VNode{vnode}, true, nil
}

// resolve maps a tag to a component when the registry knows it. Non-string
// tags are passed through for the constructor to accept or reject.
func (p *pass) resolve(tag any) (any, bool) {
	switch t := tag.(type) {
	case string:
		if c, ok := p.r.config.Registry.Resolve(t); ok {
			return c, true
		}
		if t != "" && !registry.IsKnownElement(t) {
			p.r.config.Logger.Debug("unknown element", slog.String("tag", t))
		}
		return t, false
	case vdom.Component:
		return t, true
	}
	return tag, false
}

// children renders a node's children under ctx. Text is already
// interpolated by the pipeline and passes through verbatim.
func (p *pass) children(c schema.Children, ctx schema.Context, scope *schema.Scope) ([]*vdom.VNode, error) {
	switch {
	case c.IsText():
		return []*vdom.VNode{vdom.Text(c.Text())}, nil
	case c.IsNodes():
		return p.list(c.Nodes(), ctx, scope, 0, false)
	}
	return nil, nil
}

// slots wraps each slot, and the children as the default slot, in a
// function that renders the content when the component calls it.
func (p *pass) slots(n *schema.Node, ctx schema.Context, scope *schema.Scope) vdom.Slots {
	slots := make(vdom.Slots, len(n.Slots)+1)
	for name, slot := range n.Slots {
		slots[name] = p.slotFunc(name, slot, ctx, scope)
	}
	if _, ok := slots[DefaultSlot]; !ok && !n.Children.IsEmpty() {
		slots[DefaultSlot] = p.slotFunc(DefaultSlot, schema.Slot{Content: n.Children}, ctx, scope)
	}
	if len(slots) == 0 {
		return nil
	}
	return slots
}

func (p *pass) slotFunc(name string, slot schema.Slot, ctx schema.Context, scope *schema.Scope) vdom.SlotFunc {
	return func(args ...any) []*vdom.VNode {
		out, err := p.slot(slot, ctx, scope, args)
		if err != nil {
			p.fail(errors.New("E140").WithDetailf("slot %q", name).Wrap(err))
			return nil
		}
		return out
	}
}

// slot renders slot content. When the slot is called with a map as its
// first argument, the map's entries are visible to the content as scope.
func (p *pass) slot(slot schema.Slot, ctx schema.Context, scope *schema.Scope, args []any) ([]*vdom.VNode, error) {
	content, err := slot.Resolve(args...)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		if vars, ok := args[0].(map[string]any); ok {
			ctx = schema.Merge(ctx, vars)
			scope = scope.With(vars)
		}
	}

	switch {
	case content.IsText():
		return []*vdom.VNode{vdom.Text(p.r.text.Interpolate(content.Text(), ctx))}, nil
	case content.IsNodes():
		return p.list(content.Nodes(), ctx, scope, 0, true)
	}
	return nil, nil
}

// fail records a slot error. Slots called after the pass has finished
// report through the engine instead.
func (p *pass) fail(err error) {
	if p.done {
		p.r.config.Engine.Reporter().Report(err)
		return
	}
	if p.err == nil {
		p.err = err
	}
}
