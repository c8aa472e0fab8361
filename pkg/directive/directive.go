package directive

import (
	"maps"
	"sort"

	"github.com/vango-dev/vschema/pkg/expr"
	"github.com/vango-dev/vschema/pkg/schema"
)

// Priorities of the built-in adaptors.
const (
	PriorityConditional = 100
	PriorityShow        = 95
	PriorityFor         = 90
	PriorityModel       = 70
	PriorityEvent       = 60
	PriorityText        = 50
	PriorityFragment    = 40
)

// Adaptor applies one directive to a node.
type Adaptor interface {
	// Name identifies the adaptor in traces and diagnostics.
	Name() string
	// Priority orders adaptors; higher runs first.
	Priority() int
	// Process returns nil when the directive is absent from the node.
	// props is the node's current attribute set, including the injected
	// context; it must not be modified.
	Process(node *schema.Node, props schema.Attrs) *Result
}

// Result is what an adaptor returns when its directive is present.
type Result struct {
	Props schema.Attrs
	Skip  bool
	// Nodes replaces the node with a sibling list when non-nil, even when
	// empty.
	Nodes []*schema.Node
	// Fresh marks fanned-out nodes as new nodes that run the whole
	// pipeline, rather than copies of this node that continue after the
	// adaptor that produced them.
	Fresh bool
}

// IsFanOut reports whether the result replaces the node.
func (r *Result) IsFanOut() bool { return r.Nodes != nil }

// Outcome is the result of running a pipeline over one node.
type Outcome struct {
	Props     schema.Attrs
	Skip      bool
	SkippedBy string
	FanOut    bool
	Nodes     []*schema.Node
	// Resume is the adaptor index fanned-out nodes continue from.
	Resume int
	// Applied lists the adaptors whose directive was present.
	Applied []string
}

// Pipeline runs adaptors in priority order.
type Pipeline struct {
	adaptors []Adaptor
}

// NewPipeline creates a pipeline. Adaptors with equal priority keep their
// argument order.
func NewPipeline(adaptors ...Adaptor) *Pipeline {
	sorted := make([]Adaptor, 0, len(adaptors))
	for _, a := range adaptors {
		if a != nil {
			sorted = append(sorted, a)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return &Pipeline{adaptors: sorted}
}

// Adaptors returns the adaptors in run order.
func (p *Pipeline) Adaptors() []Adaptor {
	return p.adaptors
}

// Len returns the number of adaptors.
func (p *Pipeline) Len() int { return len(p.adaptors) }

// With returns a new pipeline with extra adaptors added.
func (p *Pipeline) With(adaptors ...Adaptor) *Pipeline {
	all := append(append([]Adaptor{}, p.adaptors...), adaptors...)
	return NewPipeline(all...)
}

// Run applies the adaptors from index from onward. It stops at the first
// skip or fan-out.
func (p *Pipeline) Run(node *schema.Node, props schema.Attrs, from int) Outcome {
	var applied []string
	for i := from; i < len(p.adaptors); i++ {
		a := p.adaptors[i]
		res := a.Process(node, props)
		if res == nil {
			continue
		}
		applied = append(applied, a.Name())

		if res.Skip {
			return Outcome{Props: props, Skip: true, SkippedBy: a.Name(), Applied: applied}
		}
		if res.IsFanOut() {
			resume := i + 1
			if res.Fresh {
				resume = 0
			}
			return Outcome{Props: res.Props, FanOut: true, Nodes: res.Nodes, Resume: resume, Applied: applied}
		}
		if res.Props != nil {
			props = res.Props
		}
	}
	return Outcome{Props: props, Applied: applied}
}

// Option configures the standard pipeline.
type Option func(*options)

type options struct {
	left, right string
	isComponent func(name string) bool
}

// WithDelimiters sets the interpolation delimiters. Empty values keep the
// defaults.
func WithDelimiters(left, right string) Option {
	return func(o *options) {
		if left != "" && right != "" {
			o.left, o.right = left, right
		}
	}
}

// WithComponentCheck tells the fragment adaptor which tags are registered
// components and must not be unwrapped.
func WithComponentCheck(fn func(name string) bool) Option {
	return func(o *options) { o.isComponent = fn }
}

// Standard returns the pipeline with every built-in adaptor.
func Standard(engine *expr.Engine, opts ...Option) *Pipeline {
	o := options{left: DefaultOpen, right: DefaultClose}
	for _, opt := range opts {
		opt(&o)
	}
	return NewPipeline(
		NewConditional(engine),
		NewShow(engine),
		NewFor(engine),
		NewModel(engine),
		NewEvent(engine),
		NewText(engine, o.left, o.right),
		NewFragment(o.isComponent),
	)
}

// without returns a copy of props minus keys.
func without(props schema.Attrs, keys ...string) schema.Attrs {
	out := maps.Clone(props)
	if out == nil {
		out = schema.Attrs{}
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
