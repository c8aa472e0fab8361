package directive

import (
	"strings"

	"github.com/vango-dev/vschema/pkg/schema"
)

// Fragment unwraps container tags that have no element of their own:
// <template> and <fragment> render only their children.
type Fragment struct {
	isComponent func(name string) bool
}

// NewFragment creates the container-removing adaptor. isComponent may be
// nil; tags it reports as components are left alone.
func NewFragment(isComponent func(name string) bool) *Fragment {
	return &Fragment{isComponent: isComponent}
}

func (f *Fragment) Name() string  { return "fragment" }
func (f *Fragment) Priority() int { return PriorityFragment }

// Process fans a container out into its node children, each inheriting the
// container's context under its own.
func (f *Fragment) Process(node *schema.Node, props schema.Attrs) *Result {
	tag, ok := node.TagName()
	if !ok || !IsContainer(tag) || !node.Children.IsNodes() {
		return nil
	}
	if f.isComponent != nil && f.isComponent(tag) {
		return nil
	}

	ctx := schema.Extract(props)
	scope := schema.ScopeOf(props)
	nodes := make([]*schema.Node, 0, len(node.Children.Nodes()))
	for _, child := range node.Children.Nodes() {
		if child == nil {
			continue
		}
		own := schema.Extract(child.Attrs)
		attrs := schema.Inject(child.Attrs, schema.Merge(ctx, own))
		if scope != nil {
			attrs = schema.WithScope(attrs, scope.With(own))
		}
		nodes = append(nodes, child.WithAttrs(attrs))
	}
	return &Result{Props: props, Nodes: nodes, Fresh: true}
}

// IsContainer reports whether tag names a wrapper-less container.
func IsContainer(tag string) bool {
	switch strings.ToLower(tag) {
	case "template", "fragment":
		return true
	}
	return false
}
