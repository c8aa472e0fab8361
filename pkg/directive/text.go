package directive

import (
	"strings"

	"github.com/vango-dev/vschema/pkg/expr"
	"github.com/vango-dev/vschema/pkg/schema"
)

// Default interpolation delimiters.
const (
	DefaultOpen  = "{{"
	DefaultClose = "}}"
)

// Text substitutes {{ expression }} markers in string props and text
// children.
type Text struct {
	engine *expr.Engine
	open   string
	close  string
}

// NewText creates the interpolation adaptor.
func NewText(engine *expr.Engine, left, right string) *Text {
	if left == "" || right == "" {
		left, right = DefaultOpen, DefaultClose
	}
	return &Text{engine: engine, open: left, close: right}
}

func (t *Text) Name() string  { return "text" }
func (t *Text) Priority() int { return PriorityText }

// Process interpolates props and children. Changed children produce a
// single replacement node; changed props alone are returned as props.
// Values produced by a two-way binding are data, not templates, and are
// left as they are.
func (t *Text) Process(node *schema.Node, props schema.Attrs) *Result {
	ctx := schema.Extract(props)

	var out schema.Attrs
	for k, v := range props {
		s, ok := v.(string)
		if !ok || k == schema.ContextKey || schema.Bound(props, k) {
			continue
		}
		if replaced, changed := t.interpolate(s, ctx); changed {
			if out == nil {
				out = without(props)
			}
			out[k] = replaced
		}
	}

	var children string
	childrenChanged := false
	if node.Children.IsText() {
		children, childrenChanged = t.interpolate(node.Children.Text(), ctx)
	}

	switch {
	case childrenChanged:
		attrs := props
		if out != nil {
			attrs = out
		}
		replacement := node.WithChildren(schema.Text(children)).WithAttrs(attrs)
		return &Result{Props: attrs, Nodes: []*schema.Node{replacement}}
	case out != nil:
		return &Result{Props: out}
	}
	return nil
}

// Interpolate substitutes every marker in s. Strings without markers are
// returned unchanged.
func (t *Text) Interpolate(s string, ctx schema.Context) string {
	out, _ := t.interpolate(s, ctx)
	return out
}

func (t *Text) interpolate(s string, ctx schema.Context) (string, bool) {
	if !strings.Contains(s, t.open) {
		return s, false
	}

	var b strings.Builder
	changed := false
	rest := s
	for {
		start := strings.Index(rest, t.open)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+len(t.open):], t.close)
		if end < 0 {
			break
		}
		end += start + len(t.open)

		b.WriteString(rest[:start])
		source := strings.TrimSpace(rest[start+len(t.open) : end])
		if source != "" {
			b.WriteString(expr.ToString(t.engine.Eval(source, ctx)))
		}
		changed = true
		rest = rest[end+len(t.close):]
	}
	if !changed {
		return s, false
	}
	b.WriteString(rest)
	return b.String(), true
}
