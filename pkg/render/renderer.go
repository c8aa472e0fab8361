package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"

	"github.com/vango-dev/vschema/pkg/expr"
	"github.com/vango-dev/vschema/pkg/reactive"
	"github.com/vango-dev/vschema/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output. Ignored when Minify is set.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string

	// Minify compresses the rendered markup and inline styles.
	Minify bool
}

// Renderer writes vdom trees as HTML. A Renderer holds no per-render
// state and may be shared.
type Renderer struct {
	config   RendererConfig
	minifier *minify.M
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	r := &Renderer{config: config}
	if config.Minify {
		r.config.Pretty = false
		r.minifier = newMinifier()
	}
	return r
}

func newMinifier() *minify.M {
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	m.AddFunc("text/css", css.Minify)
	return m
}

// RenderToString renders nodes to an HTML string.
func (r *Renderer) RenderToString(nodes ...*vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, nodes...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter writes nodes to w.
func (r *Renderer) RenderToWriter(w io.Writer, nodes ...*vdom.VNode) error {
	if r.minifier == nil {
		return r.renderNodes(w, nodes, 0)
	}
	var buf bytes.Buffer
	if err := r.renderNodes(&buf, nodes, 0); err != nil {
		return err
	}
	return r.minifier.Minify("text/html", w, &buf)
}

// MinifyCSS compresses a stylesheet when minification is enabled and
// returns it unchanged otherwise.
func (r *Renderer) MinifyCSS(sheet string) (string, error) {
	if r.minifier == nil {
		return sheet, nil
	}
	return r.minifier.String("text/css", sheet)
}

func (r *Renderer) renderNodes(w io.Writer, nodes []*vdom.VNode, depth int) error {
	for _, n := range nodes {
		if err := r.renderNode(w, n, depth); err != nil {
			return err
		}
	}
	return nil
}

// renderNode dispatches rendering based on node kind.
func (r *Renderer) renderNode(w io.Writer, node *vdom.VNode, depth int) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindElement:
		return r.renderElement(w, node, depth)
	case vdom.KindText:
		_, err := io.WriteString(w, escapeHTML(node.Text))
		return err
	case vdom.KindRaw:
		_, err := io.WriteString(w, node.Text)
		return err
	case vdom.KindFragment, vdom.KindComponent:
		// A component's children hold its rendered output.
		return r.renderNodes(w, node.Children, depth)
	default:
		return fmt.Errorf("render: unknown node kind %s", node.Kind)
	}
}

// renderElement renders an HTML element with its attributes and children.
func (r *Renderer) renderElement(w io.Writer, node *vdom.VNode, depth int) error {
	tag := node.Tag

	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	if _, err := io.WriteString(w, "<"+tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, node); err != nil {
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if isVoidElement(tag) {
		r.newline(w)
		return nil
	}

	if inner, ok := innerHTML(node.Props); ok {
		if _, err := io.WriteString(w, inner); err != nil {
			return err
		}
	} else if tag == "style" || tag == "script" {
		for _, child := range node.Children {
			if child != nil && (child.Kind == vdom.KindText || child.Kind == vdom.KindRaw) {
				if _, err := io.WriteString(w, escapeRawText(child.Text)); err != nil {
					return err
				}
			}
		}
	} else {
		block := !isInlineElement(tag) && hasElementChild(node)
		if block {
			r.newline(w)
		}
		childDepth := depth + 1
		if !block {
			childDepth = 0
		}
		if err := r.renderNodes(w, node.Children, childDepth); err != nil {
			return err
		}
		if block && r.config.Pretty {
			r.writeIndent(w, depth)
		}
	}

	if _, err := fmt.Fprintf(w, "</%s>", tag); err != nil {
		return err
	}
	r.newline(w)
	return nil
}

func hasElementChild(node *vdom.VNode) bool {
	for _, c := range node.Children {
		if c != nil && c.Kind != vdom.KindText {
			return true
		}
	}
	return false
}

// renderAttributes writes the element's props in sorted order, followed by
// a data-on-* marker for each bound handler.
func (r *Renderer) renderAttributes(w io.Writer, node *vdom.VNode) error {
	if len(node.Props) == 0 {
		return nil
	}

	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var events []string
	for _, key := range keys {
		value := reactive.Unbox(node.Props[key])

		if skipAttr(key) || value == nil {
			continue
		}
		if expr.IsCallable(value) {
			if name, ok := strings.CutPrefix(key, "on"); ok && name != "" {
				events = append(events, strings.ToLower(name))
			}
			continue
		}

		switch key {
		case "className":
			key = "class"
		case "htmlFor":
			key = "for"
		}

		var str string
		switch key {
		case "class":
			str = classString(value)
		case "style":
			str = styleString(value)
		default:
			if b, ok := value.(bool); ok && isBooleanAttr(key) {
				if b {
					if _, err := io.WriteString(w, " "+key); err != nil {
						return err
					}
				}
				continue
			}
			s, ok := attrToString(value)
			if !ok {
				continue
			}
			str = s
		}

		if str == "" && (key == "class" || key == "style") {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(str)); err != nil {
			return err
		}
	}

	for _, name := range events {
		if _, err := fmt.Fprintf(w, ` data-on-%s="true"`, escapeAttr(name)); err != nil {
			return err
		}
	}
	return nil
}

// skipAttr reports whether a prop is internal to the rendering pipeline.
func skipAttr(key string) bool {
	switch {
	case key == "" || key == "key":
		return true
	case key == "innerHTML" || key == "dangerouslySetInnerHTML":
		return true
	case strings.HasPrefix(key, "_"), strings.HasPrefix(key, "v-"):
		return true
	}
	return false
}

func innerHTML(props vdom.Props) (string, bool) {
	for _, key := range []string{"innerHTML", "dangerouslySetInnerHTML"} {
		if s, ok := reactive.Unbox(props[key]).(string); ok {
			return s, true
		}
	}
	return "", false
}

// attrToString converts a scalar attribute value. Maps and slices have no
// attribute form.
func attrToString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return expr.ToString(v), true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}

// classString flattens a class binding: a string, a list of bindings or a
// map of class name to condition.
func classString(value any) string {
	var names []string
	var walk func(v any)
	walk = func(v any) {
		switch c := reactive.Unbox(v).(type) {
		case string:
			names = append(names, strings.Fields(c)...)
		case []string:
			for _, s := range c {
				walk(s)
			}
		case []any:
			for _, item := range c {
				walk(item)
			}
		case map[string]any:
			keys := make([]string, 0, len(c))
			for k, cond := range c {
				if expr.Truthy(reactive.Unbox(cond)) {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			names = append(names, keys...)
		case map[string]bool:
			keys := make([]string, 0, len(c))
			for k, cond := range c {
				if cond {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			names = append(names, keys...)
		}
	}
	walk(value)
	return strings.Join(names, " ")
}

// styleString renders a style binding. Map keys may be camelCase; entries
// with nil or empty values are dropped.
func styleString(value any) string {
	switch s := value.(type) {
	case string:
		return s
	case map[string]string:
		m := make(map[string]any, len(s))
		for k, v := range s {
			m[k] = v
		}
		value = m
	}
	m, ok := value.(map[string]any)
	if !ok {
		return ""
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := reactive.Unbox(m[k])
		if v == nil {
			continue
		}
		str, ok := attrToString(v)
		if !ok || str == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(kebab(k))
		b.WriteString(": ")
		b.WriteString(str)
		b.WriteByte(';')
	}
	return b.String()
}

// kebab converts backgroundColor to background-color. Custom properties
// and names already containing a hyphen are left alone.
func kebab(name string) string {
	if strings.Contains(name, "-") {
		return name
	}
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (r *Renderer) newline(w io.Writer) {
	if r.config.Pretty {
		io.WriteString(w, "\n")
	}
}

func (r *Renderer) writeIndent(w io.Writer, depth int) {
	io.WriteString(w, strings.Repeat(r.config.Indent, depth))
}
