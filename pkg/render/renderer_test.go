package render

import (
	"strings"
	"testing"

	"github.com/vango-dev/vschema/pkg/reactive"
	"github.com/vango-dev/vschema/pkg/vdom"
)

func renderString(t *testing.T, r *Renderer, nodes ...*vdom.VNode) string {
	t.Helper()
	html, err := r.RenderToString(nodes...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return html
}

func TestRenderText(t *testing.T) {
	html := renderString(t, NewRenderer(RendererConfig{}), vdom.Text("<b>hi</b>"))
	if html != "&lt;b&gt;hi&lt;/b&gt;" {
		t.Errorf("got %q", html)
	}
}

func TestRenderRaw(t *testing.T) {
	html := renderString(t, NewRenderer(RendererConfig{}), vdom.Raw("<b>hi</b>"))
	if html != "<b>hi</b>" {
		t.Errorf("got %q", html)
	}
}

func TestRenderElement(t *testing.T) {
	node := vdom.El("div", vdom.Props{"class": "container", "id": "main"},
		vdom.El("h1", "Title"),
		vdom.El("p", "Content"),
	)
	html := renderString(t, NewRenderer(RendererConfig{}), node)

	want := `<div class="container" id="main"><h1>Title</h1><p>Content</p></div>`
	if html != want {
		t.Errorf("got  %q\nwant %q", html, want)
	}
}

func TestRenderVoidElement(t *testing.T) {
	node := vdom.El("input", vdom.Props{"type": "text", "value": "Ann"})
	html := renderString(t, NewRenderer(RendererConfig{}), node)
	if html != `<input type="text" value="Ann">` {
		t.Errorf("got %q", html)
	}
}

func TestRenderAttributes(t *testing.T) {
	tests := []struct {
		name  string
		props vdom.Props
		want  string
	}{
		{"boolean true", vdom.Props{"disabled": true}, `<button disabled></button>`},
		{"boolean false", vdom.Props{"disabled": false}, `<button></button>`},
		{"aria bool", vdom.Props{"aria-pressed": true}, `<button aria-pressed="true"></button>`},
		{"number", vdom.Props{"tabindex": 3}, `<button tabindex="3"></button>`},
		{"float", vdom.Props{"data-n": 1.5}, `<button data-n="1.5"></button>`},
		{"nil dropped", vdom.Props{"title": nil}, `<button></button>`},
		{"className", vdom.Props{"className": "a"}, `<button class="a"></button>`},
		{"class list", vdom.Props{"class": []any{"a", map[string]any{"b": true, "c": false}, "d e"}}, `<button class="a b d e"></button>`},
		{"style map", vdom.Props{"style": map[string]any{"backgroundColor": "red", "display": "none", "--x": 1}}, `<button style="--x: 1; background-color: red; display: none;"></button>`},
		{"style string", vdom.Props{"style": "color: red"}, `<button style="color: red"></button>`},
		{"internal props", vdom.Props{"_hidden": 1, "v-for": "x in y", "modelModifiers": map[string]any{"trim": true}}, `<button></button>`},
		{"handler marker", vdom.Props{"onClick": vdom.Handler(func(...any) {})}, `<button data-on-click="true"></button>`},
		{"escaped value", vdom.Props{"title": `"quoted"`}, `<button title="&quot;quoted&quot;"></button>`},
		{"signal unboxed", vdom.Props{"title": reactive.NewSignal("live")}, `<button title="live"></button>`},
	}

	r := NewRenderer(RendererConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &vdom.VNode{Kind: vdom.KindElement, Tag: "button", Props: tt.props}
			if got := renderString(t, r, node); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestRenderKeyNotWritten(t *testing.T) {
	node := vdom.El("li", vdom.Attr{Key: "key", Value: "x_0"}, "a")
	if got := renderString(t, NewRenderer(RendererConfig{}), node); got != "<li>a</li>" {
		t.Errorf("got %q", got)
	}
}

func TestRenderInnerHTML(t *testing.T) {
	node := &vdom.VNode{Kind: vdom.KindElement, Tag: "div", Props: vdom.Props{"innerHTML": "<em>x</em>"}}
	if got := renderString(t, NewRenderer(RendererConfig{}), node); got != "<div><em>x</em></div>" {
		t.Errorf("got %q", got)
	}
}

func TestRenderComponentOutput(t *testing.T) {
	comp := vdom.ComponentFunc(func(props vdom.Props, slots vdom.Slots) (*vdom.VNode, error) {
		return vdom.El("span", "inside"), nil
	})
	node, err := vdom.Construct(comp, vdom.Props{}, vdom.Content{})
	if err != nil {
		t.Fatal(err)
	}
	if got := renderString(t, NewRenderer(RendererConfig{}), node); got != "<span>inside</span>" {
		t.Errorf("got %q", got)
	}
}

func TestRenderFragment(t *testing.T) {
	node := vdom.Fragment(vdom.El("b", "1"), vdom.El("i", "2"))
	if got := renderString(t, NewRenderer(RendererConfig{}), node); got != "<b>1</b><i>2</i>" {
		t.Errorf("got %q", got)
	}
}

func TestRenderPretty(t *testing.T) {
	node := vdom.El("ul", vdom.El("li", "a"), vdom.El("li", "b"))
	html := renderString(t, NewRenderer(RendererConfig{Pretty: true}), node)
	want := "<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>\n"
	if html != want {
		t.Errorf("got  %q\nwant %q", html, want)
	}
}

func TestRenderMinify(t *testing.T) {
	node := vdom.El("div", vdom.El("p", "  lots   of   space  "))
	html := renderString(t, NewRenderer(RendererConfig{Minify: true, Pretty: true}), node)
	if strings.Contains(html, "   ") {
		t.Errorf("whitespace not collapsed: %q", html)
	}
	if !strings.Contains(html, "lots of space") {
		t.Errorf("content lost: %q", html)
	}
}

func TestRenderUnknownKind(t *testing.T) {
	_, err := NewRenderer(RendererConfig{}).RenderToString(&vdom.VNode{Kind: vdom.VKind(99)})
	if err == nil {
		t.Error("expected error for unknown kind")
	}
}
