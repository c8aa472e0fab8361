package registry

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/vango-dev/vschema/pkg/vdom"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// Builtins returns a registry with the standard components:
//
//	markdown  renders its source prop, or its default slot's text, as HTML
func Builtins() *Map {
	m := New(nil)
	m.Register("markdown", Markdown{})
	return m
}

// Markdown renders Markdown to HTML inside a div.
type Markdown struct{}

// Name implements vdom.Named.
func (Markdown) Name() string { return "markdown" }

// Render implements vdom.Component.
func (Markdown) Render(props vdom.Props, slots vdom.Slots) (*vdom.VNode, error) {
	source, _ := props["source"].(string)
	if source == "" {
		var b strings.Builder
		for _, n := range slots.Render("default") {
			b.WriteString(n.TextContent())
		}
		source = b.String()
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return nil, fmt.Errorf("markdown: %w", err)
	}

	attrs := make(vdom.Props, len(props))
	for k, v := range props {
		if k != "source" {
			attrs[k] = v
		}
	}
	return vdom.El("div", attrs, vdom.Raw(buf.String())), nil
}
