package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vango-dev/vschema/pkg/vdom"
)

func TestRenderPage(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer(RendererConfig{}).RenderPage(&buf, PageData{
		Title:       "A <Title>",
		Body:        []*vdom.VNode{vdom.El("main", "hello")},
		Meta:        []MetaTag{{Name: "description", Content: "test"}},
		StyleSheets: []string{"/app.css"},
		Styles:      []string{".a{color:red}"},
		Scripts:     []ScriptTag{{Src: "/app.js", Defer: true}, {Inline: "var x = 1;"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	html := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="en">`,
		"<title>A &lt;Title&gt;</title>",
		`<meta name="description" content="test">`,
		`<link rel="stylesheet" href="/app.css">`,
		"<style>.a{color:red}</style>",
		"<main>hello</main>",
		`<script src="/app.js" defer></script>`,
		"<script>var x = 1;</script>",
		"</body>\n</html>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in\n%s", want, html)
		}
	}
	if strings.Index(html, "</head>") > strings.Index(html, "<main>") {
		t.Error("body rendered before head closed")
	}
}

func TestRenderPageLang(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRenderer(RendererConfig{}).RenderPage(&buf, PageData{Lang: "fr"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `lang="fr"`) {
		t.Error("lang not applied")
	}
}

func TestRenderPageMinifiedStyles(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer(RendererConfig{Minify: true}).RenderPage(&buf, PageData{
		Styles: []string{".a {\n  color: red;\n}\n"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), ".a{color:red}") {
		t.Errorf("styles not minified: %q", buf.String())
	}
}

func TestStreamingRenderer(t *testing.T) {
	var buf bytes.Buffer
	w := &FlushableWriter{Writer: &buf}
	sr := NewStreamingRenderer(w, RendererConfig{})

	if err := sr.RenderPage(PageData{Body: []*vdom.VNode{vdom.El("p", "x")}}); err != nil {
		t.Fatal(err)
	}
	if w.FlushCount != 3 {
		t.Errorf("flushed %d times, want 3", w.FlushCount)
	}
	if !strings.Contains(buf.String(), "<p>x</p>") {
		t.Errorf("body missing: %q", buf.String())
	}
}
