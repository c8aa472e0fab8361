package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vango-dev/vschema/pkg/vdom"
)

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body holds the rendered schema nodes.
	Body []*vdom.VNode

	// Title is the page title.
	Title string

	// Meta contains meta tags for the page.
	Meta []MetaTag

	// StyleSheets contains paths to external stylesheets.
	StyleSheets []string

	// Styles contains inline CSS, typically the sheet collected from css
	// attributes during the render.
	Styles []string

	// Scripts contains script tags to include at the end of the body.
	Scripts []ScriptTag

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified.
	Lang string
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name     string // name attribute
	Content  string // content attribute
	Property string // property attribute (for OpenGraph)
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string // src attribute
	Module bool   // type="module"
	Defer  bool   // defer attribute
	Inline string // inline script content
}

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	if r.minifier == nil {
		return r.writePage(w, page)
	}
	var buf bytes.Buffer
	if err := r.writePage(&buf, page); err != nil {
		return err
	}
	return r.minifier.Minify("text/html", w, &buf)
}

func (r *Renderer) writePage(w io.Writer, page PageData) error {
	if err := r.renderHead(w, page); err != nil {
		return err
	}
	if err := r.renderNodes(w, page.Body, 1); err != nil {
		return err
	}
	return r.renderTail(w, page)
}

// renderHead writes everything up to and including the opening body tag.
func (r *Renderer) renderHead(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "<!DOCTYPE html>\n<html lang=\"%s\">\n<head>\n", escapeAttr(lang))
	b.WriteString(`  <meta charset="utf-8">` + "\n")
	b.WriteString(`  <meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	if page.Title != "" {
		fmt.Fprintf(&b, "  <title>%s</title>\n", escapeHTML(page.Title))
	}

	for _, meta := range page.Meta {
		b.WriteString("  <meta")
		if meta.Name != "" {
			fmt.Fprintf(&b, ` name="%s"`, escapeAttr(meta.Name))
		}
		if meta.Property != "" {
			fmt.Fprintf(&b, ` property="%s"`, escapeAttr(meta.Property))
		}
		fmt.Fprintf(&b, ` content="%s">`+"\n", escapeAttr(meta.Content))
	}

	for _, href := range page.StyleSheets {
		fmt.Fprintf(&b, `  <link rel="stylesheet" href="%s">`+"\n", escapeAttr(href))
	}

	for _, sheet := range page.Styles {
		if sheet == "" {
			continue
		}
		minified, err := r.MinifyCSS(sheet)
		if err != nil {
			return fmt.Errorf("render: minify styles: %w", err)
		}
		fmt.Fprintf(&b, "  <style>%s</style>\n", escapeRawText(minified))
	}

	b.WriteString("</head>\n<body>\n")
	_, err := w.Write(b.Bytes())
	return err
}

// renderTail writes the scripts and closes the document.
func (r *Renderer) renderTail(w io.Writer, page PageData) error {
	var b bytes.Buffer
	for _, script := range page.Scripts {
		b.WriteString("  <script")
		if script.Src != "" {
			fmt.Fprintf(&b, ` src="%s"`, escapeAttr(script.Src))
		}
		if script.Module {
			b.WriteString(` type="module"`)
		}
		if script.Defer {
			b.WriteString(" defer")
		}
		b.WriteString(">")
		b.WriteString(escapeRawText(script.Inline))
		b.WriteString("</script>\n")
	}

	b.WriteString("</body>\n</html>\n")
	_, err := w.Write(b.Bytes())
	return err
}
