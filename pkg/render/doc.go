// Package render writes vdom trees as HTML.
//
// The renderer turns the output of the processor into markup for previews
// and static export:
//
//   - Text and attribute escaping
//   - Void and boolean attribute handling
//   - Style maps and class lists flattened to attribute strings
//   - Event handlers reduced to data-on-* markers
//   - Full page rendering with collected styles and scripts
//   - Optional minification
//
// # Basic Usage
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.RenderToString(nodes...)
//
// # Full Page Rendering
//
//	err := r.RenderPage(w, render.PageData{
//	    Title:  "Preview",
//	    Body:   nodes,
//	    Styles: []string{sheet.CSS()},
//	})
//
// Props that only carry meaning inside the renderer pipeline are never
// written out: names starting with "_" or "v-", the "key" prop and
// function values.
package render
