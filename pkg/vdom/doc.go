// Package vdom is the element tree produced by rendering a schema.
//
// VNode represents elements, text, fragments, components and raw HTML.
// Props holds attributes and event handlers. Components receive their
// props and named slots and render to a VNode.
//
// # Element API
//
// Elements can be built directly with El:
//
//	El("div", Attr{"class", "card"},
//	    El("h1", "Title"),
//	    El("p", "Content"),
//	)
//
// # Construction
//
// Construct is the element constructor used by the schema processor: it
// turns a resolved tag, final props and either children or slot functions
// into a VNode. Components are rendered eagerly so slot functions run
// within the render pass that created them.
package vdom
