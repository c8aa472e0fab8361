// Package processor renders schema trees into vdom trees.
//
// For each node the Renderer computes the node's effective context, runs
// the directive pipeline, resolves the tag against a component registry,
// and hands the tag, final props and processed children (or slot
// functions, for components) to an element constructor. Fanned-out nodes,
// slot content and children all go through the same recursive entry point,
// so directives compose at any depth.
//
//	r := processor.New(processor.WithRegistry(registry.Builtins()))
//	nodes, err := r.Render(ctx, doc.Nodes, doc.Context)
//
// Render returns an error only when the element constructor rejects a
// node, such as a node whose tag is neither a string nor a component.
// Malformed directives are reported through the engine's reporter and
// rendered as if absent.
package processor
