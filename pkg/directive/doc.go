// Package directive implements the adaptors that rewrite schema nodes
// before they are rendered.
//
// Each Adaptor handles one directive. A Pipeline runs adaptors in
// descending priority order:
//
//	100  Conditional  v-if, v-else-if, v-else
//	 95  Show         v-show
//	 90  For          v-for
//	 70  Model        v-model, v-model:target
//	 60  Event        @event, v-on:event, on:event
//	 50  Text         {{ expression }} interpolation
//	 40  Fragment     <template> and <fragment> containers
//
// An adaptor either rewrites props, skips the node, or fans it out into
// a list of sibling nodes that are processed in its place. Adaptors never
// fail: malformed directives are reported to the engine's reporter and the
// directive is treated as absent.
package directive
