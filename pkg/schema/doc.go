// Package schema defines the serializable node tree that directives are
// written in, and the helpers that move a context bag through a node's
// attributes.
//
// A Node names a tag, carries attributes (literal values, directive strings
// such as "v-if" or "@click", or structured bindings) and has text or node
// children plus optional named slots:
//
//	{
//	  "tag": "li",
//	  "attrs": {"v-for": "(todo, i) in todos", "class": "item"},
//	  "children": "{{ i + 1 }}. {{ todo.title }}"
//	}
//
// Context propagation uses the reserved attribute ContextKey. Merge, Extract,
// Inject and Clean never mutate their inputs.
package schema
