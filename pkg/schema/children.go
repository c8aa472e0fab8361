package schema

import "slices"

type childKind uint8

const (
	childNone childKind = iota
	childText
	childNodes
)

// Children is absent, a literal string, or a list of nodes. A node list
// may contain nil entries; they render nothing.
type Children struct {
	kind  childKind
	text  string
	nodes []*Node
}

// Text returns text children.
func Text(s string) Children {
	return Children{kind: childText, text: s}
}

// Nodes returns node children.
func Nodes(nodes ...*Node) Children {
	return Children{kind: childNodes, nodes: nodes}
}

// IsEmpty reports whether no children were given.
func (c Children) IsEmpty() bool { return c.kind == childNone }

// IsText reports whether the children are a literal string.
func (c Children) IsText() bool { return c.kind == childText }

// IsNodes reports whether the children are a node list.
func (c Children) IsNodes() bool { return c.kind == childNodes }

// Text returns the literal string, or "" for other kinds.
func (c Children) Text() string { return c.text }

// Nodes returns the node list, or nil for other kinds.
func (c Children) Nodes() []*Node { return c.nodes }

func (c Children) clone() Children {
	if c.kind != childNodes {
		return c
	}
	nodes := slices.Clone(c.nodes)
	for i, n := range nodes {
		nodes[i] = n.Clone()
	}
	return Children{kind: childNodes, nodes: nodes}
}
