package schema

import "maps"

// ContextKey is the attribute that carries a node's own context.
// It is stripped before attributes reach the element constructor.
const ContextKey = "_context"

// Context maps variable names to values.
type Context = map[string]any

// Attrs maps attribute names to values.
type Attrs = map[string]any

// Node is one element of a schema tree.
type Node struct {
	// Tag is a host element name, a registered component name, or an
	// already-resolved component value.
	Tag      any
	Attrs    Attrs
	Children Children
	Slots    map[string]Slot
}

// El builds a node.
func El(tag any, attrs Attrs, children Children) *Node {
	return &Node{Tag: tag, Attrs: attrs, Children: children}
}

// TagName returns the tag as a string when it is one.
func (n *Node) TagName() (string, bool) {
	if n == nil {
		return "", false
	}
	s, ok := n.Tag.(string)
	return s, ok
}

// WithSlot sets a named slot and returns n.
func (n *Node) WithSlot(name string, slot Slot) *Node {
	if n.Slots == nil {
		n.Slots = make(map[string]Slot)
	}
	n.Slots[name] = slot
	return n
}

// Clone returns a structural copy of n. The attribute map and child list are
// copied; attribute values are shared, so bindings that reference caller
// objects keep pointing at the same objects.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Tag:      n.Tag,
		Attrs:    maps.Clone(n.Attrs),
		Children: n.Children.clone(),
	}
	if n.Slots != nil {
		c.Slots = make(map[string]Slot, len(n.Slots))
		for name, slot := range n.Slots {
			c.Slots[name] = Slot{Content: slot.Content.clone(), Func: slot.Func}
		}
	}
	return c
}

// WithAttrs returns a shallow copy of n carrying attrs.
func (n *Node) WithAttrs(attrs Attrs) *Node {
	c := *n
	c.Attrs = attrs
	return &c
}

// WithChildren returns a shallow copy of n carrying children.
func (n *Node) WithChildren(children Children) *Node {
	c := *n
	c.Children = children
	return &c
}

// SlotFunc produces slot content lazily from the arguments the host passes
// when it renders the slot. The result may be a string, *Node, []*Node,
// []any of nodes, Children or a decoded JSON value.
type SlotFunc func(args ...any) any

// Slot is the content of one named slot.
type Slot struct {
	Content Children
	Func    SlotFunc
}

// IsLazy reports whether the slot is produced by a function.
func (s Slot) IsLazy() bool { return s.Func != nil }

// Resolve returns the slot's children for the given invocation arguments.
func (s Slot) Resolve(args ...any) (Children, error) {
	if s.Func == nil {
		return s.Content, nil
	}
	return ToChildren(s.Func(args...))
}
