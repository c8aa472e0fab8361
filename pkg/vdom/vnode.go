package vdom

import (
	"sort"
	"strings"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, etc.
	KindText                   // Plain text node
	KindFragment               // Grouping without wrapper
	KindComponent              // Rendered component
	KindRaw                    // Raw HTML (dangerous)
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// VNode is a rendered node.
type VNode struct {
	Kind     VKind     // Node type
	Tag      string    // Element tag or component name
	Props    Props     // Attributes and event handlers
	Children []*VNode  // Child nodes; a component's single child is its output
	Key      string    // Identity among siblings
	Text     string    // For KindText and KindRaw
	Comp     Component // For KindComponent
}

// Props holds attributes and event handlers.
type Props map[string]any

// Attr is a single attribute, used with El.
type Attr struct {
	Key   string
	Value any
}

// Handler is an event or update callback stored in Props.
type Handler func(args ...any)

// Invoke calls the handler stored under prop with args. It reports whether
// a callable handler was found.
func (v *VNode) Invoke(prop string, args ...any) bool {
	if v == nil {
		return false
	}
	switch h := v.Props[prop].(type) {
	case Handler:
		h(args...)
	case func(args ...any):
		h(args...)
	case func():
		h()
	default:
		return false
	}
	return true
}

// Handlers returns the sorted names of props holding callbacks.
func (v *VNode) Handlers() []string {
	var names []string
	for key, val := range v.Props {
		switch val.(type) {
		case Handler, func(args ...any), func():
			names = append(names, key)
		}
	}
	sort.Strings(names)
	return names
}

// TextContent concatenates the text of v and its descendants.
func (v *VNode) TextContent() string {
	var b strings.Builder
	v.Walk(func(n *VNode) bool {
		if n.Kind == KindText {
			b.WriteString(n.Text)
		}
		return true
	})
	return b.String()
}

// Walk visits v and its descendants depth-first until fn returns false.
func (v *VNode) Walk(fn func(*VNode) bool) bool {
	if v == nil {
		return true
	}
	if !fn(v) {
		return false
	}
	for _, c := range v.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the first node in v's subtree with the given tag.
func (v *VNode) Find(tag string) *VNode {
	var found *VNode
	v.Walk(func(n *VNode) bool {
		if n.Kind == KindElement && n.Tag == tag {
			found = n
			return false
		}
		return true
	})
	return found
}

// Component renders props and slots to a node.
type Component interface {
	Render(props Props, slots Slots) (*VNode, error)
}

// ComponentFunc adapts a function to Component.
type ComponentFunc func(props Props, slots Slots) (*VNode, error)

// Render implements Component.
func (f ComponentFunc) Render(props Props, slots Slots) (*VNode, error) {
	return f(props, slots)
}

// Named is implemented by components that have a display name.
type Named interface {
	Name() string
}

// SlotFunc renders a slot for the given scope arguments.
type SlotFunc func(args ...any) []*VNode

// Slots maps slot names to render functions.
type Slots map[string]SlotFunc

// Has reports whether the named slot exists.
func (s Slots) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Render renders the named slot, returning nil when it does not exist.
func (s Slots) Render(name string, args ...any) []*VNode {
	fn, ok := s[name]
	if !ok || fn == nil {
		return nil
	}
	return fn(args...)
}

// Names returns the sorted slot names.
func (s Slots) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Static returns a slot function that always yields nodes.
func Static(nodes ...*VNode) SlotFunc {
	return func(...any) []*VNode { return nodes }
}
