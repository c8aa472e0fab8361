package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Raw creates an unescaped HTML node.
// Use with caution - can lead to XSS if content is user-provided.
func Raw(html string) *VNode {
	return &VNode{Kind: KindRaw, Text: html}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...*VNode) *VNode {
	return &VNode{Kind: KindFragment, Children: compact(children)}
}

// El creates an element. Arguments can be nil, Attr, []Attr, Props,
// *VNode, []*VNode or string (a text child).
func El(tag string, args ...any) *VNode {
	node := &VNode{
		Kind:     KindElement,
		Tag:      tag,
		Props:    make(Props),
		Children: make([]*VNode, 0),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Attr:
			node.setAttr(v.Key, v.Value)
		case []Attr:
			for _, a := range v {
				node.setAttr(a.Key, a.Value)
			}
		case Props:
			for k, val := range v {
				node.setAttr(k, val)
			}
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*VNode:
			node.Children = append(node.Children, compact(v)...)
		case string:
			node.Children = append(node.Children, Text(v))
		}
	}

	return node
}

func (v *VNode) setAttr(key string, value any) {
	if key == "" {
		return
	}
	if key == "key" {
		if value != nil {
			v.Key = fmt.Sprint(value)
		}
		return
	}
	v.Props[key] = value
}

func compact(nodes []*VNode) []*VNode {
	out := make([]*VNode, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
