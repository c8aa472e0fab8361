package vdom

import (
	"fmt"

	"github.com/vango-dev/vschema/internal/errors"
)

// Content is what a constructor receives besides props: either children
// or named slot functions.
type Content struct {
	Children []*VNode
	Slots    Slots
}

// Constructor turns a resolved tag into a node.
type Constructor interface {
	Construct(tag any, props Props, content Content) (*VNode, error)
}

// ConstructorFunc adapts a function to Constructor.
type ConstructorFunc func(tag any, props Props, content Content) (*VNode, error)

// Construct implements Constructor.
func (f ConstructorFunc) Construct(tag any, props Props, content Content) (*VNode, error) {
	return f(tag, props, content)
}

// DefaultConstructor builds host elements and renders components.
var DefaultConstructor Constructor = ConstructorFunc(Construct)

// formElements take their bound value from modelValue.
var formElements = map[string]bool{
	"input":    true,
	"textarea": true,
	"select":   true,
}

// Construct builds a node for tag, which must be a non-empty element name
// or a Component. Host elements render their default slot as children.
// Components are rendered immediately; when given children instead of
// slots, the children become the default slot.
func Construct(tag any, props Props, content Content) (*VNode, error) {
	switch t := tag.(type) {
	case string:
		if t == "" {
			return nil, errors.New("E140").WithDetail("empty tag")
		}
		return constructElement(t, props, content), nil
	case Component:
		return constructComponent(t, props, content)
	case nil:
		return nil, errors.New("E140").WithDetail("missing tag")
	}
	return nil, errors.New("E140").WithDetailf("tag must be a string or a component, got %T", tag)
}

func constructElement(tag string, props Props, content Content) *VNode {
	node := &VNode{
		Kind:     KindElement,
		Tag:      tag,
		Props:    make(Props, len(props)),
		Children: make([]*VNode, 0, len(content.Children)),
	}
	for k, v := range props {
		node.setAttr(k, v)
	}

	if formElements[tag] {
		if v, ok := node.Props["modelValue"]; ok {
			if _, has := node.Props["value"]; !has {
				node.Props["value"] = v
			}
			delete(node.Props, "modelValue")
		}
	}

	children := content.Children
	if content.Slots != nil && len(children) == 0 {
		children = content.Slots.Render("default")
	}
	node.Children = append(node.Children, compact(children)...)

	if tag == "textarea" && len(node.Children) == 0 {
		if v, ok := node.Props["value"]; ok && v != nil {
			node.Children = append(node.Children, Text(fmt.Sprint(v)))
			delete(node.Props, "value")
		}
	}
	return node
}

func constructComponent(comp Component, props Props, content Content) (*VNode, error) {
	node := &VNode{
		Kind:  KindComponent,
		Props: make(Props, len(props)),
		Comp:  comp,
	}
	if named, ok := comp.(Named); ok {
		node.Tag = named.Name()
	}
	for k, v := range props {
		node.setAttr(k, v)
	}

	slots := content.Slots
	if slots == nil {
		slots = Slots{}
	}
	if len(content.Children) > 0 && !slots.Has("default") {
		slots["default"] = Static(compact(content.Children)...)
	}

	out, err := comp.Render(node.Props, slots)
	if err != nil {
		return nil, errors.New("E140").WithDetailf("component %s failed to render", componentName(node)).Wrap(err)
	}
	if out != nil {
		node.Children = []*VNode{out}
	}
	return node, nil
}

func componentName(n *VNode) string {
	if n.Tag != "" {
		return n.Tag
	}
	return fmt.Sprintf("%T", n.Comp)
}
