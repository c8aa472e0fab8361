package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vschema/internal/errors"
	"github.com/vango-dev/vschema/pkg/expr"
)

// FromValue converts a decoded JSON or YAML object into a Node.
// Recognized keys are tag, attrs (or props), children and slots.
func FromValue(v any) (*Node, error) {
	switch x := v.(type) {
	case *Node:
		return x, nil
	case Node:
		return &x, nil
	}
	m, ok := asMap(v)
	if !ok {
		return nil, malformed("node must be an object, got %T", v)
	}

	n := &Node{Tag: m["tag"]}
	attrs := m["attrs"]
	if attrs == nil {
		attrs = m["props"]
	}
	if attrs != nil {
		a, ok := asMap(attrs)
		if !ok {
			return nil, malformed("attrs must be an object, got %T", attrs)
		}
		n.Attrs = a
	}

	children, err := ToChildren(m["children"])
	if err != nil {
		return nil, err
	}
	n.Children = children

	if raw, ok := m["slots"]; ok && raw != nil {
		slots, ok := asMap(raw)
		if !ok {
			return nil, malformed("slots must be an object, got %T", raw)
		}
		n.Slots = make(map[string]Slot, len(slots))
		for name, content := range slots {
			if fn, ok := content.(SlotFunc); ok {
				n.Slots[name] = Slot{Func: fn}
				continue
			}
			if fn, ok := content.(func(args ...any) any); ok {
				n.Slots[name] = Slot{Func: fn}
				continue
			}
			c, err := ToChildren(content)
			if err != nil {
				return nil, err
			}
			n.Slots[name] = Slot{Content: c}
		}
	}
	return n, nil
}

// ToChildren converts v into Children. It accepts nil, strings, scalars
// (rendered as text), nodes, node lists and decoded JSON objects or arrays.
func ToChildren(v any) (Children, error) {
	switch x := v.(type) {
	case nil:
		return Children{}, nil
	case Children:
		return x, nil
	case string:
		return Text(x), nil
	case *Node:
		return Nodes(x), nil
	case []*Node:
		return Nodes(x...), nil
	case bool, float64, float32, int, int64, int32:
		return Text(expr.ToString(x)), nil
	case []any:
		nodes := make([]*Node, 0, len(x))
		for _, item := range x {
			if item == nil {
				nodes = append(nodes, nil)
				continue
			}
			n, err := FromValue(item)
			if err != nil {
				return Children{}, err
			}
			nodes = append(nodes, n)
		}
		return Nodes(nodes...), nil
	}
	if _, ok := asMap(v); ok {
		n, err := FromValue(v)
		if err != nil {
			return Children{}, err
		}
		return Nodes(n), nil
	}
	return Children{}, malformed("unsupported children type %T", v)
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func malformed(format string, args ...any) *errors.Error {
	return errors.New("E161").WithDetailf(format, args...)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := FromValue(raw)
	if err != nil {
		return err
	}
	*n = *decoded
	return nil
}

// MarshalJSON implements json.Marshaler. Lazy slots are omitted.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := map[string]any{"tag": n.Tag}
	if len(n.Attrs) > 0 {
		out["attrs"] = n.Attrs
	}
	if !n.Children.IsEmpty() {
		out["children"] = n.Children
	}
	if len(n.Slots) > 0 {
		slots := make(map[string]any, len(n.Slots))
		for name, slot := range n.Slots {
			if !slot.IsLazy() {
				slots[name] = slot.Content
			}
		}
		out["slots"] = slots
	}
	return json.Marshal(out)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	decoded, err := FromValue(raw)
	if err != nil {
		return err
	}
	*n = *decoded
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Children) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := ToChildren(raw)
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Children) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case childText:
		return json.Marshal(c.text)
	case childNodes:
		return json.Marshal(c.nodes)
	}
	return []byte("null"), nil
}
