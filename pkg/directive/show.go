package directive

import (
	"maps"
	"strings"

	"github.com/vango-dev/vschema/pkg/expr"
	"github.com/vango-dev/vschema/pkg/schema"
)

// KeyShow toggles visibility without removing the node.
const KeyShow = "v-show"

// Show hides nodes with display: none.
type Show struct {
	engine *expr.Engine
}

// NewShow creates the visibility adaptor.
func NewShow(engine *expr.Engine) *Show {
	return &Show{engine: engine}
}

func (s *Show) Name() string  { return "show" }
func (s *Show) Priority() int { return PriorityShow }

// Process merges display: none into the style when the condition is false.
func (s *Show) Process(node *schema.Node, props schema.Attrs) *Result {
	value, ok := props[KeyShow]
	if !ok {
		return nil
	}
	out := without(props, KeyShow)
	if !schema.EvaluateCondition(value, schema.Extract(props), s.engine) {
		style := StyleMap(props["style"])
		style["display"] = "none"
		out["style"] = style
	}
	return &Result{Props: out}
}

// StyleMap converts a style attribute into a fresh map. Strings in CSS
// declaration syntax are parsed; maps are copied.
func StyleMap(v any) map[string]any {
	switch s := v.(type) {
	case map[string]any:
		if s == nil {
			return map[string]any{}
		}
		return maps.Clone(s)
	case map[string]string:
		out := make(map[string]any, len(s))
		for k, val := range s {
			out[k] = val
		}
		return out
	case string:
		return ParseStyle(s)
	}
	return map[string]any{}
}

// ParseStyle parses "color: red; width: 10px" into a map.
func ParseStyle(s string) map[string]any {
	out := map[string]any{}
	for _, decl := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.TrimSpace(prop)
		if prop == "" {
			continue
		}
		out[prop] = strings.TrimSpace(value)
	}
	return out
}
