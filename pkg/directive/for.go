package directive

import (
	"fmt"

	"github.com/vango-dev/vschema/internal/errors"
	"github.com/vango-dev/vschema/pkg/expr"
	"github.com/vango-dev/vschema/pkg/schema"
)

// KeyFor repeats a node once per list item.
const KeyFor = "v-for"

// DefaultItemName is the loop variable for literal lists.
const DefaultItemName = "item"

// For fans a node out into one copy per item.
type For struct {
	engine *expr.Engine
}

// NewFor creates the iteration adaptor.
func NewFor(engine *expr.Engine) *For {
	return &For{engine: engine}
}

func (f *For) Name() string  { return "for" }
func (f *For) Priority() int { return PriorityFor }

// Process accepts a literal list, an object {list, item, index} or an
// iteration expression. Each copy gets a key of the form item_index and a
// context binding the item and index names. Unusable values are reported
// and leave the node as it is.
func (f *For) Process(node *schema.Node, props schema.Attrs) *Result {
	value, ok := props[KeyFor]
	if !ok {
		return nil
	}
	ctx := schema.Extract(props)

	loop, err := f.resolve(value, ctx)
	if err != nil {
		f.engine.Reporter().Report(err)
		return nil
	}

	scope := schema.ScopeOf(props)
	cleaned := without(props, KeyFor, schema.ContextKey, schema.ScopeKey)
	nodes := make([]*schema.Node, 0, len(loop.Items))
	for i, item := range loop.Items {
		vars := schema.Context{
			loop.ItemName:  item,
			loop.IndexName: i,
		}
		attrs := schema.Inject(withKey(cleaned, fmt.Sprintf("%s_%d", loop.ItemName, i)), schema.Merge(ctx, vars))
		if scope != nil {
			attrs = schema.WithScope(attrs, scope.With(vars))
		}
		clone := node.Clone()
		clone.Attrs = attrs
		nodes = append(nodes, clone)
	}
	return &Result{Props: cleaned, Nodes: nodes}
}

func (f *For) resolve(value any, ctx schema.Context) (*expr.ForResult, error) {
	switch v := value.(type) {
	case string:
		return f.engine.ResolveFor(v, ctx)
	case map[string]any:
		return f.resolveObject(v, ctx)
	}
	if items, ok := expr.ToSlice(f.engine.Unbox(value)); ok {
		return &expr.ForResult{Items: items, ItemName: DefaultItemName, IndexName: expr.DefaultIndexName}, nil
	}
	return nil, errors.New("E120").WithDetailf("unsupported value of type %T", value)
}

func (f *For) resolveObject(obj map[string]any, ctx schema.Context) (*expr.ForResult, error) {
	res := &expr.ForResult{ItemName: DefaultItemName, IndexName: expr.DefaultIndexName}
	for key, dst := range map[string]*string{"item": &res.ItemName, "index": &res.IndexName} {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		name, isString := raw.(string)
		if !isString || !expr.IsIdentifier(name) {
			return nil, errors.New("E120").WithDetailf("%s must be an identifier, got %v", key, raw)
		}
		*dst = name
	}

	list := obj["list"]
	if s, ok := list.(string); ok {
		list = f.engine.Eval(s, ctx)
	}
	items, ok := expr.ToSlice(f.engine.Unbox(list))
	if !ok {
		items = []any{}
	}
	res.Items = items
	return res, nil
}

func withKey(props schema.Attrs, key string) schema.Attrs {
	out := without(props)
	out["key"] = key
	return out
}
