package directive

import (
	"github.com/vango-dev/vschema/pkg/expr"
	"github.com/vango-dev/vschema/pkg/schema"
)

// Conditional directive keys.
const (
	KeyIf     = "v-if"
	KeyElseIf = "v-else-if"
	KeyElse   = "v-else"
)

// Branch is a node's position in an if/else-if/else chain.
type Branch int

const (
	BranchNone Branch = iota
	BranchIf
	BranchElseIf
	BranchElse
)

// BranchOf returns the conditional branch declared by attrs. v-if wins when
// several keys are present.
func BranchOf(attrs schema.Attrs) Branch {
	if _, ok := attrs[KeyIf]; ok {
		return BranchIf
	}
	if _, ok := attrs[KeyElseIf]; ok {
		return BranchElseIf
	}
	if _, ok := attrs[KeyElse]; ok {
		return BranchElse
	}
	return BranchNone
}

// Conditional skips nodes whose condition is false.
type Conditional struct {
	engine *expr.Engine
}

// NewConditional creates the conditional adaptor.
func NewConditional(engine *expr.Engine) *Conditional {
	return &Conditional{engine: engine}
}

func (c *Conditional) Name() string  { return "conditional" }
func (c *Conditional) Priority() int { return PriorityConditional }

// Process evaluates v-if or v-else-if; v-else always passes.
func (c *Conditional) Process(node *schema.Node, props schema.Attrs) *Result {
	var ok bool
	switch BranchOf(props) {
	case BranchIf:
		ok = schema.EvaluateCondition(props[KeyIf], schema.Extract(props), c.engine)
	case BranchElseIf:
		ok = schema.EvaluateCondition(props[KeyElseIf], schema.Extract(props), c.engine)
	case BranchElse:
		ok = true
	default:
		return nil
	}
	return &Result{
		Props: without(props, KeyIf, KeyElseIf, KeyElse),
		Skip:  !ok,
	}
}
