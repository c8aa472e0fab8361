package expr

import (
	"strconv"
	"strings"
)

// Node is an expression AST node.
type Node interface {
	// Pos returns the byte offset of the node in the source.
	Pos() int
	// String returns a canonical rendering of the expression.
	String() string
	exprNode()
}

// Identifier is a variable reference.
type Identifier struct {
	Name   string
	Offset int
}

// NumberLiteral is a numeric literal. All numbers are float64.
type NumberLiteral struct {
	Value  float64
	Offset int
}

// StringLiteral is a quoted string literal.
type StringLiteral struct {
	Value  string
	Offset int
}

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	Value  bool
	Offset int
}

// NullLiteral is null or undefined. Both evaluate to nil.
type NullLiteral struct {
	Undefined bool
	Offset    int
}

// ArrayLiteral is [a, b, c].
type ArrayLiteral struct {
	Elements []Node
	Offset   int
}

// MemberExpression is obj.prop or obj[expr].
type MemberExpression struct {
	Object   Node
	Property Node // *Identifier when Computed is false
	Computed bool
}

// CallExpression is callee(args...).
type CallExpression struct {
	Callee Node
	Args   []Node
}

// UnaryExpression is !x, -x or +x.
type UnaryExpression struct {
	Operator string
	Operand  Node
	Offset   int
}

// BinaryExpression is an arithmetic or comparison operation.
type BinaryExpression struct {
	Operator string
	Left     Node
	Right    Node
}

// LogicalExpression is &&, || or ??, evaluated with short-circuiting.
type LogicalExpression struct {
	Operator string
	Left     Node
	Right    Node
}

// ConditionalExpression is test ? consequent : alternate.
type ConditionalExpression struct {
	Test       Node
	Consequent Node
	Alternate  Node
}

func (*Identifier) exprNode()            {}
func (*NumberLiteral) exprNode()         {}
func (*StringLiteral) exprNode()         {}
func (*BooleanLiteral) exprNode()        {}
func (*NullLiteral) exprNode()           {}
func (*ArrayLiteral) exprNode()          {}
func (*MemberExpression) exprNode()      {}
func (*CallExpression) exprNode()        {}
func (*UnaryExpression) exprNode()       {}
func (*BinaryExpression) exprNode()      {}
func (*LogicalExpression) exprNode()     {}
func (*ConditionalExpression) exprNode() {}

func (n *Identifier) Pos() int            { return n.Offset }
func (n *NumberLiteral) Pos() int         { return n.Offset }
func (n *StringLiteral) Pos() int         { return n.Offset }
func (n *BooleanLiteral) Pos() int        { return n.Offset }
func (n *NullLiteral) Pos() int           { return n.Offset }
func (n *ArrayLiteral) Pos() int          { return n.Offset }
func (n *MemberExpression) Pos() int      { return n.Object.Pos() }
func (n *CallExpression) Pos() int        { return n.Callee.Pos() }
func (n *UnaryExpression) Pos() int       { return n.Offset }
func (n *BinaryExpression) Pos() int      { return n.Left.Pos() }
func (n *LogicalExpression) Pos() int     { return n.Left.Pos() }
func (n *ConditionalExpression) Pos() int { return n.Test.Pos() }

func (n *Identifier) String() string { return n.Name }

func (n *NumberLiteral) String() string {
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

func (n *StringLiteral) String() string { return strconv.Quote(n.Value) }

func (n *BooleanLiteral) String() string { return strconv.FormatBool(n.Value) }

func (n *NullLiteral) String() string {
	if n.Undefined {
		return "undefined"
	}
	return "null"
}

func (n *ArrayLiteral) String() string {
	parts := make([]string, len(n.Elements))
	for i, el := range n.Elements {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (n *MemberExpression) String() string {
	if n.Computed {
		return n.Object.String() + "[" + n.Property.String() + "]"
	}
	return n.Object.String() + "." + n.Property.String()
}

func (n *CallExpression) String() string {
	parts := make([]string, len(n.Args))
	for i, arg := range n.Args {
		parts[i] = arg.String()
	}
	return n.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
}

func (n *UnaryExpression) String() string {
	return "(" + n.Operator + n.Operand.String() + ")"
}

func (n *BinaryExpression) String() string {
	return "(" + n.Left.String() + " " + n.Operator + " " + n.Right.String() + ")"
}

func (n *LogicalExpression) String() string {
	return "(" + n.Left.String() + " " + n.Operator + " " + n.Right.String() + ")"
}

func (n *ConditionalExpression) String() string {
	return "(" + n.Test.String() + " ? " + n.Consequent.String() + " : " + n.Alternate.String() + ")"
}
