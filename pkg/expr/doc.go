// Package expr implements the expression language used by schema
// directives: literals, identifiers, member access, arithmetic, comparison,
// short-circuit logic, the ternary operator, function calls and array
// literals.
//
// Expressions are parsed once into an AST and evaluated against a context
// map. Evaluation is forgiving: missing identifiers and members yield nil,
// and failures inside called functions are reported through an
// errors.Reporter instead of propagating.
//
//	e := expr.New()
//	e.Eval("user.name ?? 'anonymous'", expr.Context{"user": u})
//
// Values held in reactive boxes are unwrapped before every member access
// and call, so contexts may mix raw and reactive values freely.
package expr
