package expr

import "sort"

// ExtractVariables returns the sorted, de-duplicated top-level identifiers
// referenced by node. Non-computed property names are not variables.
func ExtractVariables(node Node) []string {
	seen := make(map[string]struct{})
	collectVariables(node, seen)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectVariables(node Node, seen map[string]struct{}) {
	switch n := node.(type) {
	case *Identifier:
		seen[n.Name] = struct{}{}
	case *ArrayLiteral:
		for _, el := range n.Elements {
			collectVariables(el, seen)
		}
	case *MemberExpression:
		collectVariables(n.Object, seen)
		if n.Computed {
			collectVariables(n.Property, seen)
		}
	case *CallExpression:
		collectVariables(n.Callee, seen)
		for _, arg := range n.Args {
			collectVariables(arg, seen)
		}
	case *UnaryExpression:
		collectVariables(n.Operand, seen)
	case *BinaryExpression:
		collectVariables(n.Left, seen)
		collectVariables(n.Right, seen)
	case *LogicalExpression:
		collectVariables(n.Left, seen)
		collectVariables(n.Right, seen)
	case *ConditionalExpression:
		collectVariables(n.Test, seen)
		collectVariables(n.Consequent, seen)
		collectVariables(n.Alternate, seen)
	}
}
