package expr

import (
	"regexp"
	"strings"

	"github.com/vango-dev/vschema/internal/errors"
)

// DefaultIndexName is the loop index variable when none is declared.
const DefaultIndexName = "index"

// ForClause is a parsed iteration expression.
type ForClause struct {
	ItemName  string
	IndexName string
	List      Node
	Source    string
}

// ForResult is a ForClause resolved against a context.
type ForResult struct {
	Items     []any
	ItemName  string
	IndexName string
}

var forPattern = regexp.MustCompile(`^\s*(?:\(\s*([^,()\s]+)\s*(?:,\s*([^,()\s]+)\s*)?\)|([^,()\s]+))\s+(?:in|of)\s+(.+?)\s*$`)

// ParseFor parses "item in list" or "(item, index) in list". "of" is
// accepted in place of "in".
func ParseFor(source string) (*ForClause, error) {
	m := forPattern.FindStringSubmatch(source)
	if m == nil {
		return nil, errors.New("E120").
			WithSource(source).
			WithSuggestion(`Use "item in list" or "(item, index) in list"`)
	}

	item, index := m[1], m[2]
	if item == "" {
		item = m[3]
	}
	if index == "" {
		index = DefaultIndexName
	}
	for _, name := range []string{item, index} {
		if !IsIdentifier(name) {
			return nil, errors.New("E120").
				WithSource(source).
				WithOffset(strings.Index(source, name)).
				WithDetailf("%q is not a valid loop variable", name)
		}
	}

	list, err := Parse(m[4])
	if err != nil {
		if perr, ok := err.(*errors.Error); ok {
			return nil, perr.WithSource(source).WithOffset(strings.Index(source, m[4]) + max(perr.Offset, 0))
		}
		return nil, err
	}
	return &ForClause{ItemName: item, IndexName: index, List: list, Source: source}, nil
}

// ResolveFor parses source and evaluates its list against ctx. A list
// value that is not an array resolves to no items.
func (e *Engine) ResolveFor(source string, ctx Context) (*ForResult, error) {
	clause, err := ParseFor(source)
	if err != nil {
		return nil, err
	}
	return e.Resolve(clause, ctx), nil
}

// Resolve evaluates the clause's list against ctx.
func (e *Engine) Resolve(clause *ForClause, ctx Context) *ForResult {
	items, ok := ToSlice(e.Evaluate(clause.List, ctx))
	if !ok {
		items = []any{}
	}
	return &ForResult{Items: items, ItemName: clause.ItemName, IndexName: clause.IndexName}
}
