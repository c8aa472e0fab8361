package expr

import (
	"fmt"
	"strconv"

	"github.com/vango-dev/vschema/internal/errors"
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	TERNARY     // a ? b : c
	NULLISH_OP  // ??
	LOGIC_OR    // ||
	LOGIC_AND   // &&
	EQUALS      // == === != !==
	LESSGREATER // < > <= >=
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -X or !X
	CALL        // fn(X), obj.prop, obj[key]
)

// precedences maps tokens to their precedence
var precedences = map[TokenType]int{
	QUESTION:      TERNARY,
	NULLISH:       NULLISH_OP,
	OR:            LOGIC_OR,
	AND:           LOGIC_AND,
	EQ:            EQUALS,
	STRICT_EQ:     EQUALS,
	NOT_EQ:        EQUALS,
	STRICT_NOT_EQ: EQUALS,
	LT:            LESSGREATER,
	GT:            LESSGREATER,
	LTE:           LESSGREATER,
	GTE:           LESSGREATER,
	PLUS:          SUM,
	MINUS:         SUM,
	ASTERISK:      PRODUCT,
	SLASH:         PRODUCT,
	PERCENT:       PRODUCT,
	LPAREN:        CALL,
	LBRACKET:      CALL,
	DOT:           CALL,
}

type (
	prefixParseFn func() Node
	infixParseFn  func(Node) Node
)

// Parser is a Pratt parser for the expression grammar.
type Parser struct {
	l      *Lexer
	source string
	err    *errors.Error

	curToken  Token
	peekToken Token

	prefixParseFns map[TokenType]prefixParseFn
	infixParseFns  map[TokenType]infixParseFn
}

// NewParser creates a parser over source.
func NewParser(source string) *Parser {
	p := &Parser{
		l:              NewLexer(source),
		source:         source,
		prefixParseFns: make(map[TokenType]prefixParseFn),
		infixParseFns:  make(map[TokenType]infixParseFn),
	}

	p.registerPrefix(IDENT, p.parseIdentifier)
	p.registerPrefix(NUMBER, p.parseNumberLiteral)
	p.registerPrefix(STRING, p.parseStringLiteral)
	p.registerPrefix(BANG, p.parsePrefixExpression)
	p.registerPrefix(MINUS, p.parsePrefixExpression)
	p.registerPrefix(PLUS, p.parsePrefixExpression)
	p.registerPrefix(LPAREN, p.parseGroupedExpression)
	p.registerPrefix(LBRACKET, p.parseArrayLiteral)

	for _, tt := range []TokenType{PLUS, MINUS, ASTERISK, SLASH, PERCENT,
		EQ, STRICT_EQ, NOT_EQ, STRICT_NOT_EQ, LT, GT, LTE, GTE} {
		p.registerInfix(tt, p.parseBinaryExpression)
	}
	p.registerInfix(AND, p.parseLogicalExpression)
	p.registerInfix(OR, p.parseLogicalExpression)
	p.registerInfix(NULLISH, p.parseLogicalExpression)
	p.registerInfix(QUESTION, p.parseConditionalExpression)
	p.registerInfix(LPAREN, p.parseCallExpression)
	p.registerInfix(DOT, p.parseDotMember)
	p.registerInfix(LBRACKET, p.parseIndexMember)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Parse parses source as a single expression.
// The returned error is an *errors.Error with code E101.
func Parse(source string) (Node, error) {
	p := NewParser(source)
	node := p.ParseExpression()
	if p.err != nil {
		return nil, p.err
	}
	return node, nil
}

// ParseExpression parses a complete expression and requires end of input.
func (p *Parser) ParseExpression() Node {
	if p.curTokenIs(EOF) {
		p.fail(p.curToken.Pos, "empty expression")
		return nil
	}
	node := p.parseExpression(LOWEST)
	if p.err == nil && !p.peekTokenIs(EOF) {
		p.fail(p.peekToken.Pos, fmt.Sprintf("unexpected %s", describe(p.peekToken)))
	}
	if p.err != nil {
		return nil
	}
	return node
}

// Err returns the first parse error, if any.
func (p *Parser) Err() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

func (p *Parser) registerPrefix(tokenType TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// expectPeek advances if the next token has type t and records an error otherwise.
func (p *Parser) expectPeek(t TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.fail(p.peekToken.Pos, fmt.Sprintf("expected %s, got %s", t, describe(p.peekToken)))
	return false
}

// fail records the first error only; later errors are usually cascades.
func (p *Parser) fail(pos int, detail string) {
	if p.err != nil {
		return
	}
	p.err = errors.New("E101").
		WithSource(p.source).
		WithOffset(pos).
		WithDetailf("%s at offset %d", detail, pos)
}

func describe(tok Token) string {
	switch tok.Type {
	case EOF:
		return "end of input"
	case ILLEGAL:
		return fmt.Sprintf("illegal character %q", tok.Literal)
	case IDENT, NUMBER:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	case STRING:
		return "string"
	default:
		return fmt.Sprintf("%q", tok.Literal)
	}
}

// parseExpression parses expressions using Pratt parsing
func (p *Parser) parseExpression(precedence int) Node {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.fail(p.curToken.Pos, fmt.Sprintf("unexpected %s", describe(p.curToken)))
		return nil
	}
	leftExp := prefix()

	for p.err == nil && !p.peekTokenIs(EOF) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) parseIdentifier() Node {
	tok := p.curToken
	switch tok.Literal {
	case "true":
		return &BooleanLiteral{Value: true, Offset: tok.Pos}
	case "false":
		return &BooleanLiteral{Value: false, Offset: tok.Pos}
	case "null":
		return &NullLiteral{Offset: tok.Pos}
	case "undefined":
		return &NullLiteral{Undefined: true, Offset: tok.Pos}
	}
	return &Identifier{Name: tok.Literal, Offset: tok.Pos}
}

func (p *Parser) parseNumberLiteral() Node {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.fail(p.curToken.Pos, fmt.Sprintf("invalid number %q", p.curToken.Literal))
		return nil
	}
	return &NumberLiteral{Value: value, Offset: p.curToken.Pos}
}

func (p *Parser) parseStringLiteral() Node {
	return &StringLiteral{Value: p.curToken.Literal, Offset: p.curToken.Pos}
}

func (p *Parser) parsePrefixExpression() Node {
	tok := p.curToken
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	if operand == nil {
		return nil
	}
	return &UnaryExpression{Operator: tok.Literal, Operand: operand, Offset: tok.Pos}
}

func (p *Parser) parseGroupedExpression() Node {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if !p.expectPeek(RPAREN) {
		return nil
	}
	return exp
}

func (p *Parser) parseArrayLiteral() Node {
	arr := &ArrayLiteral{Offset: p.curToken.Pos}
	arr.Elements = p.parseExpressionList(RBRACKET)
	return arr
}

// parseExpressionList parses comma-separated expressions up to end.
// A trailing comma is allowed.
func (p *Parser) parseExpressionList(end TokenType) []Node {
	list := []Node{}
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))
	for p.err == nil && p.peekTokenIs(COMMA) {
		p.nextToken()
		if p.peekTokenIs(end) {
			break
		}
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}

	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseBinaryExpression(left Node) Node {
	op := p.curToken.Literal
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return &BinaryExpression{Operator: op, Left: left, Right: right}
}

func (p *Parser) parseLogicalExpression(left Node) Node {
	op := p.curToken.Literal
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return &LogicalExpression{Operator: op, Left: left, Right: right}
}

// parseConditionalExpression is right-associative: a ? b : c ? d : e.
func (p *Parser) parseConditionalExpression(test Node) Node {
	p.nextToken()
	consequent := p.parseExpression(LOWEST)
	if !p.expectPeek(COLON) {
		return nil
	}
	p.nextToken()
	alternate := p.parseExpression(TERNARY - 1)
	return &ConditionalExpression{Test: test, Consequent: consequent, Alternate: alternate}
}

func (p *Parser) parseCallExpression(callee Node) Node {
	return &CallExpression{Callee: callee, Args: p.parseExpressionList(RPAREN)}
}

func (p *Parser) parseDotMember(object Node) Node {
	if !p.expectPeek(IDENT) {
		return nil
	}
	// Keywords are plain property names after a dot (obj.null).
	prop := &Identifier{Name: p.curToken.Literal, Offset: p.curToken.Pos}
	return &MemberExpression{Object: object, Property: prop}
}

func (p *Parser) parseIndexMember(object Node) Node {
	p.nextToken()
	index := p.parseExpression(LOWEST)
	if !p.expectPeek(RBRACKET) {
		return nil
	}
	return &MemberExpression{Object: object, Property: index, Computed: true}
}
