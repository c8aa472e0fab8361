package expr

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer turns expression source into tokens.
type Lexer struct {
	input string
	pos   int // offset of the next unread byte
}

// NewLexer creates a Lexer for input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NextToken scans and returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	if l.pos >= len(l.input) {
		return Token{Type: EOF, Pos: l.pos}
	}

	start := l.pos
	r, width := utf8.DecodeRuneInString(l.input[l.pos:])

	switch {
	case isIdentStart(r):
		return l.readIdentifier()
	case isDigit(r) || (r == '.' && isDigit(l.peekRune(width))):
		return l.readNumber()
	case r == '\'' || r == '"':
		return l.readString(r)
	}

	// Operators, longest match first.
	for _, op := range operatorTable {
		if strings.HasPrefix(l.input[l.pos:], op.text) {
			l.pos += len(op.text)
			return Token{Type: op.typ, Literal: op.text, Pos: start}
		}
	}

	l.pos += width
	return Token{Type: ILLEGAL, Literal: string(r), Pos: start}
}

// operatorTable is ordered so that longer operators match before their prefixes.
var operatorTable = []struct {
	text string
	typ  TokenType
}{
	{"===", STRICT_EQ},
	{"!==", STRICT_NOT_EQ},
	{"==", EQ},
	{"!=", NOT_EQ},
	{"<=", LTE},
	{">=", GTE},
	{"&&", AND},
	{"||", OR},
	{"??", NULLISH},
	{"+", PLUS},
	{"-", MINUS},
	{"*", ASTERISK},
	{"/", SLASH},
	{"%", PERCENT},
	{"!", BANG},
	{"<", LT},
	{">", GT},
	{"?", QUESTION},
	{":", COLON},
	{".", DOT},
	{",", COMMA},
	{"(", LPAREN},
	{")", RPAREN},
	{"[", LBRACKET},
	{"]", RBRACKET},
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, width := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += width
	}
}

func (l *Lexer) peekRune(offset int) rune {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos+offset:])
	return r
}

func (l *Lexer) readIdentifier() Token {
	start := l.pos
	for l.pos < len(l.input) {
		r, width := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.pos += width
	}
	return Token{Type: IDENT, Literal: l.input[start:l.pos], Pos: start}
}

func (l *Lexer) readNumber() Token {
	start := l.pos
	seenDot, seenExp := false, false
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c >= '0' && c <= '9':
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && !seenExp:
			seenExp = true
			if l.pos+1 < len(l.input) && (l.input[l.pos+1] == '+' || l.input[l.pos+1] == '-') {
				l.pos++
			}
		default:
			return Token{Type: NUMBER, Literal: l.input[start:l.pos], Pos: start}
		}
		l.pos++
	}
	return Token{Type: NUMBER, Literal: l.input[start:l.pos], Pos: start}
}

// readString reads a quoted string and returns its unescaped value.
// An unterminated string yields an ILLEGAL token.
func (l *Lexer) readString(quote rune) Token {
	start := l.pos
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.input) {
		r, width := utf8.DecodeRuneInString(l.input[l.pos:])
		l.pos += width
		switch r {
		case quote:
			return Token{Type: STRING, Literal: b.String(), Pos: start}
		case '\\':
			if l.pos >= len(l.input) {
				return Token{Type: ILLEGAL, Literal: l.input[start:], Pos: start}
			}
			esc, ew := utf8.DecodeRuneInString(l.input[l.pos:])
			l.pos += ew
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'u':
				if l.pos+4 <= len(l.input) {
					if code, err := strconv.ParseUint(l.input[l.pos:l.pos+4], 16, 32); err == nil {
						b.WriteRune(rune(code))
						l.pos += 4
						continue
					}
				}
				b.WriteRune(esc)
			default:
				b.WriteRune(esc)
			}
		default:
			b.WriteRune(r)
		}
	}
	return Token{Type: ILLEGAL, Literal: l.input[start:], Pos: start}
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || r == '@' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// IsIdentifier reports whether s is a single valid identifier.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !isIdentStart(r) {
			return false
		}
		if !isIdentPart(r) {
			return false
		}
	}
	return !isKeyword(s)
}

// keywords are identifiers the parser turns into literals.
var keywords = map[string]bool{
	"true":      true,
	"false":     true,
	"null":      true,
	"undefined": true,
}

func isKeyword(s string) bool {
	return keywords[s]
}
