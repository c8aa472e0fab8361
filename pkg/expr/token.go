package expr

// TokenType represents different types of tokens.
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Identifiers and literals
	IDENT  // count, $route, @index
	NUMBER // 42, 3.14, 1e3
	STRING // 'text', "text"

	// Operators
	PLUS          // +
	MINUS         // -
	ASTERISK      // *
	SLASH         // /
	PERCENT       // %
	BANG          // !
	EQ            // ==
	STRICT_EQ     // ===
	NOT_EQ        // !=
	STRICT_NOT_EQ // !==
	LT            // <
	GT            // >
	LTE           // <=
	GTE           // >=
	AND           // &&
	OR            // ||
	NULLISH       // ??
	QUESTION      // ?
	COLON         // :

	// Delimiters
	DOT      // .
	COMMA    // ,
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
)

var tokenNames = map[TokenType]string{
	ILLEGAL:       "ILLEGAL",
	EOF:           "end of input",
	IDENT:         "identifier",
	NUMBER:        "number",
	STRING:        "string",
	PLUS:          "+",
	MINUS:         "-",
	ASTERISK:      "*",
	SLASH:         "/",
	PERCENT:       "%",
	BANG:          "!",
	EQ:            "==",
	STRICT_EQ:     "===",
	NOT_EQ:        "!=",
	STRICT_NOT_EQ: "!==",
	LT:            "<",
	GT:            ">",
	LTE:           "<=",
	GTE:           ">=",
	AND:           "&&",
	OR:            "||",
	NULLISH:       "??",
	QUESTION:      "?",
	COLON:         ":",
	DOT:           ".",
	COMMA:         ",",
	LPAREN:        "(",
	RPAREN:        ")",
	LBRACKET:      "[",
	RBRACKET:      "]",
}

// String returns a readable name for the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token is a lexical token with its byte offset in the source.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}
