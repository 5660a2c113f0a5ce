package lexer

import "fmt"

// Token represents a lexical token
type Token struct {
	Type   TokenType
	Value  string
	Pos    int
	Line   int
	Column int
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "end of input"
	}
	if t.Type == TokenNewline {
		return "end of line"
	}
	return fmt.Sprintf("%q", t.Value)
}

// End returns the offset just past the token text.
func (t Token) End() int {
	return t.Pos + len(t.Value)
}

// Adjacent reports whether b starts exactly where a ends.
func Adjacent(a, b Token) bool {
	return a.End() == b.Pos
}

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenNewline

	// Identifiers and literals
	TokenIdent
	TokenNumber
	TokenString

	// Arithmetic
	TokenPlus  // +
	TokenMinus // -
	TokenStar  // *
	TokenSlash // /
	TokenCaret // ^

	// Comparison and logic
	TokenEq        // ==
	TokenNotEq     // !=
	TokenLess      // <
	TokenGreater   // >
	TokenLessEq    // <=
	TokenGreaterEq // >=
	TokenAnd       // &&
	TokenOr        // ||
	TokenNot       // !

	// Delimiters
	TokenLParen    // (
	TokenRParen    // )
	TokenComma     // ,
	TokenSemicolon // ;
	TokenColon     // :
	TokenDollar    // $
	TokenPrime     // '

	// Assignment
	TokenAssign // =
	TokenDefine // :=

	// Arrows
	TokenArrow     // ->
	TokenTransform // =>
	TokenInhibits  // -|
	TokenDashDash  // --
)

var tokenNames = map[TokenType]string{
	TokenEOF:       "EOF",
	TokenNewline:   "newline",
	TokenIdent:     "identifier",
	TokenNumber:    "number",
	TokenString:    "string",
	TokenPlus:      "+",
	TokenMinus:     "-",
	TokenStar:      "*",
	TokenSlash:     "/",
	TokenCaret:     "^",
	TokenEq:        "==",
	TokenNotEq:     "!=",
	TokenLess:      "<",
	TokenGreater:   ">",
	TokenLessEq:    "<=",
	TokenGreaterEq: ">=",
	TokenAnd:       "&&",
	TokenOr:        "||",
	TokenNot:       "!",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenComma:     ",",
	TokenSemicolon: ";",
	TokenColon:     ":",
	TokenDollar:    "$",
	TokenPrime:     "'",
	TokenAssign:    "=",
	TokenDefine:    ":=",
	TokenArrow:     "->",
	TokenTransform: "=>",
	TokenInhibits:  "-|",
	TokenDashDash:  "--",
}

func (t TokenType) String() string {
	if n, ok := tokenNames[t]; ok {
		return n
	}
	return "unknown"
}
