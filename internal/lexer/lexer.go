package lexer

import (
	"fmt"
	"strings"
)

// Lexer tokenizes Antimony source. Newlines are significant and are
// emitted as TokenNewline, with runs collapsed into one token.
type Lexer struct {
	input  string
	pos    int
	line   int
	column int
	tokens []Token
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		line:   1,
		column: 1,
		tokens: make([]Token, 0),
	}
}

// Tokenize converts the input string into tokens
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.pos < len(l.input) {
		ch := l.peek()

		if ch == '\n' {
			l.emitNewline()
			l.advance()
			continue
		}
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f' || ch == '\v' {
			l.advance()
			continue
		}
		if ch == '#' || (ch == '/' && l.peekAhead(1) == '/') {
			l.skipLineComment()
			continue
		}
		if ch == '/' && l.peekAhead(1) == '*' {
			if err := l.skipBlockComment(); err != nil {
				return nil, err
			}
			continue
		}

		token, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		l.tokens = append(l.tokens, token)
	}

	l.tokens = append(l.tokens, Token{
		Type:   TokenEOF,
		Pos:    l.pos,
		Line:   l.line,
		Column: l.column,
	})
	return l.tokens, nil
}

func (l *Lexer) emitNewline() {
	if n := len(l.tokens); n == 0 || l.tokens[n-1].Type == TokenNewline {
		return
	}
	l.tokens = append(l.tokens, l.makeToken(TokenNewline, "\n"))
}

func (l *Lexer) nextToken() (Token, error) {
	ch := l.peek()
	start := l.mark()

	switch ch {
	case '(':
		l.advance()
		return start.token(TokenLParen, "("), nil
	case ')':
		l.advance()
		return start.token(TokenRParen, ")"), nil
	case ',':
		l.advance()
		return start.token(TokenComma, ","), nil
	case ';':
		l.advance()
		return start.token(TokenSemicolon, ";"), nil
	case '$':
		l.advance()
		return start.token(TokenDollar, "$"), nil
	case '\'':
		l.advance()
		return start.token(TokenPrime, "'"), nil
	case '+':
		l.advance()
		return start.token(TokenPlus, "+"), nil
	case '*':
		l.advance()
		return start.token(TokenStar, "*"), nil
	case '/':
		l.advance()
		return start.token(TokenSlash, "/"), nil
	case '^':
		l.advance()
		return start.token(TokenCaret, "^"), nil
	case ':':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return start.token(TokenDefine, ":="), nil
		}
		return start.token(TokenColon, ":"), nil
	case '=':
		l.advance()
		switch l.peek() {
		case '=':
			l.advance()
			return start.token(TokenEq, "=="), nil
		case '>':
			l.advance()
			return start.token(TokenTransform, "=>"), nil
		}
		return start.token(TokenAssign, "="), nil
	case '!':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return start.token(TokenNotEq, "!="), nil
		}
		return start.token(TokenNot, "!"), nil
	case '<':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return start.token(TokenLessEq, "<="), nil
		}
		return start.token(TokenLess, "<"), nil
	case '>':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return start.token(TokenGreaterEq, ">="), nil
		}
		return start.token(TokenGreater, ">"), nil
	case '&':
		if l.peekAhead(1) == '&' {
			l.advance()
			l.advance()
			return start.token(TokenAnd, "&&"), nil
		}
	case '|':
		if l.peekAhead(1) == '|' {
			l.advance()
			l.advance()
			return start.token(TokenOr, "||"), nil
		}
	case '-':
		l.advance()
		switch l.peek() {
		case '>':
			l.advance()
			return start.token(TokenArrow, "->"), nil
		case '|':
			if l.peekAhead(1) != '|' {
				l.advance()
				return start.token(TokenInhibits, "-|"), nil
			}
		case '-':
			l.advance()
			return start.token(TokenDashDash, "--"), nil
		}
		return start.token(TokenMinus, "-"), nil
	case '"':
		return l.readString()
	}

	if isDigit(ch) || (ch == '.' && isDigit(l.peekAhead(1))) {
		return l.readNumber()
	}
	if isIdentStart(ch) {
		return l.readIdentifier()
	}

	return Token{}, fmt.Errorf("unexpected character '%c' at line %d, column %d", ch, l.line, l.column)
}

// readIdentifier reads a possibly dotted identifier such as A.B.x
func (l *Lexer) readIdentifier() (Token, error) {
	start := l.mark()
	for l.pos < len(l.input) {
		ch := l.peek()
		if isIdentPart(ch) {
			l.advance()
			continue
		}
		if ch == '.' && isIdentStart(l.peekAhead(1)) {
			l.advance()
			continue
		}
		break
	}
	return start.token(TokenIdent, l.input[start.pos:l.pos]), nil
}

// readNumber reads a numeric literal with optional fraction and exponent
func (l *Lexer) readNumber() (Token, error) {
	start := l.mark()
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if e := l.peek(); e == 'e' || e == 'E' {
		next := l.peekAhead(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAhead(2))) {
			l.advance()
			if next == '+' || next == '-' {
				l.advance()
			}
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}
	return start.token(TokenNumber, l.input[start.pos:l.pos]), nil
}

// readString reads a double quoted string literal
func (l *Lexer) readString() (Token, error) {
	start := l.mark()
	l.advance()

	var b strings.Builder
	for l.pos < len(l.input) && l.peek() != '"' {
		if l.peek() == '\\' {
			l.advance()
			if l.pos >= len(l.input) {
				return Token{}, fmt.Errorf("unterminated string at line %d", start.line)
			}
			switch c := l.advance(); c {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(c)
			}
			continue
		}
		b.WriteByte(l.advance())
	}
	if l.pos >= len(l.input) {
		return Token{}, fmt.Errorf("unterminated string at line %d", start.line)
	}
	l.advance()

	tok := start.token(TokenString, b.String())
	return tok, nil
}

type mark struct {
	pos, line, column int
}

func (l *Lexer) mark() mark {
	return mark{pos: l.pos, line: l.line, column: l.column}
}

func (m mark) token(tt TokenType, value string) Token {
	return Token{Type: tt, Value: value, Pos: m.pos, Line: m.line, Column: m.column}
}

func (l *Lexer) makeToken(tt TokenType, value string) Token {
	return Token{Type: tt, Value: value, Pos: l.pos, Line: l.line, Column: l.column}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekAhead(n int) byte {
	pos := l.pos + n
	if pos >= len(l.input) {
		return 0
	}
	return l.input[pos]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	l.column++
	if ch == '\n' {
		l.line++
		l.column = 1
	}
	return ch
}

func (l *Lexer) skipLineComment() {
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		l.advance()
	}
}

func (l *Lexer) skipBlockComment() error {
	line := l.line
	l.advance()
	l.advance()
	for l.pos < len(l.input) {
		if l.peek() == '*' && l.peekAhead(1) == '/' {
			l.advance()
			l.advance()
			return nil
		}
		l.advance()
	}
	return fmt.Errorf("unterminated comment starting at line %d", line)
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }

// Tokenize is a convenience wrapper around NewLexer(input).Tokenize().
func Tokenize(input string) ([]Token, error) {
	return NewLexer(input).Tokenize()
}
