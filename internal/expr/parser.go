package expr

import (
	"fmt"
	"strconv"

	"antimony/internal/lexer"
)

// Parser reads one expression from a token slice. It stops at the first
// token that cannot continue the expression and leaves it unconsumed.
type Parser struct {
	tokens []lexer.Token
	pos    int
	depth  int
}

// NewParser starts parsing at tokens[pos].
func NewParser(tokens []lexer.Token, pos int) *Parser {
	return &Parser{tokens: tokens, pos: pos}
}

// Pos is the index of the first unconsumed token.
func (p *Parser) Pos() int { return p.pos }

// Parse parses a complete expression string.
func Parse(src string) (Node, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := NewParser(toks, 0)
	n, err := p.Parse()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	if tok := p.peek(); tok.Type != lexer.TokenEOF {
		return nil, fmt.Errorf("unexpected %s in expression at line %d, column %d", tok, tok.Line, tok.Column)
	}
	return n, nil
}

// ParseTokens parses one expression starting at pos and returns it with the
// position of the next unconsumed token.
func ParseTokens(tokens []lexer.Token, pos int) (Node, int, error) {
	p := NewParser(tokens, pos)
	n, err := p.Parse()
	return n, p.pos, err
}

func (p *Parser) Parse() (Node, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == lexer.TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "||", L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == lexer.TokenAnd {
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "&&", L: left, R: right}
	}
	return left, nil
}

var comparisons = map[lexer.TokenType]string{
	lexer.TokenEq:        "==",
	lexer.TokenNotEq:     "!=",
	lexer.TokenLess:      "<",
	lexer.TokenGreater:   ">",
	lexer.TokenLessEq:    "<=",
	lexer.TokenGreaterEq: ">=",
}

func (p *Parser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := comparisons[p.peek().Type]
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, L: left, R: right}
	}
}

func (p *Parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case lexer.TokenPlus, lexer.TokenMinus:
			op := p.advance().Value
			right, err := p.parseMultiplicative()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: op, L: left, R: right}
		case lexer.TokenDashDash:
			// a--b is a minus a negated b
			p.advance()
			right, err := p.parseMultiplicative()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: "-", L: left, R: &Unary{Op: "-", X: right}}
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case lexer.TokenStar, lexer.TokenSlash:
			op := p.advance().Value
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: op, L: left, R: right}
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseUnary() (Node, error) {
	switch p.peek().Type {
	case lexer.TokenMinus, lexer.TokenPlus, lexer.TokenNot:
		op := p.advance().Value
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == "+" {
			return x, nil
		}
		return &Unary{Op: op, X: x}, nil
	case lexer.TokenDashDash:
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: "-", X: &Unary{Op: "-", X: x}}, nil
	}
	return p.parsePower()
}

func (p *Parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().Type == lexer.TokenCaret {
		p.advance()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Binary{Op: "^", L: base, R: exp}, nil
	}
	return base, nil
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenNumber:
		p.advance()
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at line %d", tok.Value, tok.Line)
		}
		return &Number{Value: v, Text: tok.Value}, nil
	case lexer.TokenIdent:
		p.advance()
		if p.peek().Type == lexer.TokenLParen {
			return p.parseCall(tok.Value)
		}
		return &Name{Name: tok.Value}, nil
	case lexer.TokenLParen:
		p.advance()
		p.depth++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.TokenRParen); err != nil {
			return nil, err
		}
		p.depth--
		return inner, nil
	}
	return nil, fmt.Errorf("expected expression but found %s at line %d, column %d", tok, tok.Line, tok.Column)
}

func (p *Parser) parseCall(fn string) (Node, error) {
	p.advance()
	p.depth++
	call := &Call{Func: fn}
	if p.peek().Type != lexer.TokenRParen {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if p.peek().Type != lexer.TokenComma {
				break
			}
			p.advance()
		}
	}
	if err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	p.depth--
	return call, nil
}

func (p *Parser) expect(tt lexer.TokenType) error {
	tok := p.peek()
	if tok.Type != tt {
		return fmt.Errorf("expected %s but found %s at line %d, column %d", tt, tok, tok.Line, tok.Column)
	}
	p.advance()
	return nil
}

// peek skips newlines while inside parentheses.
func (p *Parser) peek() lexer.Token {
	if p.depth > 0 {
		p.skipNewlines()
	}
	if p.pos >= len(p.tokens) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) skipNewlines() {
	for p.pos < len(p.tokens) && p.tokens[p.pos].Type == lexer.TokenNewline {
		p.pos++
	}
}
