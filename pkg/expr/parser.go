package expr

import (
	"fmt"
	"strconv"
)

// Parser builds an AST from tokens using recursive descent:
//
//	expression := term (("+" | "-") term)*
//	term       := unary (("*" | "/" | "%") unary)*
//	unary      := ("+" | "-") unary | power
//	power      := primary ("**" unary)?
//	primary    := number | identifier | "(" expression ")"
//
// "**" binds tighter than a unary sign on its left and is right
// associative, so -2**2 is -4 and 2**-1 is 0.5.
type Parser struct {
	tokens []Token
	pos    int
	depth  int
}

// NewParser creates a new parser
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses the whole token stream into a single expression.
func (p *Parser) Parse() (Node, error) {
	node, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("unexpected %s", tok.Type)}
	}
	return node, nil
}

func (p *Parser) enter() error {
	p.depth++
	if p.depth > MaxDepth {
		return &SyntaxError{Pos: p.peek().Pos, Msg: fmt.Sprintf("expression nested deeper than %d", MaxDepth)}
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) parseExpression() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == TokenPlus || p.peek().Type == TokenMinus {
		op := p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &Binary{Left: left, Operator: op.Value, Right: right, Pos: op.Pos}
	}
	return left, nil
}

func (p *Parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for t := p.peek().Type; t == TokenStar || t == TokenSlash || t == TokenPercent; t = p.peek().Type {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Left: left, Operator: op.Value, Right: right, Pos: op.Pos}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if t := p.peek().Type; t == TokenMinus || t == TokenPlus {
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Operator: op.Value, Operand: operand}, nil
	}
	return p.parsePower()
}

func (p *Parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != TokenPower {
		return base, nil
	}
	op := p.advance()
	exponent, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &Binary{Left: base, Operator: "**", Right: exponent, Pos: op.Pos}, nil
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.peek()

	switch tok.Type {
	case TokenNumber:
		p.advance()
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("invalid number %q", tok.Value)}
		}
		return &Number{Value: v}, nil

	case TokenIdentifier:
		p.advance()
		if p.peek().Type == TokenLeftParen {
			return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("function calls are not allowed: %s", tok.Value)}
		}
		return &Variable{Name: tok.Value, Pos: tok.Pos}, nil

	case TokenLeftParen:
		p.advance()
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		node, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		return node, nil

	default:
		return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("unexpected %s", tok.Type)}
	}
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("expected %s, got %s", tt, tok.Type)}
	}
	return p.advance(), nil
}
