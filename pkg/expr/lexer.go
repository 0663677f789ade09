package expr

import (
	"fmt"
	"unicode"
)

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenIdentifier

	TokenPlus       // +
	TokenMinus      // -
	TokenStar       // *
	TokenSlash      // /
	TokenPercent    // %
	TokenPower      // **
	TokenLeftParen  // (
	TokenRightParen // )
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "end of input"
	case TokenNumber:
		return "number"
	case TokenIdentifier:
		return "identifier"
	case TokenPlus:
		return "'+'"
	case TokenMinus:
		return "'-'"
	case TokenStar:
		return "'*'"
	case TokenSlash:
		return "'/'"
	case TokenPercent:
		return "'%'"
	case TokenPower:
		return "'**'"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	default:
		return fmt.Sprintf("token(%d)", int(t))
	}
}

// Lexer tokenizes an equation
type Lexer struct {
	input  []rune
	pos    int
	tokens []Token
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	return &Lexer{input: []rune(input)}
}

// Tokenize converts the input into tokens, ending with TokenEOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			l.tokens = append(l.tokens, Token{Type: TokenEOF, Pos: l.pos})
			return l.tokens, nil
		}

		start := l.pos
		ch := l.input[l.pos]

		switch {
		case isDigit(ch) || (ch == '.' && isDigit(l.peekRune(1))):
			value, err := l.readNumber()
			if err != nil {
				return nil, err
			}
			l.emit(TokenNumber, value, start)
		case isIdentStart(ch):
			l.emit(TokenIdentifier, l.readIdentifier(), start)
		case ch == '*' && l.peekRune(1) == '*':
			l.pos += 2
			l.emit(TokenPower, "**", start)
		default:
			tt, ok := singleCharTokens[ch]
			if !ok {
				return nil, &SyntaxError{Pos: start, Msg: fmt.Sprintf("unexpected character %q", ch)}
			}
			l.pos++
			l.emit(tt, string(ch), start)
		}
	}
}

var singleCharTokens = map[rune]TokenType{
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenStar,
	'/': TokenSlash,
	'%': TokenPercent,
	'(': TokenLeftParen,
	')': TokenRightParen,
}

func (l *Lexer) emit(tt TokenType, value string, pos int) {
	l.tokens = append(l.tokens, Token{Type: tt, Value: value, Pos: pos})
}

func (l *Lexer) peekRune(offset int) rune {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
}

// readNumber reads 12, 1.5, .5, 3e-6 and 2.5E+3.
func (l *Lexer) readNumber() (string, error) {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if l.pos >= len(l.input) || !isDigit(l.input[l.pos]) {
			return "", &SyntaxError{Pos: l.pos, Msg: "malformed exponent"}
		}
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.input) && isIdentStart(l.input[l.pos]) {
		return "", &SyntaxError{Pos: l.pos, Msg: "identifier immediately after number"}
	}
	return string(l.input[start:l.pos]), nil
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for l.pos < len(l.input) && (isIdentStart(l.input[l.pos]) || isDigit(l.input[l.pos])) {
		l.pos++
	}
	return string(l.input[start:l.pos])
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
