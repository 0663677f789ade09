// Package expr evaluates user-supplied similar-item equations.
//
// The grammar is closed: numeric literals, variable names, the arithmetic
// operators + - * / % ** with unary signs, and parentheses. There are no
// function calls, attribute lookups, assignments or strings, so an equation
// can only ever read the variables it is given.
package expr

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MaxExpressionLength caps the source length in bytes.
	MaxExpressionLength = 1024
	// MaxDepth caps nesting of parentheses and unary signs.
	MaxDepth = 64
)

var (
	ErrUnknownVariable = errors.New("unknown variable")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrNonFinite       = errors.New("result is not finite")
	ErrTooLong         = errors.New("expression too long")
)

// SyntaxError reports malformed input at a character offset.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Msg)
}

// EvalError reports a failure while evaluating a compiled program.
type EvalError struct {
	Pos    int
	Err    error
	Detail string
}

func (e *EvalError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v at position %d: %s", e.Err, e.Pos, e.Detail)
	}
	return fmt.Sprintf("%v at position %d", e.Err, e.Pos)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// Vars is the closed set of names an equation may read.
type Vars map[string]float64

// Program is a compiled equation.
type Program struct {
	source string
	root   Node
}

// Compile tokenizes and parses src.
func Compile(src string) (*Program, error) {
	if len(src) > MaxExpressionLength {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLong, len(src), MaxExpressionLength)
	}
	tokens, err := NewLexer(src).Tokenize()
	if err != nil {
		return nil, err
	}
	root, err := NewParser(tokens).Parse()
	if err != nil {
		return nil, err
	}
	return &Program{source: src, root: root}, nil
}

// Eval evaluates the program against vars.
func (p *Program) Eval(vars Vars) (float64, error) {
	v, err := p.root.Eval(vars)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNonFinite
	}
	return v, nil
}

// Source returns the text the program was compiled from.
func (p *Program) Source() string {
	return p.source
}

// String returns the fully parenthesized form of the program.
func (p *Program) String() string {
	return p.root.String()
}

// Evaluate compiles and evaluates src in one step.
func Evaluate(src string, vars Vars) (float64, error) {
	prog, err := Compile(src)
	if err != nil {
		return 0, err
	}
	return prog.Eval(vars)
}
