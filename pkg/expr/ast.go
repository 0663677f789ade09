package expr

import (
	"math"
	"strconv"
)

// Node is an arithmetic expression tree node.
type Node interface {
	Eval(vars Vars) (float64, error)
	String() string
}

// Number is a numeric literal
type Number struct {
	Value float64
}

func (n *Number) Eval(Vars) (float64, error) {
	return n.Value, nil
}

func (n *Number) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// Variable is a reference to a named input
type Variable struct {
	Name string
	Pos  int
}

func (v *Variable) Eval(vars Vars) (float64, error) {
	val, ok := vars[v.Name]
	if !ok {
		return 0, &EvalError{Pos: v.Pos, Err: ErrUnknownVariable, Detail: v.Name}
	}
	return val, nil
}

func (v *Variable) String() string {
	return v.Name
}

// Unary is a signed operand: -x or +x
type Unary struct {
	Operator string
	Operand  Node
}

func (u *Unary) Eval(vars Vars) (float64, error) {
	val, err := u.Operand.Eval(vars)
	if err != nil {
		return 0, err
	}
	if u.Operator == "-" {
		return -val, nil
	}
	return val, nil
}

func (u *Unary) String() string {
	return "(" + u.Operator + u.Operand.String() + ")"
}

// Binary is an arithmetic operation: +, -, *, /, %, **
type Binary struct {
	Left     Node
	Operator string
	Right    Node
	Pos      int
}

func (b *Binary) Eval(vars Vars) (float64, error) {
	left, err := b.Left.Eval(vars)
	if err != nil {
		return 0, err
	}
	right, err := b.Right.Eval(vars)
	if err != nil {
		return 0, err
	}

	var result float64
	switch b.Operator {
	case "+":
		result = left + right
	case "-":
		result = left - right
	case "*":
		result = left * right
	case "/":
		if right == 0 {
			return 0, &EvalError{Pos: b.Pos, Err: ErrDivisionByZero}
		}
		result = left / right
	case "%":
		if right == 0 {
			return 0, &EvalError{Pos: b.Pos, Err: ErrDivisionByZero}
		}
		result = floorMod(left, right)
	case "**":
		if left == 0 && right < 0 {
			return 0, &EvalError{Pos: b.Pos, Err: ErrDivisionByZero}
		}
		result = math.Pow(left, right)
	}

	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, &EvalError{Pos: b.Pos, Err: ErrNonFinite, Detail: b.Operator}
	}
	return result, nil
}

func (b *Binary) String() string {
	return "(" + b.Left.String() + " " + b.Operator + " " + b.Right.String() + ")"
}

// floorMod takes the sign of the divisor, so -7 % 3 is 2.
func floorMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}
