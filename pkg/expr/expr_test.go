package expr

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestEvaluate(t *testing.T) {
	vars := Vars{"hr": 0.000617, "pi1": 0.85, "pi2": 1.2, "x": 3, "y": -2}

	tests := []struct {
		name     string
		src      string
		expected float64
	}{
		{"literal", "42", 42},
		{"decimal", "1.5", 1.5},
		{"leading dot", ".25", 0.25},
		{"scientific", "3.335e-6", 3.335e-6},
		{"scientific upper", "2E+3", 2000},
		{"variable", "hr", 0.000617},
		{"user defined product", "pi1*pi2*hr", 0.00062934},
		{"precedence", "1 + 2 * 3", 7},
		{"parentheses", "(1 + 2) * 3", 9},
		{"left associative minus", "10 - 4 - 3", 3},
		{"left associative divide", "100 / 10 / 5", 2},
		{"unary minus", "-x", -3},
		{"unary plus", "+x", 3},
		{"double negation", "--x", 3},
		{"power", "2 ** 10", 1024},
		{"power right associative", "2 ** 3 ** 2", 512},
		{"power binds tighter than sign", "-2 ** 2", -4},
		{"negative exponent", "2 ** -1", 0.5},
		{"modulo", "7.5 % 2", 1.5},
		{"modulo takes divisor sign", "-7 % 3", 2},
		{"modulo negative divisor", "7 % -3", -2},
		{"negative variable", "x * y", -6},
		{"whitespace", "  hr\t*\n2 ", 0.001234},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.src, vars)
			if err != nil {
				t.Fatalf("Evaluate(%q) error: %v", tt.src, err)
			}
			if math.Abs(got-tt.expected) > 1e-12*math.Max(1, math.Abs(tt.expected)) {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.src, got, tt.expected)
			}
		})
	}
}

func TestEvaluate_EvalErrors(t *testing.T) {
	vars := Vars{"zero": 0, "big": 1e300}

	tests := []struct {
		name string
		src  string
		want error
	}{
		{"unknown variable", "pi11 * 2", ErrUnknownVariable},
		{"divide by zero", "1 / zero", ErrDivisionByZero},
		{"modulo by zero", "5 % 0", ErrDivisionByZero},
		{"zero to negative power", "zero ** -1", ErrDivisionByZero},
		{"overflow", "big * big", ErrNonFinite},
		{"fractional power of negative", "(-8) ** 0.5", ErrNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.src, vars)
			if !errors.Is(err, tt.want) {
				t.Errorf("Evaluate(%q) error = %v, want %v", tt.src, err, tt.want)
			}
		})
	}
}

func TestCompile_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		pos  int
	}{
		{"empty", "", 0},
		{"dangling operator", "1 +", 3},
		{"unclosed paren", "(1 + 2", 6},
		{"extra paren", "1 + 2)", 5},
		{"function call", "exp(1)", 0},
		{"attribute access", "hr.real", 2},
		{"string literal", "'abc'", 0},
		{"assignment", "x = 1", 2},
		{"bad exponent", "1e+", 3},
		{"number then name", "2x", 1},
		{"adjacent operands", "1 2", 2},
		{"dunder import", "__import__('os')", 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src)
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Compile(%q) error = %v, want *SyntaxError", tt.src, err)
			}
			if se.Pos != tt.pos {
				t.Errorf("Compile(%q) error position = %d, want %d", tt.src, se.Pos, tt.pos)
			}
		})
	}
}

func TestCompile_Limits(t *testing.T) {
	long := strings.Repeat("1+", MaxExpressionLength) + "1"
	if _, err := Compile(long); !errors.Is(err, ErrTooLong) {
		t.Errorf("expected ErrTooLong, got %v", err)
	}

	deep := strings.Repeat("(", MaxDepth+1) + "1" + strings.Repeat(")", MaxDepth+1)
	var se *SyntaxError
	if _, err := Compile(deep); !errors.As(err, &se) {
		t.Errorf("expected *SyntaxError for deep nesting, got %v", err)
	}

	signs := strings.Repeat("-", MaxDepth+1) + "1"
	if _, err := Compile(signs); !errors.As(err, &se) {
		t.Errorf("expected *SyntaxError for stacked signs, got %v", err)
	}

	ok := strings.Repeat("(", MaxDepth/4) + "1" + strings.Repeat(")", MaxDepth/4)
	if _, err := Compile(ok); err != nil {
		t.Errorf("moderate nesting rejected: %v", err)
	}
}

func TestProgram_Reuse(t *testing.T) {
	prog, err := Compile("res1 + hr")
	if err != nil {
		t.Fatal(err)
	}
	if prog.Source() != "res1 + hr" {
		t.Errorf("Source() = %q", prog.Source())
	}
	if prog.String() != "(res1 + hr)" {
		t.Errorf("String() = %q", prog.String())
	}

	for _, res1 := range []float64{0, 1, 2.5} {
		got, err := prog.Eval(Vars{"res1": res1, "hr": 1})
		if err != nil {
			t.Fatal(err)
		}
		if got != res1+1 {
			t.Errorf("Eval with res1=%v = %v", res1, got)
		}
	}
}

func TestProgram_NonFiniteVariable(t *testing.T) {
	_, err := Evaluate("x", Vars{"x": math.Inf(1)})
	if !errors.Is(err, ErrNonFinite) {
		t.Errorf("expected ErrNonFinite, got %v", err)
	}
}
