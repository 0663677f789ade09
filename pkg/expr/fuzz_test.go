package expr

import (
	"errors"
	"math"
	"testing"
)

// FuzzEvaluate checks the evaluator never panics and only ever fails with
// one of its own error types.
func FuzzEvaluate(f *testing.F) {
	for _, seed := range []string{
		"pi1*pi2*hr", "(hr + 1) ** -2", "-x % 3", "1e-6 / 0", "((((x))))",
		"__import__('os')", "x.y", "", "2 ** 3 ** 2", "hr*",
	} {
		f.Add(seed)
	}

	vars := Vars{"hr": 0.000617, "pi1": 0.85, "pi2": 1.2, "x": -3}

	f.Fuzz(func(t *testing.T, src string) {
		v, err := Evaluate(src, vars)
		if err == nil {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("Evaluate(%q) returned non-finite %v without error", src, v)
			}
			return
		}

		var se *SyntaxError
		var ee *EvalError
		switch {
		case errors.As(err, &se), errors.As(err, &ee):
		case errors.Is(err, ErrTooLong), errors.Is(err, ErrNonFinite):
		default:
			t.Fatalf("Evaluate(%q) unexpected error type %T: %v", src, err, err)
		}
	})
}
