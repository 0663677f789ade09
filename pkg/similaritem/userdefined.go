package similaritem

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dd0wney/ramstk-analysis/pkg/expr"
)

const (
	NumChangeFactors = 10
	NumUserValues    = 5
	NumFunctions     = 5
)

// Inputs is the working set for a user-defined similar-item analysis.
// Equations may read hr, pi1..pi10, uf1..uf5, ui1..ui5 and res1..res5.
type Inputs struct {
	HazardRate    float64
	ChangeFactors [NumChangeFactors]float64
	UserFloats    [NumUserValues]float64
	UserInts      [NumUserValues]int
	Functions     [NumFunctions]string
	Results       [NumFunctions]float64
}

// SlotError is an equation that failed to compile or evaluate. The slot's
// result has been set to 0.
type SlotError struct {
	Slot     int // 1-based
	Function string
	Err      error
}

func (e SlotError) Error() string {
	return fmt.Sprintf("function %d (%q): %v", e.Slot, e.Function, e.Err)
}

func (e SlotError) Unwrap() error {
	return e.Err
}

func tooMany(family string, got, max int) error {
	return fmt.Errorf("%w: %d %s supplied, at most %d", ErrTooManyValues, got, family, max)
}

// SetChangeFactors assigns pi1..piN in order and zeroes the rest.
func (in *Inputs) SetChangeFactors(values ...float64) error {
	if len(values) > NumChangeFactors {
		return tooMany("change factors", len(values), NumChangeFactors)
	}
	in.ChangeFactors = [NumChangeFactors]float64{}
	copy(in.ChangeFactors[:], values)
	return nil
}

// SetUserFloats assigns uf1..ufN in order and zeroes the rest.
func (in *Inputs) SetUserFloats(values ...float64) error {
	if len(values) > NumUserValues {
		return tooMany("user floats", len(values), NumUserValues)
	}
	in.UserFloats = [NumUserValues]float64{}
	copy(in.UserFloats[:], values)
	return nil
}

// SetUserInts assigns ui1..uiN in order and zeroes the rest.
func (in *Inputs) SetUserInts(values ...int) error {
	if len(values) > NumUserValues {
		return tooMany("user integers", len(values), NumUserValues)
	}
	in.UserInts = [NumUserValues]int{}
	copy(in.UserInts[:], values)
	return nil
}

// SetFunctions assigns the equations in order and blanks the rest. Every
// blank equation has its result set to 0.
func (in *Inputs) SetFunctions(functions ...string) error {
	if len(functions) > NumFunctions {
		return tooMany("functions", len(functions), NumFunctions)
	}
	in.Functions = [NumFunctions]string{}
	copy(in.Functions[:], functions)
	for i, f := range in.Functions {
		if isBlank(f) {
			in.Results[i] = 0
		}
	}
	return nil
}

func isBlank(f string) bool {
	return strings.TrimSpace(f) == ""
}

// vars exposes the current working set to the evaluator.
func (in *Inputs) vars() expr.Vars {
	v := make(expr.Vars, 1+NumChangeFactors+2*NumUserValues+NumFunctions)
	v["hr"] = in.HazardRate
	for i, f := range in.ChangeFactors {
		v["pi"+strconv.Itoa(i+1)] = f
	}
	for i := range NumUserValues {
		v["uf"+strconv.Itoa(i+1)] = in.UserFloats[i]
		v["ui"+strconv.Itoa(i+1)] = float64(in.UserInts[i])
	}
	for i, r := range in.Results {
		v["res"+strconv.Itoa(i+1)] = r
	}
	return v
}

// CalculateUserDefined evaluates functions 1 through 5 in order. Each
// result is visible to the later equations as resN. A blank function sets
// its result to 0 without evaluation; a failing one sets it to 0 and is
// reported as a SlotError while the remaining slots still evaluate.
func CalculateUserDefined(in Inputs) (Inputs, []SlotError) {
	var errs []SlotError
	for i, f := range in.Functions {
		if isBlank(f) {
			in.Results[i] = 0
			continue
		}
		v, err := expr.Evaluate(f, in.vars())
		if err != nil {
			in.Results[i] = 0
			errs = append(errs, SlotError{Slot: i + 1, Function: f, Err: err})
			continue
		}
		in.Results[i] = v
	}
	return in, errs
}
