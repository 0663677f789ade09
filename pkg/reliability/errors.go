package reliability

import (
	"errors"
	"fmt"
)

// Trapped numeric conditions. These are reachable from legitimate input
// (a 100% reliability goal, a zero hazard rate before anything has been
// measured) and are reported to the caller instead of producing NaN or Inf.
var (
	ErrLogNonPositive  = errors.New("logarithm of non-positive value")
	ErrDivideByZero    = errors.New("division by zero")
	ErrGoalUnreachable = errors.New("goal unreachable")
)

// IsBenign reports whether err is one of the trapped numeric conditions.
// Benign errors zero the dependent outputs of a single node; everything
// else is a programming or master-data error and should be surfaced as is.
func IsBenign(err error) bool {
	return errors.Is(err, ErrLogNonPositive) ||
		errors.Is(err, ErrDivideByZero) ||
		errors.Is(err, ErrGoalUnreachable)
}

// CalcError attaches the operation and hardware node to a calculation error.
type CalcError struct {
	Op     string // Operation that failed (e.g., "CalculateGoals", "Allocate")
	NodeID int    // Hardware ID of the node being calculated
	Cause  error  // Underlying error
}

// Error implements the error interface.
func (e *CalcError) Error() string {
	if e.NodeID != 0 {
		return fmt.Sprintf("%s: hardware ID %d: %v", e.Op, e.NodeID, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *CalcError) Unwrap() error {
	return e.Cause
}

// NewCalcError wraps cause with the operation and node ID.
func NewCalcError(op string, nodeID int, cause error) error {
	if cause == nil {
		return nil
	}
	return &CalcError{Op: op, NodeID: nodeID, Cause: cause}
}
