package hardware

import (
	"errors"
	"fmt"
)

var (
	ErrNodeNotFound   = errors.New("hardware item not found")
	ErrDuplicateNode  = errors.New("duplicate hardware ID")
	ErrParentNotFound = errors.New("parent hardware item not found")
	ErrRootExists     = errors.New("tree already has a root")
	ErrInvalidNode    = errors.New("invalid hardware item")
)

// TreeError provides structured error information for tree operations.
type TreeError struct {
	Op    string // Operation that failed (e.g., "Insert", "Update")
	ID    int    // Hardware ID
	Cause error  // Underlying error
}

// Error implements the error interface.
func (e *TreeError) Error() string {
	return fmt.Sprintf("%s hardware %d: %v", e.Op, e.ID, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *TreeError) Unwrap() error {
	return e.Cause
}

func treeError(op string, id int, cause error) error {
	return &TreeError{Op: op, ID: id, Cause: cause}
}
