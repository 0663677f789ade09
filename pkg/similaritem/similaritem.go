// Package similaritem adjusts a baseline hazard rate for a hardware item
// that differs from a well-characterized predecessor, either with the
// Reliability Toolkit Topic 6.3.3 change-factor tables or with up to five
// analyst-supplied equations.
package similaritem

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownMethod   = errors.New("unknown similar item method")
	ErrUnknownTableKey = errors.New("no conversion factor for change")
	ErrMissingKey      = errors.New("missing required key")
	ErrWrongType       = errors.New("value is not numeric")
	ErrTooManyValues   = errors.New("too many values")
)

// Method selects the similar-item calculation.
type Method int

const (
	// Topic633 uses the environment, quality and temperature tables
	Topic633 Method = iota + 1
	// UserDefined evaluates the analyst's equations
	UserDefined
)

// ParseMethod converts a stored similar_item_method_id into a Method.
func ParseMethod(id int) (Method, error) {
	m := Method(id)
	switch m {
	case Topic633, UserDefined:
		return m, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownMethod, id)
	}
}

func (m Method) String() string {
	switch m {
	case Topic633:
		return "topic_633"
	case UserDefined:
		return "user_defined"
	default:
		return "unknown"
	}
}
