package allocation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMethod is returned when an allocation method ID has no variant.
var ErrUnknownMethod = errors.New("unknown allocation method")

// Method is the apportionment method used to divide a parent's goal among
// its direct children.
type Method int

const (
	// Equal gives every child the same share of the reliability goal
	Equal Method = iota + 1
	// AGREE weights children by sub-element count and operating time
	AGREE
	// ARINC weights children by their share of the system hazard rate
	ARINC
	// FOO (feasibility of objectives) weights children by four subjective factors
	FOO
)

// ParseMethod converts a stored allocation_method_id into a Method.
func ParseMethod(id int) (Method, error) {
	m := Method(id)
	switch m {
	case Equal, AGREE, ARINC, FOO:
		return m, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownMethod, id)
	}
}

func (m Method) String() string {
	switch m {
	case Equal:
		return "equal"
	case AGREE:
		return "agree"
	case ARINC:
		return "arinc"
	case FOO:
		return "foo"
	default:
		return "unknown"
	}
}

// Chaining controls which goal seeds each sibling in the Equal and AGREE
// methods.
type Chaining int

const (
	// ChainSiblings seeds sibling i+1 with sibling i's allocation-derived
	// reliability goal. Results depend on child order.
	ChainSiblings Chaining = iota
	// IndependentSiblings seeds every sibling with the parent's goal.
	IndependentSiblings
)

// ParseChaining converts a configuration value into a Chaining mode.
func ParseChaining(s string) (Chaining, error) {
	switch strings.ToLower(s) {
	case "", "chain", "chained":
		return ChainSiblings, nil
	case "independent":
		return IndependentSiblings, nil
	default:
		return 0, fmt.Errorf("unknown sibling chaining mode %q", s)
	}
}

func (c Chaining) String() string {
	switch c {
	case ChainSiblings:
		return "chain"
	case IndependentSiblings:
		return "independent"
	default:
		return "unknown"
	}
}

// Options configures an allocation run.
type Options struct {
	Chaining Chaining
}

// DefaultOptions returns the options matching RAMSTK's historical behavior.
func DefaultOptions() Options {
	return Options{Chaining: ChainSiblings}
}

// Parent is the node whose goal is being apportioned.
type Parent struct {
	ID              int
	Method          Method
	ReliabilityGoal float64
	HazardRateGoal  float64
}

// Child is the allocation view of one direct child of the parent.
type Child struct {
	ID           int
	MissionTime  float64
	DutyCycle    float64 // percent, (0, 100]
	NSubSystems  int
	NSubElements int

	// FOO subjective factors, nominally 1-10
	IntFactor    int
	SOAFactor    int
	OpTimeFactor int
	EnvFactor    int

	WeightFactor        float64
	PercentWeightFactor float64
	HazardRateActive    float64

	ReliabilityGoal float64
	HazardRateGoal  float64
	MTBFGoal        float64

	ReliabilityAlloc float64
	HazardRateAlloc  float64
	MTBFAlloc        float64
}

// Context carries the hazard rates captured outside the engine when a
// hardware item is selected. SystemHazardRate is the ARINC denominator.
// NodeHazardRate, when non-zero, replaces each child's HazardRateActive as
// the numerator.
type Context struct {
	NodeHazardRate   float64
	SystemHazardRate float64
}

// Reason classifies a recoverable allocation failure.
type Reason string

const (
	ReasonZeroSystemHazardRate Reason = "zero_system_hazard_rate"
	ReasonZeroCumulativeWeight Reason = "zero_cumulative_weight"
	ReasonZeroSubSystems       Reason = "zero_sub_systems"
	ReasonZeroSubElements      Reason = "zero_sub_elements"
	ReasonUnreachableGoal      Reason = "unreachable_goal"
	ReasonZeroHazardRate       Reason = "zero_hazard_rate"
	ReasonZeroMTBF             Reason = "zero_mtbf"
	ReasonZeroMissionTime      Reason = "zero_mission_time"
)

// Failure is a recoverable per-child condition. The child's dependent
// outputs have been zeroed; the other children were still allocated.
type Failure struct {
	NodeID  int
	Method  Method
	Reason  Reason
	Message string
	Cause   error
}

func (f Failure) Error() string {
	return f.Message
}

func (f Failure) Unwrap() error {
	return f.Cause
}

// newFailure builds the user-facing failure message for a child.
func newFailure(m Method, c *Child, reason Reason, cause error, detail string) *Failure {
	return &Failure{
		NodeID: c.ID,
		Method: m,
		Reason: reason,
		Message: fmt.Sprintf("Failed to allocate reliability for allocation record ID %d.  %s",
			c.ID, detail),
		Cause: cause,
	}
}

// Outcome is the result of apportioning one parent's goal.
type Outcome struct {
	ParentID int
	Method   Method
	Children []Child
	Failures []Failure
}

// OK reports whether every child was allocated without a failure.
func (o *Outcome) OK() bool {
	return len(o.Failures) == 0
}
