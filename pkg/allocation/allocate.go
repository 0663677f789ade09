package allocation

import (
	"slices"

	"github.com/dd0wney/ramstk-analysis/pkg/reliability"
)

// Allocate apportions parent's goal among children. The slice is cloned;
// the returned Outcome owns the allocated children in the same order.
//
// Benign numeric conditions do not stop the run: the affected child's
// outputs are zeroed and a Failure is recorded. An unknown method returns
// ErrUnknownMethod and a nil Outcome.
func Allocate(parent Parent, children []Child, ctx Context, opts Options) (*Outcome, error) {
	if _, err := ParseMethod(int(parent.Method)); err != nil {
		return nil, reliability.NewCalcError("Allocate", parent.ID, err)
	}

	out := &Outcome{
		ParentID: parent.ID,
		Method:   parent.Method,
		Children: slices.Clone(children),
	}

	var step func(c *Child, seed float64) *Failure
	seed := parent.ReliabilityGoal

	switch parent.Method {
	case Equal:
		step = allocateEqual
	case AGREE:
		totals := sumAgree(out.Children)
		step = func(c *Child, goal float64) *Failure {
			return allocateAGREE(c, goal, totals)
		}
	case ARINC:
		step = func(c *Child, _ float64) *Failure {
			return allocateARINC(c, parent.HazardRateGoal, ctx)
		}
	case FOO:
		cum := sumFOO(out.Children)
		step = func(c *Child, _ float64) *Failure {
			return allocateFOO(c, parent.HazardRateGoal, cum)
		}
	}

	chained := opts.Chaining == ChainSiblings &&
		(parent.Method == Equal || parent.Method == AGREE)

	out.Failures = foldSiblings(out.Children, seed, chained, step)
	return out, nil
}

// foldSiblings visits children in order. When chained, the goal handed to
// child i+1 is child i's reliability goal after allocation; otherwise every
// child receives seed. A failed child does not advance the running goal.
func foldSiblings(children []Child, seed float64, chained bool,
	step func(c *Child, goal float64) *Failure) []Failure {
	var failures []Failure
	goal := seed
	for i := range children {
		c := &children[i]
		if f := step(c, goal); f != nil {
			failures = append(failures, *f)
			continue
		}
		trickleDown(c)
		if chained {
			goal = c.ReliabilityGoal
		}
	}
	return failures
}

// trickleDown makes a child's allocation the goal for the next level.
func trickleDown(c *Child) {
	c.ReliabilityGoal = c.ReliabilityAlloc
	c.HazardRateGoal = c.HazardRateAlloc
	c.MTBFGoal = c.MTBFAlloc
}

func zeroAllocation(c *Child) {
	c.ReliabilityAlloc = 0
	c.HazardRateAlloc = 0
	c.MTBFAlloc = 0
}

func setAllocation(c *Child, m reliability.Metrics) {
	c.ReliabilityAlloc = m.Reliability
	c.HazardRateAlloc = m.HazardRate
	c.MTBFAlloc = m.MTBF
}
