package allocation

import (
	"math"

	"github.com/dd0wney/ramstk-analysis/pkg/reliability"
)

// allocateEqual gives every child R = goal^(1/n), where n is the child's
// sub-system count.
func allocateEqual(c *Child, goal float64) *Failure {
	if c.NSubSystems == 0 {
		zeroAllocation(c)
		return newFailure(Equal, c, ReasonZeroSubSystems, reliability.ErrDivideByZero,
			"Number of sub-systems was 0.")
	}
	if goal <= 0 {
		zeroAllocation(c)
		return newFailure(Equal, c, ReasonUnreachableGoal, reliability.ErrLogNonPositive,
			"Reliability goal must be greater than 0.0.")
	}
	if goal > 1 {
		zeroAllocation(c)
		return newFailure(Equal, c, ReasonUnreachableGoal, reliability.ErrGoalUnreachable,
			"Reliability goal must not exceed 1.0.")
	}

	w := 1.0 / float64(c.NSubSystems)
	c.WeightFactor = w
	c.ReliabilityAlloc = math.Pow(goal, w)

	h, err := reliability.HazardRateFromReliability(c.ReliabilityAlloc, c.MissionTime)
	if err != nil {
		zeroAllocation(c)
		return newFailure(Equal, c, ReasonZeroMissionTime, err, "Mission time was 0.0.")
	}
	mtbf, err := reliability.MTBFFromHazardRate(h)
	if err != nil {
		zeroAllocation(c)
		return newFailure(Equal, c, ReasonZeroHazardRate, err, "Allocated hazard rate was 0.0.")
	}
	c.HazardRateAlloc = h
	c.MTBFAlloc = mtbf
	return nil
}
