package allocation

import (
	"math"

	"github.com/dd0wney/ramstk-analysis/pkg/reliability"
)

// agreeTotals are the sibling aggregates the AGREE formula divides by.
type agreeTotals struct {
	subSystems  int
	subElements int
}

func sumAgree(children []Child) agreeTotals {
	var t agreeTotals
	for i := range children {
		t.subSystems += children[i].NSubSystems
		t.subElements += children[i].NSubElements
	}
	return t
}

// allocateAGREE computes
//
//	MTBF_i = (N_sys * w_i * t_i) / (-N_el * ln(goal))
//
// with t_i = T * duty / 100.
func allocateAGREE(c *Child, goal float64, totals agreeTotals) *Failure {
	if goal <= 0 {
		zeroAllocation(c)
		return newFailure(AGREE, c, ReasonUnreachableGoal, reliability.ErrLogNonPositive,
			"Reliability goal must be greater than 0.0.")
	}
	if goal > 1 {
		zeroAllocation(c)
		return newFailure(AGREE, c, ReasonUnreachableGoal, reliability.ErrGoalUnreachable,
			"Reliability goal must not exceed 1.0.")
	}
	denom := -float64(totals.subElements) * math.Log(goal)
	if denom == 0 {
		zeroAllocation(c)
		reason, detail := ReasonUnreachableGoal, "Reliability goal was 1.0."
		if totals.subElements == 0 {
			reason, detail = ReasonZeroSubElements, "Number of sub-elements was 0."
		}
		return newFailure(AGREE, c, reason, reliability.ErrDivideByZero, detail)
	}

	t := c.MissionTime * c.DutyCycle / 100.0
	mtbf := float64(totals.subSystems) * c.WeightFactor * t / denom

	h, err := reliability.HazardRateFromMTBF(mtbf)
	if err != nil {
		zeroAllocation(c)
		return newFailure(AGREE, c, ReasonZeroMTBF, err, "Allocated MTBF was 0.0.")
	}
	c.MTBFAlloc = mtbf
	c.HazardRateAlloc = h
	c.ReliabilityAlloc = reliability.ReliabilityFromHazardRate(h, c.MissionTime)
	return nil
}
