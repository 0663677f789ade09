package allocation

import "github.com/dd0wney/ramstk-analysis/pkg/reliability"

// allocateARINC weights the child by its share of the system hazard rate.
// A non-zero ctx.NodeHazardRate is the numerator; otherwise the child's own
// active hazard rate is.
func allocateARINC(c *Child, parentHazardGoal float64, ctx Context) *Failure {
	if ctx.SystemHazardRate == 0 {
		c.WeightFactor = 0
		zeroAllocation(c)
		return newFailure(ARINC, c, ReasonZeroSystemHazardRate, reliability.ErrDivideByZero,
			"System hazard rate was 0.0.")
	}

	node := ctx.NodeHazardRate
	if node == 0 {
		node = c.HazardRateActive
	}
	c.WeightFactor = node / ctx.SystemHazardRate
	h := c.WeightFactor * parentHazardGoal
	m, err := reliability.FromHazardRate(h, c.MissionTime)
	if err != nil {
		zeroAllocation(c)
		return newFailure(ARINC, c, ReasonZeroHazardRate, err, "Allocated hazard rate was 0.0.")
	}
	setAllocation(c, m)
	return nil
}
