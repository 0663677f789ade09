package allocation

import "github.com/dd0wney/ramstk-analysis/pkg/reliability"

// fooWeight is the product of the four feasibility-of-objectives factors.
func fooWeight(c *Child) int {
	return c.IntFactor * c.SOAFactor * c.OpTimeFactor * c.EnvFactor
}

func sumFOO(children []Child) int {
	cum := 0
	for i := range children {
		cum += fooWeight(&children[i])
	}
	return cum
}

// allocateFOO gives the child the fraction w_i/cum of the parent's hazard
// rate goal.
func allocateFOO(c *Child, parentHazardGoal float64, cum int) *Failure {
	c.WeightFactor = float64(fooWeight(c))
	if cum == 0 {
		c.PercentWeightFactor = 0
		zeroAllocation(c)
		return newFailure(FOO, c, ReasonZeroCumulativeWeight, reliability.ErrDivideByZero,
			"Cumulative weight factor was 0.")
	}

	c.PercentWeightFactor = c.WeightFactor / float64(cum)
	h := c.PercentWeightFactor * parentHazardGoal
	m, err := reliability.FromHazardRate(h, c.MissionTime)
	if err != nil {
		zeroAllocation(c)
		return newFailure(FOO, c, ReasonZeroHazardRate, err, "Allocated hazard rate was 0.0.")
	}
	setAllocation(c, m)
	return nil
}
