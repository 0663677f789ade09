package reliability

import (
	"fmt"
	"math"
)

// GoalMeasure selects which of the three goal fields is authoritative.
type GoalMeasure int

const (
	// GoalReliability means the reliability goal was specified
	GoalReliability GoalMeasure = iota + 1
	// GoalHazardRate means the hazard rate goal was specified
	GoalHazardRate
	// GoalMTBF means the MTBF goal was specified
	GoalMTBF
)

func (m GoalMeasure) String() string {
	switch m {
	case GoalReliability:
		return "reliability"
	case GoalHazardRate:
		return "hazard_rate"
	case GoalMTBF:
		return "mtbf"
	default:
		return "unknown"
	}
}

// Goals holds a node's reliability goal in all three forms.
type Goals struct {
	Measure     GoalMeasure
	MissionTime float64
	Reliability float64
	HazardRate  float64
	MTBF        float64
}

// CalculateGoals derives the two non-authoritative goal fields from the one
// selected by g.Measure.
//
// A goal that cannot be converted (a reliability goal of 0, 1 or above 1, a zero
// hazard rate or MTBF) zeroes the derived fields and returns an error that
// wraps ErrGoalUnreachable. The returned Goals are valid in either case. An
// unrecognized measure returns g unchanged.
func CalculateGoals(g Goals) (Goals, error) {
	switch g.Measure {
	case GoalReliability:
		mtbf, err := MTBFFromReliability(g.Reliability, g.MissionTime)
		if err == nil {
			var h float64
			if h, err = HazardRateFromMTBF(mtbf); err == nil {
				g.MTBF, g.HazardRate = mtbf, h
				return g, nil
			}
		}
		g.MTBF, g.HazardRate = 0, 0
		return g, fmt.Errorf("%w: reliability goal %g: %w", ErrGoalUnreachable, g.Reliability, err)

	case GoalHazardRate:
		mtbf, err := MTBFFromHazardRate(g.HazardRate)
		if err != nil {
			g.MTBF, g.Reliability = 0, 0
			return g, fmt.Errorf("%w: hazard rate goal %g: %w", ErrGoalUnreachable, g.HazardRate, err)
		}
		g.MTBF = mtbf
		g.Reliability = math.Exp(-g.MissionTime / mtbf)
		return g, nil

	case GoalMTBF:
		h, err := HazardRateFromMTBF(g.MTBF)
		if err != nil {
			g.HazardRate, g.Reliability = 0, 0
			return g, fmt.Errorf("%w: MTBF goal %g: %w", ErrGoalUnreachable, g.MTBF, err)
		}
		g.HazardRate = h
		g.Reliability = math.Exp(-g.MissionTime / g.MTBF)
		return g, nil
	}

	return g, nil
}
