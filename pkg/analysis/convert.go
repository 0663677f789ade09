package analysis

import (
	"github.com/dd0wney/ramstk-analysis/pkg/allocation"
	"github.com/dd0wney/ramstk-analysis/pkg/hardware"
	"github.com/dd0wney/ramstk-analysis/pkg/reliability"
	"github.com/dd0wney/ramstk-analysis/pkg/similaritem"
)

// missionTime returns the node's mission time, or def when none is set.
func missionTime(n *hardware.Node, def float64) float64 {
	if n.MissionTime == 0 {
		return def
	}
	return n.MissionTime
}

func goalsFromNode(n *hardware.Node, defMissionTime float64) reliability.Goals {
	return reliability.Goals{
		Measure:     reliability.GoalMeasure(n.GoalMeasureID),
		MissionTime: missionTime(n, defMissionTime),
		Reliability: n.ReliabilityGoal,
		HazardRate:  n.HazardRateGoal,
		MTBF:        n.MTBFGoal,
	}
}

func applyGoals(n *hardware.Node, g reliability.Goals) {
	n.ReliabilityGoal = g.Reliability
	n.HazardRateGoal = g.HazardRate
	n.MTBFGoal = g.MTBF
}

func parentFromNode(n *hardware.Node) allocation.Parent {
	return allocation.Parent{
		ID:              n.ID,
		Method:          allocation.Method(n.AllocationMethodID),
		ReliabilityGoal: n.ReliabilityGoal,
		HazardRateGoal:  n.HazardRateGoal,
	}
}

func childFromNode(n *hardware.Node, defMissionTime float64) allocation.Child {
	return allocation.Child{
		ID:                  n.ID,
		MissionTime:         missionTime(n, defMissionTime),
		DutyCycle:           n.DutyCycle,
		NSubSystems:         n.NSubSystems,
		NSubElements:        n.NSubElements,
		IntFactor:           n.IntFactor,
		SOAFactor:           n.SOAFactor,
		OpTimeFactor:        n.OpTimeFactor,
		EnvFactor:           n.EnvFactor,
		WeightFactor:        n.WeightFactor,
		PercentWeightFactor: n.PercentWeightFactor,
		HazardRateActive:    n.HazardRateActive,
		ReliabilityGoal:     n.ReliabilityGoal,
		HazardRateGoal:      n.HazardRateGoal,
		MTBFGoal:            n.MTBFGoal,
		ReliabilityAlloc:    n.ReliabilityAlloc,
		HazardRateAlloc:     n.HazardRateAlloc,
		MTBFAlloc:           n.MTBFAlloc,
	}
}

// applyChild writes the fields allocation computes. Inputs such as the
// mission time are left as stored.
func applyChild(n *hardware.Node, c *allocation.Child) {
	n.WeightFactor = c.WeightFactor
	n.PercentWeightFactor = c.PercentWeightFactor
	n.ReliabilityGoal = c.ReliabilityGoal
	n.HazardRateGoal = c.HazardRateGoal
	n.MTBFGoal = c.MTBFGoal
	n.ReliabilityAlloc = c.ReliabilityAlloc
	n.HazardRateAlloc = c.HazardRateAlloc
	n.MTBFAlloc = c.MTBFAlloc
}

func inputsFromNode(n *hardware.Node, hazardRate float64) similaritem.Inputs {
	return similaritem.Inputs{
		HazardRate:    hazardRate,
		ChangeFactors: n.ChangeFactors,
		UserFloats:    n.UserFloats,
		UserInts:      n.UserInts,
		Functions:     n.Functions,
		Results:       n.Results,
	}
}
