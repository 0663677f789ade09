package programdb

import (
	"fmt"

	"github.com/dd0wney/ramstk-analysis/pkg/hardware"
)

// row is one joined hardware/allocation/similar item record. The
// similar-item arrays come back as variable-length slices.
type row struct {
	n                  hardware.Node
	changeDescriptions []string
	changeFactors      []float64
	userFloats         []float64
	userInts           []int32
	functions          []string
	results            []float64
}

// dest lists scan targets in selectTree column order.
func (r *row) dest() []any {
	n := &r.n
	return []any{
		&n.ID, &n.ParentID, &n.Name, &n.HazardRateActive,
		&n.GoalMeasureID, &n.ReliabilityGoal, &n.HazardRateGoal, &n.MTBFGoal,
		&n.AllocationMethodID, &n.MissionTime, &n.DutyCycle, &n.NSubSystems,
		&n.NSubElements, &n.IntFactor, &n.SOAFactor, &n.OpTimeFactor,
		&n.EnvFactor, &n.WeightFactor, &n.PercentWeightFactor, &n.ReliabilityAlloc,
		&n.HazardRateAlloc, &n.MTBFAlloc,
		&n.SimilarItemMethodID,
		&n.EnvironmentFromID, &n.EnvironmentToID,
		&n.QualityFromID, &n.QualityToID,
		&n.TemperatureFrom, &n.TemperatureTo,
		&r.changeDescriptions, &r.changeFactors,
		&r.userFloats, &r.userInts,
		&r.functions, &r.results,
	}
}

// node copies the arrays into the node's fixed slots.
func (r *row) node(revisionID int) (hardware.Node, error) {
	n := r.n
	n.RevisionID = revisionID

	ints := make([]int, len(r.userInts))
	for i, v := range r.userInts {
		ints[i] = int(v)
	}

	err := firstError(
		fill(n.ChangeDescriptions[:], r.changeDescriptions, "change_descriptions"),
		fill(n.ChangeFactors[:], r.changeFactors, "change_factors"),
		fill(n.UserFloats[:], r.userFloats, "user_floats"),
		fill(n.UserInts[:], ints, "user_ints"),
		fill(n.Functions[:], r.functions, "functions"),
		fill(n.Results[:], r.results, "results"),
	)
	if err != nil {
		return hardware.Node{}, fmt.Errorf("hardware %d: %w", n.ID, err)
	}
	return n, nil
}

func fill[T any](dst, src []T, column string) error {
	if len(src) > len(dst) {
		return fmt.Errorf("%s: %w (%d > %d)", column, ErrArrayTooLong, len(src), len(dst))
	}
	copy(dst, src)
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// allocationArgs are the parameters of updateAllocation.
func allocationArgs(revisionID int, n *hardware.Node) []any {
	return []any{
		revisionID, n.ID,
		n.GoalMeasureID, n.ReliabilityGoal, n.HazardRateGoal, n.MTBFGoal,
		n.AllocationMethodID, n.MissionTime, n.DutyCycle,
		n.NSubSystems, n.NSubElements, n.IntFactor, n.SOAFactor,
		n.OpTimeFactor, n.EnvFactor, n.WeightFactor,
		n.PercentWeightFactor, n.ReliabilityAlloc, n.HazardRateAlloc,
		n.MTBFAlloc,
	}
}

// similarItemArgs are the parameters of updateSimilarItem.
func similarItemArgs(revisionID int, n *hardware.Node) []any {
	ints := make([]int32, len(n.UserInts))
	for i, v := range n.UserInts {
		ints[i] = int32(v)
	}
	return []any{
		revisionID, n.ID,
		n.SimilarItemMethodID, n.EnvironmentFromID, n.EnvironmentToID,
		n.QualityFromID, n.QualityToID, n.TemperatureFrom, n.TemperatureTo,
		n.ChangeDescriptions[:], n.ChangeFactors[:], n.UserFloats[:], ints,
		n.Functions[:], n.Results[:],
	}
}
