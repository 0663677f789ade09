package allocation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/ramstk-analysis/pkg/reliability"
)

const tol = 1e-6

// relDelta asserts got is within tol relative to want.
func relDelta(t *testing.T, want, got float64, msg string) {
	t.Helper()
	assert.InEpsilon(t, want, got, tol, msg)
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		id      int
		want    Method
		wantErr bool
	}{
		{1, Equal, false},
		{2, AGREE, false},
		{3, ARINC, false},
		{4, FOO, false},
		{0, 0, true},
		{5, 0, true},
		{-1, 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.id)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownMethod, "id %d", tt.id)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, "arinc", ARINC.String())
	assert.Equal(t, "unknown", Method(9).String())
}

func TestParseChaining(t *testing.T) {
	c, err := ParseChaining("independent")
	require.NoError(t, err)
	assert.Equal(t, IndependentSiblings, c)

	c, err = ParseChaining("")
	require.NoError(t, err)
	assert.Equal(t, ChainSiblings, c)

	_, err = ParseChaining("sideways")
	assert.Error(t, err)
}

func TestAllocate_UnknownMethod(t *testing.T) {
	children := []Child{{ID: 2, MissionTime: 100, NSubSystems: 1, ReliabilityGoal: 0.5}}
	before := children[0]

	out, err := Allocate(Parent{ID: 1, Method: Method(7), ReliabilityGoal: 0.99}, children,
		Context{}, DefaultOptions())
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrUnknownMethod)

	var ce *reliability.CalcError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 1, ce.NodeID)
	assert.Equal(t, before, children[0], "input must not be mutated")
}

func TestAllocate_Equal(t *testing.T) {
	parent := Parent{ID: 1, Method: Equal, ReliabilityGoal: 0.995}
	children := []Child{{ID: 2, MissionTime: 100, NSubSystems: 1}}

	out, err := Allocate(parent, children, Context{}, DefaultOptions())
	require.NoError(t, err)
	require.True(t, out.OK())

	c := out.Children[0]
	relDelta(t, 0.995, c.ReliabilityAlloc, "R")
	relDelta(t, 5.0125418e-05, c.HazardRateAlloc, "h")
	relDelta(t, 19949.9582288, c.MTBFAlloc, "MTBF")

	// goals trickle down from the allocation
	assert.Equal(t, c.ReliabilityAlloc, c.ReliabilityGoal)
	assert.Equal(t, c.HazardRateAlloc, c.HazardRateGoal)
	assert.Equal(t, c.MTBFAlloc, c.MTBFGoal)

	// the caller's slice is untouched
	assert.Zero(t, children[0].ReliabilityAlloc)
}

func TestAllocate_EqualChaining(t *testing.T) {
	parent := Parent{ID: 1, Method: Equal, ReliabilityGoal: 0.9}
	children := []Child{
		{ID: 2, MissionTime: 100, NSubSystems: 2},
		{ID: 3, MissionTime: 100, NSubSystems: 2},
	}

	chained, err := Allocate(parent, children, Context{}, Options{Chaining: ChainSiblings})
	require.NoError(t, err)
	relDelta(t, 0.948683298, chained.Children[0].ReliabilityAlloc, "first sibling")
	relDelta(t, 0.974003746, chained.Children[1].ReliabilityAlloc, "second sibling")

	indep, err := Allocate(parent, children, Context{}, Options{Chaining: IndependentSiblings})
	require.NoError(t, err)
	relDelta(t, 0.948683298, indep.Children[0].ReliabilityAlloc, "first sibling")
	relDelta(t, 0.948683298, indep.Children[1].ReliabilityAlloc, "second sibling")
}

func TestAllocate_EqualFailures(t *testing.T) {
	tests := []struct {
		name   string
		goal   float64
		child  Child
		reason Reason
		cause  error
	}{
		{"zero sub-systems", 0.9, Child{ID: 2, MissionTime: 100}, ReasonZeroSubSystems, reliability.ErrDivideByZero},
		{"zero goal", 0.0, Child{ID: 2, MissionTime: 100, NSubSystems: 1}, ReasonUnreachableGoal, reliability.ErrLogNonPositive},
		{"goal above one", 1.5, Child{ID: 2, MissionTime: 100, NSubSystems: 1}, ReasonUnreachableGoal, reliability.ErrGoalUnreachable},
		{"perfect goal", 1.0, Child{ID: 2, MissionTime: 100, NSubSystems: 1}, ReasonZeroHazardRate, reliability.ErrDivideByZero},
		{"zero mission time", 0.9, Child{ID: 2, NSubSystems: 1}, ReasonZeroMissionTime, reliability.ErrDivideByZero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.child.ReliabilityAlloc = 0.5
			out, err := Allocate(Parent{ID: 1, Method: Equal, ReliabilityGoal: tt.goal},
				[]Child{tt.child}, Context{}, DefaultOptions())
			require.NoError(t, err)
			require.Len(t, out.Failures, 1)

			f := out.Failures[0]
			assert.Equal(t, 2, f.NodeID)
			assert.Equal(t, tt.reason, f.Reason)
			assert.ErrorIs(t, f, tt.cause)
			assert.True(t, reliability.IsBenign(f))
			assert.Zero(t, out.Children[0].ReliabilityAlloc)
			assert.Zero(t, out.Children[0].HazardRateAlloc)
			assert.Zero(t, out.Children[0].MTBFAlloc)
		})
	}
}

func TestAllocate_AGREE(t *testing.T) {
	parent := Parent{ID: 1, Method: AGREE, ReliabilityGoal: 0.717}

	t.Run("single child", func(t *testing.T) {
		children := []Child{{
			ID: 2, MissionTime: 10, DutyCycle: 90, WeightFactor: 0.95,
			NSubSystems: 1, NSubElements: 4,
		}}
		out, err := Allocate(parent, children, Context{}, DefaultOptions())
		require.NoError(t, err)
		require.True(t, out.OK())

		c := out.Children[0]
		relDelta(t, 6.425104029, c.MTBFAlloc, "MTBF")
		relDelta(t, 0.155639503, c.HazardRateAlloc, "h")
		relDelta(t, 0.210894972, c.ReliabilityAlloc, "R")
	})

	t.Run("sibling totals", func(t *testing.T) {
		children := []Child{
			{ID: 2, MissionTime: 10, DutyCycle: 90, WeightFactor: 0.95, NSubSystems: 1, NSubElements: 4},
			{ID: 3, MissionTime: 10, DutyCycle: 50, WeightFactor: 1.0, NSubSystems: 1, NSubElements: 6},
		}
		out, err := Allocate(parent, children, Context{}, Options{Chaining: IndependentSiblings})
		require.NoError(t, err)
		require.True(t, out.OK())

		relDelta(t, 5.140083223, out.Children[0].MTBFAlloc, "child 2 MTBF")
		relDelta(t, 0.194549379, out.Children[0].HazardRateAlloc, "child 2 h")
		relDelta(t, 0.142916635, out.Children[0].ReliabilityAlloc, "child 2 R")
		relDelta(t, 3.005896622, out.Children[1].MTBFAlloc, "child 3 MTBF")
		relDelta(t, 0.332679438, out.Children[1].HazardRateAlloc, "child 3 h")
		relDelta(t, 0.035908028, out.Children[1].ReliabilityAlloc, "child 3 R")
	})

	t.Run("zero sub-elements", func(t *testing.T) {
		children := []Child{{ID: 2, MissionTime: 10, DutyCycle: 90, WeightFactor: 1, NSubSystems: 1}}
		out, err := Allocate(parent, children, Context{}, DefaultOptions())
		require.NoError(t, err)
		require.Len(t, out.Failures, 1)
		assert.Equal(t, ReasonZeroSubElements, out.Failures[0].Reason)
	})

	t.Run("goal above one", func(t *testing.T) {
		children := []Child{{ID: 2, MissionTime: 10, DutyCycle: 90, WeightFactor: 1, NSubSystems: 1, NSubElements: 4}}
		out, err := Allocate(Parent{ID: 1, Method: AGREE, ReliabilityGoal: 1.5}, children, Context{}, DefaultOptions())
		require.NoError(t, err)
		require.Len(t, out.Failures, 1)
		assert.Equal(t, ReasonUnreachableGoal, out.Failures[0].Reason)
		assert.ErrorIs(t, out.Failures[0], reliability.ErrGoalUnreachable)
		assert.Equal(t,
			"Failed to allocate reliability for allocation record ID 2.  Reliability goal must not exceed 1.0.",
			out.Failures[0].Message)
		assert.Zero(t, out.Children[0].MTBFAlloc)
		assert.Zero(t, out.Children[0].HazardRateAlloc)
	})

	t.Run("zero duty cycle", func(t *testing.T) {
		children := []Child{{ID: 2, MissionTime: 10, WeightFactor: 1, NSubSystems: 1, NSubElements: 1}}
		out, err := Allocate(parent, children, Context{}, DefaultOptions())
		require.NoError(t, err)
		require.Len(t, out.Failures, 1)
		assert.Equal(t, ReasonZeroMTBF, out.Failures[0].Reason)
	})
}

func TestAllocate_ARINC(t *testing.T) {
	parent := Parent{ID: 1, Method: ARINC, HazardRateGoal: 0.000617}
	children := []Child{{ID: 2, MissionTime: 100, HazardRateActive: 0.000628}}

	out, err := Allocate(parent, children, Context{SystemHazardRate: 0.002681}, DefaultOptions())
	require.NoError(t, err)
	require.True(t, out.OK())

	c := out.Children[0]
	relDelta(t, 0.234240955, c.WeightFactor, "weight")
	relDelta(t, 1.44526669e-4, c.HazardRateAlloc, "h")
	relDelta(t, 6919.13822, c.MTBFAlloc, "MTBF")
	relDelta(t, 0.985651272, c.ReliabilityAlloc, "R")
}

func TestAllocate_ARINCNodeHazardRate(t *testing.T) {
	parent := Parent{ID: 1, Method: ARINC, HazardRateGoal: 0.000617}

	t.Run("context rate replaces child rate", func(t *testing.T) {
		children := []Child{
			{ID: 2, MissionTime: 100},
			{ID: 3, MissionTime: 100, HazardRateActive: 0.001942},
		}
		ctx := Context{NodeHazardRate: 0.000628, SystemHazardRate: 0.002681}

		out, err := Allocate(parent, children, ctx, DefaultOptions())
		require.NoError(t, err)
		require.True(t, out.OK())
		for _, c := range out.Children {
			relDelta(t, 0.234240955, c.WeightFactor, "weight")
			relDelta(t, 1.44526669e-4, c.HazardRateAlloc, "h")
		}
	})

	t.Run("zero context rate falls back to child rate", func(t *testing.T) {
		children := []Child{{ID: 2, MissionTime: 100, HazardRateActive: 0.000628}}

		out, err := Allocate(parent, children, Context{SystemHazardRate: 0.002681}, DefaultOptions())
		require.NoError(t, err)
		require.True(t, out.OK())
		relDelta(t, 0.234240955, out.Children[0].WeightFactor, "weight")
	})

	t.Run("no rate at all", func(t *testing.T) {
		children := []Child{{ID: 2, MissionTime: 100}}

		out, err := Allocate(parent, children, Context{SystemHazardRate: 0.002681}, DefaultOptions())
		require.NoError(t, err)
		require.Len(t, out.Failures, 1)
		assert.Equal(t, ReasonZeroHazardRate, out.Failures[0].Reason)
		assert.Zero(t, out.Children[0].MTBFAlloc)
	})
}

func TestAllocate_ARINCZeroSystemHazardRate(t *testing.T) {
	parent := Parent{ID: 1, Method: ARINC, HazardRateGoal: 0.000617}
	children := []Child{
		{ID: 2, MissionTime: 100, HazardRateActive: 0.000628, WeightFactor: 3},
		{ID: 3, MissionTime: 100, HazardRateActive: 0.000111, WeightFactor: 3},
	}

	out, err := Allocate(parent, children, Context{}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, out.Failures, 2)

	assert.Equal(t,
		"Failed to allocate reliability for allocation record ID 2.  System hazard rate was 0.0.",
		out.Failures[0].Message)
	assert.Equal(t, ReasonZeroSystemHazardRate, out.Failures[1].Reason)
	for _, c := range out.Children {
		assert.Zero(t, c.WeightFactor)
		assert.Zero(t, c.ReliabilityAlloc)
		assert.Zero(t, c.HazardRateAlloc)
		assert.Zero(t, c.MTBFAlloc)
	}
}

func TestAllocate_FOO(t *testing.T) {
	parent := Parent{ID: 1, Method: FOO, HazardRateGoal: 0.000617}
	children := []Child{
		{ID: 2, MissionTime: 100, IntFactor: 3, SOAFactor: 3, OpTimeFactor: 6, EnvFactor: 6},
		{ID: 3, MissionTime: 100, IntFactor: 1, SOAFactor: 1, OpTimeFactor: 1, EnvFactor: 1},
		{ID: 4, MissionTime: 100, IntFactor: 2, SOAFactor: 2, OpTimeFactor: 2, EnvFactor: 2},
	}

	out, err := Allocate(parent, children, Context{}, DefaultOptions())
	require.NoError(t, err)
	require.True(t, out.OK())

	first := out.Children[0]
	assert.Equal(t, 324.0, first.WeightFactor)
	relDelta(t, 0.950146628, first.PercentWeightFactor, "percent weight")
	relDelta(t, 5.8624047e-4, first.HazardRateAlloc, "h")
	relDelta(t, 1705.78466, first.MTBFAlloc, "MTBF")
	relDelta(t, 0.943061249, first.ReliabilityAlloc, "R")

	relDelta(t, 0.002932551, out.Children[1].PercentWeightFactor, "percent weight")
	relDelta(t, 1.80938416e-06, out.Children[1].HazardRateAlloc, "h")
	relDelta(t, 0.999819078, out.Children[1].ReliabilityAlloc, "R")

	relDelta(t, 0.046920821, out.Children[2].PercentWeightFactor, "percent weight")
	relDelta(t, 2.89501466e-05, out.Children[2].HazardRateAlloc, "h")
	relDelta(t, 0.997109172, out.Children[2].ReliabilityAlloc, "R")
}

func TestAllocate_FOOZeroCumulativeWeight(t *testing.T) {
	parent := Parent{ID: 1, Method: FOO, HazardRateGoal: 0.000617}
	children := []Child{{ID: 2, MissionTime: 100, PercentWeightFactor: 0.5}}

	out, err := Allocate(parent, children, Context{}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, ReasonZeroCumulativeWeight, out.Failures[0].Reason)
	assert.Zero(t, out.Children[0].PercentWeightFactor)
	assert.Zero(t, out.Children[0].HazardRateAlloc)
}

func TestAllocate_FailureDoesNotStopSiblings(t *testing.T) {
	parent := Parent{ID: 1, Method: Equal, ReliabilityGoal: 0.9}
	children := []Child{
		{ID: 2, MissionTime: 100},
		{ID: 3, MissionTime: 100, NSubSystems: 2},
	}

	out, err := Allocate(parent, children, Context{}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, 2, out.Failures[0].NodeID)
	// the failed sibling leaves the running goal at the parent's
	relDelta(t, 0.948683298, out.Children[1].ReliabilityAlloc, "R")
}
