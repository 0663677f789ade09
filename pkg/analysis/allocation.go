package analysis

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dd0wney/ramstk-analysis/pkg/allocation"
	"github.com/dd0wney/ramstk-analysis/pkg/hardware"
	"github.com/dd0wney/ramstk-analysis/pkg/logging"
	"github.com/dd0wney/ramstk-analysis/pkg/metrics"
	"github.com/dd0wney/ramstk-analysis/pkg/pubsub"
	"github.com/dd0wney/ramstk-analysis/pkg/reliability"
	"github.com/dd0wney/ramstk-analysis/pkg/similaritem"
)

// AllocationManager calculates reliability goals and apportions them down
// a hardware tree.
type AllocationManager struct {
	tree *hardware.Tree
	deps Deps
	sel  selection

	optsMu sync.RWMutex
	opts   allocation.Options
}

// NewAllocationManager creates a manager over tree.
func NewAllocationManager(tree *hardware.Tree, opts allocation.Options, deps Deps) (*AllocationManager, error) {
	if tree == nil {
		return nil, ErrNoTree
	}
	deps = deps.withDefaults()
	deps.Logger = deps.Logger.With(logging.Component("allocation"))
	return &AllocationManager{tree: tree, deps: deps, opts: opts}, nil
}

// Tree returns the tree the manager writes to.
func (m *AllocationManager) Tree() *hardware.Tree {
	return m.tree
}

// Options returns the allocation options in effect.
func (m *AllocationManager) Options() allocation.Options {
	m.optsMu.RLock()
	defer m.optsMu.RUnlock()
	return m.opts
}

// SetOptions replaces the allocation options used by later runs.
func (m *AllocationManager) SetOptions(opts allocation.Options) {
	m.optsMu.Lock()
	defer m.optsMu.Unlock()
	m.opts = opts
}

// OnSelectHardware records the active hazard rate of the selected item.
// Selecting the root also sets the system hazard rate ARINC weights by.
func (m *AllocationManager) OnSelectHardware(id int, hazardRateActive float64) {
	m.sel.record(m.tree, id, hazardRateActive)
}

// SystemHazardRate returns the hazard rate captured for the root.
func (m *AllocationManager) SystemHazardRate() float64 {
	_, _, system := m.sel.snapshot()
	return system
}

// DoCalculateGoals derives the two goal measures of node id not selected by
// its goal_measure_id. An unreachable goal zeroes the derived measures and
// is announced on TopicFailCalculateGoals; it is not returned as an error.
func (m *AllocationManager) DoCalculateGoals(id int) (reliability.Goals, error) {
	start := time.Now()

	n, err := m.tree.Get(id)
	if err != nil {
		return reliability.Goals{}, err
	}

	goals, calcErr := reliability.CalculateGoals(goalsFromNode(&n, m.deps.MissionTime))
	if err := m.tree.Update(id, func(n *hardware.Node) { applyGoals(n, goals) }); err != nil {
		return reliability.Goals{}, err
	}

	measure := goals.Measure.String()
	if calcErr != nil {
		msg := fmt.Sprintf("Failed to calculate allocation goals for hardware ID %d.  %v", id, calcErr)
		m.deps.Logger.Warn("goal unreachable", logging.NodeID(id), logging.Measure(measure), logging.Error(calcErr))
		m.recordGoal(measure, metrics.StatusPartial, start)
		publish(m.deps.Bus, pubsub.TopicFailCalculateGoals, id, msg, nil)
		return goals, nil
	}

	m.deps.Logger.Debug("calculated allocation goals",
		logging.NodeID(id),
		logging.Measure(measure),
		logging.Float64("reliability_goal", goals.Reliability),
		logging.Float64("hazard_rate_goal", goals.HazardRate),
		logging.Float64("mtbf_goal", goals.MTBF),
	)
	m.recordGoal(measure, metrics.StatusSuccess, start)
	publish(m.deps.Bus, pubsub.TopicSucceedCalculateGoals, id, "", m.tree)
	return goals, nil
}

// DoCalculateAllocation apportions node id's goal among its direct children
// and writes the allocations back into the tree. Recoverable failures zero
// the affected child and are announced on TopicFailCalculateAllocation; the
// run still completes. An unknown allocation method changes nothing and
// returns an error wrapping allocation.ErrUnknownMethod.
func (m *AllocationManager) DoCalculateAllocation(id int) (*allocation.Outcome, error) {
	start := time.Now()

	parent, err := m.tree.Get(id)
	if err != nil {
		return nil, err
	}
	nodes, err := m.tree.Children(id)
	if err != nil {
		return nil, err
	}

	children := make([]allocation.Child, len(nodes))
	for i := range nodes {
		children[i] = childFromNode(&nodes[i], m.deps.MissionTime)
	}

	// Children carry their own active hazard rates, so only the system
	// rate comes from the selection.
	_, _, systemRate := m.sel.snapshot()
	ctx := allocation.Context{SystemHazardRate: systemRate}

	p := parentFromNode(&parent)
	out, err := allocation.Allocate(p, children, ctx, m.Options())
	if err != nil {
		m.deps.Logger.Error("allocation rejected",
			logging.NodeID(id),
			logging.Int("allocation_method_id", parent.AllocationMethodID),
			logging.Error(err),
		)
		if m.deps.Metrics != nil {
			m.deps.Metrics.RecordAllocationError(p.Method.String())
		}
		msg := fmt.Sprintf("Failed to allocate reliability for allocation record ID %d.  %v", id, err)
		publish(m.deps.Bus, pubsub.TopicFailCalculateAllocation, id, msg, nil)
		return nil, err
	}

	for i := range out.Children {
		c := &out.Children[i]
		if err := m.tree.Update(c.ID, func(n *hardware.Node) { applyChild(n, c) }); err != nil {
			return nil, err
		}
	}

	reasons := make(map[string]int)
	for _, f := range out.Failures {
		reasons[string(f.Reason)]++
		m.deps.Logger.Warn("allocation failed",
			logging.NodeID(f.NodeID),
			logging.Method(f.Method.String()),
			logging.Reason(string(f.Reason)),
			logging.String("message", f.Message),
		)
		publish(m.deps.Bus, pubsub.TopicFailCalculateAllocation, f.NodeID, f.Message, nil)
	}

	if m.deps.Metrics != nil {
		m.deps.Metrics.RecordAllocation(out.Method.String(), len(out.Children), reasons, time.Since(start))
	}
	m.deps.Logger.Debug("allocated reliability",
		logging.NodeID(id),
		logging.Method(out.Method.String()),
		logging.Count(len(out.Children)),
		logging.Int("failures", len(out.Failures)),
	)
	publish(m.deps.Bus, pubsub.TopicSucceedCalculateAllocation, id, "", m.tree)
	return out, nil
}

// TreeResult summarizes DoAllocateTree.
type TreeResult struct {
	// Allocated lists, in visiting order, the nodes whose children were
	// apportioned.
	Allocated []int
	Failures  []allocation.Failure
}

// DoAllocateTree calculates the goals of rootID and then allocates level by
// level, breadth first, down to the leaves. Each allocated child's goal
// becomes the goal its own children share. The first hard error stops the
// walk; nodes already allocated keep their results.
func (m *AllocationManager) DoAllocateTree(rootID int) (*TreeResult, error) {
	timer := logging.StartTimer(m.deps.Logger, "allocate tree", logging.NodeID(rootID))

	root, err := m.tree.Get(rootID)
	if err != nil {
		timer.EndError(err)
		return nil, err
	}
	if root.IsRoot() {
		m.OnSelectHardware(root.ID, root.HazardRateActive)
	}

	if _, err := m.DoCalculateGoals(rootID); err != nil {
		timer.EndError(err)
		return nil, err
	}

	res := &TreeResult{}
	queue := []int{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if !m.tree.HasChildren(id) {
			continue
		}

		out, err := m.DoCalculateAllocation(id)
		if err != nil {
			timer.EndError(err)
			return res, fmt.Errorf("allocate tree below %d: %w", id, err)
		}
		res.Allocated = append(res.Allocated, id)
		res.Failures = append(res.Failures, out.Failures...)
		for _, c := range out.Children {
			queue = append(queue, c.ID)
		}
	}

	timer.End(logging.Count(len(res.Allocated)), logging.Int("failures", len(res.Failures)))
	return res, nil
}

func (m *AllocationManager) recordGoal(measure, status string, start time.Time) {
	if m.deps.Metrics != nil {
		m.deps.Metrics.RecordGoalCalculation(measure, status, time.Since(start))
	}
}

// IsUnknownMethod reports whether err came from an unrecognized allocation
// or similar item method id.
func IsUnknownMethod(err error) bool {
	return errors.Is(err, allocation.ErrUnknownMethod) || errors.Is(err, similaritem.ErrUnknownMethod)
}
