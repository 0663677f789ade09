package analysis

import (
	"fmt"
	"time"

	"github.com/dd0wney/ramstk-analysis/pkg/hardware"
	"github.com/dd0wney/ramstk-analysis/pkg/logging"
	"github.com/dd0wney/ramstk-analysis/pkg/metrics"
	"github.com/dd0wney/ramstk-analysis/pkg/pubsub"
	"github.com/dd0wney/ramstk-analysis/pkg/similaritem"
)

// SimilarItemManager runs similar item analyses on hardware items.
type SimilarItemManager struct {
	tree *hardware.Tree
	deps Deps
	sel  selection
}

// NewSimilarItemManager creates a manager over tree.
func NewSimilarItemManager(tree *hardware.Tree, deps Deps) (*SimilarItemManager, error) {
	if tree == nil {
		return nil, ErrNoTree
	}
	deps = deps.withDefaults()
	deps.Logger = deps.Logger.With(logging.Component("similar-item"))
	return &SimilarItemManager{tree: tree, deps: deps}, nil
}

// OnSelectHardware records the active hazard rate of the selected item,
// used as the baseline of its next analysis.
func (m *SimilarItemManager) OnSelectHardware(id int, hazardRateActive float64) {
	m.sel.record(m.tree, id, hazardRateActive)
}

// baseline is the captured hazard rate when id is the selected item, else
// the rate stored on the node.
func (m *SimilarItemManager) baseline(n *hardware.Node) float64 {
	id, rate, _ := m.sel.snapshot()
	if id == n.ID {
		return rate
	}
	return n.HazardRateActive
}

// DoCalculateSimilarItem runs the analysis selected by node id's
// similar_item_method_id and writes the change factors and results back.
//
// Topic 6.3.3 fills change factors 1 to 3 and result 1; a from/to pair
// outside the tables is a hard error and nothing is written. The
// user-defined method fills results 1 to 5. An equation that fails to
// evaluate zeroes its result and is announced on
// TopicFailCalculateSimilarItem while the remaining equations still run.
func (m *SimilarItemManager) DoCalculateSimilarItem(id int) error {
	start := time.Now()

	n, err := m.tree.Get(id)
	if err != nil {
		return err
	}

	method, err := similaritem.ParseMethod(n.SimilarItemMethodID)
	if err != nil {
		return m.reject(id, "unknown", err, start)
	}

	switch method {
	case similaritem.Topic633:
		res, err := similaritem.CalculateTopic633(
			similaritem.Change[int]{From: n.EnvironmentFromID, To: n.EnvironmentToID},
			similaritem.Change[int]{From: n.QualityFromID, To: n.QualityToID},
			similaritem.Change[float64]{From: n.TemperatureFrom, To: n.TemperatureTo},
			m.baseline(&n),
		)
		if err != nil {
			return m.reject(id, method.String(), err, start)
		}
		err = m.tree.Update(id, func(n *hardware.Node) {
			n.ChangeFactors[0] = res.ChangeFactor1
			n.ChangeFactors[1] = res.ChangeFactor2
			n.ChangeFactors[2] = res.ChangeFactor3
			n.Results[0] = res.Result1
		})
		if err != nil {
			return err
		}
		m.record(method.String(), metrics.StatusSuccess, nil, start)

	case similaritem.UserDefined:
		out, slotErrs := similaritem.CalculateUserDefined(inputsFromNode(&n, m.baseline(&n)))
		if err := m.tree.Update(id, func(n *hardware.Node) { n.Results = out.Results }); err != nil {
			return err
		}

		status := metrics.StatusSuccess
		var failed []int
		for _, se := range slotErrs {
			failed = append(failed, se.Slot)
			msg := fmt.Sprintf("Failed to calculate similar item for hardware ID %d.  %v", id, se)
			m.deps.Logger.Warn("equation failed",
				logging.NodeID(id),
				logging.Slot(se.Slot),
				logging.String("function", se.Function),
				logging.Error(se.Err),
			)
			publish(m.deps.Bus, pubsub.TopicFailCalculateSimilarItem, id, msg, nil)
		}
		if len(failed) > 0 {
			status = metrics.StatusPartial
		}
		m.record(method.String(), status, failed, start)
	}

	m.deps.Logger.Debug("calculated similar item", logging.NodeID(id), logging.Method(method.String()))
	publish(m.deps.Bus, pubsub.TopicSucceedCalculateSimilarItem, id, "", m.tree)
	return nil
}

// DoRollUpChangeDescriptions replaces node id's change descriptions with
// those of its children, joined slot by slot. A node without children is
// left unchanged.
func (m *SimilarItemManager) DoRollUpChangeDescriptions(id int) error {
	children, err := m.tree.Children(id)
	if err != nil {
		return err
	}
	if len(children) == 0 {
		m.deps.Logger.Debug("nothing to roll up", logging.NodeID(id))
		return nil
	}

	descs := make([][similaritem.NumChangeDescriptions]string, len(children))
	for i := range children {
		descs[i] = children[i].ChangeDescriptions
	}
	rolled := similaritem.RollUpChangeDescriptions(descs)

	if err := m.tree.Update(id, func(n *hardware.Node) { n.ChangeDescriptions = rolled }); err != nil {
		return err
	}

	m.deps.Logger.Debug("rolled up change descriptions", logging.NodeID(id), logging.Count(len(children)))
	publish(m.deps.Bus, pubsub.TopicSucceedRollUpChanges, id, "", m.tree)
	return nil
}

// reject reports a hard error and returns it.
func (m *SimilarItemManager) reject(id int, method string, err error, start time.Time) error {
	m.deps.Logger.Error("similar item rejected", logging.NodeID(id), logging.Method(method), logging.Error(err))
	m.record(method, metrics.StatusError, nil, start)
	msg := fmt.Sprintf("Failed to calculate similar item for hardware ID %d.  %v", id, err)
	publish(m.deps.Bus, pubsub.TopicFailCalculateSimilarItem, id, msg, nil)
	return fmt.Errorf("similar item %d: %w", id, err)
}

func (m *SimilarItemManager) record(method, status string, failed []int, start time.Time) {
	if m.deps.Metrics != nil {
		m.deps.Metrics.RecordSimilarItem(method, status, failed, time.Since(start))
	}
}
