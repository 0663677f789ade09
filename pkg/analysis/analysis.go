// Package analysis runs the allocation and similar item calculations
// against a hardware tree, writes the results back into the tree and
// announces each outcome on the message bus.
package analysis

import (
	"errors"
	"sync"

	"github.com/dd0wney/ramstk-analysis/pkg/hardware"
	"github.com/dd0wney/ramstk-analysis/pkg/logging"
	"github.com/dd0wney/ramstk-analysis/pkg/metrics"
	"github.com/dd0wney/ramstk-analysis/pkg/pubsub"
)

// DefaultMissionTime is used for nodes without a mission time when no other
// default is configured.
const DefaultMissionTime = 100.0

// ErrNoTree is returned when a manager is built without a tree.
var ErrNoTree = errors.New("analysis: nil hardware tree")

// Deps are the collaborators shared by the managers. Any of them may be
// left nil.
type Deps struct {
	Bus     *pubsub.PubSub
	Logger  logging.Logger
	Metrics *metrics.Registry

	// MissionTime replaces a zero mission time on a node.
	MissionTime float64
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logging.NewNopLogger()
	}
	if d.MissionTime == 0 {
		d.MissionTime = DefaultMissionTime
	}
	return d
}

// selection holds the hazard rates captured when hardware is selected.
type selection struct {
	mu               sync.Mutex
	nodeID           int
	nodeHazardRate   float64
	systemHazardRate float64
}

// record stores hazardRate for id, and as the system hazard rate when id
// is the root of tree.
func (s *selection) record(tree *hardware.Tree, id int, hazardRate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodeID = id
	s.nodeHazardRate = hazardRate
	if root, err := tree.Root(); err == nil && root.ID == id {
		s.systemHazardRate = hazardRate
	}
}

func (s *selection) snapshot() (nodeID int, node, system float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodeID, s.nodeHazardRate, s.systemHazardRate
}

func publish(bus *pubsub.PubSub, topic string, nodeID int, msg string, tree *hardware.Tree) {
	if bus == nil {
		return
	}
	bus.Publish(pubsub.Event{Topic: topic, NodeID: nodeID, Message: msg, Tree: tree})
}
