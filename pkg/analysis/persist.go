package analysis

import (
	"context"
	"fmt"

	"github.com/dd0wney/ramstk-analysis/pkg/hardware"
)

// SaveNodes writes the listed nodes of tree to store. With no ids every
// node is written.
func SaveNodes(ctx context.Context, store hardware.Store, revisionID int, tree *hardware.Tree, ids ...int) error {
	if len(ids) == 0 {
		return store.SaveNodes(ctx, revisionID, tree.Nodes())
	}

	nodes := make([]hardware.Node, 0, len(ids))
	for _, id := range ids {
		n, err := tree.Get(id)
		if err != nil {
			return fmt.Errorf("save nodes: %w", err)
		}
		nodes = append(nodes, n)
	}
	return store.SaveNodes(ctx, revisionID, nodes)
}

// Family returns id followed by the ids of its direct children, the nodes
// an allocation of id writes to.
func Family(tree *hardware.Tree, id int) ([]int, error) {
	children, err := tree.Children(id)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(children)+1)
	ids = append(ids, id)
	for _, c := range children {
		ids = append(ids, c.ID)
	}
	return ids, nil
}
