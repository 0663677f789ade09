package programdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dd0wney/ramstk-analysis/pkg/hardware"
	"github.com/dd0wney/ramstk-analysis/pkg/logging"
)

const selectTree = `
	SELECT h.hardware_id, h.parent_id, h.name, h.hazard_rate_active,
	       COALESCE(a.goal_measure_id, 1), COALESCE(a.reliability_goal, 1),
	       COALESCE(a.hazard_rate_goal, 0), COALESCE(a.mtbf_goal, 0),
	       COALESCE(a.allocation_method_id, 1), COALESCE(a.mission_time, 100),
	       COALESCE(a.duty_cycle, 100), COALESCE(a.n_sub_systems, 1),
	       COALESCE(a.n_sub_elements, 1), COALESCE(a.int_factor, 1),
	       COALESCE(a.soa_factor, 1), COALESCE(a.op_time_factor, 1),
	       COALESCE(a.env_factor, 1), COALESCE(a.weight_factor, 1),
	       COALESCE(a.percent_weight_factor, 0), COALESCE(a.reliability_alloc, 1),
	       COALESCE(a.hazard_rate_alloc, 0), COALESCE(a.mtbf_alloc, 0),
	       COALESCE(s.similar_item_method_id, 1),
	       COALESCE(s.environment_from_id, 0), COALESCE(s.environment_to_id, 0),
	       COALESCE(s.quality_from_id, 0), COALESCE(s.quality_to_id, 0),
	       COALESCE(s.temperature_from, 30), COALESCE(s.temperature_to, 30),
	       COALESCE(s.change_descriptions, '{}'), COALESCE(s.change_factors, '{}'),
	       COALESCE(s.user_floats, '{}'), COALESCE(s.user_ints, '{}'),
	       COALESCE(s.functions, '{}'), COALESCE(s.results, '{}')
	FROM ramstk_hardware h
	LEFT JOIN ramstk_allocation a
	       ON a.revision_id = h.revision_id AND a.hardware_id = h.hardware_id
	LEFT JOIN ramstk_similar_item s
	       ON s.revision_id = h.revision_id AND s.hardware_id = h.hardware_id
	WHERE h.revision_id = $1
	ORDER BY h.parent_id, h.hardware_id
`

// LoadTree reads every hardware item of a revision and assembles the tree.
func (s *PGStore) LoadTree(ctx context.Context, revisionID int) (tree *hardware.Tree, err error) {
	start := time.Now()
	defer func() { s.observe("load_tree", start, err) }()

	rows, err := s.pool.Query(ctx, selectTree, revisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query hardware: %w", err)
	}
	defer rows.Close()

	var nodes []hardware.Node
	for rows.Next() {
		var r row
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, fmt.Errorf("failed to scan hardware: %w", err)
		}
		n, err := r.node(revisionID)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read hardware: %w", err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %d", hardware.ErrRevisionNotFound, revisionID)
	}

	tree, err = hardware.BuildTree(nodes)
	if err != nil {
		return nil, fmt.Errorf("revision %d: %w", revisionID, err)
	}
	if s.metrics != nil {
		s.metrics.SetHardwareItems(tree.Len())
	}
	s.logger.Info("loaded hardware tree", logging.RevisionID(revisionID), logging.Count(tree.Len()))
	return tree, nil
}

const updateAllocation = `
	UPDATE ramstk_allocation
	SET goal_measure_id = $3, reliability_goal = $4, hazard_rate_goal = $5, mtbf_goal = $6,
	    allocation_method_id = $7, mission_time = $8, duty_cycle = $9,
	    n_sub_systems = $10, n_sub_elements = $11, int_factor = $12, soa_factor = $13,
	    op_time_factor = $14, env_factor = $15, weight_factor = $16,
	    percent_weight_factor = $17, reliability_alloc = $18, hazard_rate_alloc = $19,
	    mtbf_alloc = $20
	WHERE revision_id = $1 AND hardware_id = $2
`

const updateSimilarItem = `
	UPDATE ramstk_similar_item
	SET similar_item_method_id = $3, environment_from_id = $4, environment_to_id = $5,
	    quality_from_id = $6, quality_to_id = $7, temperature_from = $8, temperature_to = $9,
	    change_descriptions = $10, change_factors = $11, user_floats = $12, user_ints = $13,
	    functions = $14, results = $15
	WHERE revision_id = $1 AND hardware_id = $2
`

// SaveNodes writes the allocation and similar item records of nodes in one
// transaction. Every node must already exist in the revision.
func (s *PGStore) SaveNodes(ctx context.Context, revisionID int, nodes []hardware.Node) (err error) {
	start := time.Now()
	defer func() { s.observe("save_nodes", start, err) }()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	for i := range nodes {
		if err := saveNode(ctx, tx, revisionID, &nodes[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func saveNode(ctx context.Context, tx pgx.Tx, revisionID int, n *hardware.Node) error {
	tag, err := tx.Exec(ctx, updateAllocation, allocationArgs(revisionID, n)...)
	if err != nil {
		return fmt.Errorf("failed to update allocation %d: %w", n.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("allocation %d: %w", n.ID, hardware.ErrNodeNotFound)
	}

	tag, err = tx.Exec(ctx, updateSimilarItem, similarItemArgs(revisionID, n)...)
	if err != nil {
		return fmt.Errorf("failed to update similar item %d: %w", n.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("similar item %d: %w", n.ID, hardware.ErrNodeNotFound)
	}
	return nil
}

// PutTree replaces a revision with the contents of tree, for example to
// seed a database from a fixture.
func (s *PGStore) PutTree(ctx context.Context, revisionID int, tree *hardware.Tree) (err error) {
	start := time.Now()
	defer func() { s.observe("put_tree", start, err) }()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `DELETE FROM ramstk_hardware WHERE revision_id = $1`, revisionID); err != nil {
		return fmt.Errorf("failed to clear revision %d: %w", revisionID, err)
	}

	batch := &pgx.Batch{}
	for _, n := range tree.Nodes() {
		batch.Queue(`INSERT INTO ramstk_hardware (revision_id, hardware_id, parent_id, name, hazard_rate_active)
			VALUES ($1, $2, $3, $4, $5)`, revisionID, n.ID, n.ParentID, n.Name, n.HazardRateActive)
		batch.Queue(`INSERT INTO ramstk_allocation (revision_id, hardware_id) VALUES ($1, $2)`, revisionID, n.ID)
		batch.Queue(`INSERT INTO ramstk_similar_item (revision_id, hardware_id) VALUES ($1, $2)`, revisionID, n.ID)
		batch.Queue(updateAllocation, allocationArgs(revisionID, &n)...)
		batch.Queue(updateSimilarItem, similarItemArgs(revisionID, &n)...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert revision %d: %w", revisionID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// ErrArrayTooLong is returned when a stored array holds more values than
// the record has slots.
var ErrArrayTooLong = errors.New("stored array exceeds slot count")
