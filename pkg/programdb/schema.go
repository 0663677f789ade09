package programdb

import "context"

// migrate creates the program database tables. Each hardware item has one
// allocation row and one similar item row.
func (s *PGStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS ramstk_hardware (
		revision_id INTEGER NOT NULL,
		hardware_id INTEGER NOT NULL,
		parent_id INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL DEFAULT '',
		hazard_rate_active DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (revision_id, hardware_id)
	);

	CREATE TABLE IF NOT EXISTS ramstk_allocation (
		revision_id INTEGER NOT NULL,
		hardware_id INTEGER NOT NULL,
		goal_measure_id INTEGER NOT NULL DEFAULT 1,
		reliability_goal DOUBLE PRECISION NOT NULL DEFAULT 1,
		hazard_rate_goal DOUBLE PRECISION NOT NULL DEFAULT 0,
		mtbf_goal DOUBLE PRECISION NOT NULL DEFAULT 0,
		allocation_method_id INTEGER NOT NULL DEFAULT 1,
		mission_time DOUBLE PRECISION NOT NULL DEFAULT 100,
		duty_cycle DOUBLE PRECISION NOT NULL DEFAULT 100,
		n_sub_systems INTEGER NOT NULL DEFAULT 1,
		n_sub_elements INTEGER NOT NULL DEFAULT 1,
		int_factor INTEGER NOT NULL DEFAULT 1,
		soa_factor INTEGER NOT NULL DEFAULT 1,
		op_time_factor INTEGER NOT NULL DEFAULT 1,
		env_factor INTEGER NOT NULL DEFAULT 1,
		weight_factor DOUBLE PRECISION NOT NULL DEFAULT 1,
		percent_weight_factor DOUBLE PRECISION NOT NULL DEFAULT 0,
		reliability_alloc DOUBLE PRECISION NOT NULL DEFAULT 1,
		hazard_rate_alloc DOUBLE PRECISION NOT NULL DEFAULT 0,
		mtbf_alloc DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (revision_id, hardware_id),
		FOREIGN KEY (revision_id, hardware_id)
			REFERENCES ramstk_hardware (revision_id, hardware_id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS ramstk_similar_item (
		revision_id INTEGER NOT NULL,
		hardware_id INTEGER NOT NULL,
		similar_item_method_id INTEGER NOT NULL DEFAULT 1,
		environment_from_id INTEGER NOT NULL DEFAULT 0,
		environment_to_id INTEGER NOT NULL DEFAULT 0,
		quality_from_id INTEGER NOT NULL DEFAULT 0,
		quality_to_id INTEGER NOT NULL DEFAULT 0,
		temperature_from DOUBLE PRECISION NOT NULL DEFAULT 30,
		temperature_to DOUBLE PRECISION NOT NULL DEFAULT 30,
		change_descriptions TEXT[] NOT NULL DEFAULT '{}',
		change_factors DOUBLE PRECISION[] NOT NULL DEFAULT '{}',
		user_floats DOUBLE PRECISION[] NOT NULL DEFAULT '{}',
		user_ints INTEGER[] NOT NULL DEFAULT '{}',
		functions TEXT[] NOT NULL DEFAULT '{}',
		results DOUBLE PRECISION[] NOT NULL DEFAULT '{}',
		PRIMARY KEY (revision_id, hardware_id),
		FOREIGN KEY (revision_id, hardware_id)
			REFERENCES ramstk_hardware (revision_id, hardware_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_ramstk_hardware_parent ON ramstk_hardware(revision_id, parent_id);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}
