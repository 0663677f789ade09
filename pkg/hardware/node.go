// Package hardware holds the hardware assembly tree the analyses read from
// and write back to.
package hardware

// Node is one hardware item together with its allocation and similar-item
// records.
type Node struct {
	ID         int    `yaml:"id" validate:"required,min=1"`
	ParentID   int    `yaml:"parent_id" validate:"gte=0"`
	RevisionID int    `yaml:"revision_id" validate:"gte=0"`
	Name       string `yaml:"name" validate:"max=255"`

	// Predicted active hazard rate, failures per hour
	HazardRateActive float64 `yaml:"hazard_rate_active" validate:"gte=0"`

	// Goal
	GoalMeasureID   int     `yaml:"goal_measure_id" validate:"gte=0"`
	ReliabilityGoal float64 `yaml:"reliability_goal" validate:"gte=0,lte=1"`
	HazardRateGoal  float64 `yaml:"hazard_rate_goal" validate:"gte=0"`
	MTBFGoal        float64 `yaml:"mtbf_goal" validate:"gte=0"`

	// Allocation
	AllocationMethodID  int     `yaml:"allocation_method_id" validate:"gte=0"`
	MissionTime         float64 `yaml:"mission_time" validate:"gte=0"`
	DutyCycle           float64 `yaml:"duty_cycle" validate:"gte=0,lte=100"`
	NSubSystems         int     `yaml:"n_sub_systems" validate:"gte=0"`
	NSubElements        int     `yaml:"n_sub_elements" validate:"gte=0"`
	IntFactor           int     `yaml:"int_factor" validate:"gte=0,lte=10"`
	SOAFactor           int     `yaml:"soa_factor" validate:"gte=0,lte=10"`
	OpTimeFactor        int     `yaml:"op_time_factor" validate:"gte=0,lte=10"`
	EnvFactor           int     `yaml:"env_factor" validate:"gte=0,lte=10"`
	WeightFactor        float64 `yaml:"weight_factor"`
	PercentWeightFactor float64 `yaml:"percent_weight_factor"`
	ReliabilityAlloc    float64 `yaml:"reliability_alloc"`
	HazardRateAlloc     float64 `yaml:"hazard_rate_alloc"`
	MTBFAlloc           float64 `yaml:"mtbf_alloc"`

	// Similar item
	SimilarItemMethodID int         `yaml:"similar_item_method_id" validate:"gte=0"`
	EnvironmentFromID   int         `yaml:"environment_from_id" validate:"gte=0"`
	EnvironmentToID     int         `yaml:"environment_to_id" validate:"gte=0"`
	QualityFromID       int         `yaml:"quality_from_id" validate:"gte=0"`
	QualityToID         int         `yaml:"quality_to_id" validate:"gte=0"`
	TemperatureFrom     float64     `yaml:"temperature_from"`
	TemperatureTo       float64     `yaml:"temperature_to"`
	ChangeDescriptions  [10]string  `yaml:"-"`
	ChangeFactors       [10]float64 `yaml:"-"`
	UserFloats          [5]float64  `yaml:"-"`
	UserInts            [5]int      `yaml:"-"`
	Functions           [5]string   `yaml:"-" validate:"dive,max=1024"`
	Results             [5]float64  `yaml:"-"`
}

// IsRoot reports whether n is the top of its tree.
func (n *Node) IsRoot() bool {
	return n.ParentID == 0
}
