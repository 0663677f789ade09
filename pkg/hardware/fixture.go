package hardware

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// fixtureNode is the YAML form of a Node. The fixed-size similar-item
// arrays are lists here so a fixture may list fewer values than slots.
type fixtureNode struct {
	Node               `yaml:",inline"`
	ChangeDescriptions []string  `yaml:"change_descriptions"`
	ChangeFactors      []float64 `yaml:"change_factors"`
	UserFloats         []float64 `yaml:"user_floats"`
	UserInts           []int     `yaml:"user_ints"`
	Functions          []string  `yaml:"functions"`
	Results            []float64 `yaml:"results"`
}

type fixture struct {
	RevisionID int           `yaml:"revision_id"`
	Hardware   []fixtureNode `yaml:"hardware"`
}

// LoadFixture reads a YAML tree fixture. Items are inserted in file order,
// so parents must be listed before their children.
//
//	revision_id: 1
//	hardware:
//	  - id: 1
//	    name: System
//	    goal_measure_id: 1
//	    reliability_goal: 0.99
//	  - id: 2
//	    parent_id: 1
//	    change_factors: [0.85, 1.2]
func LoadFixture(r io.Reader) (*Tree, error) {
	var f fixture
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode hardware fixture: %w", err)
	}

	t := NewTree()
	for i, fn := range f.Hardware {
		n := fn.Node
		if n.RevisionID == 0 {
			n.RevisionID = f.RevisionID
		}
		if err := fillArrays(&n, &fn); err != nil {
			return nil, fmt.Errorf("hardware[%d] (id %d): %w", i, n.ID, err)
		}
		if err := t.Insert(n); err != nil {
			return nil, fmt.Errorf("hardware[%d]: %w", i, err)
		}
	}
	return t, nil
}

func fillArrays(n *Node, fn *fixtureNode) error {
	if err := fill(n.ChangeDescriptions[:], fn.ChangeDescriptions, "change_descriptions"); err != nil {
		return err
	}
	if err := fill(n.ChangeFactors[:], fn.ChangeFactors, "change_factors"); err != nil {
		return err
	}
	if err := fill(n.UserFloats[:], fn.UserFloats, "user_floats"); err != nil {
		return err
	}
	if err := fill(n.UserInts[:], fn.UserInts, "user_ints"); err != nil {
		return err
	}
	if err := fill(n.Functions[:], fn.Functions, "functions"); err != nil {
		return err
	}
	return fill(n.Results[:], fn.Results, "results")
}

func fill[T any](dst, src []T, field string) error {
	if len(src) > len(dst) {
		return fmt.Errorf("%s: %d values, at most %d allowed", field, len(src), len(dst))
	}
	copy(dst, src)
	return nil
}
