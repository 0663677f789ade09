package programdb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/ramstk-analysis/pkg/hardware"
)

func TestRowNode(t *testing.T) {
	r := row{
		n:                  hardware.Node{ID: 3, ParentID: 1, Name: "Receiver"},
		changeDescriptions: []string{"new supplier"},
		changeFactors:      []float64{0.85, 1.2},
		userInts:           []int32{4, 5},
		functions:          []string{"pi1*pi2*hr"},
	}

	n, err := r.node(2)
	require.NoError(t, err)
	assert.Equal(t, 2, n.RevisionID)
	assert.Equal(t, "new supplier", n.ChangeDescriptions[0])
	assert.Equal(t, 1.2, n.ChangeFactors[1])
	assert.Equal(t, 0.0, n.ChangeFactors[2])
	assert.Equal(t, [5]int{4, 5, 0, 0, 0}, n.UserInts)
	assert.Equal(t, "pi1*pi2*hr", n.Functions[0])
}

func TestRowNodeRejectsLongArrays(t *testing.T) {
	r := row{
		n:       hardware.Node{ID: 7},
		results: []float64{1, 2, 3, 4, 5, 6},
	}
	_, err := r.node(1)
	assert.ErrorIs(t, err, ErrArrayTooLong)
	assert.True(t, strings.Contains(err.Error(), "results"))
}

func TestRowDestMatchesSelect(t *testing.T) {
	var r row
	assert.Equal(t, 35, len(r.dest()))
	assert.Equal(t, len(r.dest()), selectColumns(selectTree))
}

// selectColumns counts the top-level commas of the SELECT list.
func selectColumns(query string) int {
	list := query[:strings.Index(query, "FROM")]
	n, depth := 1, 0
	for _, c := range list {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				n++
			}
		}
	}
	return n
}

func TestArgsMatchUpdates(t *testing.T) {
	n := hardware.Node{ID: 4, UserInts: [5]int{1, 2, 3, 4, 5}}

	assert.Len(t, allocationArgs(1, &n), strings.Count(updateAllocation, "$"))
	args := similarItemArgs(1, &n)
	assert.Len(t, args, strings.Count(updateSimilarItem, "$"))
	assert.Equal(t, []int32{1, 2, 3, 4, 5}, args[12])
}
