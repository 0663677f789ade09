package hardware

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSystem(t *testing.T) *Tree {
	t.Helper()
	f, err := os.Open("testdata/system.yaml")
	require.NoError(t, err)
	defer f.Close()

	tree, err := LoadFixture(f)
	require.NoError(t, err)
	return tree
}

func TestLoadFixture(t *testing.T) {
	tree := loadSystem(t)
	assert.Equal(t, 5, tree.Len())

	root, err := tree.Root()
	require.NoError(t, err)
	assert.Equal(t, "Radar system", root.Name)
	assert.Equal(t, 1, root.RevisionID)
	assert.Equal(t, 0.99732259, root.ReliabilityGoal)

	tx, err := tree.Get(2)
	require.NoError(t, err)
	assert.Equal(t, 3, tx.IntFactor)
	assert.Equal(t, 27.5, tx.TemperatureTo)
	assert.Equal(t, "Conformal coating added.", tx.ChangeDescriptions[1])
	assert.Empty(t, tx.ChangeDescriptions[2])

	rx, err := tree.Get(3)
	require.NoError(t, err)
	assert.Equal(t, [10]float64{0.85, 1.2}, rx.ChangeFactors)
	assert.Equal(t, [5]string{"pi1*pi2*hr", "", "res1 * 2"}, rx.Functions)
}

func TestLoadFixture_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "hardware: [\n"},
		{"orphan", "hardware:\n  - id: 1\n  - id: 2\n    parent_id: 7\n"},
		{"too many factors", "hardware:\n  - id: 1\n    change_factors: [1,2,3,4,5,6,7,8,9,10,11]\n"},
		{"invalid field", "hardware:\n  - id: 1\n    duty_cycle: 150\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFixture(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Put(1, loadSystem(t))

	tree, err := store.LoadTree(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, tree.Update(2, func(n *Node) { n.ReliabilityAlloc = 0.97 }))
	again, err := store.LoadTree(ctx, 1)
	require.NoError(t, err)
	n, _ := again.Get(2)
	assert.Zero(t, n.ReliabilityAlloc, "loaded trees are independent copies")

	changed, _ := tree.Get(2)
	require.NoError(t, store.SaveNodes(ctx, 1, []Node{changed}))
	again, _ = store.LoadTree(ctx, 1)
	n, _ = again.Get(2)
	assert.Equal(t, 0.97, n.ReliabilityAlloc)

	_, err = store.LoadTree(ctx, 2)
	assert.ErrorIs(t, err, ErrRevisionNotFound)
	assert.ErrorIs(t, store.SaveNodes(ctx, 2, nil), ErrRevisionNotFound)
	assert.ErrorIs(t, store.SaveNodes(ctx, 1, []Node{{ID: 99}}), ErrNodeNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.LoadTree(cancelled, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
