package programdb

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/ramstk-analysis/pkg/hardware"
	"github.com/dd0wney/ramstk-analysis/pkg/metrics"
)

// newTestStore connects to RAMSTK_TEST_DATABASE_URL, skipping when unset.
func newTestStore(t *testing.T) (*PGStore, *metrics.Registry) {
	t.Helper()
	url := os.Getenv("RAMSTK_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("RAMSTK_TEST_DATABASE_URL not set")
	}
	reg := metrics.NewRegistry()
	s, err := NewPGStore(context.Background(), url, WithMetrics(reg))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, reg
}

func loadFixture(t *testing.T) *hardware.Tree {
	t.Helper()
	f, err := os.Open("../hardware/testdata/system.yaml")
	require.NoError(t, err)
	defer f.Close()
	tree, err := hardware.LoadFixture(f)
	require.NoError(t, err)
	return tree
}

func TestNewPGStoreBadURL(t *testing.T) {
	_, err := NewPGStore(context.Background(), "postgres://[::1")
	assert.ErrorContains(t, err, "failed to parse database URL")
}

func TestPGStoreRoundTrip(t *testing.T) {
	s, reg := newTestStore(t)
	ctx := context.Background()
	const revision = 9001

	fixture := loadFixture(t)
	require.NoError(t, s.PutTree(ctx, revision, fixture))

	tree, err := s.LoadTree(ctx, revision)
	require.NoError(t, err)
	assert.Equal(t, fixture.Len(), tree.Len())

	want, _ := fixture.Get(3)
	got, err := tree.Get(3)
	require.NoError(t, err)
	want.RevisionID = revision
	assert.Equal(t, want, got)

	require.NoError(t, tree.Update(3, func(n *hardware.Node) {
		n.HazardRateAlloc = 0.0015
		n.Results[0] = 0.00062934
	}))
	updated, _ := tree.Get(3)
	require.NoError(t, s.SaveNodes(ctx, revision, []hardware.Node{updated}))

	reloaded, err := s.LoadTree(ctx, revision)
	require.NoError(t, err)
	got, _ = reloaded.Get(3)
	assert.Equal(t, 0.0015, got.HazardRateAlloc)
	assert.InDelta(t, 0.00062934, got.Results[0], 1e-12)

	err = s.SaveNodes(ctx, revision, []hardware.Node{{ID: 999}})
	assert.ErrorIs(t, err, hardware.ErrNodeNotFound)

	_, err = s.LoadTree(ctx, revision+1)
	assert.ErrorIs(t, err, hardware.ErrRevisionNotFound)

	assert.NotNil(t, reg.StoreOperationsTotal)
}
