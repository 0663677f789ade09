package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = "../../pkg/hardware/testdata/system.yaml"

func runCalc(t *testing.T, o options) (string, string, error) {
	t.Helper()
	if o.treePath == "" {
		o.treePath = fixture
	}
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), o, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestAllocate(t *testing.T) {
	out, _, err := runCalc(t, options{op: opAllocate, nodeID: 1, chaining: "independent"})
	require.NoError(t, err)
	assert.Contains(t, out, "equal allocation below hardware 1 (independent)")
	assert.Contains(t, out, "Transmitter")
	assert.Contains(t, out, "Power supply")
	assert.Contains(t, out, "0.99910673")
}

func TestAllocateTree(t *testing.T) {
	out, _, err := runCalc(t, options{op: opAllocateTree, nodeID: 1})
	require.NoError(t, err)
	assert.Contains(t, out, "allocated below 2 items")
	assert.Contains(t, out, "Amplifier")
}

func TestGoals(t *testing.T) {
	out, _, err := runCalc(t, options{op: opGoals, nodeID: 1})
	require.NoError(t, err)
	assert.Contains(t, out, "37299.506")
}

func TestSimilarItemWarnsPerFailedEquation(t *testing.T) {
	out, _, err := runCalc(t, options{op: opSimilarItem, nodeID: 3})
	require.NoError(t, err)
	assert.Contains(t, out, "Receiver")
}

func TestUnknownMethodIsHardError(t *testing.T) {
	// Receiver has no allocation method.
	_, _, err := runCalc(t, options{op: opAllocate, nodeID: 3})
	assert.Error(t, err)
}

func TestUnknownOperation(t *testing.T) {
	_, _, err := runCalc(t, options{op: "reticulate", nodeID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operation")
}

func TestBadChaining(t *testing.T) {
	_, _, err := runCalc(t, options{op: opAllocate, nodeID: 1, chaining: "sideways"})
	assert.Error(t, err)
}

func TestSaveNeedsDatabase(t *testing.T) {
	_, _, err := runCalc(t, options{op: opGoals, nodeID: 1, save: true})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "database"))
}

func TestUnknownNode(t *testing.T) {
	_, _, err := runCalc(t, options{op: opGoals, nodeID: 77})
	assert.Error(t, err)
}

func TestHistoryExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.csv")
	_, _, err := runCalc(t, options{op: opAllocateTree, nodeID: 1, history: path})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	// header, the root's goals, then one allocation per parent
	require.GreaterOrEqual(t, len(records), 4)
	assert.Equal(t, "goals", records[1][2])
	assert.Equal(t, "allocation", records[2][2])
}

func TestHistoryExportBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "runs.jsonl")
	_, _, err := runCalc(t, options{op: opGoals, nodeID: 1, history: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history")
}
