package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pathscout/internal/core/domain"
)

func TestRunsCmd_Lists(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "intersection")
}

func TestRunsCmd_Empty(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()
	svc.runs = nil

	out, err := execute(t, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs stored.")
}

func TestRunsShowCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "runs", "show", "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Run run-1 (completed")
	assert.Contains(t, out, "Signaling by Hippo")
}

func TestRunsShowCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	defer func() { runsJSON = false }()

	out, err := execute(t, "runs", "show", "--json", "run-1")
	require.NoError(t, err)

	var got domain.AnalysisRun
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "run-1", got.ID)
	assert.Len(t, got.Hypotheses, 1)
}

func TestRunsShowCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "runs", "show", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found: missing")
}
