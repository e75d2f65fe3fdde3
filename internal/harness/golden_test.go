package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_FixedBreaks(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "fixed_breaks.yaml"))
	require.NoError(t, err)

	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden_FixedBreaks -update
	err = RunWithGolden(t, scenario)
	require.NoError(t, err)
}

func TestRunWithGolden_GenerationError(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "too_many_breaks.yaml"))
	require.NoError(t, err)

	err = RunWithGolden(t, scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_INTERRUPTION")
}

func TestSnapshot_CountsDistinctSequences(t *testing.T) {
	result := flatResult(
		[]string{"a", "b", "end"},
		[]string{"b", "a", "end"},
		[]string{"a", "b", "end"},
	)

	snap := Snapshot("pairs", result.Sequences)
	assert.Equal(t, "pairs", snap.ScenarioName)
	assert.Equal(t, 3, snap.Sequences)
	assert.Equal(t, []DistinctSequence{
		{Steps: []string{"a", "b", "end"}, Count: 2},
		{Steps: []string{"b", "a", "end"}, Count: 1},
	}, snap.Distinct)
}

func TestSnapshot_CanonicalEncoding(t *testing.T) {
	result := flatResult([]string{"a", "end"})
	snap := Snapshot("one", result.Sequences)

	data, err := snap.Canonical()
	require.NoError(t, err)
	assert.Equal(t, `{"distinct":[{"count":1,"steps":["a","end"]}],"scenario_name":"one","sequences":1}`, string(data))
}
