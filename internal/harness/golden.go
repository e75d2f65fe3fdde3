package harness

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/studyseq/internal/ir"
	"github.com/roach88/studyseq/internal/sequence"
)

// PopulationSnapshot captures the distinct flattened sequences of a run.
// Distinct sequences are listed in order of first appearance.
type PopulationSnapshot struct {
	ScenarioName string             `json:"scenario_name"`
	Sequences    int                `json:"sequences"`
	Distinct     []DistinctSequence `json:"distinct"`
}

// DistinctSequence is one flattened sequence and how many participants got it.
type DistinctSequence struct {
	Steps []string `json:"steps"`
	Count int      `json:"count"`
}

// Snapshot builds the snapshot of a generated population.
func Snapshot(name string, seqs []*ir.Sequence) *PopulationSnapshot {
	snap := &PopulationSnapshot{ScenarioName: name, Sequences: len(seqs)}
	index := make(map[string]int)
	for _, seq := range seqs {
		flat := sequence.FlatMap(seq)
		key := strings.Join(flat, "\x00")
		if i, ok := index[key]; ok {
			snap.Distinct[i].Count++
			continue
		}
		index[key] = len(snap.Distinct)
		snap.Distinct = append(snap.Distinct, DistinctSequence{Steps: flat, Count: 1})
	}
	return snap
}

// toCanonicalMap converts a PopulationSnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles IR types and primitives.
func (s *PopulationSnapshot) toCanonicalMap() map[string]any {
	distinct := make([]any, len(s.Distinct))
	for i, d := range s.Distinct {
		distinct[i] = map[string]any{
			"steps": d.Steps,
			"count": d.Count,
		}
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"sequences":     s.Sequences,
		"distinct":      distinct,
	}
}

// Canonical returns the golden file encoding of the snapshot.
func (s *PopulationSnapshot) Canonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its population against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails or the scenario produced no
// population. Test failure (via goldie) occurs if the population doesn't
// match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if result.GenerationError != nil {
		return result.GenerationError
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's population against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result.Sequences).Canonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
