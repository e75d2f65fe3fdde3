package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/studyseq/internal/balance"
	"github.com/roach88/studyseq/internal/ir"
	"github.com/roach88/studyseq/internal/sequence"
)

// flatResult builds a result from flat step lists, each ending in end.
func flatResult(seqs ...[]string) *Result {
	result := NewResult()
	for _, steps := range seqs {
		seq := &ir.Sequence{Order: ir.OrderFixed, OrderPath: ir.RootPath}
		for _, s := range steps {
			seq.Components = append(seq.Components, ir.LeafEntry(s))
		}
		result.Sequences = append(result.Sequences, seq)
	}
	result.Report = balance.Analyze(result.Sequences)
	return result
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertLength,
		Expected: "length >= 3",
		Actual:   "sequence 1 has length 2",
		Example:  []string{"a", "end"},
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: length")
	assert.Contains(t, msg, "Expected: length >= 3")
	assert.Contains(t, msg, "Actual: sequence 1 has length 2")
	assert.Contains(t, msg, "Offending sequence:\n  a end")
}

func TestEvaluateAssertions_Occurrences(t *testing.T) {
	result := flatResult(
		[]string{"a", "b", "end"},
		[]string{"b", "a", "end"},
		[]string{"a", "c", "end"},
	)

	assert.Empty(t, EvaluateAssertions(result, []Assertion{
		{Type: AssertOccurrences, Steps: []string{"a"}, Count: intPtr(3)},
		{Type: AssertOccurrences, Steps: []string{"b", "c"}, Min: intPtr(1), Max: intPtr(2)},
		{Type: AssertOccurrences, Steps: []string{"missing"}, Max: intPtr(0)},
	}))

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertOccurrences, Steps: []string{"a", "c"}, Min: intPtr(2)},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "c occurs >= 2 times")
}

func TestEvaluateAssertions_PerSequence(t *testing.T) {
	result := flatResult(
		[]string{"a", "x", "a", "end"},
		[]string{"a", "end"},
	)

	errs := EvaluateAssertions(result, []Assertion{{Type: AssertPerSequence, Step: "a", Count: intPtr(2)}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "sequence 1 has 1")
	assert.Contains(t, errs[0], "a end")

	assert.Empty(t, EvaluateAssertions(result, []Assertion{{Type: AssertPerSequence, Step: "end", Count: intPtr(1)}}))
}

func TestEvaluateAssertions_Spread(t *testing.T) {
	result := flatResult(
		[]string{"a", "b", "end"},
		[]string{"a", "c", "end"},
	)

	assert.Empty(t, EvaluateAssertions(result, []Assertion{{Type: AssertSpread, Steps: []string{"b", "c"}, Max: intPtr(0)}}))

	errs := EvaluateAssertions(result, []Assertion{{Type: AssertSpread, Max: intPtr(0)}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Actual: 1")
}

func TestEvaluateAssertions_Length(t *testing.T) {
	result := flatResult(
		[]string{"a", "b", "end"},
		[]string{"a", "end"},
	)

	assert.Empty(t, EvaluateAssertions(result, []Assertion{{Type: AssertLength, Min: intPtr(2), Max: intPtr(3)}}))

	errs := EvaluateAssertions(result, []Assertion{{Type: AssertLength, Min: intPtr(3)}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "sequence 1 has length 2")
}

func TestEvaluateAssertions_EndOnce(t *testing.T) {
	good := flatResult([]string{"a", "end"})
	assert.Empty(t, EvaluateAssertions(good, []Assertion{{Type: AssertEndOnce}}))

	tests := map[string][]string{
		"missing":  {"a", "b"},
		"twice":    {"end", "a", "end"},
		"not last": {"end", "a"},
	}
	for name, steps := range tests {
		t.Run(name, func(t *testing.T) {
			errs := EvaluateAssertions(flatResult(steps), []Assertion{{Type: AssertEndOnce}})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], "Assertion failed: end_once")
		})
	}
}

func TestEvaluateAssertions_ExpectError(t *testing.T) {
	genErr := &sequence.ConfigError{
		Code:    sequence.ErrCodeInvalidSamples,
		Path:    "root-1",
		Field:   "numSamples",
		Message: "must be between 1 and 3 (number of components), got 4",
	}

	failed := NewResult()
	failed.GenerationError = genErr

	assert.Empty(t, EvaluateAssertions(failed, []Assertion{
		{Type: AssertExpectError, Code: string(sequence.ErrCodeInvalidSamples)},
		{Type: AssertExpectError, Contains: "root-1.numSamples"},
	}))

	errs := EvaluateAssertions(failed, []Assertion{{Type: AssertExpectError, Code: string(sequence.ErrCodeInvalidOrder)}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "error code INVALID_ORDER")

	// Non-error assertions are skipped once generation failed.
	assert.Empty(t, EvaluateAssertions(failed, []Assertion{
		{Type: AssertEndOnce},
		{Type: AssertExpectError, Code: string(sequence.ErrCodeInvalidSamples)},
	}))

	errs = EvaluateAssertions(failed, []Assertion{{Type: AssertEndOnce}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "generation failed")

	plain := NewResult()
	plain.GenerationError = errors.New("boom")
	errs = EvaluateAssertions(plain, []Assertion{{Type: AssertExpectError, Code: "INVALID_ORDER"}})
	require.Len(t, errs, 1)

	succeeded := flatResult([]string{"a", "end"})
	errs = EvaluateAssertions(succeeded, []Assertion{{Type: AssertExpectError, Contains: "boom"}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "generation succeeded")
}

func TestEvaluateAssertions_UnknownType(t *testing.T) {
	errs := EvaluateAssertions(flatResult([]string{"end"}), []Assertion{{Type: "bogus"}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `unknown assertion type "bogus"`)
}
