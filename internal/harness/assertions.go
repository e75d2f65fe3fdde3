package harness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/studyseq/internal/ir"
	"github.com/roach88/studyseq/internal/sequence"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Example  []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Example) > 0 {
		fmt.Fprintf(&buf, "\nOffending sequence:\n  %s\n", strings.Join(e.Example, " "))
	}

	return buf.String()
}

// assertOccurrences checks every listed step's population total.
func assertOccurrences(result *Result, a Assertion) error {
	for _, step := range a.Steps {
		got := result.Report.Totals[step]
		if !within(got, a.Count, a.Min, a.Max) {
			return &AssertionError{
				Type:     AssertOccurrences,
				Expected: fmt.Sprintf("%s occurs %s times", step, describeBounds(a.Count, a.Min, a.Max)),
				Actual:   fmt.Sprintf("%d", got),
			}
		}
	}
	return nil
}

// assertPerSequence checks that a step occurs exactly Count times in every sequence.
func assertPerSequence(result *Result, a Assertion) error {
	for i, seq := range result.Sequences {
		flat := sequence.FlatMap(seq)
		n := 0
		for _, step := range flat {
			if step == a.Step {
				n++
			}
		}
		if n != *a.Count {
			return &AssertionError{
				Type:     AssertPerSequence,
				Expected: fmt.Sprintf("%s occurs %d times in every sequence", a.Step, *a.Count),
				Actual:   fmt.Sprintf("sequence %d has %d", i, n),
				Example:  flat,
			}
		}
	}
	return nil
}

// assertSpread checks max minus min occurrences over the listed steps.
func assertSpread(result *Result, a Assertion) error {
	spread := result.Report.Spread(a.Steps...)
	if spread > *a.Max || (a.Min != nil && spread < *a.Min) {
		return &AssertionError{
			Type:     AssertSpread,
			Expected: fmt.Sprintf("spread %s", describeBounds(nil, a.Min, a.Max)),
			Actual:   fmt.Sprintf("%d", spread),
		}
	}
	return nil
}

// assertLength checks flattened sequence lengths.
func assertLength(result *Result, a Assertion) error {
	for i, seq := range result.Sequences {
		flat := sequence.FlatMap(seq)
		if !within(len(flat), nil, a.Min, a.Max) {
			return &AssertionError{
				Type:     AssertLength,
				Expected: fmt.Sprintf("length %s", describeBounds(nil, a.Min, a.Max)),
				Actual:   fmt.Sprintf("sequence %d has length %d", i, len(flat)),
				Example:  flat,
			}
		}
	}
	return nil
}

// assertEndOnce checks that end is the last step and occurs nowhere else.
func assertEndOnce(result *Result) error {
	for i, seq := range result.Sequences {
		flat := sequence.FlatMap(seq)
		ends := 0
		for _, step := range flat {
			if step == ir.EndStep {
				ends++
			}
		}
		if ends != 1 || flat[len(flat)-1] != ir.EndStep {
			return &AssertionError{
				Type:     AssertEndOnce,
				Expected: fmt.Sprintf("exactly one %q, in last position", ir.EndStep),
				Actual:   fmt.Sprintf("sequence %d has %d", i, ends),
				Example:  flat,
			}
		}
	}
	return nil
}

// assertExpectError checks the generator's failure against the expected
// error code and message substring.
func assertExpectError(result *Result, a Assertion) error {
	if result.GenerationError == nil {
		return &AssertionError{
			Type:     AssertExpectError,
			Expected: fmt.Sprintf("generation error %s", describeError(a)),
			Actual:   "generation succeeded",
		}
	}

	if a.Code != "" {
		var ce *sequence.ConfigError
		if !errors.As(result.GenerationError, &ce) || string(ce.Code) != a.Code {
			return &AssertionError{
				Type:     AssertExpectError,
				Expected: fmt.Sprintf("error code %s", a.Code),
				Actual:   result.GenerationError.Error(),
			}
		}
	}
	if a.Contains != "" && !strings.Contains(result.GenerationError.Error(), a.Contains) {
		return &AssertionError{
			Type:     AssertExpectError,
			Expected: fmt.Sprintf("error containing %q", a.Contains),
			Actual:   result.GenerationError.Error(),
		}
	}
	return nil
}

func within(v int, count, lo, hi *int) bool {
	if count != nil && v != *count {
		return false
	}
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}

func describeBounds(count, lo, hi *int) string {
	var parts []string
	if count != nil {
		parts = append(parts, fmt.Sprintf("exactly %d", *count))
	}
	if lo != nil {
		parts = append(parts, fmt.Sprintf(">= %d", *lo))
	}
	if hi != nil {
		parts = append(parts, fmt.Sprintf("<= %d", *hi))
	}
	return strings.Join(parts, " and ")
}

func describeError(a Assertion) string {
	if a.Code != "" {
		return a.Code
	}
	return fmt.Sprintf("containing %q", a.Contains)
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a list of error messages (empty if all pass).
//
// When generation failed, only expect_error assertions are evaluated and a
// missing expect_error is itself a failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string

	if result.GenerationError != nil {
		expected := false
		for _, a := range assertions {
			if a.Type != AssertExpectError {
				continue
			}
			expected = true
			if err := assertExpectError(result, a); err != nil {
				errs = append(errs, err.Error())
			}
		}
		if !expected {
			errs = append(errs, fmt.Sprintf("generation failed: %v", result.GenerationError))
		}
		return errs
	}

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertOccurrences:
			err = assertOccurrences(result, a)
		case AssertPerSequence:
			err = assertPerSequence(result, a)
		case AssertSpread:
			err = assertSpread(result, a)
		case AssertLength:
			err = assertLength(result, a)
		case AssertEndOnce:
			err = assertEndOnce(result)
		case AssertExpectError:
			err = assertExpectError(result, a)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}
