package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios generate a population for a study and assert on its balance
// and shape.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Study is the path to a .cue, .json or .yaml study file.
	// Relative paths are resolved against the scenario file's directory.
	Study string `yaml:"study,omitempty"`

	// Inline is a study configuration embedded in the scenario. Exactly one
	// of Study and Inline must be set.
	Inline map[string]interface{} `yaml:"inline,omitempty"`

	// NumSequences overrides the study's uiConfig.numSequences.
	NumSequences *int `yaml:"num_sequences,omitempty"`

	// Seed makes generation reproducible. Defaults to testutil.DefaultSeed.
	Seed *uint64 `yaml:"seed,omitempty"`

	// Participants is the number of participants registered against the
	// stored population. Each must receive sequence i mod size.
	Participants int `yaml:"participants,omitempty"`

	// Assertions validate the generated population.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the generated population.
type Assertion struct {
	// Type specifies the assertion type:
	// - "occurrences": Total occurrences of each step across the population
	// - "per_sequence": Occurrences of a step within every sequence
	// - "spread": Max minus min occurrences over a set of steps
	// - "length": Flattened sequence length bounds
	// - "end_once": end appears exactly once, last, in every sequence
	// - "expect_error": Generation must fail
	Type string `yaml:"type"`

	// Step is a single step name (used by per_sequence).
	Step string `yaml:"step,omitempty"`

	// Steps lists step names (used by occurrences and spread; spread
	// defaults to every step).
	Steps []string `yaml:"steps,omitempty"`

	// Count is the exact expected count (used by occurrences and per_sequence).
	Count *int `yaml:"count,omitempty"`

	// Min and Max bound a value (used by occurrences, length and spread).
	Min *int `yaml:"min,omitempty"`
	Max *int `yaml:"max,omitempty"`

	// Code is the expected error code (used by expect_error).
	Code string `yaml:"code,omitempty"`

	// Contains is a substring of the expected error (used by expect_error).
	Contains string `yaml:"contains,omitempty"`
}

// Assertion type constants.
const (
	AssertOccurrences = "occurrences"
	AssertPerSequence = "per_sequence"
	AssertSpread      = "spread"
	AssertLength      = "length"
	AssertEndOnce     = "end_once"
	AssertExpectError = "expect_error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative study path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Study != "" && !filepath.IsAbs(scenario.Study) {
		scenario.Study = filepath.Join(filepath.Dir(path), scenario.Study)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Study == "" && s.Inline == nil:
		return fmt.Errorf("one of study or inline is required")
	case s.Study != "" && s.Inline != nil:
		return fmt.Errorf("study and inline are mutually exclusive")
	}

	if s.Study != "" {
		if _, err := os.Stat(s.Study); os.IsNotExist(err) {
			return fmt.Errorf("study file not found: %s", s.Study)
		}
	}

	if s.NumSequences != nil && *s.NumSequences < 0 {
		return fmt.Errorf("num_sequences must be non-negative")
	}
	if s.Participants < 0 {
		return fmt.Errorf("participants must be non-negative")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertOccurrences:
		if len(a.Steps) == 0 {
			return fmt.Errorf("assertions[%d]: steps list is required for occurrences", index)
		}
		if a.Count == nil && a.Min == nil && a.Max == nil {
			return fmt.Errorf("assertions[%d]: count, min or max is required for occurrences", index)
		}
	case AssertPerSequence:
		if a.Step == "" {
			return fmt.Errorf("assertions[%d]: step is required for per_sequence", index)
		}
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for per_sequence", index)
		}
	case AssertSpread:
		if a.Max == nil {
			return fmt.Errorf("assertions[%d]: max is required for spread", index)
		}
	case AssertLength:
		if a.Min == nil && a.Max == nil {
			return fmt.Errorf("assertions[%d]: min or max is required for length", index)
		}
	case AssertEndOnce:
	case AssertExpectError:
		if a.Code == "" && a.Contains == "" {
			return fmt.Errorf("assertions[%d]: code or contains is required for expect_error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
