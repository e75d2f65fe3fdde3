package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/studyseq/internal/ir"
)

// marshalStudy converts a study configuration to canonical JSON TEXT.
func marshalStudy(cfg *ir.StudyConfig) (string, error) {
	data, err := ir.MarshalCanonical(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal study: %w", err)
	}
	return string(data), nil
}

// marshalSequence converts one sequence to canonical JSON TEXT.
func marshalSequence(seq *ir.Sequence) (string, error) {
	data, err := ir.MarshalCanonical(seq)
	if err != nil {
		return "", fmt.Errorf("marshal sequence: %w", err)
	}
	return string(data), nil
}

// unmarshalStudy parses canonical JSON TEXT into a study configuration.
// An empty components object decodes to a nil map.
func unmarshalStudy(data string) (*ir.StudyConfig, error) {
	var cfg ir.StudyConfig
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal study: %w", err)
	}
	if len(cfg.Components) == 0 {
		cfg.Components = nil
	}
	return &cfg, nil
}

// unmarshalSequence parses canonical JSON TEXT into a sequence.
func unmarshalSequence(data string) (*ir.Sequence, error) {
	var seq ir.Sequence
	if err := json.Unmarshal([]byte(data), &seq); err != nil {
		return nil, fmt.Errorf("unmarshal sequence: %w", err)
	}
	return &seq, nil
}
