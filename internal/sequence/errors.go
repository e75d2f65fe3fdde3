package sequence

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes sequence errors.
type ErrorCode string

const (
	// ErrCodeInvalidOrder indicates a block with a missing or unknown order kind.
	ErrCodeInvalidOrder ErrorCode = "INVALID_ORDER"

	// ErrCodeInvalidSamples indicates numSamples outside 1..len(components).
	ErrCodeInvalidSamples ErrorCode = "INVALID_SAMPLES"

	// ErrCodeInvalidInterruption indicates numInterruptions outside 1..emitted
	// components, an unknown spacing, or an empty interruption.
	ErrCodeInvalidInterruption ErrorCode = "INVALID_INTERRUPTION"

	// ErrCodeReservedStep indicates the reserved end step used as a component.
	ErrCodeReservedStep ErrorCode = "RESERVED_STEP"

	// ErrCodeInvalidCount indicates a population size below one.
	ErrCodeInvalidCount ErrorCode = "INVALID_COUNT"

	// ErrCodeInvalidPath indicates a malformed or out-of-range path.
	ErrCodeInvalidPath ErrorCode = "INVALID_PATH"

	// ErrCodeStepNotFound indicates FindTaskIndex found no matching step.
	ErrCodeStepNotFound ErrorCode = "STEP_NOT_FOUND"
)

// ConfigError reports a study configuration the generator cannot satisfy.
// The whole generation run fails; no partial population is returned.
type ConfigError struct {
	// Code identifies the violated constraint.
	Code ErrorCode

	// Path is the structural path of the offending block ("root-0").
	Path string

	// Field names the offending field ("numSamples", "interruptions[1]").
	Field string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s.%s: %s", e.Code, e.Path, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
}

// PathError reports a path or step that does not resolve inside a sequence.
type PathError struct {
	Code    ErrorCode
	Path    string
	Message string
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %q: %s", e.Code, e.Path, e.Message)
}

// IsConfigError returns true if err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsPathError returns true if err is (or wraps) a PathError.
func IsPathError(err error) bool {
	var pe *PathError
	return errors.As(err, &pe)
}
