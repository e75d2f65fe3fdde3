package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/studyseq/internal/ir"
)

// Validation error codes (E200-E299)
const (
	// General validation errors (E200)
	ErrUnsupportedIRType = "E200" // unsupported IR type for validation

	// Block errors (E201-E209)
	ErrInvalidOrder            = "E201" // missing or unknown order kind
	ErrInvalidNumSamples       = "E202" // numSamples outside 1..len(components)
	ErrInvalidNumInterruptions = "E203" // numInterruptions outside 1..emitted components
	ErrInvalidSpacing          = "E204" // spacing is not even or random
	ErrUnknownComponent        = "E205" // leaf not declared in components
	ErrEmptyBlock              = "E206" // block has no components
	ErrReservedStep            = "E207" // the end step used as a component
	ErrInvalidNumSequences     = "E208" // numSequences below one
	ErrEmptyInterruption       = "E209" // interruption without components
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates a compiled study against schema rules.
// Returns all errors found (does not fail-fast).
// Supports StudyConfig and OrderObject types.
func Validate(v any) []ValidationError {
	switch cfg := v.(type) {
	case *ir.StudyConfig:
		return validateStudy(cfg)
	case ir.StudyConfig:
		return validateStudy(&cfg)
	case *ir.OrderObject:
		return validateBlock(cfg, "sequence", nil)
	case ir.OrderObject:
		return validateBlock(&cfg, "sequence", nil)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

func validateStudy(cfg *ir.StudyConfig) []ValidationError {
	var errs []ValidationError

	// E208: at least one sequence
	if n := cfg.UIConfig.SequenceCount(); n < 1 {
		errs = append(errs, ValidationError{
			Field:   "uiConfig.numSequences",
			Message: fmt.Sprintf("numSequences must be at least 1, got %d", n),
			Code:    ErrInvalidNumSequences,
		})
	}

	// E207: end is reserved even as a declared component
	if _, ok := cfg.Components[ir.EndStep]; ok {
		errs = append(errs, ValidationError{
			Field:   "components." + ir.EndStep,
			Message: fmt.Sprintf("%q is reserved for the terminal step", ir.EndStep),
			Code:    ErrReservedStep,
		})
	}

	errs = append(errs, validateBlock(&cfg.Sequence, "sequence", cfg.Components)...)
	return errs
}

// validateBlock checks one block and its nested blocks. known is the set of
// declared components; nil or empty skips leaf checks.
func validateBlock(block *ir.OrderObject, field string, known map[string]ir.ComponentDef) []ValidationError {
	var errs []ValidationError

	// E201: order kind
	if !ir.ValidOrderKinds[block.Order] {
		errs = append(errs, ValidationError{
			Field:   field + ".order",
			Message: fmt.Sprintf("invalid order %q, must be \"fixed\", \"random\", or \"latinSquare\"", block.Order),
			Code:    ErrInvalidOrder,
		})
	}

	// E206: empty block
	if len(block.Components) == 0 {
		errs = append(errs, ValidationError{
			Field:   field + ".components",
			Message: "block has no components",
			Code:    ErrEmptyBlock,
		})
	}

	// E202: numSamples range
	emitted := len(block.Components)
	if block.NumSamples != nil {
		k := *block.NumSamples
		if k < 1 || k > len(block.Components) {
			errs = append(errs, ValidationError{
				Field:   field + ".numSamples",
				Message: fmt.Sprintf("numSamples must be between 1 and %d, got %d", len(block.Components), k),
				Code:    ErrInvalidNumSamples,
			})
		} else {
			emitted = k
		}
	}

	for i, c := range block.Components {
		elemField := fmt.Sprintf("%s.components[%d]", field, i)
		if c.Block != nil {
			errs = append(errs, validateBlock(c.Block, elemField, known)...)
			continue
		}
		errs = append(errs, validateStep(c.Leaf, elemField, known)...)
	}

	for i, in := range block.Interruptions {
		inField := fmt.Sprintf("%s.interruptions[%d]", field, i)

		// E204: spacing
		if !ir.ValidSpacings[in.Spacing] {
			errs = append(errs, ValidationError{
				Field:   inField + ".spacing",
				Message: fmt.Sprintf("invalid spacing %q, must be \"even\" or \"random\"", in.Spacing),
				Code:    ErrInvalidSpacing,
			})
		}

		// E203: numInterruptions range
		if in.NumInterruptions < 1 || in.NumInterruptions > emitted {
			errs = append(errs, ValidationError{
				Field:   inField + ".numInterruptions",
				Message: fmt.Sprintf("numInterruptions must be between 1 and %d (components emitted by the block), got %d", emitted, in.NumInterruptions),
				Code:    ErrInvalidNumInterruptions,
			})
		}

		// E209: empty interruption
		if len(in.Components) == 0 {
			errs = append(errs, ValidationError{
				Field:   inField + ".components",
				Message: "interruption has no components",
				Code:    ErrEmptyInterruption,
			})
		}
		for j, step := range in.Components {
			errs = append(errs, validateStep(step, fmt.Sprintf("%s.components[%d]", inField, j), known)...)
		}
	}

	return errs
}

func validateStep(name, field string, known map[string]ir.ComponentDef) []ValidationError {
	// E207: reserved end step
	if name == ir.EndStep {
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("%q is reserved and appended automatically", ir.EndStep),
			Code:    ErrReservedStep,
		}}
	}

	// E205: unknown component
	if len(known) == 0 {
		return nil
	}
	if _, ok := known[name]; !ok {
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("unknown component %q", name),
			Code:    ErrUnknownComponent,
		}}
	}
	return nil
}

// FormatErrors renders errors one per line, in order.
func FormatErrors(errs []ValidationError) string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}
