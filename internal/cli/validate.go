package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/studyseq/internal/compiler"
	"github.com/roach88/studyseq/internal/ir"
	"github.com/roach88/studyseq/internal/sequence"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid        bool                       `json:"valid"`
	StudyID      string                     `json:"study_id,omitempty"`
	NumSequences int                        `json:"num_sequences,omitempty"`
	MaxSteps     int                        `json:"max_steps,omitempty"`
	Errors       []compiler.ValidationError `json:"errors,omitempty"`
}

func (r ValidationResult) writeText(w io.Writer) {
	if r.Valid {
		fmt.Fprintln(w, "✓ Study valid")
		fmt.Fprintf(w, "  sequences: %d\n", r.NumSequences)
		fmt.Fprintf(w, "  max steps: %d\n", r.MaxSteps)
		return
	}

	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)
	for _, err := range r.Errors {
		if err.Line > 0 {
			fmt.Fprintf(w, "line %d\n", err.Line)
		}
		fmt.Fprintf(w, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <study>",
		Short: "Validate a study configuration",
		Long: `Validate a study's sequence configuration without generating sequences.

The study may be a .cue, .json, .yaml or .yml file, or a directory holding
a CUE package. Every problem is reported, not just the first.

Exit codes:
  0 - Study is valid
  1 - Study has validation errors
  2 - Command error (study not found, unsupported format, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, errs, err := validateStudy(path)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	formatter.VerboseLog("Validated %s", path)
	return formatter.Success(ValidationResult{
		Valid:        true,
		StudyID:      cfg.UIConfig.StudyID,
		NumSequences: cfg.UIConfig.SequenceCount(),
		MaxSteps:     sequence.MaxSteps(&cfg.Sequence),
	})
}

// validateStudy loads and validates a study. A compile error in an
// otherwise readable study is reported as a validation error; err is
// reserved for studies that could not be read at all.
func validateStudy(path string) (*ir.StudyConfig, []compiler.ValidationError, error) {
	cfg, err := LoadStudy(path)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && isStudyError(loadErr.Code) {
			return nil, []compiler.ValidationError{{
				Field:   "study",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    getLineFromCuePos(loadErr),
			}}, nil
		}
		return nil, nil, err
	}
	return cfg, compiler.Validate(cfg), nil
}

// isStudyError reports whether a load error code describes the study's
// content rather than its location.
func isStudyError(code string) bool {
	switch code {
	case ErrCodeNotFound, ErrCodeScanError, ErrCodeNoFiles, ErrCodeUnsupported:
		return false
	}
	return true
}

// getLineFromCuePos extracts the line number of a load error, if known.
func getLineFromCuePos(err *LoadError) int {
	if err.Pos.IsValid() {
		return err.Pos.Line()
	}
	return 0
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	result := ValidationResult{Valid: false, Errors: errs}

	if formatter.Format == "json" {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}); err != nil {
			return err
		}
	} else {
		result.writeText(formatter.Writer)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
