package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/studyseq/internal/ir"
	"github.com/roach88/studyseq/internal/sequence"
)

// LocateOptions holds flags for the locate command.
type LocateOptions struct {
	*RootOptions
	PopulationFlags
	Path  string
	Start int
}

// LocateResult is the flattened position of a step.
type LocateResult struct {
	Step   string `json:"step"`
	Path   string `json:"path"`
	Index  int    `json:"index"`
	StepID string `json:"step_id"`
}

func (r LocateResult) writeText(w io.Writer) {
	fmt.Fprintf(w, "%s in %s: index %d (%s)\n", r.Step, r.Path, r.Index, r.StepID)
}

// NewLocateCommand creates the locate command.
func NewLocateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LocateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "locate <step>",
		Short: "Find a step's flattened index in a stored sequence",
		Long: `Find the first occurrence of a step inside the block at --path, at or
after flattened index --start. The reported index counts from the start
of the whole sequence.

Examples:
  studyseq locate attention-check --db ./study.db --index 2 --path root-1
  studyseq locate trial3 --db ./study.db --start 5`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocate(opts, args[0], cmd)
		},
	}

	addPopulationFlags(cmd, &opts.PopulationFlags, true)
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Path, "path", ir.RootPath, "block path to search within")
	cmd.Flags().IntVar(&opts.Start, "start", 0, "first flattened index to consider")

	return cmd
}

func runLocate(opts *LocateOptions, step string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	seq, _, err := loadStoredSequence(commandContext(cmd), &opts.PopulationFlags)
	if err != nil {
		return failExit(formatter, err)
	}

	idx, err := sequence.FindTaskIndex(seq, step, opts.Start, opts.Path)
	if err != nil {
		code := ErrCodeBadPath
		var pe *sequence.PathError
		if errors.As(err, &pe) && pe.Code == sequence.ErrCodeStepNotFound {
			code = ErrCodeNoStep
		}
		return formatter.Fail(ExitFailure, code, err.Error(), nil)
	}

	return formatter.Success(LocateResult{
		Step:   step,
		Path:   opts.Path,
		Index:  idx,
		StepID: sequence.StepID(step, idx),
	})
}
