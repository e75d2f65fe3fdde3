package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/studyseq/internal/sequence"
)

// FlattenOptions holds flags for the flatten command.
type FlattenOptions struct {
	*RootOptions
	PopulationFlags
}

// FlattenResult is the flat step list of a template or stored sequence.
type FlattenResult struct {
	Source   string   `json:"source"`
	Steps    []string `json:"steps"`
	StepIDs  []string `json:"step_ids,omitempty"`
	MaxSteps int      `json:"max_steps,omitempty"`
}

func (r FlattenResult) writeText(w io.Writer) {
	fmt.Fprintf(w, "%s (%d steps)\n", r.Source, len(r.Steps))
	steps := r.Steps
	if len(r.StepIDs) > 0 {
		steps = r.StepIDs
	}
	for i, s := range steps {
		fmt.Fprintf(w, "%4d  %s\n", i, s)
	}
	if r.MaxSteps > 0 {
		fmt.Fprintf(w, "max steps per participant: %d\n", r.MaxSteps)
	}
}

// NewFlattenCommand creates the flatten command.
func NewFlattenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FlattenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "flatten [study]",
		Short: "List the steps of a study template or stored sequence",
		Long: `Flatten a sequence into its ordered list of steps.

Given a study, the template is flattened in declaration order (every
component of every block, interruptions excluded). With --db, a stored
participant sequence is flattened instead and its step IDs are shown.

Examples:
  studyseq flatten study.cue
  studyseq flatten --db ./study.db --index 3`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlatten(opts, args, cmd)
		},
	}

	addPopulationFlags(cmd, &opts.PopulationFlags, true)

	return cmd
}

func runFlatten(opts *FlattenOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.Database != "" {
		seq, pop, err := loadStoredSequence(commandContext(cmd), &opts.PopulationFlags)
		if err != nil {
			return failExit(formatter, err)
		}
		return formatter.Success(FlattenResult{
			Source:  fmt.Sprintf("population %s, sequence %d", pop.ID, opts.Index),
			Steps:   sequence.FlatMap(seq),
			StepIDs: sequence.StepIDs(seq),
		})
	}

	if len(args) == 0 {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "a study path or --db is required", nil)
	}

	cfg, err := LoadStudy(args[0])
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	return formatter.Success(FlattenResult{
		Source:   args[0],
		Steps:    sequence.FlatMap(&cfg.Sequence),
		MaxSteps: sequence.MaxSteps(&cfg.Sequence),
	})
}
