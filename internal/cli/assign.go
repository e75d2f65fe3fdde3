package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/studyseq/internal/sequence"
	"github.com/roach88/studyseq/internal/store"
)

// AssignOptions holds flags for the assign command.
type AssignOptions struct {
	*RootOptions
	PopulationFlags
	List bool
}

// AssignmentResult is one participant's sequence.
type AssignmentResult struct {
	ParticipantID string   `json:"participant_id"`
	PopulationID  string   `json:"population_id"`
	Seq           int64    `json:"seq"`
	SequenceIndex int      `json:"sequence_index"`
	Steps         []string `json:"steps,omitempty"`
}

func (r AssignmentResult) writeText(w io.Writer) {
	fmt.Fprintf(w, "%s -> sequence %d\n", r.ParticipantID, r.SequenceIndex)
	if len(r.Steps) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(r.Steps, " "))
	}
}

// AssignmentList is every assignment of a population in registration order.
type AssignmentList struct {
	PopulationID string             `json:"population_id"`
	Assignments  []AssignmentResult `json:"assignments"`
}

func (l AssignmentList) writeText(w io.Writer) {
	fmt.Fprintf(w, "population %s: %d participant(s)\n", l.PopulationID, len(l.Assignments))
	for _, a := range l.Assignments {
		fmt.Fprintf(w, "%4d  %s -> sequence %d\n", a.Seq, a.ParticipantID, a.SequenceIndex)
	}
}

// NewAssignCommand creates the assign command.
func NewAssignCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AssignOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "assign [participant-id]",
		Short: "Hand a stored sequence to a participant",
		Long: `Assign the next sequence of a stored population to a participant.

Participants receive sequences in registration order, wrapping around
when the population is exhausted. Assigning the same participant again
returns their existing sequence. Without a participant ID a new UUIDv7
is issued.

Examples:
  studyseq assign P-017 --db ./study.db
  studyseq assign --db ./study.db --population <id>
  studyseq assign --db ./study.db --list`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			participant := ""
			if len(args) == 1 {
				participant = args[0]
			}
			return runAssign(opts, participant, cmd)
		},
	}

	addPopulationFlags(cmd, &opts.PopulationFlags, false)
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list existing assignments instead of assigning")

	return cmd
}

func runAssign(opts *AssignOptions, participant string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, pop, err := openPopulation(ctx, opts.Database, opts.Population)
	if err != nil {
		return failExit(formatter, err)
	}
	defer st.Close()

	if opts.List {
		assignments, err := st.Assignments(ctx, pop.ID)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		list := AssignmentList{PopulationID: pop.ID, Assignments: make([]AssignmentResult, len(assignments))}
		for i, a := range assignments {
			list.Assignments[i] = toAssignmentResult(a)
		}
		return formatter.Success(list)
	}

	a, err := st.AssignParticipant(ctx, pop.ID, participant)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	formatter.VerboseLog("Assigned %s to sequence %d of %s", a.ParticipantID, a.SequenceIndex, pop.ID)
	return formatter.Success(toAssignmentResult(a))
}

func toAssignmentResult(a store.Assignment) AssignmentResult {
	r := AssignmentResult{
		ParticipantID: a.ParticipantID,
		PopulationID:  a.PopulationID,
		Seq:           a.Seq,
		SequenceIndex: a.SequenceIndex,
	}
	if a.Sequence != nil {
		r.Steps = sequence.FlatMap(a.Sequence)
	}
	return r
}
